// fixit/main_test.go
package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/utils"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, config.AppVersion) {
		t.Errorf("Expected the version in the output, got %q", out)
	}
}

func TestSeedCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FIXIT_DATABASE_DSN", filepath.Join(dir, "seed.db"))

	out, err := runCmd(t, "seed", "--username", "admin@example.org", "--password", "long-enough")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !strings.Contains(out, "created") {
		t.Errorf("Expected the admin to be created, got %q", out)
	}

	out, err = runCmd(t, "seed", "--username", "admin@example.org", "--password", "another-one")
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("Expected the existing admin to be kept, got %q", out)
	}

	if _, err := runCmd(t, "seed", "--username", "x@example.org", "--password", "short"); err == nil {
		t.Error("Expected a short password to be rejected")
	}
}

func TestNewApplicationLocalStorage(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	settings, err := loadSettings()
	if err != nil {
		t.Fatalf("loadSettings failed: %v", err)
	}
	settings.Database.DSN = filepath.Join(dir, "app.db")
	settings.Uploads.Dir = filepath.Join(dir, "uploads")

	app, err := newApplication(context.Background(), settings, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newApplication failed: %v", err)
	}
	defer app.db.Close()

	if _, ok := app.Storage().(*utils.LocalStorage); !ok {
		t.Errorf("Expected local storage, got %T", app.Storage())
	}
	if app.Verifier() != nil {
		t.Error("Expected bot detection to be disabled without a secret")
	}
	if err := app.DB().Ping(context.Background()); err != nil {
		t.Errorf("Expected a reachable database: %v", err)
	}
}
