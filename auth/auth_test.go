// fixit/auth/auth_test.go
package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/database"
	"github.com/AB-App-Dev/FixIt/mail"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/utils"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory AdminStore.
type memStore struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func newMemStore() *memStore {
	return &memStore{admins: make(map[string]*models.Admin)}
}

func (s *memStore) add(id, username, password string) {
	hash, _ := utils.HashPassword(password, bcrypt.MinCost)
	s.admins[id] = &models.Admin{ID: id, Username: username, Password: hash}
}

func (s *memStore) GetAdminByUsername(_ context.Context, username string) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			c := *a
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) GetAdminByID(_ context.Context, id string) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.admins[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, database.ErrNotFound
}

func (s *memStore) GetAdminByResetToken(_ context.Context, token string, now time.Time) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.ResetToken != nil && *a.ResetToken == token && a.ResetTokenExpiry.After(now) {
			c := *a
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) SetResetToken(_ context.Context, adminID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[adminID]
	if !ok {
		return database.ErrNotFound
	}
	a.ResetToken = &token
	a.ResetTokenExpiry = &expiry
	return nil
}

func (s *memStore) ResetPassword(_ context.Context, adminID, token, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[adminID]
	if !ok || a.ResetToken == nil || *a.ResetToken != token {
		return database.ErrNotFound
	}
	a.Password = hash
	a.ResetToken = nil
	a.ResetTokenExpiry = nil
	return nil
}

func (s *memStore) CreateAdminIfMissing(ctx context.Context, username, hash string) (bool, error) {
	if _, err := s.GetAdminByUsername(ctx, username); err == nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins["seeded"] = &models.Admin{ID: "seeded", Username: username, Password: hash}
	return true, nil
}

// recordingSender captures sent messages.
type recordingSender struct {
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func newTestManager(t *testing.T, opts Options) (*Manager, *memStore, *recordingSender) {
	t.Helper()
	store := newMemStore()
	store.add("admin-1", "admin@example.org", "correct-horse")
	sender := &recordingSender{}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:3000"
	}
	m := NewManager(store, sender, opts, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return m, store, sender
}

func TestLogin(t *testing.T) {
	m, _, _ := newTestManager(t, Options{Secure: true})
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"Valid credentials", "admin@example.org", "correct-horse", nil},
		{"Wrong password", "admin@example.org", "wrong", ErrInvalidCredentials},
		{"Unknown admin", "nobody@example.org", "correct-horse", ErrInvalidCredentials},
		{"Missing password", "admin@example.org", "", ErrMissingFields},
		{"Missing username", "", "correct-horse", ErrMissingFields},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cookie, err := m.Login(ctx, tc.username, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			if cookie.Name != config.SessionCookieName || cookie.Value != "admin-1" {
				t.Errorf("Unexpected cookie %s=%s", cookie.Name, cookie.Value)
			}
			if !cookie.HttpOnly || !cookie.Secure || cookie.Path != "/" {
				t.Errorf("Unexpected cookie attributes: %+v", cookie)
			}
			if cookie.MaxAge != 7*24*60*60 {
				t.Errorf("Expected a 7 day MaxAge, got %d", cookie.MaxAge)
			}
		})
	}
}

func TestLogoutCookie(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	c := m.LogoutCookie()
	if c.Name != config.SessionCookieName || c.MaxAge >= 0 || c.Path != "/" {
		t.Errorf("Expected an expiring session cookie, got %+v", c)
	}
}

func TestSession(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	ctx := context.Background()

	admin, err := m.Session(ctx, "admin-1")
	if err != nil || admin == nil || admin.ID != "admin-1" {
		t.Errorf("Expected admin-1, got %v (err %v)", admin, err)
	}
	for _, v := range []string{"", "unknown-id"} {
		admin, err := m.Session(ctx, v)
		if err != nil || admin != nil {
			t.Errorf("Expected no session for %q, got %v (err %v)", v, admin, err)
		}
	}
}

func TestSignedSession(t *testing.T) {
	m, _, _ := newTestManager(t, Options{SessionKey: "a-long-random-session-key"})
	ctx := context.Background()

	cookie, err := m.Login(ctx, "admin@example.org", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if cookie.Value == "admin-1" {
		t.Fatal("Expected the cookie value to be encoded")
	}

	admin, err := m.Session(ctx, cookie.Value)
	if err != nil || admin == nil || admin.ID != "admin-1" {
		t.Fatalf("Expected the signed cookie to resolve to admin-1, got %v (err %v)", admin, err)
	}

	if admin, _ := m.Session(ctx, "admin-1"); admin != nil {
		t.Error("Expected a raw admin id to be rejected when signing is enabled")
	}
	tampered := cookie.Value[:len(cookie.Value)-2] + "xx"
	if admin, _ := m.Session(ctx, tampered); admin != nil {
		t.Error("Expected a tampered cookie to be rejected")
	}
}

func TestRequestPasswordReset(t *testing.T) {
	m, store, sender := newTestManager(t, Options{BaseURL: "https://fixit.example.org"})
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }
	ctx := context.Background()

	if err := m.RequestPasswordReset(ctx, "admin@example.org"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	admin := store.admins["admin-1"]
	if admin.ResetToken == nil || len(*admin.ResetToken) != 64 {
		t.Fatalf("Expected a 64 character hex token, got %v", admin.ResetToken)
	}
	if !admin.ResetTokenExpiry.Equal(fixed.Add(time.Hour)) {
		t.Errorf("Expected expiry one hour from now, got %v", admin.ResetTokenExpiry)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("Expected one email, got %d", len(sender.sent))
	}
	wantLink := "https://fixit.example.org/reset-password?token=" + *admin.ResetToken
	if !strings.Contains(sender.sent[0].Text, wantLink) {
		t.Errorf("Expected the email to contain %s", wantLink)
	}

	first := *admin.ResetToken
	if err := m.RequestPasswordReset(ctx, "admin@example.org"); err != nil {
		t.Fatalf("Second RequestPasswordReset failed: %v", err)
	}
	if *store.admins["admin-1"].ResetToken == first {
		t.Error("Expected a new request to overwrite the previous token")
	}
}

func TestRequestPasswordResetUnknownAdmin(t *testing.T) {
	m, _, sender := newTestManager(t, Options{})
	if err := m.RequestPasswordReset(context.Background(), "nobody@example.org"); err != nil {
		t.Errorf("Expected success for an unknown admin, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("Expected no email for an unknown admin, got %d", len(sender.sent))
	}
	if err := m.RequestPasswordReset(context.Background(), ""); !errors.Is(err, ErrMissingFields) {
		t.Errorf("Expected ErrMissingFields for an empty email, got %v", err)
	}
}

func TestRequestPasswordResetIgnoresSendFailure(t *testing.T) {
	m, _, sender := newTestManager(t, Options{})
	sender.err = errors.New("provider down")
	if err := m.RequestPasswordReset(context.Background(), "admin@example.org"); err != nil {
		t.Errorf("Expected send failures to be swallowed, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	m, store, _ := newTestManager(t, Options{})
	ctx := context.Background()
	now := time.Now().UTC()
	m.now = func() time.Time { return now }

	if err := store.SetResetToken(ctx, "admin-1", "live-token", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		token    string
		password string
		wantErr  error
	}{
		{"Missing token", "", "new-password", ErrMissingFields},
		{"Missing password", "live-token", "", ErrMissingFields},
		{"Too short", "live-token", "short", ErrWeakPassword},
		{"Unknown token", "other-token", "new-password", ErrInvalidToken},
		{"Valid", "live-token", "new-password", nil},
		{"Reused token", "live-token", "another-password", ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := m.ResetPassword(ctx, tc.token, tc.password); !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if _, err := m.Login(ctx, "admin@example.org", "new-password"); err != nil {
		t.Errorf("Expected login with the new password to succeed, got %v", err)
	}
	if _, err := m.Login(ctx, "admin@example.org", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected the old password to be rejected, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	m, store, _ := newTestManager(t, Options{})
	ctx := context.Background()
	now := time.Now().UTC()
	m.now = func() time.Time { return now }

	if err := store.SetResetToken(ctx, "admin-1", "stale", now.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := m.ResetPassword(ctx, "stale", "new-password"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	ctx := context.Background()

	created, err := m.Seed(ctx, "new@example.org", "long-enough")
	if err != nil || !created {
		t.Fatalf("Expected the admin to be created, got %v (err %v)", created, err)
	}
	created, err = m.Seed(ctx, "new@example.org", "long-enough")
	if err != nil || created {
		t.Errorf("Expected the existing admin to be kept, got %v (err %v)", created, err)
	}
	if _, err := m.Seed(ctx, "x@example.org", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Expected ErrWeakPassword, got %v", err)
	}
	if _, err := m.Login(ctx, "new@example.org", "long-enough"); err != nil {
		t.Errorf("Expected the seeded admin to log in, got %v", err)
	}
}
