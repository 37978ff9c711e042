// fixit/handlers/main_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/AB-App-Dev/FixIt/auth"
	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/database"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/stats"
	"github.com/AB-App-Dev/FixIt/utils"
	"golang.org/x/crypto/bcrypt"
)

// MockApplication holds dependencies for handler tests.
type MockApplication struct {
	db          *database.DatabaseService
	auth        *auth.Manager
	stats       *stats.Aggregator
	verifier    models.Verifier
	rateLimiter *models.RateLimiter
	storage     *utils.LocalStorage
	logger      *slog.Logger
	settings    *config.Settings
}

func (a *MockApplication) DB() *database.DatabaseService    { return a.db }
func (a *MockApplication) Auth() *auth.Manager              { return a.auth }
func (a *MockApplication) Stats() *stats.Aggregator         { return a.stats }
func (a *MockApplication) Verifier() models.Verifier        { return a.verifier }
func (a *MockApplication) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *MockApplication) Storage() models.StorageService   { return a.storage }
func (a *MockApplication) Logger() *slog.Logger             { return a.logger }
func (a *MockApplication) Settings() *config.Settings       { return a.settings }

// stubVerifier accepts exactly one token.
type stubVerifier struct {
	valid string
	calls int
}

func (v *stubVerifier) Verify(_ context.Context, token string) bool {
	v.calls++
	return token == v.valid
}

const (
	testAdminID       = "admin-1"
	testAdminEmail    = "admin@example.org"
	testAdminPassword = "correct-horse"
)

// setupTestApp creates a full application stack with a test database for integration testing.
func setupTestApp(t *testing.T) *MockApplication {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	dbPath := filepath.Join(t.TempDir(), "test.db?_journal_mode=WAL&_foreign_keys=on")
	dbService, err := database.InitDB(database.DriverSQLite, dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	hash, err := utils.HashPassword(testAdminPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash admin password: %v", err)
	}
	if _, err := dbService.DB.Exec("INSERT INTO admins (id, username, password) VALUES (?, ?, ?)", testAdminID, testAdminEmail, hash); err != nil {
		t.Fatalf("Failed to insert admin: %v", err)
	}

	storage, err := utils.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create upload dir: %v", err)
	}

	settings := &config.Settings{}
	settings.App.BaseURL = "http://localhost:3000"
	settings.Auth.RatePerMinute = 1000

	app := &MockApplication{
		db:          dbService,
		auth:        auth.NewManager(dbService, nil, auth.Options{BaseURL: settings.App.BaseURL, BcryptCost: bcrypt.MinCost}, logger),
		stats:       stats.NewAggregator(dbService),
		verifier:    &stubVerifier{valid: "human-token"},
		rateLimiter: models.NewRateLimiter(time.Millisecond, 1000, 0, time.Hour),
		storage:     storage,
		logger:      logger,
		settings:    settings,
	}

	t.Cleanup(func() {
		app.db.Close()
	})

	return app
}

func newJSONRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// incidentForm builds a multipart incident submission. A nil image omits the file part.
func incidentForm(t *testing.T, fields map[string]string, filename string, img []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if img != nil {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(img); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not a JSON error object: %s", rr.Body.String())
	}
	return resp["error"]
}
