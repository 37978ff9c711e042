// fixit/auth/auth.go
package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/database"
	"github.com/AB-App-Dev/FixIt/mail"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/utils"
	"github.com/gorilla/securecookie"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AdminStore is the slice of the database the auth flows need.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*models.Admin, error)
	GetAdminByResetToken(ctx context.Context, token string, now time.Time) (*models.Admin, error)
	SetResetToken(ctx context.Context, adminID, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, adminID, token, passwordHash string) error
	CreateAdminIfMissing(ctx context.Context, username, passwordHash string) (bool, error)
}

// Options configures a Manager.
type Options struct {
	// BaseURL prefixes the reset link, without a trailing slash.
	BaseURL string
	// Secure marks the session cookie Secure. Set it in production.
	Secure bool
	// SessionKey, when set, signs and encrypts the session cookie value
	// instead of storing the raw admin id.
	SessionKey string
	BcryptCost int
}

// Manager implements admin login, session checks and the password reset flow.
type Manager struct {
	store  AdminStore
	sender mail.Sender
	codec  *securecookie.SecureCookie
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a Manager. sender may be nil, in which case reset links
// are only logged.
func NewManager(store AdminStore, sender mail.Sender, opts Options, logger *slog.Logger) *Manager {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = config.BcryptCost
	}
	m := &Manager{
		store:  store,
		sender: sender,
		opts:   opts,
		logger: logger.With("component", "auth"),
		now:    utils.GetSQLTime,
	}
	if opts.SessionKey != "" {
		hashKey := sha256.Sum256([]byte("fixit-session-hash:" + opts.SessionKey))
		blockKey := sha256.Sum256([]byte("fixit-session-block:" + opts.SessionKey))
		m.codec = securecookie.New(hashKey[:], blockKey[:])
		m.codec.MaxAge(int(config.SessionMaxAge.Seconds()))
	}
	return m
}

// Login checks the credentials and returns the session cookie to set.
func (m *Manager) Login(ctx context.Context, username, password string) (*http.Cookie, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	admin, err := m.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if !utils.CheckPassword(admin.Password, password) {
		return nil, ErrInvalidCredentials
	}

	value, err := m.encodeSession(admin.ID)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// LogoutCookie returns a cookie that removes the session from the browser.
func (m *Manager) LogoutCookie() *http.Cookie {
	return &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Session resolves a session cookie value to an admin. It returns nil without
// an error when the value is empty, tampered with or points at no admin.
func (m *Manager) Session(ctx context.Context, value string) (*models.Admin, error) {
	if value == "" {
		return nil, nil
	}
	id, ok := m.decodeSession(value)
	if !ok {
		return nil, nil
	}
	admin, err := m.store.GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session admin: %w", err)
	}
	return admin, nil
}

// RequestPasswordReset issues a reset token for username and sends the link.
// Unknown usernames succeed silently so callers cannot probe for accounts.
func (m *Manager) RequestPasswordReset(ctx context.Context, username string) error {
	if username == "" {
		return ErrMissingFields
	}
	logger := m.logger.With("op", "RequestPasswordReset")

	admin, err := m.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			logger.Info("Password reset requested for unknown admin")
			return nil
		}
		return fmt.Errorf("load admin: %w", err)
	}

	token, err := utils.GenerateToken(config.ResetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := m.store.SetResetToken(ctx, admin.ID, token, m.now().Add(config.ResetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := m.opts.BaseURL + "/reset-password?token=" + url.QueryEscape(token)
	logger.Info("Password reset link issued", "admin_id", admin.ID, "link", link)

	if m.sender == nil {
		return nil
	}
	msg, err := mail.ResetPasswordMessage(admin.Username, link)
	if err != nil {
		logger.Error("Failed to render reset email", "error", err)
		return nil
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		logger.Error("Failed to send reset email", "admin_id", admin.ID, "error", err)
	}
	return nil
}

// ResetPassword sets a new password for the holder of a live reset token and
// consumes the token.
func (m *Manager) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(password) < config.MinPasswordLen {
		return ErrWeakPassword
	}

	admin, err := m.store.GetAdminByResetToken(ctx, token, m.now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("load admin by reset token: %w", err)
	}

	hash, err := utils.HashPassword(password, m.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := m.store.ResetPassword(ctx, admin.ID, token, hash); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	m.logger.Info("Admin password reset", "admin_id", admin.ID)
	return nil
}

// Seed creates the admin account unless it already exists.
func (m *Manager) Seed(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, ErrMissingFields
	}
	if utf8.RuneCountInString(password) < config.MinPasswordLen {
		return false, ErrWeakPassword
	}
	hash, err := utils.HashPassword(password, m.opts.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	return m.store.CreateAdminIfMissing(ctx, username, hash)
}

func (m *Manager) encodeSession(adminID string) (string, error) {
	if m.codec == nil {
		return adminID, nil
	}
	value, err := m.codec.Encode(config.SessionCookieName, adminID)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return value, nil
}

func (m *Manager) decodeSession(value string) (string, bool) {
	if m.codec == nil {
		return value, true
	}
	var id string
	if err := m.codec.Decode(config.SessionCookieName, value, &id); err != nil {
		return "", false
	}
	return id, true
}
