// fixit/database/admins.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AB-App-Dev/FixIt/models"
	"github.com/google/uuid"
)

const adminColumns = "id, username, password, reset_token, reset_token_expiry"

func (ds *DatabaseService) getAdmin(ctx context.Context, where string, args ...interface{}) (*models.Admin, error) {
	var admin models.Admin
	err := ds.DB.GetContext(ctx, &admin, ds.DB.Rebind("SELECT "+adminColumns+" FROM admins WHERE "+where), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query admin: %w", err)
	}
	return &admin, nil
}

// GetAdminByUsername looks up an admin by login name (an email address).
func (ds *DatabaseService) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return ds.getAdmin(ctx, "username = ?", username)
}

// GetAdminByID looks up an admin by primary key.
func (ds *DatabaseService) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	return ds.getAdmin(ctx, "id = ?", id)
}

// GetAdminByResetToken returns the admin holding token if it expires after now.
// Expiries are compared in UTC; SQLite compares the stored text lexically.
func (ds *DatabaseService) GetAdminByResetToken(ctx context.Context, token string, now time.Time) (*models.Admin, error) {
	return ds.getAdmin(ctx, "reset_token = ? AND reset_token_expiry > ?", token, now.UTC())
}

// CreateAdminIfMissing inserts an admin unless the username already exists.
// It reports whether a row was created.
func (ds *DatabaseService) CreateAdminIfMissing(ctx context.Context, username, passwordHash string) (bool, error) {
	_, err := ds.GetAdminByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	_, err = ds.DB.ExecContext(ctx, ds.DB.Rebind("INSERT INTO admins (id, username, password) VALUES (?, ?, ?)"),
		uuid.New().String(), username, passwordHash)
	if err != nil {
		return false, fmt.Errorf("insert admin: %w", err)
	}
	return true, nil
}

// SetResetToken stores a reset token, replacing any previous one.
func (ds *DatabaseService) SetResetToken(ctx context.Context, adminID, token string, expiry time.Time) error {
	res, err := ds.DB.ExecContext(ctx, ds.DB.Rebind("UPDATE admins SET reset_token = ?, reset_token_expiry = ? WHERE id = ?"),
		token, expiry.UTC(), adminID)
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return rowsAffected(res)
}

// ResetPassword stores a new hash and clears the reset token. The update only
// applies while the admin still holds token, so a token is consumed once.
func (ds *DatabaseService) ResetPassword(ctx context.Context, adminID, token, passwordHash string) error {
	res, err := ds.DB.ExecContext(ctx, ds.DB.Rebind(`
		UPDATE admins SET password = ?, reset_token = NULL, reset_token_expiry = NULL
		WHERE id = ? AND reset_token = ?`),
		passwordHash, adminID, token)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return rowsAffected(res)
}
