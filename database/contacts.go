// fixit/database/contacts.go
package database

import (
	"context"
	"fmt"

	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/utils"
	"github.com/google/uuid"
)

// CreateContactMessage stores a message from the public contact form.
func (ds *DatabaseService) CreateContactMessage(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: utils.GetSQLTime(),
	}
	_, err := ds.DB.NamedExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, message, created_at)
		VALUES (:id, :name, :email, :message, :created_at)`, msg)
	if err != nil {
		return nil, fmt.Errorf("insert contact message: %w", err)
	}
	return msg, nil
}
