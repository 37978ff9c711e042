// fixit/database/incidents.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/utils"
	"github.com/google/uuid"
)

const incidentColumns = "id, title, description, location, image_url, report_date, close_date, status, wants_contact, phone_number"

// CreateIncident stores a new OPEN incident reported now.
func (ds *DatabaseService) CreateIncident(ctx context.Context, in models.IncidentInput, imageURL string) (*models.Incident, error) {
	if utf8.RuneCountInString(in.Title) > config.MaxTitleLen {
		return nil, ErrTitleTooLong
	}

	inc := &models.Incident{
		ID:           uuid.New().String(),
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		ImageURL:     imageURL,
		ReportDate:   utils.GetSQLTime(),
		Status:       models.StatusOpen,
		WantsContact: in.WantsContact,
	}
	if in.WantsContact && in.PhoneNumber != "" {
		phone := in.PhoneNumber
		inc.PhoneNumber = &phone
	}

	_, err := ds.DB.NamedExecContext(ctx, `
		INSERT INTO incidents (id, title, description, location, image_url, report_date, close_date, status, wants_contact, phone_number)
		VALUES (:id, :title, :description, :location, :image_url, :report_date, :close_date, :status, :wants_contact, :phone_number)`, inc)
	if err != nil {
		return nil, fmt.Errorf("insert incident: %w", err)
	}
	return inc, nil
}

// GetIncident fetches one incident by id.
func (ds *DatabaseService) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	var inc models.Incident
	err := ds.DB.GetContext(ctx, &inc, ds.DB.Rebind("SELECT "+incidentColumns+" FROM incidents WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query incident %s: %w", id, err)
	}
	return &inc, nil
}

// CloseIncident marks an incident CLOSED and stamps closeDate. Closing an
// already closed incident stamps closeDate again.
func (ds *DatabaseService) CloseIncident(ctx context.Context, id string) (*models.Incident, error) {
	res, err := ds.DB.ExecContext(ctx, ds.DB.Rebind("UPDATE incidents SET status = ?, close_date = ? WHERE id = ?"),
		models.StatusClosed, utils.GetSQLTime(), id)
	if err != nil {
		return nil, fmt.Errorf("close incident %s: %w", id, err)
	}
	if err := rowsAffected(res); err != nil {
		return nil, err
	}
	return ds.GetIncident(ctx, id)
}

// ListIncidents returns incidents with the given status, newest report first.
func (ds *DatabaseService) ListIncidents(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	incidents := []models.Incident{}
	err := ds.DB.SelectContext(ctx, &incidents,
		ds.DB.Rebind("SELECT "+incidentColumns+" FROM incidents WHERE status = ? ORDER BY report_date DESC"), status)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}
