// fixit/models/models.go
package models

import (
	"strings"
	"time"
)

// --- Core Data Models ---

type IncidentStatus string

const (
	StatusOpen   IncidentStatus = "OPEN"
	StatusClosed IncidentStatus = "CLOSED"
)

// ParseStatus maps a query value onto a status. Anything but CLOSED is OPEN.
func ParseStatus(s string) IncidentStatus {
	if IncidentStatus(strings.ToUpper(strings.TrimSpace(s))) == StatusClosed {
		return StatusClosed
	}
	return StatusOpen
}

type Admin struct {
	ID               string     `db:"id"`
	Username         string     `db:"username"`
	Password         string     `db:"password"`
	ResetToken       *string    `db:"reset_token"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry"`
}

type Incident struct {
	ID           string         `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Location     string         `db:"location" json:"location"`
	ImageURL     string         `db:"image_url" json:"imageUrl"`
	ReportDate   time.Time      `db:"report_date" json:"reportDate"`
	CloseDate    *time.Time     `db:"close_date" json:"closeDate"`
	Status       IncidentStatus `db:"status" json:"status"`
	WantsContact bool           `db:"wants_contact" json:"wantsContact"`
	PhoneNumber  *string        `db:"phone_number" json:"phoneNumber"`
}

// IncidentInput holds the citizen-supplied fields of a new incident.
type IncidentInput struct {
	Title        string
	Description  string
	Location     string
	WantsContact bool
	PhoneNumber  string
}

type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// --- Statistics Models ---

// PeriodCount is one row of a grouped count; Period is a month (1-12) or a year.
type PeriodCount struct {
	Period int `db:"period"`
	Count  int `db:"count"`
}

type MonthlyStat struct {
	Month  int `json:"month"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

type YearlyStat struct {
	Year   int `json:"year"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

type CombinedStats struct {
	Monthly []MonthlyStat `json:"monthly"`
	Yearly  []YearlyStat  `json:"yearly"`
}

type MonthCount struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type SessionState struct {
	LoggedIn bool `json:"loggedIn"`
}
