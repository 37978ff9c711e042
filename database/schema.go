// fixit/database/schema.go
package database

// Base schema per dialect. Statements run one at a time so that every
// driver accepts them without multi-statement support.
var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS admins (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	reset_token TEXT,
	reset_token_expiry DATETIME
)`,
		`CREATE TABLE IF NOT EXISTS incidents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	location TEXT NOT NULL,
	image_url TEXT NOT NULL,
	report_date DATETIME NOT NULL,
	close_date DATETIME,
	status TEXT NOT NULL DEFAULT 'OPEN',
	wants_contact BOOLEAN NOT NULL DEFAULT 0,
	phone_number TEXT
)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at DATETIME NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_status_report ON incidents(status, report_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_close_date ON incidents(close_date)`,
		`CREATE INDEX IF NOT EXISTS idx_admins_reset_token ON admins(reset_token)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS admins (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	reset_token TEXT,
	reset_token_expiry TIMESTAMPTZ
)`,
		`CREATE TABLE IF NOT EXISTS incidents (
	id TEXT PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	description TEXT NOT NULL,
	location TEXT NOT NULL,
	image_url TEXT NOT NULL,
	report_date TIMESTAMPTZ NOT NULL,
	close_date TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'OPEN',
	wants_contact BOOLEAN NOT NULL DEFAULT FALSE,
	phone_number TEXT
)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_status_report ON incidents(status, report_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_close_date ON incidents(close_date)`,
		`CREATE INDEX IF NOT EXISTS idx_admins_reset_token ON admins(reset_token)`,
	},
	// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes live in the table definitions.
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS schema_migrations (
	version INT PRIMARY KEY,
	applied_at DATETIME(6) NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS admins (
	id VARCHAR(36) PRIMARY KEY,
	username VARCHAR(255) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	reset_token VARCHAR(128),
	reset_token_expiry DATETIME(6) NULL,
	INDEX idx_admins_reset_token (reset_token)
)`,
		`CREATE TABLE IF NOT EXISTS incidents (
	id VARCHAR(36) PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	description TEXT NOT NULL,
	location TEXT NOT NULL,
	image_url TEXT NOT NULL,
	report_date DATETIME(6) NOT NULL,
	close_date DATETIME(6) NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'OPEN',
	wants_contact BOOLEAN NOT NULL DEFAULT FALSE,
	phone_number VARCHAR(64),
	INDEX idx_incidents_status_report (status, report_date),
	INDEX idx_incidents_close_date (close_date)
)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
	id VARCHAR(36) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	message TEXT NOT NULL,
	created_at DATETIME(6) NOT NULL
)`,
	},
}
