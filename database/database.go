// fixit/database/database.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AB-App-Dev/FixIt/utils"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTitleTooLong is returned when an incident title exceeds the limit.
	ErrTitleTooLong = errors.New("title too long")
)

// DatabaseService is the central struct for all database operations.
type DatabaseService struct {
	DB     *sqlx.DB
	logger *slog.Logger
	driver string
}

// InitDB connects to the database, creates the schema and runs migrations.
func InitDB(driver, dataSourceName string, logger *slog.Logger) (*DatabaseService, error) {
	stmts, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	// Run the base schema to ensure all tables exist.
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute base schema: %w", err)
		}
	}

	// Run versioned migrations
	if err := runMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	logger.Info("Database initialized", "driver", driver)

	return &DatabaseService{
		DB:     db,
		logger: logger,
		driver: driver,
	}, nil
}

// Close releases the connection pool.
func (ds *DatabaseService) Close() error {
	return ds.DB.Close()
}

// Ping checks that the database is reachable.
func (ds *DatabaseService) Ping(ctx context.Context) error {
	return ds.DB.PingContext(ctx)
}

// Driver returns the database/sql driver name in use.
func (ds *DatabaseService) Driver() string {
	return ds.driver
}

// runMigrations applies all un-applied migrations.
func runMigrations(db *sqlx.DB, logger *slog.Logger) error {
	var latestVersion uint
	err := db.QueryRow("SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&latestVersion)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("could not get db version: %w", err)
	}

	logger.Info("Current database schema version", "version", latestVersion)

	for _, m := range allMigrations {
		if m.Version <= latestVersion {
			continue
		}
		logger.Info("Applying migration", "version", m.Version)
		tx, err := db.Beginx()
		if err != nil {
			return err
		}

		for _, q := range m.Queries {
			if _, err := tx.Exec(q); err != nil {
				if rerr := tx.Rollback(); rerr != nil {
					logger.Error("Failed to rollback migration", "version", m.Version, "error", rerr)
				}
				return fmt.Errorf("failed to apply migration v%d: %w", m.Version, err)
			}
		}
		if _, err := tx.Exec(tx.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"), m.Version, utils.GetSQLTime()); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				logger.Error("Failed to rollback migration record", "version", m.Version, "error", rerr)
			}
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration v%d: %w", m.Version, err)
		}
		logger.Info("Successfully applied migration", "version", m.Version)
	}
	return nil
}

// yearExpr and monthExpr extract integer calendar parts from a timestamp column.
func (ds *DatabaseService) yearExpr(col string) string {
	switch ds.driver {
	case DriverPostgres:
		return "EXTRACT(YEAR FROM " + col + ")::int"
	case DriverMySQL:
		return "YEAR(" + col + ")"
	default:
		return "CAST(strftime('%Y', " + col + ") AS INTEGER)"
	}
}

func (ds *DatabaseService) monthExpr(col string) string {
	switch ds.driver {
	case DriverPostgres:
		return "EXTRACT(MONTH FROM " + col + ")::int"
	case DriverMySQL:
		return "MONTH(" + col + ")"
	default:
		return "CAST(strftime('%m', " + col + ") AS INTEGER)"
	}
}

// rowsAffected turns a zero-row update into ErrNotFound.
func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
