// fixit/database/migrations.go
package database

// migration represents a single database schema migration.
// Queries must be valid on every supported dialect.
type migration struct {
	Version uint
	Queries []string
}

// allMigrations holds all schema changes in order.
var allMigrations = []migration{
	{
		Version: 1,
		Queries: []string{
			// Phone numbers are only kept for reporters who asked to be contacted.
			`UPDATE incidents SET phone_number = NULL WHERE NOT wants_contact AND phone_number IS NOT NULL`,
		},
	},
	// Future migrations will be added here, e.g.:
	// {
	// 	Version: 2,
	// 	Queries: []string{`ALTER TABLE incidents ADD COLUMN category TEXT`},
	// },
}
