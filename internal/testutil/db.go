package testutil

import (
	"database/sql"
	"testing"

	"gallery/internal/db"
	"gallery/internal/db/sqlc"
	gallerysql "gallery/sql"
)

// SetupTestDB creates a temporary in-memory SQLite database with migrations applied.
// Returns the database connection and a cleanup function that should be deferred.
func SetupTestDB(t *testing.T) (*sql.DB, *sqlc.Queries, func()) {
	t.Helper()

	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.ApplyMigrations(database, gallerysql.MigrationsFS, "schema"); err != nil {
		database.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	var count int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('images', 'image_history')").Scan(&count)
	if err != nil {
		database.Close()
		t.Fatalf("failed to verify tables: %v", err)
	}
	if count != 2 {
		database.Close()
		t.Fatalf("expected 2 tables, found %d", count)
	}

	cleanup := func() {
		database.Close()
	}
	return database, sqlc.New(database), cleanup
}
