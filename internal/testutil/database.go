package testutil

import (
	"testing"

	"dvc-go/internal/database"
	"dvc-go/internal/dvc"
)

// NewTestDatabase returns an in-memory store loaded with the generated
// schema and closed at test cleanup. The schema is applied directly, so
// tests skip golang-migrate bookkeeping.
func NewTestDatabase(t *testing.T, clock dvc.Clock) *database.SQLiteDatabase {
	t.Helper()

	conn, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if _, err := conn.Exec(database.Schema); err != nil {
		conn.Close()
		t.Fatalf("loading schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(conn, ":memory:", clock)
	t.Cleanup(func() { db.Close() })
	return db
}
