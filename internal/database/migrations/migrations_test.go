package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{
		"repositories", "archives", "branches", "files", "contents", "remote_contents",
		"versions", "working_tree_entries", "commits", "committed_files", "file_diffs",
		"file_backups", "operations", "schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	// Error should mention needing migration
	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestReadStatus(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	latest, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if latest == 0 {
		t.Fatal("LatestVersion() = 0, want at least one migration")
	}

	st, err := ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if st.Current != 0 || st.Latest != latest || st.Pending() != latest {
		t.Errorf("ReadStatus() before migrating = %+v", st)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	st, err = ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if st.Current != latest || st.Dirty || st.Pending() != 0 {
		t.Errorf("ReadStatus() after migrating = %+v", st)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// A file pointing at a non-existent repository must be rejected
	_, err := db.Exec(`
		INSERT INTO files (repository_id, external_id, created_at)
		VALUES (42, 'ext-1', datetime('now'))
	`)

	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_ContentChecksumUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	repoID := insertRepository(t, db)

	_, err := db.Exec("INSERT INTO contents (repository_id, checksum, plain_text, created_at) VALUES (?, 'abc', 'hello', datetime('now'))", repoID)
	if err != nil {
		t.Fatalf("Failed to insert content: %v", err)
	}

	_, err = db.Exec("INSERT INTO contents (repository_id, checksum, plain_text, created_at) VALUES (?, 'abc', 'hello', datetime('now'))", repoID)
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate checksum, but insert succeeded")
	}
}

func TestSchema_VersionIdentityUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	repoID := insertRepository(t, db)

	res, err := db.Exec("INSERT INTO files (repository_id, external_id, created_at) VALUES (?, 'ext-1', datetime('now'))", repoID)
	if err != nil {
		t.Fatalf("Failed to insert file: %v", err)
	}
	fileID, _ := res.LastInsertId()

	// Folders have no content and root-level files no parent; NULLs must still dedup.
	insert := "INSERT INTO versions (file_id, name, content_id, is_folder, parent_id, created_at) VALUES (?, 'Docs', NULL, 1, NULL, datetime('now'))"
	if _, err := db.Exec(insert, fileID); err != nil {
		t.Fatalf("Failed to insert version: %v", err)
	}
	if _, err := db.Exec(insert, fileID); err == nil {
		t.Error("Expected unique constraint violation for duplicate version identity, but insert succeeded")
	}

	// Identity columns are immutable, supplemental ones are not.
	if _, err := db.Exec("UPDATE versions SET name = 'Other' WHERE file_id = ?", fileID); err == nil {
		t.Error("Expected identity update to be rejected, but it succeeded")
	}
	if _, err := db.Exec("UPDATE versions SET thumbnail = x'00' WHERE file_id = ?", fileID); err != nil {
		t.Errorf("Supplemental update failed: %v", err)
	}
}

func TestSchema_OnePublishedRootPerBranch(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	repoID := insertRepository(t, db)

	res, err := db.Exec("INSERT INTO branches (repository_id, name, created_at) VALUES (?, 'main', datetime('now'))", repoID)
	if err != nil {
		t.Fatalf("Failed to insert branch: %v", err)
	}
	branchID, _ := res.LastInsertId()

	insert := "INSERT INTO commits (branch_id, author, title, is_published, created_at) VALUES (?, 'ana', 'first', ?, datetime('now'))"
	if _, err := db.Exec(insert, branchID, 1); err != nil {
		t.Fatalf("Failed to insert published root: %v", err)
	}
	// Drafts are free to share a parent
	if _, err := db.Exec(insert, branchID, 0); err != nil {
		t.Fatalf("Failed to insert draft root: %v", err)
	}
	if _, err := db.Exec(insert, branchID, 1); err == nil {
		t.Error("Expected second published root to be rejected, but insert succeeded")
	}

	if _, err := db.Exec("UPDATE commits SET title = 'changed' WHERE is_published = 1"); err == nil {
		t.Error("Expected update of a published commit to be rejected, but it succeeded")
	}
}

func insertRepository(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO repositories (name, root_external_id, created_at) VALUES ('docs', 'root', datetime('now'))")
	if err != nil {
		t.Fatalf("Failed to insert repository: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId() failed: %v", err)
	}
	return id
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
