package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"dvc-go/internal/database/migrations"
	"dvc-go/internal/database/sqlc"
	"dvc-go/internal/dvc"
)

// SQLiteDatabase implements the dvc.Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	clock   dvc.Clock
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
// A nil clock defaults to dvc.RealClock.
func NewSQLiteDatabase(path string, clock dvc.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return NewSQLiteDatabaseFromDB(db, path, clock), nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, path string, clock dvc.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = dvc.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		clock:   clock,
		path:    path,
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes every transaction and keeps a single
	// ":memory:" database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Queries returns the non-transactional query set. It must not be used
// from inside a Tx callback: the pool holds a single connection.
func (s *SQLiteDatabase) Queries() sqlc.Querier {
	return s.queries
}

// Tx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back otherwise.
func (s *SQLiteDatabase) Tx(ctx context.Context, fn func(q sqlc.Querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint, including partial and expression indexes.
func (s *SQLiteDatabase) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*sqlc.Operation, error) {
	ctx := context.Background()
	id, err := s.queries.InsertOperation(ctx, sqlc.InsertOperationParams{
		StartedAt:  s.clock.Now(),
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	op, err := s.queries.GetOperationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	err := s.queries.UpdateOperationFinished(context.Background(), sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: s.clock.Now(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.ListOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	result := make([]*sqlc.Operation, len(ops))
	for i := range ops {
		result[i] = &ops[i]
	}
	return result, nil
}

func (s *SQLiteDatabase) MaxOperationID() (int64, error) {
	id, err := s.queries.GetMaxOperationID(context.Background())
	if err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrationStatus reports the schema version against the embedded migrations.
func (s *SQLiteDatabase) MigrationStatus() (migrations.Status, error) {
	return migrations.ReadStatus(s.db)
}

// Migrate applies any pending migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements dvc.Database interface
var _ dvc.Database = (*SQLiteDatabase)(nil)
