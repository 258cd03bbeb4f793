package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dvc-go/internal/database/sqlc"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:", fixedClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if _, err := db.db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func insertTestRepository(t *testing.T, q sqlc.Querier, name string) int64 {
	t.Helper()
	id, err := q.InsertRepository(context.Background(), sqlc.InsertRepositoryParams{
		Name:           name,
		RootExternalID: "root",
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("InsertRepository() error = %v", err)
	}
	return id
}

func TestSQLiteDatabase_Tx(t *testing.T) {
	t.Run("commits when the callback succeeds", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		var id int64
		err := db.Tx(ctx, func(q sqlc.Querier) error {
			id = insertTestRepository(t, q, "docs")
			return nil
		})
		if err != nil {
			t.Fatalf("Tx() error = %v", err)
		}

		repo, err := db.Queries().GetRepositoryByID(ctx, id)
		if err != nil {
			t.Fatalf("GetRepositoryByID() error = %v", err)
		}
		if repo.Name != "docs" {
			t.Errorf("Name = %q, want docs", repo.Name)
		}
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()
		boom := errors.New("boom")

		err := db.Tx(ctx, func(q sqlc.Querier) error {
			insertTestRepository(t, q, "docs")
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Tx() error = %v, want %v", err, boom)
		}

		_, err = db.Queries().GetRepositoryByName(ctx, "docs")
		if !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("GetRepositoryByName() error = %v, want sql.ErrNoRows", err)
		}
	})

	t.Run("stays usable after a constraint failure", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		err := db.Tx(ctx, func(q sqlc.Querier) error {
			insertTestRepository(t, q, "docs")
			_, err := q.InsertRepository(ctx, sqlc.InsertRepositoryParams{
				Name: "docs", RootExternalID: "root", CreatedAt: time.Now().UTC(),
			})
			if !db.IsUniqueViolation(err) {
				t.Errorf("IsUniqueViolation(%v) = false, want true", err)
			}
			_, err = q.GetRepositoryByName(ctx, "docs")
			return err
		})
		if err != nil {
			t.Fatalf("Tx() error = %v", err)
		}
	})
}

func TestSQLiteDatabase_IsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	q := db.Queries()

	repoID := insertTestRepository(t, q, "docs")
	branchID, err := q.InsertBranch(ctx, sqlc.InsertBranchParams{
		RepositoryID: repoID, Name: "main", CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("InsertBranch() error = %v", err)
	}

	tests := []struct {
		name string
		run  func() error
		want bool
	}{
		{
			name: "duplicate branch name",
			run: func() error {
				_, err := q.InsertBranch(ctx, sqlc.InsertBranchParams{
					RepositoryID: repoID, Name: "main", CreatedAt: time.Now().UTC(),
				})
				return err
			},
			want: true,
		},
		{
			name: "second published root commit",
			run: func() error {
				for i := 0; i < 2; i++ {
					id, err := q.InsertCommit(ctx, sqlc.InsertCommitParams{
						BranchID: branchID, Author: "ana", CreatedAt: time.Now().UTC(),
					})
					if err != nil {
						return err
					}
					_, err = q.PublishCommit(ctx, sqlc.PublishCommitParams{
						BranchID:    branchID,
						Author:      "ana",
						Title:       "root",
						PublishedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
						ID:          id,
					})
					if err != nil {
						return err
					}
				}
				return nil
			},
			want: true,
		},
		{
			name: "foreign key failure",
			run: func() error {
				_, err := q.InsertFile(ctx, sqlc.InsertFileParams{
					RepositoryID: 999, ExternalID: "x", CreatedAt: time.Now().UTC(),
				})
				return err
			},
			want: false,
		},
		{
			name: "plain error",
			run:  func() error { return errors.New("nope") },
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := db.IsUniqueViolation(err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestSQLiteDatabase_Operations(t *testing.T) {
	db := newTestDB(t)

	maxID, err := db.MaxOperationID()
	if err != nil {
		t.Fatalf("MaxOperationID() error = %v", err)
	}
	if maxID != 0 {
		t.Errorf("MaxOperationID() = %d, want 0", maxID)
	}

	op, err := db.CreateOperation("publish", "commit=3")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if op.Status != "running" {
		t.Errorf("Status = %q, want running", op.Status)
	}
	if op.FinishedAt.Valid {
		t.Error("FinishedAt should not be set on a running operation")
	}

	if err := db.FinishOperation(op.ID, "success"); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}

	ops, err := db.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("ListOperations() returned %d, want 1", len(ops))
	}
	if ops[0].Status != "success" || !ops[0].FinishedAt.Valid {
		t.Errorf("operation = %+v, want finished with success", ops[0])
	}
	if ops[0].Parameters != "commit=3" {
		t.Errorf("Parameters = %q, want commit=3", ops[0].Parameters)
	}
}

func TestSQLiteDatabase_BackupTo(t *testing.T) {
	db := newTestDB(t)
	insertTestRepository(t, db.Queries(), "docs")

	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := db.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	copyDB, err := NewSQLiteDatabase(dest, nil)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer copyDB.Close()

	repo, err := copyDB.Queries().GetRepositoryByName(context.Background(), "docs")
	if err != nil {
		t.Fatalf("GetRepositoryByName() on backup error = %v", err)
	}
	if repo.RootExternalID != "root" {
		t.Errorf("RootExternalID = %q, want root", repo.RootExternalID)
	}
}
