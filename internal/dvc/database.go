package dvc

import (
	"context"

	"dvc-go/internal/database/sqlc"
)

// Database provides the relational store behind the service.
// Invariants such as version identity, one published child per commit and
// one backup per version are enforced by store constraints; the service
// relies on IsUniqueViolation to tell those apart from other failures.
type Database interface {
	// Queries returns the non-transactional query set.
	Queries() sqlc.Querier

	// Tx runs fn in a transaction, committing only when fn returns nil.
	// Queries must not be used while fn runs.
	Tx(ctx context.Context, fn func(q sqlc.Querier) error) error

	// IsUniqueViolation reports whether err is a uniqueness constraint failure.
	IsUniqueViolation(err error) bool

	// Operation tracking

	// CreateOperation records the start of a CLI operation.
	CreateOperation(operation string, parameters string) (*sqlc.Operation, error)

	// FinishOperation records the end of an operation with its final status.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*sqlc.Operation, error)

	// MaxOperationID returns the highest operation id, or 0 if none exist.
	MaxOperationID() (int64, error)

	// Close closes the database connection.
	Close() error
}
