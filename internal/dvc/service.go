package dvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dvc-go/internal/database/sqlc"
)

// DVCService is the orchestration layer over the version store, working
// trees, commit graph, diff engine and backup ledger.
type DVCService struct {
	database  Database
	archive   Archive
	adapter   SyncAdapter
	encryptor Encryptor
	codec     *IDCodec
	notifier  Notifier
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewDVCService creates a new DVCService with the provided dependencies.
// encryptor may be nil, in which case archived payloads are only compressed.
func NewDVCService(database Database, archive Archive, adapter SyncAdapter, encryptor Encryptor, codec *IDCodec, logger Logger, clock Clock, idgen IDGenerator) *DVCService {
	return &DVCService{
		database:  database,
		archive:   archive,
		adapter:   adapter,
		encryptor: encryptor,
		codec:     codec,
		notifier:  NopNotifier{},
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// SetNotifier replaces the notifier called after each publish.
func (s *DVCService) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	s.notifier = n
}

// Codec returns the public id codec.
func (s *DVCService) Codec() *IDCodec {
	return s.codec
}

// GetHistory returns the most recent CLI operations.
func (s *DVCService) GetHistory(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *DVCService) now() time.Time {
	return s.clock.Now().UTC()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func ptrID(id sql.NullInt64) *int64 {
	if !id.Valid {
		return nil
	}
	v := id.Int64
	return &v
}

func validID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

// recountUncaptured refreshes the branch's denormalized change counter.
func recountUncaptured(ctx context.Context, q sqlc.Querier, branchID int64) error {
	count, err := q.CountUncapturedChanges(ctx, branchID)
	if err != nil {
		return fmt.Errorf("counting uncaptured changes: %w", err)
	}
	err = q.UpdateBranchUncapturedCount(ctx, sqlc.UpdateBranchUncapturedCountParams{
		UncapturedChangesCount: count,
		ID:                     branchID,
	})
	if err != nil {
		return fmt.Errorf("updating uncaptured changes count: %w", err)
	}
	return nil
}

func validTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}
