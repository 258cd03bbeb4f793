package dvc

import (
	"context"

	"dvc-go/internal/database/sqlc"
)

// Notifier receives commit lifecycle events. It is called after the
// publishing transaction commits; a failing notifier never undoes a publish.
type Notifier interface {
	CommitPublished(ctx context.Context, commit *sqlc.Commit) error
}

// NopNotifier ignores every event.
type NopNotifier struct{}

func (NopNotifier) CommitPublished(context.Context, *sqlc.Commit) error { return nil }
