package dvc

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is(err, ErrConflict) and friends to classify a
// failure returned by the service.
var (
	// ErrConflict means another change happened first. The caller should
	// review the latest state instead of retrying.
	ErrConflict = errors.New("conflict")

	// ErrInvalid means the request violates an invariant and nothing was written.
	ErrInvalid = errors.New("invalid")

	// ErrNotFound means an identity lookup missed.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means an external dependency failed. Nothing was
	// written and the operation is safe to retry.
	ErrUnavailable = errors.New("unavailable")
)

// Error describes a rejected operation, attributable to an entity and,
// where it applies, a single field.
type Error struct {
	Kind    error
	Entity  string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	subject := e.Entity
	if e.Field != "" {
		subject += " " + e.Field
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", subject, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", subject, msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func conflictError(entity, message string) error {
	return &Error{Kind: ErrConflict, Entity: entity, Message: message}
}

func invalidError(entity, field, message string) error {
	return &Error{Kind: ErrInvalid, Entity: entity, Field: field, Message: message}
}

func notFoundError(entity string, key any) error {
	return &Error{Kind: ErrNotFound, Entity: entity, Message: fmt.Sprintf("%v not found", key)}
}

func unavailableError(entity string, err error) error {
	return &Error{Kind: ErrUnavailable, Entity: entity, Message: "temporarily unavailable, try again", Err: err}
}

// adapterError classifies a drive failure. The drive reports permanent
// problems with a file as ErrInvalid; anything else is retryable.
func adapterError(entity string, err error) error {
	if errors.Is(err, ErrInvalid) {
		return fmt.Errorf("%s: %w", entity, err)
	}
	return unavailableError(entity, err)
}
