package dvc_test

import (
	"errors"
	"io"
	"testing"

	"dvc-go/internal/dvc"
)

func TestError(t *testing.T) {
	t.Run("formats entity, field and message", func(t *testing.T) {
		err := &dvc.Error{Kind: dvc.ErrInvalid, Entity: "commit", Field: "title", Message: "can't be blank"}
		if got := err.Error(); got != "commit title: can't be blank" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("falls back to the kind", func(t *testing.T) {
		err := &dvc.Error{Kind: dvc.ErrConflict, Entity: "commit"}
		if got := err.Error(); got != "commit: conflict" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("matches kind and cause", func(t *testing.T) {
		err := &dvc.Error{Kind: dvc.ErrUnavailable, Entity: "archive", Err: io.ErrUnexpectedEOF}
		if !errors.Is(err, dvc.ErrUnavailable) {
			t.Error("errors.Is(err, ErrUnavailable) = false")
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Error("errors.Is(err, io.ErrUnexpectedEOF) = false")
		}
		if errors.Is(err, dvc.ErrConflict) {
			t.Error("errors.Is(err, ErrConflict) = true")
		}
	})
}
