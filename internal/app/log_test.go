package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestDVCHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "version backed up",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tversion backed up\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "entry pulled",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tentry pulled\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "draft created",
			attrs:   []slog.Attr{slog.String("author", "alice"), slog.Int("files", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\tdraft created\tauthor=alice\tfiles=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &dvcHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestDVCHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &dvcHandler{w: &buf, opID: "op-1"}

	// Add pre-set attrs
	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "archive")}).(*dvcHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "put", 0)
	r.AddAttrs(slog.String("key", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=archive") {
		t.Errorf("expected pre-set attr component=archive, got: %q", got)
	}
	if !strings.Contains(got, "key=abc") {
		t.Errorf("expected record attr key=abc, got: %q", got)
	}
}

func TestDVCHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &dvcHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*dvcHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestDVCHandler_Enabled(t *testing.T) {
	tests := []struct {
		min   slog.Level
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, slog.LevelDebug, true},
		{slog.LevelDebug, slog.LevelError, true},
		{slog.LevelWarn, slog.LevelInfo, false},
		{slog.LevelWarn, slog.LevelWarn, true},
	}
	for _, tt := range tests {
		h := &dvcHandler{minLevel: tt.min}
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) with min %v = %v, want %v", tt.level, tt.min, got, tt.want)
		}
	}
}

func TestFanout_RespectsLevels(t *testing.T) {
	var all, warn bytes.Buffer
	logger := slog.New(fanout{
		&dvcHandler{w: &all, opID: "op", minLevel: slog.LevelDebug},
		&dvcHandler{w: &warn, opID: "op", minLevel: slog.LevelWarn},
	})

	logger.Debug("entry pulled", "external_id", "a")
	logger.Warn("notifying publish failed")

	if got := strings.Count(all.String(), "\n"); got != 2 {
		t.Errorf("debug handler got %d lines, want 2", got)
	}
	if strings.Contains(warn.String(), "entry pulled") || !strings.Contains(warn.String(), "notifying publish failed") {
		t.Errorf("warn handler output = %q", warn.String())
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "test-op")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f == nil {
		t.Fatal("newLogger() returned nil file")
	}
}
