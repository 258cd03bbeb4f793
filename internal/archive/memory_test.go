package archive

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"dvc-go/internal/dvc"
)

func TestMemoryArchive_PutAndGet(t *testing.T) {
	ctx := context.Background()
	archive := NewMemoryArchive("test-archive")
	container, err := archive.CreateContainer(ctx, "dvc-repo")
	if err != nil {
		t.Fatalf("CreateContainer() error = %v", err)
	}

	tests := []struct {
		name    string
		object  string
		payload string
	}{
		{name: "store and retrieve payload", object: "a", payload: "hello world"},
		{name: "store empty payload", object: "empty", payload: ""},
		{name: "store large payload", object: "large", payload: strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location, err := archive.Put(ctx, container, tt.object, strings.NewReader(tt.payload), int64(len(tt.payload)))
			if err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if location != "dvc-repo/"+tt.object {
				t.Errorf("Put() location = %q, want %q", location, "dvc-repo/"+tt.object)
			}

			var buf bytes.Buffer
			if err := archive.Get(ctx, location, &buf); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got := buf.String(); got != tt.payload {
				t.Errorf("Get() = %q, want %q", got, tt.payload)
			}
		})
	}
}

func TestMemoryArchive_CreateContainerIdempotent(t *testing.T) {
	ctx := context.Background()
	archive := NewMemoryArchive("test-archive")

	for i := 0; i < 2; i++ {
		got, err := archive.CreateContainer(ctx, "dvc-repo")
		if err != nil {
			t.Fatalf("CreateContainer() iteration %d error: %v", i+1, err)
		}
		if got != "dvc-repo" {
			t.Errorf("CreateContainer() = %q, want %q", got, "dvc-repo")
		}
	}
}

func TestMemoryArchive_PutErrors(t *testing.T) {
	ctx := context.Background()
	archive := NewMemoryArchive("test-archive")

	if _, err := archive.Put(ctx, "missing", "a", strings.NewReader("x"), 1); err == nil {
		t.Error("Put() into missing container expected error")
	}

	archive.CreateContainer(ctx, "c")
	if _, err := archive.Put(ctx, "c", "a", strings.NewReader("abc"), 10); err == nil {
		t.Error("Put() with size mismatch expected error")
	}
	if archive.PutCount() != 0 {
		t.Errorf("PutCount() = %d, want 0", archive.PutCount())
	}
}

func TestMemoryArchive_GetMissing(t *testing.T) {
	archive := NewMemoryArchive("test-archive")
	var buf bytes.Buffer
	if err := archive.Get(context.Background(), "c/none", &buf); err == nil {
		t.Fatal("Get() expected error for missing object")
	}
}

func TestMemoryArchive_Share(t *testing.T) {
	ctx := context.Background()
	archive := NewMemoryArchive("test-archive")
	archive.CreateContainer(ctx, "c")

	if err := archive.Share(ctx, "c", "ana@example.com", dvc.RoleReader); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if err := archive.Share(ctx, "c", "ana@example.com", dvc.RoleWriter); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	grants := archive.Grants("c")
	if grants["ana@example.com"] != dvc.RoleWriter {
		t.Errorf("grant = %q, want %q", grants["ana@example.com"], dvc.RoleWriter)
	}

	if err := archive.Share(ctx, "nowhere", "ana@example.com", dvc.RoleReader); err == nil {
		t.Error("Share() on unknown location expected error")
	}
}
