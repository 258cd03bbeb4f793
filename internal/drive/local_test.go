package drive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dvc-go/internal/dvc"
)

// newTestTree builds:
//
//	notes.txt
//	docs/plan.md
//	docs/.git/HEAD
//	scratch.tmp
//	.dvcignore   (*.tmp)
func newTestTree(t *testing.T) (*LocalDrive, string) {
	t.Helper()
	root := t.TempDir()
	write := func(rel, text string) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(full, []byte(text), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	write("notes.txt", "hello")
	write("docs/plan.md", "# plan")
	write("docs/.git/HEAD", "ref")
	write("scratch.tmp", "junk")
	write(IgnoreFileName, "*.tmp\n")

	d, err := NewLocalDrive(root, []string{".git"})
	if err != nil {
		t.Fatalf("NewLocalDrive() error = %v", err)
	}
	return d, root
}

func TestLocalDrive_Children(t *testing.T) {
	d, _ := newTestTree(t)
	ctx := context.Background()

	got, err := d.Children(ctx, RootID)
	if err != nil {
		t.Fatalf("Children() error = %v", err)
	}
	want := []string{"docs", "notes.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Children(root) = %v, want %v", got, want)
	}

	got, err = d.Children(ctx, "docs")
	if err != nil {
		t.Fatalf("Children() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"docs/plan.md"}) {
		t.Errorf("Children(docs) = %v, want [docs/plan.md]", got)
	}
}

func TestLocalDrive_Fetch(t *testing.T) {
	d, root := newTestTree(t)
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		got, err := d.Fetch(ctx, "docs/plan.md")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got.Name != "plan.md" || got.IsFolder || got.Deleted {
			t.Errorf("Fetch() = %+v", got)
		}
		if got.ContainerExternalID != "docs" {
			t.Errorf("ContainerExternalID = %q, want %q", got.ContainerExternalID, "docs")
		}
		if got.ContentRevision != revisionOf([]byte("# plan")) {
			t.Errorf("ContentRevision = %q, want blake3 of the bytes", got.ContentRevision)
		}
	})

	t.Run("top-level file lives in root", func(t *testing.T) {
		got, err := d.Fetch(ctx, "notes.txt")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got.ContainerExternalID != RootID {
			t.Errorf("ContainerExternalID = %q, want %q", got.ContainerExternalID, RootID)
		}
	})

	t.Run("folder", func(t *testing.T) {
		got, err := d.Fetch(ctx, "docs")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !got.IsFolder || got.ContentRevision != "" {
			t.Errorf("Fetch() = %+v, want folder without revision", got)
		}
	})

	t.Run("missing file is deleted", func(t *testing.T) {
		got, err := d.Fetch(ctx, "gone.txt")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !got.Deleted {
			t.Error("Fetch() Deleted = false, want true")
		}
	})

	t.Run("ignored file is deleted", func(t *testing.T) {
		got, err := d.Fetch(ctx, "scratch.tmp")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !got.Deleted {
			t.Error("Fetch() Deleted = false, want true")
		}
	})

	t.Run("binary file has no content revision", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(root, "logo.png"), []byte{0x89, 0xff, 0x00}, 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, err := d.Fetch(ctx, "logo.png")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got.Deleted || got.IsFolder || got.ContentRevision != "" {
			t.Errorf("Fetch() = %+v, want a file without revision", got)
		}
	})

	t.Run("rewritten file gets a new revision", func(t *testing.T) {
		before, _ := d.Fetch(ctx, "notes.txt")
		if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello again"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		after, _ := d.Fetch(ctx, "notes.txt")
		if before.ContentRevision == after.ContentRevision {
			t.Error("revision unchanged after rewrite")
		}
	})
}

func TestLocalDrive_FetchContent(t *testing.T) {
	d, root := newTestTree(t)
	ctx := context.Background()

	remote, _ := d.Fetch(ctx, "docs/plan.md")
	text, err := d.FetchContent(ctx, "docs/plan.md", remote.ContentRevision)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if text != "# plan" {
		t.Errorf("FetchContent() = %q, want %q", text, "# plan")
	}

	if _, err := d.FetchContent(ctx, "docs/plan.md", "stale"); err == nil {
		t.Error("FetchContent() with stale revision expected error")
	}

	bin := []byte{0xff, 0xfe, 0x00}
	if err := os.WriteFile(filepath.Join(root, "blob.bin"), bin, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := d.FetchContent(ctx, "blob.bin", revisionOf(bin)); !errors.Is(err, dvc.ErrInvalid) {
		t.Errorf("FetchContent() of binary file error = %v, want invalid", err)
	}
}

func TestLocalDrive_RejectsEscapingIDs(t *testing.T) {
	d, _ := newTestTree(t)
	for _, id := range []string{"", "../etc", "/etc/passwd", "docs/../../x", "docs//plan.md"} {
		t.Run(id, func(t *testing.T) {
			if _, err := d.Fetch(context.Background(), id); err == nil {
				t.Errorf("Fetch(%q) expected error", id)
			}
		})
	}
}

func TestNewLocalDrive_RootMustBeDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := NewLocalDrive(file, nil); err == nil {
		t.Error("NewLocalDrive() on a file expected error")
	}
}
