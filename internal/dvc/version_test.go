package dvc_test

import (
	"bytes"
	"testing"

	"dvc-go/internal/dvc"
	"dvc-go/internal/testutil"
)

func TestDVCService_Materialize(t *testing.T) {
	setup := func(t *testing.T) (*fixture, dvc.VersionAttrs) {
		t.Helper()
		f := newFixture(t)
		f.Drive.AddFile("a", "a.txt", testutil.TestRootID, "one")
		entry := f.pull(t, "a")
		v, err := f.Service.GetVersion(f.ctx, entry.CurrentVersionID.Int64)
		if err != nil {
			t.Fatalf("GetVersion() error = %v", err)
		}
		return f, dvc.AttrsOf(v)
	}

	t.Run("same identity returns the same version", func(t *testing.T) {
		f, attrs := setup(t)
		first, err := f.Service.Materialize(f.ctx, attrs)
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		second, err := f.Service.Materialize(f.ctx, attrs)
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("Materialize() ids = %d, %d; want equal", first.ID, second.ID)
		}
		versions, _ := f.Service.FileVersions(f.ctx, attrs.FileID)
		if len(versions) != 1 {
			t.Errorf("FileVersions() = %d versions, want 1", len(versions))
		}
	})

	t.Run("different name mints a new version", func(t *testing.T) {
		f, attrs := setup(t)
		attrs.Name = "b.txt"
		v, err := f.Service.Materialize(f.ctx, attrs)
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		versions, _ := f.Service.FileVersions(f.ctx, attrs.FileID)
		if len(versions) != 2 || versions[0].ID != v.ID {
			t.Errorf("FileVersions() = %v, want the new version first of 2", versionIDs(versions))
		}
	})

	t.Run("thumbnail merges onto the existing row", func(t *testing.T) {
		f, attrs := setup(t)
		original, _ := f.Service.Materialize(f.ctx, attrs)

		attrs.Thumbnail = []byte("png")
		merged, err := f.Service.Materialize(f.ctx, attrs)
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		if merged.ID != original.ID {
			t.Errorf("thumbnail change minted version %d, want %d", merged.ID, original.ID)
		}
		if !bytes.Equal(merged.Thumbnail, []byte("png")) {
			t.Errorf("Thumbnail = %q, want png", merged.Thumbnail)
		}

		attrs.Thumbnail = nil
		kept, _ := f.Service.Materialize(f.ctx, attrs)
		if !bytes.Equal(kept.Thumbnail, []byte("png")) {
			t.Errorf("nil thumbnail cleared the stored one: %q", kept.Thumbnail)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		f, attrs := setup(t)
		attrs.Name = ""
		_, err := f.Service.Materialize(f.ctx, attrs)
		assertKind(t, err, dvc.ErrInvalid)
	})

	t.Run("rejects self parent", func(t *testing.T) {
		f, attrs := setup(t)
		attrs.ParentID = &attrs.FileID
		_, err := f.Service.Materialize(f.ctx, attrs)
		assertKind(t, err, dvc.ErrInvalid)
	})
}

func TestDVCService_ResolveContent(t *testing.T) {
	t.Run("fetches each revision once", func(t *testing.T) {
		f := newFixture(t)
		rev := f.Drive.AddFile("a", "a.txt", testutil.TestRootID, "text")

		first, err := f.Service.ResolveContent(f.ctx, f.repo.ID, "a", rev)
		if err != nil {
			t.Fatalf("ResolveContent() error = %v", err)
		}
		second, err := f.Service.ResolveContent(f.ctx, f.repo.ID, "a", rev)
		if err != nil {
			t.Fatalf("ResolveContent() error = %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("content ids = %d, %d; want equal", first.ID, second.ID)
		}
		if n := f.Drive.ContentFetches(); n != 1 {
			t.Errorf("ContentFetches() = %d, want 1", n)
		}
		if first.Checksum != dvc.Checksum("text") {
			t.Errorf("Checksum = %s, want %s", first.Checksum, dvc.Checksum("text"))
		}
	})

	t.Run("identical text shares one content", func(t *testing.T) {
		f := newFixture(t)
		revA := f.Drive.AddFile("a", "a.txt", testutil.TestRootID, "same")
		revB := f.Drive.AddFile("b", "b.txt", testutil.TestRootID, "same")

		a, err := f.Service.ResolveContent(f.ctx, f.repo.ID, "a", revA)
		if err != nil {
			t.Fatalf("ResolveContent() error = %v", err)
		}
		b, err := f.Service.ResolveContent(f.ctx, f.repo.ID, "b", revB)
		if err != nil {
			t.Fatalf("ResolveContent() error = %v", err)
		}
		if a.ID != b.ID {
			t.Errorf("content ids = %d, %d; want shared", a.ID, b.ID)
		}
	})

	t.Run("drive failure is unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.Drive.Fail(errDrive)
		_, err := f.Service.ResolveContent(f.ctx, f.repo.ID, "a", "r1")
		assertKind(t, err, dvc.ErrUnavailable)
	})
}
