package dvc_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"dvc-go/internal/dvc"
	"dvc-go/internal/encryption"
	"dvc-go/internal/testutil"
)

// failingArchive rejects every upload.
type failingArchive struct {
	dvc.Archive
}

func (failingArchive) Put(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", errors.New("bucket offline")
}

func pulledVersion(t *testing.T, f *fixture, externalID, text string) int64 {
	t.Helper()
	f.Drive.AddFile(externalID, externalID+".txt", testutil.TestRootID, text)
	entry := f.pull(t, externalID)
	return entry.CurrentVersionID.Int64
}

func TestDVCService_Backup(t *testing.T) {
	t.Run("archives a version once", func(t *testing.T) {
		f := newFixture(t)
		versionID := pulledVersion(t, f, "a", "hello")

		first, err := f.Service.Backup(f.ctx, versionID)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if first == nil {
			t.Fatal("Backup() returned nil")
		}
		container := "dvc-" + f.Codec.Encode(f.repo.ID)
		if !strings.HasPrefix(first.ExternalLocation, container+"/") {
			t.Errorf("ExternalLocation = %q, want inside %q", first.ExternalLocation, container)
		}

		second, err := f.Service.Backup(f.ctx, versionID)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("second Backup() id = %d, want %d", second.ID, first.ID)
		}
		if n := f.Archive.PutCount(); n != 1 {
			t.Errorf("PutCount() = %d, want 1", n)
		}
		if n := f.IDs.Issued(); n != 1 {
			t.Errorf("object names issued = %d, want 1", n)
		}
	})

	t.Run("folders have nothing to archive", func(t *testing.T) {
		f := newFixture(t)
		f.Drive.AddFolder("docs", "docs", testutil.TestRootID)
		entry := f.pull(t, "docs")

		backup, err := f.Service.Backup(f.ctx, entry.CurrentVersionID.Int64)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if backup != nil {
			t.Errorf("Backup() = %+v, want nil", backup)
		}
	})

	t.Run("concurrent calls record one backup", func(t *testing.T) {
		f := newFixture(t)
		versionID := pulledVersion(t, f, "a", "hello")

		const workers = 8
		ids := make([]int64, workers)
		errs := make([]error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b, err := f.Service.Backup(f.ctx, versionID)
				errs[i] = err
				if b != nil {
					ids[i] = b.ID
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			if errs[i] != nil {
				t.Fatalf("worker %d error = %v", i, errs[i])
			}
			if ids[i] != ids[0] {
				t.Errorf("worker %d got backup %d, want %d", i, ids[i], ids[0])
			}
		}
	})

	t.Run("archive failure is unavailable and writes nothing", func(t *testing.T) {
		env := testutil.NewTestEnv(t, nil)
		ctx := context.Background()
		svc := dvc.NewDVCService(env.DB, failingArchive{env.Archive}, env.Drive, nil, env.Codec, dvc.NewNopLogger(), env.Clock, env.IDs)
		_, branch, err := svc.CreateRepository(ctx, "docs", testutil.TestRootID, "main")
		if err != nil {
			t.Fatalf("CreateRepository() error = %v", err)
		}
		env.Drive.AddFile("a", "a.txt", testutil.TestRootID, "hello")
		entry, err := svc.Pull(ctx, branch.ID, "a")
		if err != nil {
			t.Fatalf("Pull() error = %v", err)
		}

		_, err = svc.Backup(ctx, entry.CurrentVersionID.Int64)
		assertKind(t, err, dvc.ErrUnavailable)

		err = svc.RestoreBackup(ctx, entry.CurrentVersionID.Int64, io.Discard, nil)
		assertKind(t, err, dvc.ErrNotFound)
	})

	t.Run("unknown version is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.Service.Backup(f.ctx, 999)
		assertKind(t, err, dvc.ErrNotFound)
	})
}

func TestDVCService_BackupPending(t *testing.T) {
	f := newFixture(t)
	f.Drive.AddFolder("docs", "docs", testutil.TestRootID)
	f.pull(t, "docs")
	pulledVersion(t, f, "a", "one")
	pulledVersion(t, f, "b", "two")

	count, err := f.Service.BackupPending(f.ctx, f.repo.ID)
	if err != nil {
		t.Fatalf("BackupPending() error = %v", err)
	}
	if count != 2 {
		t.Errorf("BackupPending() = %d, want 2", count)
	}

	count, err = f.Service.BackupPending(f.ctx, f.repo.ID)
	if err != nil {
		t.Fatalf("BackupPending() error = %v", err)
	}
	if count != 0 {
		t.Errorf("second BackupPending() = %d, want 0", count)
	}
}

func TestDVCService_RestoreBackup(t *testing.T) {
	t.Run("round trips plain payloads", func(t *testing.T) {
		f := newFixture(t)
		versionID := pulledVersion(t, f, "a", "hello, world")
		if _, err := f.Service.Backup(f.ctx, versionID); err != nil {
			t.Fatalf("Backup() error = %v", err)
		}

		var out bytes.Buffer
		if err := f.Service.RestoreBackup(f.ctx, versionID, &out, nil); err != nil {
			t.Fatalf("RestoreBackup() error = %v", err)
		}
		if out.String() != "hello, world" {
			t.Errorf("RestoreBackup() = %q", out.String())
		}
	})

	t.Run("round trips encrypted payloads", func(t *testing.T) {
		enc := testutil.NewTestEncryptor()
		f := newFixtureWithEncryptor(t, enc)
		versionID := pulledVersion(t, f, "a", "secret text")
		backup, err := f.Service.Backup(f.ctx, versionID)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}

		var stored bytes.Buffer
		if err := f.Archive.Get(f.ctx, backup.ExternalLocation, &stored); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if bytes.Contains(stored.Bytes(), []byte("secret text")) {
			t.Error("archived payload contains the plaintext")
		}
		if enc.Sealed() != 1 {
			t.Errorf("Sealed() = %d, want 1", enc.Sealed())
		}

		err = f.Service.RestoreBackup(f.ctx, versionID, io.Discard, nil)
		assertKind(t, err, dvc.ErrInvalid)

		if _, err := enc.Unlock("wrong"); err == nil {
			t.Error("Unlock() with a wrong passphrase expected error")
		}
		dc, err := enc.Unlock(encryption.TestPassphrase)
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		var out bytes.Buffer
		if err := f.Service.RestoreBackup(f.ctx, versionID, &out, dc); err != nil {
			t.Fatalf("RestoreBackup() error = %v", err)
		}
		if out.String() != "secret text" {
			t.Errorf("RestoreBackup() = %q", out.String())
		}
	})

	t.Run("missing backup is not found", func(t *testing.T) {
		f := newFixture(t)
		versionID := pulledVersion(t, f, "a", "hello")
		err := f.Service.RestoreBackup(f.ctx, versionID, io.Discard, nil)
		assertKind(t, err, dvc.ErrNotFound)
	})
}

func TestDVCService_ShareArchive(t *testing.T) {
	t.Run("grants a role on the repository container", func(t *testing.T) {
		f := newFixture(t)
		if err := f.Service.ShareArchive(f.ctx, f.repo.ID, "bob@example.com", dvc.RoleReader); err != nil {
			t.Fatalf("ShareArchive() error = %v", err)
		}
		grants := f.Archive.Grants("dvc-" + f.Codec.Encode(f.repo.ID))
		if grants["bob@example.com"] != dvc.RoleReader {
			t.Errorf("Grants() = %v, want bob as reader", grants)
		}
	})

	t.Run("validates principal and role", func(t *testing.T) {
		f := newFixture(t)
		assertKind(t, f.Service.ShareArchive(f.ctx, f.repo.ID, " ", dvc.RoleReader), dvc.ErrInvalid)
		assertKind(t, f.Service.ShareArchive(f.ctx, f.repo.ID, "bob", dvc.Role("owner")), dvc.ErrInvalid)
	})

	t.Run("unknown repository is not found", func(t *testing.T) {
		f := newFixture(t)
		assertKind(t, f.Service.ShareArchive(f.ctx, 999, "bob", dvc.RoleWriter), dvc.ErrNotFound)
	})
}
