package testutil

import (
	"testing"

	"dvc-go/internal/archive"
	"dvc-go/internal/database"
	"dvc-go/internal/drive"
	"dvc-go/internal/dvc"
)

// TestRootID is the drive root every test repository is created on.
const TestRootID = "root"

// Env bundles a DVCService with the fakes behind it so tests can drive the
// external side directly.
type Env struct {
	Service *dvc.DVCService
	DB      *database.SQLiteDatabase
	Archive *archive.MemoryArchive
	Drive   *drive.MemoryDrive
	Clock   *StubClock
	IDs     *StubIDGenerator
	Codec   *dvc.IDCodec
}

// NewTestEnv wires a DVCService over an in-memory database, archive and
// drive. enc may be nil for unencrypted backups.
func NewTestEnv(t *testing.T, enc dvc.Encryptor) *Env {
	t.Helper()

	clock := FixedClock()
	codec, err := dvc.NewIDCodec("test-salt", 6)
	if err != nil {
		t.Fatalf("NewIDCodec() error = %v", err)
	}
	env := &Env{
		DB:      NewTestDatabase(t, clock),
		Archive: NewTestArchive(),
		Drive:   drive.NewMemoryDrive(TestRootID),
		Clock:   clock,
		IDs:     NewStubIDGenerator(),
		Codec:   codec,
	}
	env.Service = dvc.NewDVCService(env.DB, env.Archive, env.Drive, enc, codec, dvc.NewNopLogger(), clock, env.IDs)
	return env
}
