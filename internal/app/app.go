package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"dvc-go/internal/archive"
	"dvc-go/internal/config"
	"dvc-go/internal/database"
	"dvc-go/internal/database/migrations"
	"dvc-go/internal/database/sqlc"
	"dvc-go/internal/drive"
	"dvc-go/internal/dvc"
	"dvc-go/internal/encryption"
)

// MetadataContainer is the archive container holding database snapshots.
const MetadataContainer = "dvc-metadata"

// DVCApp is the application layer between the CLI and DVCService.
// It constructs all dependencies from config, exposes high-level operations
// that accept names and public ids, and manages the DB lifecycle on Close.
type DVCApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	archive   dvc.Archive
	drive     dvc.SyncAdapter
	encryptor dvc.Encryptor
	service   *dvc.DVCService
	op        *Operation
	logFile   *os.File
}

// NewDVCApp creates a fully wired DVCApp from the given config.
// operation identifies the CLI command being run (e.g. "Capture", "Publish")
// and parameters is recorded with it when the command mutates state.
// The caller must call Close when done.
func NewDVCApp(cfg *config.Config, operation string, parameters string) (*DVCApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	drv, err := drive.NewDriveFromConfig(cfg.Drive)
	if err != nil {
		return nil, fmt.Errorf("creating drive: %w", err)
	}

	var arc dvc.Archive
	if len(cfg.Archives) > 0 {
		arc, err = archive.NewArchiveFromConfig(context.Background(), cfg.Archives[0])
		if err != nil {
			return nil, fmt.Errorf("creating archive: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	codec, err := dvc.NewIDCodec(cfg.IDs.Salt, cfg.IDs.MinLength)
	if err != nil {
		return nil, fmt.Errorf("creating id codec: %w", err)
	}

	clock := dvc.RealClock{}
	db, err := database.NewDatabaseFromConfig(cfg.Database, clock)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := dvc.NewDVCService(db, arc, drv, enc, codec, &slogAdapter{l: logger}, clock, dvc.UUIDGenerator{})

	return &DVCApp{
		cfg:       cfg,
		db:        db,
		archive:   arc,
		drive:     drv,
		encryptor: enc,
		service:   svc,
		op:        NewOperation(operation, parameters),
		logFile:   logFile,
	}, nil
}

// MigrateDatabase applies pending schema migrations to the configured database.
// It runs without the rest of the app, since NewDVCApp refuses an old schema.
func MigrateDatabase(cfg *config.Config) error {
	db, err := database.NewDatabaseFromConfig(cfg.Database, dvc.RealClock{})
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// DatabaseStatus reports the schema version of the configured database.
func DatabaseStatus(cfg *config.Config) (migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, dvc.RealClock{})
	if err != nil {
		return migrations.Status{}, fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()
	return db.MigrationStatus()
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for DB-mutating commands.
func (a *DVCApp) persistOperation() error {
	if a.op.Persisted() {
		return nil
	}
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// track marks the operation failed when err is non-nil and returns err.
func (a *DVCApp) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

func (a *DVCApp) requireArchive() error {
	if a.archive == nil {
		return fmt.Errorf("no archive configured")
	}
	return nil
}

// EncodeID returns the public form of a row id.
func (a *DVCApp) EncodeID(id int64) string {
	return a.service.Codec().Encode(id)
}

func (a *DVCApp) decode(entity string, public string) (int64, error) {
	id, err := a.service.Codec().Decode(public)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", entity, public, err)
	}
	return id, nil
}

// Repository returns the repository named in the config.
func (a *DVCApp) Repository(ctx context.Context) (*sqlc.Repository, error) {
	if a.cfg.Repository == "" {
		return nil, fmt.Errorf("no repository configured, run `dvc init` first")
	}
	return a.service.GetRepository(ctx, a.cfg.Repository)
}

// Branch returns the named branch of the configured repository. An empty
// name selects the configured branch.
func (a *DVCApp) Branch(ctx context.Context, name string) (*sqlc.Branch, error) {
	if name == "" {
		name = a.cfg.Branch
	}
	repo, err := a.Repository(ctx)
	if err != nil {
		return nil, err
	}
	return a.service.GetBranch(ctx, repo.ID, name)
}

// Init creates a repository rooted at the drive root with the configured branch.
func (a *DVCApp) Init(ctx context.Context, name string) (*sqlc.Repository, *sqlc.Branch, error) {
	if err := a.persistOperation(); err != nil {
		return nil, nil, err
	}
	branchName := a.cfg.Branch
	if branchName == "" {
		branchName = "main"
	}
	repo, branch, err := a.service.CreateRepository(ctx, name, drive.RootID, branchName)
	return repo, branch, a.track(err)
}

// Branches lists the branches of the configured repository.
func (a *DVCApp) Branches(ctx context.Context) ([]sqlc.Branch, error) {
	repo, err := a.Repository(ctx)
	if err != nil {
		return nil, err
	}
	return a.service.ListBranches(ctx, repo.ID)
}

// CreateBranch adds an empty branch to the configured repository.
func (a *DVCApp) CreateBranch(ctx context.Context, name string) (*sqlc.Branch, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	repo, err := a.Repository(ctx)
	if err != nil {
		return nil, a.track(err)
	}
	branch, err := a.service.CreateBranch(ctx, repo.ID, name)
	return branch, a.track(err)
}

// ForkBranch creates name from the published head of source.
func (a *DVCApp) ForkBranch(ctx context.Context, source string, name string) (*sqlc.Branch, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	src, err := a.Branch(ctx, source)
	if err != nil {
		return nil, a.track(err)
	}
	branch, err := a.service.ForkBranch(ctx, src.ID, name, a.cfg.Author)
	return branch, a.track(err)
}

// DeleteBranch removes a branch and everything it owns.
func (a *DVCApp) DeleteBranch(ctx context.Context, name string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	branch, err := a.Branch(ctx, name)
	if err != nil {
		return a.track(err)
	}
	return a.track(a.service.DeleteBranch(ctx, branch.ID))
}

// Pull brings one drive file into a branch's working tree.
func (a *DVCApp) Pull(ctx context.Context, branchName string, externalID string) (*sqlc.WorkingTreeEntry, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	branch, err := a.Branch(ctx, branchName)
	if err != nil {
		return nil, a.track(err)
	}
	entry, err := a.service.Pull(ctx, branch.ID, externalID)
	return entry, a.track(err)
}

// Sync pulls every drive file under the repository root into a branch.
func (a *DVCApp) Sync(ctx context.Context, branchName string) (*dvc.SyncResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	branch, err := a.Branch(ctx, branchName)
	if err != nil {
		return nil, a.track(err)
	}
	res, err := a.service.Sync(ctx, branch.ID)
	return res, a.track(err)
}

// Status returns the uncaptured changes of a branch.
func (a *DVCApp) Status(ctx context.Context, branchName string) ([]dvc.DiffView, error) {
	branch, err := a.Branch(ctx, branchName)
	if err != nil {
		return nil, err
	}
	return a.service.Status(ctx, branch.ID)
}

// Capture drafts a commit holding the branch's working tree.
func (a *DVCApp) Capture(ctx context.Context, branchName string) (*sqlc.Commit, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	branch, err := a.Branch(ctx, branchName)
	if err != nil {
		return nil, a.track(err)
	}
	commit, err := a.service.DraftAndCapture(ctx, branch.ID, a.cfg.Author)
	return commit, a.track(err)
}

// Diffs returns the diffs of a commit given its public id.
func (a *DVCApp) Diffs(ctx context.Context, commitID string) ([]dvc.DiffView, error) {
	id, err := a.decode("commit", commitID)
	if err != nil {
		return nil, err
	}
	return a.service.Diffs(ctx, id)
}

// Select keeps exactly the listed changes of a draft selected.
func (a *DVCApp) Select(ctx context.Context, commitID string, changeIDs []string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	id, err := a.decode("commit", commitID)
	if err != nil {
		return a.track(err)
	}
	return a.track(a.service.SelectChanges(ctx, id, changeIDs))
}

// Publish publishes a draft with the given title and summary.
func (a *DVCApp) Publish(ctx context.Context, commitID string, title string, summary string) (*sqlc.Commit, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	id, err := a.decode("commit", commitID)
	if err != nil {
		return nil, a.track(err)
	}
	commit, err := a.service.Publish(ctx, id, dvc.PublishParams{Title: title, Summary: summary})
	return commit, a.track(err)
}

// Discard deletes a draft.
func (a *DVCApp) Discard(ctx context.Context, commitID string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	id, err := a.decode("commit", commitID)
	if err != nil {
		return a.track(err)
	}
	return a.track(a.service.Discard(ctx, id))
}

// Log returns the published history of a branch, newest first.
func (a *DVCApp) Log(ctx context.Context, branchName string, limit int) ([]sqlc.Commit, error) {
	branch, err := a.Branch(ctx, branchName)
	if err != nil {
		return nil, err
	}
	return a.service.Log(ctx, branch.ID, limit)
}

// Drafts returns the unpublished commits of a branch.
func (a *DVCApp) Drafts(ctx context.Context, branchName string) ([]sqlc.Commit, error) {
	branch, err := a.Branch(ctx, branchName)
	if err != nil {
		return nil, err
	}
	return a.service.Drafts(ctx, branch.ID)
}

// FileHistory returns every version of the drive file externalID.
func (a *DVCApp) FileHistory(ctx context.Context, externalID string) ([]sqlc.Version, error) {
	repo, err := a.Repository(ctx)
	if err != nil {
		return nil, err
	}
	file, err := a.service.GetFile(ctx, repo.ID, externalID)
	if err != nil {
		return nil, err
	}
	return a.service.FileVersions(ctx, file.ID)
}

// RestoreVersion points a branch's entry for the version's file back at it.
func (a *DVCApp) RestoreVersion(ctx context.Context, branchName string, versionID string) (*sqlc.WorkingTreeEntry, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	branch, err := a.Branch(ctx, branchName)
	if err != nil {
		return nil, a.track(err)
	}
	id, err := a.decode("version", versionID)
	if err != nil {
		return nil, a.track(err)
	}
	entry, err := a.service.Restore(ctx, branch.ID, id)
	return entry, a.track(err)
}

// Backup archives every committed version that has no backup yet.
// Returns the number of versions backed up.
func (a *DVCApp) Backup(ctx context.Context) (int, error) {
	if err := a.requireArchive(); err != nil {
		return 0, err
	}
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	repo, err := a.Repository(ctx)
	if err != nil {
		return 0, a.track(err)
	}
	n, err := a.service.BackupPending(ctx, repo.ID)
	return n, a.track(err)
}

// RestoreBackup writes the archived text of a version to w. passphrase
// unlocks the private key and is ignored when backups are not encrypted.
func (a *DVCApp) RestoreBackup(ctx context.Context, versionID string, w io.Writer, passphrase string) error {
	if err := a.requireArchive(); err != nil {
		return err
	}
	id, err := a.decode("version", versionID)
	if err != nil {
		return err
	}
	var dc dvc.DecryptionContext
	if a.Encrypted() {
		dc, err = a.encryptor.Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
	}
	return a.service.RestoreBackup(ctx, id, w, dc)
}

// Encrypted reports whether backups are encrypted and restores need a passphrase.
func (a *DVCApp) Encrypted() bool {
	return a.encryptor != nil && a.encryptor.IsConfigured()
}

// Share grants principal a role on the repository's archive container.
func (a *DVCApp) Share(ctx context.Context, principal string, role string) error {
	if err := a.requireArchive(); err != nil {
		return err
	}
	if err := a.persistOperation(); err != nil {
		return err
	}
	repo, err := a.Repository(ctx)
	if err != nil {
		return a.track(err)
	}
	return a.track(a.service.ShareArchive(ctx, repo.ID, principal, dvc.Role(strings.ToLower(role))))
}

// SetupKeys generates the archive encryption key pair.
func (a *DVCApp) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is disabled in config")
	}
	return a.encryptor.Setup(passphrase)
}

// PublicKey returns the archive public key so another installation can
// list it as an extra recipient.
func (a *DVCApp) PublicKey() (string, error) {
	pk, ok := a.encryptor.(interface{ PublicKey() (string, error) })
	if !ok {
		return "", fmt.Errorf("encryption type %q has no public key", a.cfg.Encryption.Type)
	}
	return pk.PublicKey()
}

// GetHistory returns the most recent CLI operations.
func (a *DVCApp) GetHistory(limit int) ([]*sqlc.Operation, error) {
	return a.service.GetHistory(limit)
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record, snapshots the DB,
// and uploads the snapshot to the archive when one is configured.
// For non-persisted operations: just closes the database.
func (a *DVCApp) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var tmpPath string
	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			keep(fmt.Errorf("finishing operation: %w", err))
		}
		if a.archive != nil && a.db.Path() != ":memory:" {
			path, err := a.snapshot()
			keep(err)
			tmpPath = path
		}
	}

	if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}

	if tmpPath != "" {
		keep(a.uploadMetadata(tmpPath, a.op.ID))
		os.Remove(tmpPath)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// snapshot copies the database to a temp file and returns its path.
func (a *DVCApp) snapshot() (string, error) {
	tmpFile, err := os.CreateTemp("", "dvc-db-backup-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for db backup: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	// sqlite refuses to VACUUM INTO an existing file
	os.Remove(tmpPath)

	if err := a.db.BackupTo(tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("backing up database: %w", err)
	}
	return tmpPath, nil
}

// uploadMetadata uploads the DB snapshot at path as db-<version>.
func (a *DVCApp) uploadMetadata(path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening db backup for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat db backup: %w", err)
	}

	ctx := context.Background()
	container, err := a.archive.CreateContainer(ctx, MetadataContainer)
	if err != nil {
		return fmt.Errorf("creating metadata container: %w", err)
	}
	if _, err := a.archive.Put(ctx, container, fmt.Sprintf("db-%d", version), f, info.Size()); err != nil {
		return fmt.Errorf("uploading metadata to archive: %w", err)
	}
	return nil
}
