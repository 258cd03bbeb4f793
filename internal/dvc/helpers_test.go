package dvc_test

import (
	"context"
	"errors"
	"testing"

	"dvc-go/internal/database/sqlc"
	"dvc-go/internal/dvc"
	"dvc-go/internal/testutil"
)

var errDrive = errors.New("drive offline")

// fixture is a repository with one branch over an in-memory drive.
type fixture struct {
	*testutil.Env
	ctx    context.Context
	repo   *sqlc.Repository
	branch *sqlc.Branch
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithEncryptor(t, nil)
}

func newFixtureWithEncryptor(t *testing.T, enc dvc.Encryptor) *fixture {
	t.Helper()
	env := testutil.NewTestEnv(t, enc)
	ctx := context.Background()
	repo, branch, err := env.Service.CreateRepository(ctx, "docs", testutil.TestRootID, "main")
	if err != nil {
		t.Fatalf("CreateRepository() error = %v", err)
	}
	return &fixture{Env: env, ctx: ctx, repo: repo, branch: branch}
}

// pull pulls externalID into the branch and fails the test on error.
func (f *fixture) pull(t *testing.T, externalID string) *sqlc.WorkingTreeEntry {
	t.Helper()
	entry, err := f.Service.Pull(f.ctx, f.branch.ID, externalID)
	if err != nil {
		t.Fatalf("Pull(%s) error = %v", externalID, err)
	}
	return entry
}

// fileID returns the stable id of a drive file already seen by the service.
func (f *fixture) fileID(t *testing.T, externalID string) int64 {
	t.Helper()
	file, err := f.Service.GetFile(f.ctx, f.repo.ID, externalID)
	if err != nil {
		t.Fatalf("GetFile(%s) error = %v", externalID, err)
	}
	return file.ID
}

// capture drafts the working tree and fails the test on error.
func (f *fixture) capture(t *testing.T) *sqlc.Commit {
	t.Helper()
	draft, err := f.Service.DraftAndCapture(f.ctx, f.branch.ID, "alice")
	if err != nil {
		t.Fatalf("DraftAndCapture() error = %v", err)
	}
	return draft
}

// publish publishes a draft under title and fails the test on error.
func (f *fixture) publish(t *testing.T, draft *sqlc.Commit, title string) *sqlc.Commit {
	t.Helper()
	commit, err := f.Service.Publish(f.ctx, draft.ID, dvc.PublishParams{Title: title})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	return commit
}

// commitTree captures and publishes the working tree in one step.
func (f *fixture) commitTree(t *testing.T, title string) *sqlc.Commit {
	t.Helper()
	return f.publish(t, f.capture(t), title)
}

// seed adds a folder "docs" with "plan.md" inside and "notes.txt" at the
// root, and pulls all three.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	f.Drive.AddFolder("docs", "docs", testutil.TestRootID)
	f.Drive.AddFile("plan", "plan.md", "docs", "# plan")
	f.Drive.AddFile("notes", "notes.txt", testutil.TestRootID, "hello")
	for _, id := range []string{"docs", "plan", "notes"} {
		f.pull(t, id)
	}
}

func versionIDs(versions []sqlc.Version) []int64 {
	ids := make([]int64, len(versions))
	for i, v := range versions {
		ids[i] = v.ID
	}
	return ids
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}
