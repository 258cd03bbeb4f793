package dvc

import (
	"context"
	"fmt"
	"strings"

	"dvc-go/internal/database/sqlc"
)

// PublishParams are the attributes set when a draft is published.
// Author and BranchID override the draft's own values when non-nil; the
// branch override lets a draft captured elsewhere be accepted into a branch.
type PublishParams struct {
	Title    string
	Summary  string
	Author   *string
	BranchID *int64
}

// DraftAndCapture creates a draft commit on top of the branch head holding
// the current version of every entry in the working tree, and computes its
// diffs against the head.
func (s *DVCService) DraftAndCapture(ctx context.Context, branchID int64, author string) (*sqlc.Commit, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, invalidError("commit", "author", "can't be blank")
	}

	var commit *sqlc.Commit
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		if _, err := getBranch(ctx, q, branchID); err != nil {
			return err
		}
		head, err := branchHead(ctx, q, branchID)
		if err != nil {
			return err
		}

		params := sqlc.InsertCommitParams{
			BranchID:  branchID,
			Author:    author,
			CreatedAt: s.now(),
		}
		if head != nil {
			params.ParentID = validID(head.ID)
		}
		id, err := q.InsertCommit(ctx, params)
		if err != nil {
			return fmt.Errorf("inserting commit: %w", err)
		}

		captured, err := q.CaptureWorkingTree(ctx, sqlc.CaptureWorkingTreeParams{CommitID: id, BranchID: branchID})
		if err != nil {
			return fmt.Errorf("capturing working tree: %w", err)
		}

		commit, err = getCommit(ctx, q, id)
		if err != nil {
			return err
		}
		if err := s.computeDiffs(ctx, q, commit); err != nil {
			return err
		}

		s.logger.Debug("working tree captured", "commit_id", id, "files", captured)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("draft created", "branch_id", branchID, "commit_id", commit.ID, "author", author)
	return commit, nil
}

// Publish makes a draft the new head of its branch. Unselected changes are
// rolled back and the diffs regenerated first. If the branch has moved on
// since the draft was captured, Publish fails with ErrConflict. After the
// commit, the working tree's committed pointers follow the commit.
func (s *DVCService) Publish(ctx context.Context, commitID int64, params PublishParams) (*sqlc.Commit, error) {
	var commit *sqlc.Commit
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		draft, err := getCommit(ctx, q, commitID)
		if err != nil {
			return err
		}
		if draft.IsPublished {
			return invalidError("commit", "", "has already been published")
		}
		title := strings.TrimSpace(params.Title)
		if title == "" {
			return invalidError("commit", "title", "can't be blank")
		}

		target := draft.BranchID
		if params.BranchID != nil && *params.BranchID != draft.BranchID {
			origin, err := getBranch(ctx, q, draft.BranchID)
			if err != nil {
				return err
			}
			branch, err := getBranch(ctx, q, *params.BranchID)
			if err != nil {
				return err
			}
			if branch.RepositoryID != origin.RepositoryID {
				return invalidError("commit", "branch", "must belong to the same repository")
			}
			target = branch.ID
		}
		author := draft.Author
		if params.Author != nil {
			author = strings.TrimSpace(*params.Author)
		}
		if author == "" {
			return invalidError("commit", "author", "can't be blank")
		}

		head, err := branchHead(ctx, q, target)
		if err != nil {
			return err
		}
		if draft.ParentID.Valid {
			parent, err := getCommit(ctx, q, draft.ParentID.Int64)
			if err != nil {
				return err
			}
			if parent.BranchID != target {
				return conflictError("commit", "parent belongs to another branch")
			}
			if head == nil || head.ID != parent.ID {
				return conflictError("commit", "the branch has changed since this draft was captured; review the latest changes and capture again")
			}
		} else if head != nil {
			return conflictError("commit", "the branch has changed since this draft was captured; review the latest changes and capture again")
		}

		diffs, err := q.ListFileDiffsByCommit(ctx, draft.ID)
		if err != nil {
			return fmt.Errorf("listing file diffs: %w", err)
		}
		if hasUnselected(diffs) {
			if err := s.applySelectedChanges(ctx, q, draft.ID, diffs); err != nil {
				return err
			}
			if err := s.computeDiffs(ctx, q, draft); err != nil {
				return err
			}
		}

		now := s.now()
		rows, err := q.PublishCommit(ctx, sqlc.PublishCommitParams{
			BranchID:    target,
			Author:      author,
			Title:       title,
			Summary:     strings.TrimSpace(params.Summary),
			PublishedAt: validTime(now),
			ID:          draft.ID,
		})
		if err != nil {
			if s.database.IsUniqueViolation(err) {
				return conflictError("commit", "another commit was published on this branch first")
			}
			return fmt.Errorf("publishing commit: %w", err)
		}
		if rows == 0 {
			return conflictError("commit", "was published concurrently")
		}

		if err := s.reconcile(ctx, q, target, draft.ID); err != nil {
			return err
		}
		if err := recountUncaptured(ctx, q, target); err != nil {
			return err
		}
		branch, err := getBranch(ctx, q, target)
		if err != nil {
			return err
		}
		err = q.TouchRepositoryCaptured(ctx, sqlc.TouchRepositoryCapturedParams{
			LastCapturedAt: validTime(now),
			ID:             branch.RepositoryID,
		})
		if err != nil {
			return fmt.Errorf("touching repository: %w", err)
		}

		commit, err = getCommit(ctx, q, draft.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("commit published", "branch_id", commit.BranchID, "commit_id", commit.ID, "title", commit.Title)
	if err := s.notifier.CommitPublished(ctx, commit); err != nil {
		s.logger.Warn("notifying publish failed", "commit_id", commit.ID, "error", err)
	}
	return commit, nil
}

// Discard deletes a draft together with its CommittedFiles and diffs.
func (s *DVCService) Discard(ctx context.Context, commitID int64) error {
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		rows, err := q.DeleteDraftCommit(ctx, commitID)
		if err != nil {
			return fmt.Errorf("deleting draft: %w", err)
		}
		if rows > 0 {
			return nil
		}
		if _, err := getCommit(ctx, q, commitID); err != nil {
			return err
		}
		return invalidError("commit", "", "published commits can't be discarded")
	})
	if err != nil {
		return err
	}

	s.logger.Info("draft discarded", "commit_id", commitID)
	return nil
}

// GetCommit loads a commit by id.
func (s *DVCService) GetCommit(ctx context.Context, commitID int64) (*sqlc.Commit, error) {
	return getCommit(ctx, s.database.Queries(), commitID)
}

// Head returns the latest published commit of a branch, or nil.
func (s *DVCService) Head(ctx context.Context, branchID int64) (*sqlc.Commit, error) {
	return branchHead(ctx, s.database.Queries(), branchID)
}

// Log returns up to limit published commits of a branch, newest first.
func (s *DVCService) Log(ctx context.Context, branchID int64, limit int) ([]sqlc.Commit, error) {
	commits, err := s.database.Queries().ListPublishedCommits(ctx, sqlc.ListPublishedCommitsParams{
		BranchID: branchID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}
	return commits, nil
}

// Drafts returns the unpublished commits of a branch, newest first.
func (s *DVCService) Drafts(ctx context.Context, branchID int64) ([]sqlc.Commit, error) {
	commits, err := s.database.Queries().ListDraftCommits(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	return commits, nil
}

// CommittedVersions returns the versions a commit holds.
func (s *DVCService) CommittedVersions(ctx context.Context, commitID int64) ([]sqlc.Version, error) {
	versions, err := s.database.Queries().ListCommittedVersions(ctx, commitID)
	if err != nil {
		return nil, fmt.Errorf("listing committed versions: %w", err)
	}
	return versions, nil
}

// reconcile points every entry's committed version at the commit. Files in
// the commit that the branch does not track get a removed entry so they can
// be restored later.
func (s *DVCService) reconcile(ctx context.Context, q sqlc.Querier, branchID int64, commitID int64) error {
	if err := q.ClearWorkingTreeCommittedVersions(ctx, branchID); err != nil {
		return fmt.Errorf("clearing committed versions: %w", err)
	}

	versions, err := q.ListCommittedVersions(ctx, commitID)
	if err != nil {
		return fmt.Errorf("listing committed versions: %w", err)
	}
	now := s.now()
	for _, v := range versions {
		entry, err := findEntry(ctx, q, branchID, v.FileID)
		if err != nil {
			return err
		}
		if entry != nil {
			err := q.UpdateWorkingTreeCommittedVersion(ctx, sqlc.UpdateWorkingTreeCommittedVersionParams{
				CommittedVersionID: validID(v.ID),
				ID:                 entry.ID,
			})
			if err != nil {
				return fmt.Errorf("updating committed version: %w", err)
			}
			continue
		}

		_, err = q.InsertWorkingTreeEntry(ctx, sqlc.InsertWorkingTreeEntryParams{
			BranchID:           branchID,
			FileID:             v.FileID,
			CommittedVersionID: validID(v.ID),
			IsDeleted:          true,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return fmt.Errorf("inserting removed entry for file %d: %w", v.FileID, err)
		}
	}
	return nil
}

func hasUnselected(diffs []sqlc.FileDiff) bool {
	for _, d := range diffs {
		if d.UnselectedChanges != 0 {
			return true
		}
	}
	return false
}

// branchHead returns the published commit with no published child.
func branchHead(ctx context.Context, q sqlc.Querier, branchID int64) (*sqlc.Commit, error) {
	head, err := q.GetBranchHead(ctx, branchID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding branch head: %w", err)
	}
	return &head, nil
}

func getCommit(ctx context.Context, q sqlc.Querier, id int64) (*sqlc.Commit, error) {
	commit, err := q.GetCommitByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("commit", id)
		}
		return nil, fmt.Errorf("loading commit: %w", err)
	}
	return &commit, nil
}
