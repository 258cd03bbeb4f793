package dvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dvc-go/internal/database/sqlc"
)

// SyncResult summarizes a Sync run.
type SyncResult struct {
	Pulled  int
	Removed int
	// Skipped lists external ids the drive rejected as invalid.
	Skipped []string
}

// GetFile looks up the stable identity of a drive file.
func (s *DVCService) GetFile(ctx context.Context, repositoryID int64, externalID string) (*sqlc.File, error) {
	file, err := s.database.Queries().GetFileByExternalID(ctx, sqlc.GetFileByExternalIDParams{
		RepositoryID: repositoryID,
		ExternalID:   externalID,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("file", externalID)
		}
		return nil, fmt.Errorf("finding file: %w", err)
	}
	return &file, nil
}

// GetEntry returns the working-tree entry of a file in a branch.
func (s *DVCService) GetEntry(ctx context.Context, branchID int64, fileID int64) (*sqlc.WorkingTreeEntry, error) {
	entry, err := findEntry(ctx, s.database.Queries(), branchID, fileID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, notFoundError("entry", fileID)
	}
	return entry, nil
}

// WorkingTree lists every entry of a branch, including the root and
// removed entries.
func (s *DVCService) WorkingTree(ctx context.Context, branchID int64) ([]sqlc.WorkingTreeEntry, error) {
	entries, err := s.database.Queries().ListWorkingTreeEntries(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("listing working tree: %w", err)
	}
	return entries, nil
}

// Pull refreshes one entry from the drive: fetch its metadata, resolve its
// content, mint a version and point the entry at it. Files the drive
// reports as deleted are removed from the working tree. Pull returns nil
// for a deleted file the branch never tracked.
func (s *DVCService) Pull(ctx context.Context, branchID int64, externalID string) (*sqlc.WorkingTreeEntry, error) {
	branch, err := getBranch(ctx, s.database.Queries(), branchID)
	if err != nil {
		return nil, err
	}
	repo, err := getRepository(ctx, s.database.Queries(), branch.RepositoryID)
	if err != nil {
		return nil, err
	}
	return s.pull(ctx, branch, repo, externalID)
}

func (s *DVCService) pull(ctx context.Context, branch *sqlc.Branch, repo *sqlc.Repository, externalID string) (*sqlc.WorkingTreeEntry, error) {
	// Everything remote happens before the transaction.
	remote, err := s.adapter.Fetch(ctx, externalID)
	if err != nil {
		return nil, adapterError("file", err)
	}
	hasContent := !remote.Deleted && !remote.IsFolder && remote.ContentRevision != ""
	var text string
	known := false
	if hasContent {
		text, known, err = s.fetchContent(ctx, repo.ID, externalID, remote.ContentRevision)
		if err != nil {
			return nil, err
		}
	}

	var entry *sqlc.WorkingTreeEntry
	err = s.database.Tx(ctx, func(q sqlc.Querier) error {
		file, err := s.ensureFile(ctx, q, repo.ID, externalID)
		if err != nil {
			return err
		}
		existing, err := findEntry(ctx, q, branch.ID, file.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsRoot {
			entry = existing
			return nil
		}

		if remote.Deleted {
			if existing == nil {
				return nil
			}
			entry, err = s.removeEntry(ctx, q, existing)
			if err != nil {
				return err
			}
			return recountUncaptured(ctx, q, branch.ID)
		}

		attrs := VersionAttrs{
			FileID:    file.ID,
			Name:      remote.Name,
			IsFolder:  remote.IsFolder,
			Thumbnail: remote.Thumbnail,
		}
		if remote.ContainerExternalID != "" {
			parent, err := s.ensureFile(ctx, q, repo.ID, remote.ContainerExternalID)
			if err != nil {
				return err
			}
			attrs.ParentID = &parent.ID
		}
		if hasContent {
			content, err := s.storeContent(ctx, q, repo.ID, externalID, remote.ContentRevision, text, known)
			if err != nil {
				return err
			}
			attrs.ContentID = &content.ID
		}

		entry, err = s.assignEntry(ctx, q, branch.ID, existing, attrs)
		if err != nil {
			return err
		}
		return recountUncaptured(ctx, q, branch.ID)
	})
	if err != nil {
		return nil, err
	}

	if entry != nil {
		s.logger.Debug("entry pulled", "branch_id", branch.ID, "external_id", externalID, "deleted", entry.IsDeleted)
	}
	return entry, nil
}

// Sync walks the drive from the repository root and pulls every file it
// finds, then pulls tracked entries the walk did not reach so the drive can
// report them moved or deleted. Each entry is pulled in its own transaction.
func (s *DVCService) Sync(ctx context.Context, branchID int64) (*SyncResult, error) {
	q := s.database.Queries()
	branch, err := getBranch(ctx, q, branchID)
	if err != nil {
		return nil, err
	}
	repo, err := getRepository(ctx, q, branch.RepositoryID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	seen := map[string]bool{repo.RootExternalID: true}
	queue := []string{repo.RootExternalID}
	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]

		children, err := s.adapter.Children(ctx, folder)
		if err != nil {
			return result, unavailableError("folder", err)
		}
		for _, child := range children {
			if seen[child] {
				continue
			}
			seen[child] = true

			entry, err := s.pull(ctx, branch, repo, child)
			if errors.Is(err, ErrInvalid) {
				s.logger.Warn("skipping file", "branch_id", branch.ID, "external_id", child, "error", err)
				result.Skipped = append(result.Skipped, child)
				continue
			}
			if err != nil {
				return result, fmt.Errorf("pulling %s: %w", child, err)
			}
			if entry == nil {
				continue
			}
			if entry.IsDeleted {
				result.Removed++
				continue
			}
			result.Pulled++
			if entry.IsFolder {
				queue = append(queue, child)
			}
		}
	}

	entries, err := q.ListWorkingTreeEntries(ctx, branch.ID)
	if err != nil {
		return result, fmt.Errorf("listing working tree: %w", err)
	}
	for _, e := range entries {
		if e.IsRoot || e.IsDeleted {
			continue
		}
		file, err := q.GetFileByID(ctx, e.FileID)
		if err != nil {
			return result, fmt.Errorf("loading file %d: %w", e.FileID, err)
		}
		if seen[file.ExternalID] {
			continue
		}
		seen[file.ExternalID] = true

		entry, err := s.pull(ctx, branch, repo, file.ExternalID)
		if errors.Is(err, ErrInvalid) {
			s.logger.Warn("skipping file", "branch_id", branch.ID, "external_id", file.ExternalID, "error", err)
			result.Skipped = append(result.Skipped, file.ExternalID)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("pulling %s: %w", file.ExternalID, err)
		}
		if entry != nil && entry.IsDeleted {
			result.Removed++
		} else if entry != nil {
			result.Pulled++
		}
	}

	s.logger.Info("branch synced", "branch_id", branch.ID, "pulled", result.Pulled, "removed", result.Removed, "skipped", len(result.Skipped))
	return result, nil
}

// Ancestors returns the versions of the folders above a file, nearest
// first, stopping below the branch root. Each step follows the current
// version of an entry, or its committed version once it has been removed.
func (s *DVCService) Ancestors(ctx context.Context, branchID int64, fileID int64) ([]sqlc.Version, error) {
	q := s.database.Queries()
	entry, err := findEntry(ctx, q, branchID, fileID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, notFoundError("entry", fileID)
	}
	v, err := loadVersion(ctx, q, entryVersionID(entry))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return ancestorChain(ctx, q, branchID, v.ParentID, fileID, 0)
}

// SetParent moves an entry under another folder of the branch. A nil parent
// removes the entry instead; the root can never be removed. Moves that would
// put an entry inside itself are rejected before anything is written.
func (s *DVCService) SetParent(ctx context.Context, branchID int64, fileID int64, parentFileID *int64) (*sqlc.WorkingTreeEntry, error) {
	var entry *sqlc.WorkingTreeEntry
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		existing, err := findEntry(ctx, q, branchID, fileID)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFoundError("entry", fileID)
		}

		if parentFileID == nil {
			if existing.IsRoot {
				return invalidError("entry", "parent", "root can't be removed")
			}
			if existing.IsDeleted {
				entry = existing
				return nil
			}
			entry, err = s.removeEntry(ctx, q, existing)
			if err != nil {
				return err
			}
			return recountUncaptured(ctx, q, branchID)
		}

		switch {
		case existing.IsRoot:
			return invalidError("entry", "parent", "root can't be moved")
		case existing.IsDeleted:
			return invalidError("entry", "parent", "removed entries can't be moved, restore them first")
		case *parentFileID == existing.FileID:
			return invalidError("entry", "parent", "can't be the entry itself")
		}

		parent, err := findEntry(ctx, q, branchID, *parentFileID)
		if err != nil {
			return err
		}
		if parent == nil || parent.IsDeleted {
			return invalidError("entry", "parent", "must be tracked in the branch")
		}
		if !parent.IsFolder {
			return invalidError("entry", "parent", "must be a folder")
		}

		attrs := entryAttrs(existing)
		attrs.ParentID = parentFileID
		entry, err = s.assignEntry(ctx, q, branchID, existing, attrs)
		if err != nil {
			return err
		}
		return recountUncaptured(ctx, q, branchID)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Children lists the live entries directly inside a folder, folders first
// then by case-insensitive name.
func (s *DVCService) Children(ctx context.Context, branchID int64, fileID int64) ([]sqlc.WorkingTreeEntry, error) {
	children, err := s.database.Queries().ListWorkingTreeChildren(ctx, sqlc.ListWorkingTreeChildrenParams{
		BranchID: branchID,
		ParentID: validID(fileID),
	})
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}
	return children, nil
}

// Subfolders is Children restricted to folders.
func (s *DVCService) Subfolders(ctx context.Context, branchID int64, fileID int64) ([]sqlc.WorkingTreeEntry, error) {
	children, err := s.Children(ctx, branchID, fileID)
	if err != nil {
		return nil, err
	}
	var folders []sqlc.WorkingTreeEntry
	for _, c := range children {
		if c.IsFolder {
			folders = append(folders, c)
		}
	}
	return folders, nil
}

// Restore points a file's entry at a historical version, creating the
// entry when the branch does not track the file.
func (s *DVCService) Restore(ctx context.Context, branchID int64, versionID int64) (*sqlc.WorkingTreeEntry, error) {
	var entry *sqlc.WorkingTreeEntry
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		branch, err := getBranch(ctx, q, branchID)
		if err != nil {
			return err
		}
		v, err := getVersion(ctx, q, versionID)
		if err != nil {
			return err
		}
		file, err := q.GetFileByID(ctx, v.FileID)
		if err != nil {
			return fmt.Errorf("loading file: %w", err)
		}
		if file.RepositoryID != branch.RepositoryID {
			return notFoundError("version", versionID)
		}

		existing, err := findEntry(ctx, q, branch.ID, v.FileID)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsRoot {
			return invalidError("entry", "version", "root has no versions")
		}

		attrs := AttrsOf(v)
		attrs.Thumbnail = nil
		entry, err = s.assignEntry(ctx, q, branch.ID, existing, attrs)
		if err != nil {
			return err
		}
		return recountUncaptured(ctx, q, branch.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version restored", "branch_id", branchID, "version_id", versionID)
	return entry, nil
}

// assignEntry mints the version for attrs and points the entry at it,
// inserting the entry if existing is nil. The parent chain is checked for
// cycles first.
func (s *DVCService) assignEntry(ctx context.Context, q sqlc.Querier, branchID int64, existing *sqlc.WorkingTreeEntry, attrs VersionAttrs) (*sqlc.WorkingTreeEntry, error) {
	if attrs.ParentID != nil {
		if _, err := ancestorChain(ctx, q, branchID, nullID(attrs.ParentID), attrs.FileID, 0); err != nil {
			return nil, err
		}
	}

	v, err := s.materialize(ctx, q, attrs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if existing == nil {
		id, err := q.InsertWorkingTreeEntry(ctx, sqlc.InsertWorkingTreeEntryParams{
			BranchID:         branchID,
			FileID:           v.FileID,
			ParentID:         v.ParentID,
			Name:             v.Name,
			IsFolder:         v.IsFolder,
			ContentID:        v.ContentID,
			Thumbnail:        v.Thumbnail,
			CurrentVersionID: validID(v.ID),
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			if s.database.IsUniqueViolation(err) {
				return nil, conflictError("entry", "file is already tracked in this branch")
			}
			return nil, fmt.Errorf("inserting entry: %w", err)
		}
		return getEntryByID(ctx, q, id)
	}

	err = q.UpdateWorkingTreeEntry(ctx, sqlc.UpdateWorkingTreeEntryParams{
		ParentID:         v.ParentID,
		Name:             v.Name,
		IsFolder:         v.IsFolder,
		ContentID:        v.ContentID,
		Thumbnail:        v.Thumbnail,
		CurrentVersionID: validID(v.ID),
		IsDeleted:        false,
		UpdatedAt:        now,
		ID:               existing.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("updating entry: %w", err)
	}
	return getEntryByID(ctx, q, existing.ID)
}

// removeEntry clears an entry's metadata and marks it deleted. The row is
// kept so history that references the file stays valid.
func (s *DVCService) removeEntry(ctx context.Context, q sqlc.Querier, entry *sqlc.WorkingTreeEntry) (*sqlc.WorkingTreeEntry, error) {
	err := q.UpdateWorkingTreeEntry(ctx, sqlc.UpdateWorkingTreeEntryParams{
		IsDeleted: true,
		UpdatedAt: s.now(),
		ID:        entry.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("removing entry: %w", err)
	}
	return getEntryByID(ctx, q, entry.ID)
}

// ancestorChain follows parent links upward starting at parentID and
// returns up to limit versions (0 means no limit). Reaching self or
// revisiting a file means the chain is a cycle.
func ancestorChain(ctx context.Context, q sqlc.Querier, branchID int64, parentID sql.NullInt64, self int64, limit int) ([]sqlc.Version, error) {
	var chain []sqlc.Version
	seen := map[int64]bool{}
	for parentID.Valid {
		if limit > 0 && len(chain) >= limit {
			break
		}
		if parentID.Int64 == self || seen[parentID.Int64] {
			return nil, invalidError("entry", "parent", "can't be inside itself")
		}
		seen[parentID.Int64] = true

		entry, err := findEntry(ctx, q, branchID, parentID.Int64)
		if err != nil {
			return nil, err
		}
		if entry == nil || entry.IsRoot {
			break
		}
		v, err := loadVersion(ctx, q, entryVersionID(entry))
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}
		chain = append(chain, *v)
		parentID = v.ParentID
	}
	return chain, nil
}

// entryVersionID is the version that describes an entry: the current one,
// or the committed one for a removed entry.
func entryVersionID(e *sqlc.WorkingTreeEntry) sql.NullInt64 {
	if e.CurrentVersionID.Valid {
		return e.CurrentVersionID
	}
	return e.CommittedVersionID
}

func entryAttrs(e *sqlc.WorkingTreeEntry) VersionAttrs {
	return VersionAttrs{
		FileID:    e.FileID,
		Name:      e.Name,
		ContentID: ptrID(e.ContentID),
		IsFolder:  e.IsFolder,
		ParentID:  ptrID(e.ParentID),
		Thumbnail: e.Thumbnail,
	}
}

func findEntry(ctx context.Context, q sqlc.Querier, branchID int64, fileID int64) (*sqlc.WorkingTreeEntry, error) {
	entry, err := q.GetWorkingTreeEntryByFile(ctx, sqlc.GetWorkingTreeEntryByFileParams{
		BranchID: branchID,
		FileID:   fileID,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding entry: %w", err)
	}
	return &entry, nil
}

func getEntryByID(ctx context.Context, q sqlc.Querier, id int64) (*sqlc.WorkingTreeEntry, error) {
	entry, err := q.GetWorkingTreeEntryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading entry: %w", err)
	}
	return &entry, nil
}
