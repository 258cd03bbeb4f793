package dvc

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dvc-go/internal/database/sqlc"
)

// Change is one selectable aspect of a diff.
type Change struct {
	ID       string
	Type     ChangeType
	Selected bool
}

// DiffView is the presentation form of one file's difference between two
// states. IDs are public codec strings; raw row ids never leave the service.
type DiffView struct {
	ID      string
	FileID  string
	New     *sqlc.Version
	Old     *sqlc.Version
	Changes []Change
	// Primary is meaningful only when HasPrimary is set.
	Primary    ChangeType
	HasPrimary bool
	Ancestors  []string
	Path       string
	Name       string
	IsFolder   bool
}

// Diffs returns the cached diffs of a commit, folders first and then by
// case-insensitive name.
func (s *DVCService) Diffs(ctx context.Context, commitID int64) ([]DiffView, error) {
	q := s.database.Queries()
	if _, err := getCommit(ctx, q, commitID); err != nil {
		return nil, err
	}
	diffs, err := q.ListFileDiffsByCommit(ctx, commitID)
	if err != nil {
		return nil, fmt.Errorf("listing file diffs: %w", err)
	}

	views := make([]DiffView, 0, len(diffs))
	for _, d := range diffs {
		newV, err := loadVersion(ctx, q, d.NewVersionID)
		if err != nil {
			return nil, err
		}
		oldV, err := loadVersion(ctx, q, d.OldVersionID)
		if err != nil {
			return nil, err
		}
		names, err := decodeAncestors(d.FirstThreeAncestors)
		if err != nil {
			return nil, err
		}
		views = append(views, s.diffView(s.codec.Encode(d.ID), newV, oldV, names, d.UnselectedChanges))
	}
	return views, nil
}

// SelectChanges makes exactly the listed changes of a draft selected; every
// other change of the draft becomes unselected.
func (s *DVCService) SelectChanges(ctx context.Context, commitID int64, changeIDs []string) error {
	selected := map[int64]int64{}
	for _, id := range changeIDs {
		diffID, t, err := s.parseChangeID(id)
		if err != nil {
			return err
		}
		selected[diffID] |= t.bit()
	}

	return s.database.Tx(ctx, func(q sqlc.Querier) error {
		commit, err := getCommit(ctx, q, commitID)
		if err != nil {
			return err
		}
		if commit.IsPublished {
			return invalidError("commit", "", "published commits can't change selection")
		}
		diffs, err := q.ListFileDiffsByCommit(ctx, commitID)
		if err != nil {
			return fmt.Errorf("listing file diffs: %w", err)
		}

		known := make(map[int64]bool, len(diffs))
		for _, d := range diffs {
			known[d.ID] = true
		}
		for diffID := range selected {
			if !known[diffID] {
				return notFoundError("change", s.codec.Encode(diffID))
			}
		}

		for _, d := range diffs {
			mask, err := diffMask(ctx, q, &d)
			if err != nil {
				return err
			}
			if extra := selected[d.ID] &^ mask; extra != 0 {
				return notFoundError("change", s.codec.Encode(d.ID))
			}
			unselected := mask &^ selected[d.ID]
			if unselected == d.UnselectedChanges {
				continue
			}
			err = q.UpdateFileDiffUnselected(ctx, sqlc.UpdateFileDiffUnselectedParams{
				UnselectedChanges: unselected,
				ID:                d.ID,
			})
			if err != nil {
				return fmt.Errorf("updating selection: %w", err)
			}
		}
		return nil
	})
}

// SetChangeSelected toggles a single change of a draft.
func (s *DVCService) SetChangeSelected(ctx context.Context, changeID string, selected bool) error {
	diffID, t, err := s.parseChangeID(changeID)
	if err != nil {
		return err
	}

	return s.database.Tx(ctx, func(q sqlc.Querier) error {
		d, err := q.GetFileDiffByID(ctx, diffID)
		if err != nil {
			if isNoRows(err) {
				return notFoundError("change", changeID)
			}
			return fmt.Errorf("loading file diff: %w", err)
		}
		commit, err := getCommit(ctx, q, d.CommitID)
		if err != nil {
			return err
		}
		if commit.IsPublished {
			return invalidError("commit", "", "published commits can't change selection")
		}
		mask, err := diffMask(ctx, q, &d)
		if err != nil {
			return err
		}
		if mask&t.bit() == 0 {
			return notFoundError("change", changeID)
		}

		unselected := d.UnselectedChanges | t.bit()
		if selected {
			unselected = d.UnselectedChanges &^ t.bit()
		}
		err = q.UpdateFileDiffUnselected(ctx, sqlc.UpdateFileDiffUnselectedParams{
			UnselectedChanges: unselected,
			ID:                d.ID,
		})
		if err != nil {
			return fmt.Errorf("updating selection: %w", err)
		}
		return nil
	})
}

// Status compares every entry's current version with its committed one,
// the changes a capture would pick up. Nothing is persisted.
func (s *DVCService) Status(ctx context.Context, branchID int64) ([]DiffView, error) {
	q := s.database.Queries()
	if _, err := getBranch(ctx, q, branchID); err != nil {
		return nil, err
	}
	entries, err := q.ListWorkingTreeEntries(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("listing working tree: %w", err)
	}

	var views []DiffView
	for _, e := range entries {
		if e.IsRoot || e.CurrentVersionID == e.CommittedVersionID {
			continue
		}
		newV, err := loadVersion(ctx, q, e.CurrentVersionID)
		if err != nil {
			return nil, err
		}
		oldV, err := loadVersion(ctx, q, e.CommittedVersionID)
		if err != nil {
			return nil, err
		}
		parent := e.ParentID
		if newV == nil {
			parent = oldV.ParentID
		}
		chain, err := ancestorChain(ctx, q, branchID, parent, e.FileID, maxAncestorNames)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(chain))
		for i, v := range chain {
			names[i] = v.Name
		}
		views = append(views, s.diffView("", newV, oldV, names, 0))
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].IsFolder != views[j].IsFolder {
			return views[i].IsFolder
		}
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})
	return views, nil
}

func (s *DVCService) diffView(id string, newV, oldV *sqlc.Version, ancestors []string, unselected int64) DiffView {
	shown := newV
	if shown == nil {
		shown = oldV
	}
	view := DiffView{
		ID:        id,
		FileID:    s.codec.Encode(shown.FileID),
		New:       newV,
		Old:       oldV,
		Ancestors: ancestors,
		Path:      AncestorPath(ancestors),
		Name:      shown.Name,
		IsFolder:  shown.IsFolder,
	}
	types := Classify(newV, oldV)
	for _, t := range types {
		c := Change{Type: t, Selected: unselected&t.bit() == 0}
		if id != "" {
			c.ID = id + "_" + t.String()
		}
		view.Changes = append(view.Changes, c)
	}
	view.Primary, view.HasPrimary = PrimaryChange(types)
	return view
}

// parseChangeID splits "<diff>_<type>" into the diff row id and change type.
func (s *DVCService) parseChangeID(id string) (int64, ChangeType, error) {
	i := strings.LastIndex(id, "_")
	if i <= 0 {
		return 0, 0, notFoundError("change", id)
	}
	t, ok := ParseChangeType(id[i+1:])
	if !ok {
		return 0, 0, notFoundError("change", id)
	}
	diffID, err := s.codec.Decode(id[:i])
	if err != nil {
		return 0, 0, notFoundError("change", id)
	}
	return diffID, t, nil
}

func diffMask(ctx context.Context, q sqlc.Querier, d *sqlc.FileDiff) (int64, error) {
	newV, err := loadVersion(ctx, q, d.NewVersionID)
	if err != nil {
		return 0, err
	}
	oldV, err := loadVersion(ctx, q, d.OldVersionID)
	if err != nil {
		return 0, err
	}
	return changeMask(Classify(newV, oldV)), nil
}
