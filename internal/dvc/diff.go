package dvc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"dvc-go/internal/database/sqlc"
)

// ChangeType classifies one aspect in which two versions of a file differ.
// The declaration order is the precedence used to pick a primary change.
type ChangeType int

const (
	Movement ChangeType = iota
	Rename
	Modification
	Addition
	Deletion
)

var changeTypeNames = [...]string{"movement", "rename", "modification", "addition", "deletion"}

// AllChangeTypes lists every change type in precedence order.
var AllChangeTypes = []ChangeType{Movement, Rename, Modification, Addition, Deletion}

func (t ChangeType) String() string {
	if t < 0 || int(t) >= len(changeTypeNames) {
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
	return changeTypeNames[t]
}

// ParseChangeType is the inverse of ChangeType.String.
func ParseChangeType(s string) (ChangeType, bool) {
	for i, name := range changeTypeNames {
		if name == s {
			return ChangeType(i), true
		}
	}
	return 0, false
}

func (t ChangeType) bit() int64 {
	return 1 << uint(t)
}

// Classify returns the change types between old and new in precedence
// order. Addition and deletion exclude every other type; movement, rename
// and modification may co-occur. A change of kind counts as a modification.
func Classify(newV, oldV *sqlc.Version) []ChangeType {
	switch {
	case newV == nil && oldV == nil:
		return nil
	case oldV == nil:
		return []ChangeType{Addition}
	case newV == nil:
		return []ChangeType{Deletion}
	}

	var types []ChangeType
	if newV.ParentID != oldV.ParentID {
		types = append(types, Movement)
	}
	if newV.Name != oldV.Name {
		types = append(types, Rename)
	}
	if newV.ContentID != oldV.ContentID || newV.IsFolder != oldV.IsFolder {
		types = append(types, Modification)
	}
	return types
}

// PrimaryChange picks the change that represents a diff in a single icon
// or color. ok is false when there are no changes.
func PrimaryChange(types []ChangeType) (ChangeType, bool) {
	if len(types) == 0 {
		return 0, false
	}
	primary := types[0]
	for _, t := range types[1:] {
		if t < primary {
			primary = t
		}
	}
	return primary, true
}

func changeMask(types []ChangeType) int64 {
	var mask int64
	for _, t := range types {
		mask |= t.bit()
	}
	return mask
}

// committedSet is the in-memory form of a commit's CommittedFiles, keyed by
// file id. Reverting several changes of one file composes because each
// revert starts from the version currently in the set.
type committedSet map[int64]sqlc.Version

func loadCommittedSet(ctx context.Context, q sqlc.Querier, commitID int64) (committedSet, error) {
	versions, err := q.ListCommittedVersions(ctx, commitID)
	if err != nil {
		return nil, fmt.Errorf("listing committed versions: %w", err)
	}
	set := make(committedSet, len(versions))
	for _, v := range versions {
		set[v.FileID] = v
	}
	return set, nil
}

// revert rolls one unselected change back inside the set.
func (s *DVCService) revert(ctx context.Context, q sqlc.Querier, set committedSet, t ChangeType, newV, oldV *sqlc.Version) error {
	switch t {
	case Addition:
		delete(set, newV.FileID)
		return nil
	case Deletion:
		set[oldV.FileID] = *oldV
		return nil
	}

	cur, ok := set[newV.FileID]
	if !ok {
		return fmt.Errorf("file %d missing from commit while reverting %s", newV.FileID, t)
	}
	attrs := AttrsOf(&cur)
	attrs.Thumbnail = nil
	switch t {
	case Movement:
		attrs.ParentID = ptrID(oldV.ParentID)
	case Rename:
		attrs.Name = oldV.Name
	case Modification:
		attrs.ContentID = ptrID(oldV.ContentID)
		attrs.IsFolder = oldV.IsFolder
	}

	v, err := s.materialize(ctx, q, attrs)
	if err != nil {
		return fmt.Errorf("reverting %s of file %d: %w", t, newV.FileID, err)
	}
	set[v.FileID] = *v
	return nil
}

// applySelectedChanges rewrites a draft's CommittedFiles so that only the
// selected changes of each diff remain.
func (s *DVCService) applySelectedChanges(ctx context.Context, q sqlc.Querier, commitID int64, diffs []sqlc.FileDiff) error {
	original, err := loadCommittedSet(ctx, q, commitID)
	if err != nil {
		return err
	}
	set := make(committedSet, len(original))
	for k, v := range original {
		set[k] = v
	}

	for _, d := range diffs {
		if d.UnselectedChanges == 0 {
			continue
		}
		newV, err := loadVersion(ctx, q, d.NewVersionID)
		if err != nil {
			return err
		}
		oldV, err := loadVersion(ctx, q, d.OldVersionID)
		if err != nil {
			return err
		}
		for _, t := range Classify(newV, oldV) {
			if d.UnselectedChanges&t.bit() == 0 {
				continue
			}
			if err := s.revert(ctx, q, set, t, newV, oldV); err != nil {
				return err
			}
		}
	}

	for fileID, v := range original {
		if next, ok := set[fileID]; ok && next.ID == v.ID {
			continue
		}
		err := q.DeleteCommittedFile(ctx, sqlc.DeleteCommittedFileParams{CommitID: commitID, VersionID: v.ID})
		if err != nil {
			return fmt.Errorf("deleting committed file: %w", err)
		}
	}
	for fileID, v := range set {
		if prev, ok := original[fileID]; ok && prev.ID == v.ID {
			continue
		}
		err := q.InsertCommittedFile(ctx, sqlc.InsertCommittedFileParams{CommitID: commitID, VersionID: v.ID})
		if err != nil {
			return fmt.Errorf("inserting committed file: %w", err)
		}
	}
	return nil
}

// computeDiffs replaces a commit's cached FileDiffs with the differences
// between its CommittedFiles and its parent's.
func (s *DVCService) computeDiffs(ctx context.Context, q sqlc.Querier, commit *sqlc.Commit) error {
	if err := q.DeleteFileDiffsByCommit(ctx, commit.ID); err != nil {
		return fmt.Errorf("deleting file diffs: %w", err)
	}

	newSet, err := loadCommittedSet(ctx, q, commit.ID)
	if err != nil {
		return err
	}
	oldSet := committedSet{}
	if commit.ParentID.Valid {
		oldSet, err = loadCommittedSet(ctx, q, commit.ParentID.Int64)
		if err != nil {
			return err
		}
	}

	fileIDs := make([]int64, 0, len(newSet)+len(oldSet))
	for id := range newSet {
		fileIDs = append(fileIDs, id)
	}
	for id := range oldSet {
		if _, ok := newSet[id]; !ok {
			fileIDs = append(fileIDs, id)
		}
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	for _, fileID := range fileIDs {
		newV, hasNew := newSet[fileID]
		oldV, hasOld := oldSet[fileID]
		if hasNew && hasOld && newV.ID == oldV.ID {
			continue
		}

		params := sqlc.InsertFileDiffParams{CommitID: commit.ID}
		var names []string
		if hasNew {
			params.NewVersionID = validID(newV.ID)
			names = setAncestorNames(newSet, &newV, maxAncestorNames)
		} else {
			names = setAncestorNames(oldSet, &oldV, maxAncestorNames)
		}
		if hasOld {
			params.OldVersionID = validID(oldV.ID)
		}
		params.FirstThreeAncestors, err = encodeAncestors(names)
		if err != nil {
			return err
		}

		if _, err := q.InsertFileDiff(ctx, params); err != nil {
			return fmt.Errorf("inserting file diff: %w", err)
		}
	}
	return nil
}

const maxAncestorNames = 3

// setAncestorNames walks parent links inside one committed set, so the
// trail reflects the tree as of that commit.
func setAncestorNames(set committedSet, v *sqlc.Version, limit int) []string {
	var names []string
	parent := v.ParentID
	for parent.Valid && len(names) < limit {
		p, ok := set[parent.Int64]
		if !ok || p.FileID == v.FileID {
			break
		}
		names = append(names, p.Name)
		parent = p.ParentID
	}
	return names
}

func encodeAncestors(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encoding ancestors: %w", err)
	}
	return string(b), nil
}

func decodeAncestors(raw string) ([]string, error) {
	var names []string
	if raw == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("decoding ancestors: %w", err)
	}
	return names, nil
}

// AncestorPath renders a breadcrumb from ancestor names ordered nearest
// first. Only the two nearest names are shown; a third means the file is
// deeper still and renders as "..".
func AncestorPath(names []string) string {
	switch len(names) {
	case 0:
		return "Home"
	case 1:
		return names[0]
	case 2:
		return names[1] + " > " + names[0]
	default:
		return strings.Join([]string{"..", names[1], names[0]}, " > ")
	}
}
