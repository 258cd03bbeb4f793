package dvc

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"dvc-go/internal/database/sqlc"
)

// VersionAttrs is the full attribute set of a version. FileID, Name,
// ContentID, IsFolder and ParentID form the identity; Thumbnail is
// supplemental and may change on an existing row.
type VersionAttrs struct {
	FileID    int64
	Name      string
	ContentID *int64
	IsFolder  bool
	ParentID  *int64
	Thumbnail []byte
}

// AttrsOf returns the attributes of an existing version.
func AttrsOf(v *sqlc.Version) VersionAttrs {
	return VersionAttrs{
		FileID:    v.FileID,
		Name:      v.Name,
		ContentID: ptrID(v.ContentID),
		IsFolder:  v.IsFolder,
		ParentID:  ptrID(v.ParentID),
		Thumbnail: v.Thumbnail,
	}
}

// Materialize returns the version with the identity of attrs, creating it
// if needed. A differing non-nil thumbnail is merged onto the row in place.
func (s *DVCService) Materialize(ctx context.Context, attrs VersionAttrs) (*sqlc.Version, error) {
	var v *sqlc.Version
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		var err error
		v, err = s.materialize(ctx, q, attrs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetVersion loads a version by id.
func (s *DVCService) GetVersion(ctx context.Context, id int64) (*sqlc.Version, error) {
	return getVersion(ctx, s.database.Queries(), id)
}

// FileVersions lists every version ever minted for a file, newest first.
func (s *DVCService) FileVersions(ctx context.Context, fileID int64) ([]sqlc.Version, error) {
	versions, err := s.database.Queries().ListVersionsByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	return versions, nil
}

func (s *DVCService) materialize(ctx context.Context, q sqlc.Querier, attrs VersionAttrs) (*sqlc.Version, error) {
	if attrs.Name == "" {
		return nil, invalidError("version", "name", "can't be blank")
	}
	if attrs.ParentID != nil && *attrs.ParentID == attrs.FileID {
		return nil, invalidError("version", "parent", "can't be the file itself")
	}

	identity := sqlc.FindVersionByIdentityParams{
		FileID:    attrs.FileID,
		Name:      attrs.Name,
		ContentID: nullID(attrs.ContentID),
		IsFolder:  attrs.IsFolder,
		ParentID:  nullID(attrs.ParentID),
	}

	v, err := findVersion(ctx, q, identity)
	if err != nil {
		return nil, err
	}

	if v == nil {
		id, err := q.InsertVersion(ctx, sqlc.InsertVersionParams{
			FileID:    identity.FileID,
			Name:      identity.Name,
			ContentID: identity.ContentID,
			IsFolder:  identity.IsFolder,
			ParentID:  identity.ParentID,
			Thumbnail: attrs.Thumbnail,
			CreatedAt: s.now(),
		})
		if err == nil {
			return getVersion(ctx, q, id)
		}
		if !s.database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting version: %w", err)
		}
		v, err = findVersion(ctx, q, identity)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("version for file %d missing after unique violation", attrs.FileID)
		}
	}

	if attrs.Thumbnail != nil && !bytes.Equal(attrs.Thumbnail, v.Thumbnail) {
		err := q.UpdateVersionSupplements(ctx, sqlc.UpdateVersionSupplementsParams{
			Thumbnail: attrs.Thumbnail,
			ID:        v.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("updating version supplements: %w", err)
		}
		v.Thumbnail = attrs.Thumbnail
	}
	return v, nil
}

func findVersion(ctx context.Context, q sqlc.Querier, identity sqlc.FindVersionByIdentityParams) (*sqlc.Version, error) {
	v, err := q.FindVersionByIdentity(ctx, identity)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding version: %w", err)
	}
	return &v, nil
}

func getVersion(ctx context.Context, q sqlc.Querier, id int64) (*sqlc.Version, error) {
	v, err := q.GetVersionByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("version", id)
		}
		return nil, fmt.Errorf("loading version: %w", err)
	}
	return &v, nil
}

// loadVersion resolves an optional version id.
func loadVersion(ctx context.Context, q sqlc.Querier, id sql.NullInt64) (*sqlc.Version, error) {
	if !id.Valid {
		return nil, nil
	}
	return getVersion(ctx, q, id.Int64)
}
