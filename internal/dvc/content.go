package dvc

import (
	"context"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"

	"dvc-go/internal/database/sqlc"
)

// Checksum returns the content address of text: blake3-256 in hex.
func Checksum(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ResolveContent returns the Content for revision of the remote file
// externalID, fetching the text from the drive only when the revision has
// not been seen before.
func (s *DVCService) ResolveContent(ctx context.Context, repositoryID int64, externalID string, revision string) (*sqlc.Content, error) {
	text, known, err := s.fetchContent(ctx, repositoryID, externalID, revision)
	if err != nil {
		return nil, err
	}

	var content *sqlc.Content
	err = s.database.Tx(ctx, func(q sqlc.Querier) error {
		var err error
		content, err = s.storeContent(ctx, q, repositoryID, externalID, revision, text, known)
		return err
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// fetchContent downloads the text for a revision unless a RemoteContent row
// already maps it. It runs outside any transaction so that a failing drive
// leaves no partial state behind.
func (s *DVCService) fetchContent(ctx context.Context, repositoryID int64, externalID string, revision string) (string, bool, error) {
	_, err := s.database.Queries().GetRemoteContent(ctx, sqlc.GetRemoteContentParams{
		RepositoryID:   repositoryID,
		RemoteFileID:   externalID,
		RemoteRevision: revision,
	})
	if err == nil {
		return "", true, nil
	}
	if !isNoRows(err) {
		return "", false, fmt.Errorf("finding remote content: %w", err)
	}

	text, err := s.adapter.FetchContent(ctx, externalID, revision)
	if err != nil {
		return "", false, adapterError("content", err)
	}
	return text, false, nil
}

// storeContent maps (externalID, revision) to a deduplicated Content row.
// Byte-identical text from different revisions or files shares one row.
func (s *DVCService) storeContent(ctx context.Context, q sqlc.Querier, repositoryID int64, externalID string, revision string, text string, known bool) (*sqlc.Content, error) {
	remoteKey := sqlc.GetRemoteContentParams{
		RepositoryID:   repositoryID,
		RemoteFileID:   externalID,
		RemoteRevision: revision,
	}
	remote, err := q.GetRemoteContent(ctx, remoteKey)
	if err == nil {
		return getContent(ctx, q, remote.ContentID)
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("finding remote content: %w", err)
	}
	if known {
		return nil, fmt.Errorf("remote content %s@%s disappeared", externalID, revision)
	}

	content, err := s.ensureContent(ctx, q, repositoryID, text)
	if err != nil {
		return nil, err
	}

	_, err = q.InsertRemoteContent(ctx, sqlc.InsertRemoteContentParams{
		RepositoryID:   repositoryID,
		RemoteFileID:   externalID,
		RemoteRevision: revision,
		ContentID:      content.ID,
		CreatedAt:      s.now(),
	})
	if err != nil {
		if !s.database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting remote content: %w", err)
		}
		remote, err := q.GetRemoteContent(ctx, remoteKey)
		if err != nil {
			return nil, fmt.Errorf("finding remote content after race: %w", err)
		}
		return getContent(ctx, q, remote.ContentID)
	}
	return content, nil
}

func (s *DVCService) ensureContent(ctx context.Context, q sqlc.Querier, repositoryID int64, text string) (*sqlc.Content, error) {
	key := sqlc.GetContentByChecksumParams{RepositoryID: repositoryID, Checksum: Checksum(text)}

	content, err := q.GetContentByChecksum(ctx, key)
	if err == nil {
		return &content, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("finding content: %w", err)
	}

	id, err := q.InsertContent(ctx, sqlc.InsertContentParams{
		RepositoryID: repositoryID,
		Checksum:     key.Checksum,
		PlainText:    text,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if !s.database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting content: %w", err)
		}
		content, err = q.GetContentByChecksum(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("finding content after race: %w", err)
		}
		return &content, nil
	}
	return getContent(ctx, q, id)
}

// ensureFile returns the stable identity for externalID, creating it on
// first sight.
func (s *DVCService) ensureFile(ctx context.Context, q sqlc.Querier, repositoryID int64, externalID string) (*sqlc.File, error) {
	key := sqlc.GetFileByExternalIDParams{RepositoryID: repositoryID, ExternalID: externalID}

	file, err := q.GetFileByExternalID(ctx, key)
	if err == nil {
		return &file, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("finding file: %w", err)
	}

	id, err := q.InsertFile(ctx, sqlc.InsertFileParams{
		RepositoryID: repositoryID,
		ExternalID:   externalID,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if !s.database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting file: %w", err)
		}
		file, err = q.GetFileByExternalID(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("finding file after race: %w", err)
		}
		return &file, nil
	}

	file, err = q.GetFileByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading file: %w", err)
	}
	return &file, nil
}

func getContent(ctx context.Context, q sqlc.Querier, id int64) (*sqlc.Content, error) {
	content, err := q.GetContentByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("content", id)
		}
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return &content, nil
}
