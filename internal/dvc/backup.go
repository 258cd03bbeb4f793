package dvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"dvc-go/internal/database/sqlc"
)

// Backup archives a version's content at most once. Folders and versions
// without content have nothing to archive and return nil. Concurrent calls
// for the same version all return the single winning row.
func (s *DVCService) Backup(ctx context.Context, versionID int64) (*sqlc.FileBackup, error) {
	q := s.database.Queries()
	v, err := getVersion(ctx, q, versionID)
	if err != nil {
		return nil, err
	}
	if v.IsFolder || !v.ContentID.Valid {
		return nil, nil
	}
	if existing, err := findBackup(ctx, q, v.ID); err != nil || existing != nil {
		return existing, err
	}

	file, err := q.GetFileByID(ctx, v.FileID)
	if err != nil {
		return nil, fmt.Errorf("loading file: %w", err)
	}
	archive, err := s.ensureArchive(ctx, file.RepositoryID)
	if err != nil {
		return nil, err
	}
	content, err := getContent(ctx, q, v.ContentID.Int64)
	if err != nil {
		return nil, err
	}

	payload, err := s.pack(content.PlainText)
	if err != nil {
		return nil, err
	}
	name := s.idgen.New()
	location, err := s.archive.Put(ctx, archive.ExternalID, name, bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, unavailableError("archive", err)
	}

	var backup *sqlc.FileBackup
	err = s.database.Tx(ctx, func(q sqlc.Querier) error {
		_, err := q.InsertFileBackup(ctx, sqlc.InsertFileBackupParams{
			VersionID:        v.ID,
			ExternalLocation: location,
			CreatedAt:        s.now(),
		})
		if err != nil {
			if !s.database.IsUniqueViolation(err) {
				return fmt.Errorf("inserting file backup: %w", err)
			}
			s.logger.Debug("backup already recorded", "version_id", v.ID, "orphan", location)
		}
		backup, err = findBackup(ctx, q, v.ID)
		if err == nil && backup == nil {
			err = fmt.Errorf("backup for version %d missing after insert", v.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version backed up", "version_id", v.ID, "location", backup.ExternalLocation, "bytes", len(payload))
	return backup, nil
}

// BackupPending archives every version of a repository that has content
// and no backup yet. It stops at the first failure and reports how many
// versions were archived before it.
func (s *DVCService) BackupPending(ctx context.Context, repositoryID int64) (int, error) {
	if _, err := getRepository(ctx, s.database.Queries(), repositoryID); err != nil {
		return 0, err
	}
	versions, err := s.database.Queries().ListVersionsWithoutBackup(ctx, repositoryID)
	if err != nil {
		return 0, fmt.Errorf("listing versions without backup: %w", err)
	}

	count := 0
	for _, v := range versions {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		backup, err := s.Backup(ctx, v.ID)
		if err != nil {
			return count, fmt.Errorf("backing up version %d: %w", v.ID, err)
		}
		if backup != nil {
			count++
		}
	}
	return count, nil
}

// RestoreBackup writes the archived text of a version to w. dc must be
// non-nil when backups are encrypted.
func (s *DVCService) RestoreBackup(ctx context.Context, versionID int64, w io.Writer, dc DecryptionContext) error {
	backup, err := findBackup(ctx, s.database.Queries(), versionID)
	if err != nil {
		return err
	}
	if backup == nil {
		return notFoundError("backup", versionID)
	}
	encrypted := s.encryptor != nil && s.encryptor.IsConfigured()
	if encrypted && dc == nil {
		return invalidError("backup", "", "is encrypted, unlock the private key first")
	}

	var raw bytes.Buffer
	if err := s.archive.Get(ctx, backup.ExternalLocation, &raw); err != nil {
		return unavailableError("archive", err)
	}

	var compressed io.Reader = &raw
	if encrypted {
		var plain bytes.Buffer
		if err := dc.Decrypt(&raw, &plain); err != nil {
			return fmt.Errorf("decrypting backup: %w", err)
		}
		compressed = &plain
	}

	dec, err := zstd.NewReader(compressed)
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	defer dec.Close()
	if _, err := io.Copy(w, dec); err != nil {
		return fmt.Errorf("decompressing backup: %w", err)
	}
	return nil
}

// ShareArchive grants principal access to a repository's archive container.
func (s *DVCService) ShareArchive(ctx context.Context, repositoryID int64, principal string, role Role) error {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return invalidError("archive", "principal", "can't be blank")
	}
	if !role.Valid() {
		return invalidError("archive", "role", fmt.Sprintf("%q is not a role", role))
	}
	archive, err := s.ensureArchive(ctx, repositoryID)
	if err != nil {
		return err
	}
	if err := s.archive.Share(ctx, archive.ExternalID, principal, role); err != nil {
		return unavailableError("archive", err)
	}

	s.logger.Info("archive shared", "repository_id", repositoryID, "principal", principal, "role", string(role))
	return nil
}

// ensureArchive finds or creates the repository's archive container. The
// provider call happens outside the transaction; a lost insert race keeps
// the winner's container.
func (s *DVCService) ensureArchive(ctx context.Context, repositoryID int64) (*sqlc.Archive, error) {
	q := s.database.Queries()
	archive, err := findArchive(ctx, q, repositoryID)
	if err != nil || archive != nil {
		return archive, err
	}
	repo, err := getRepository(ctx, q, repositoryID)
	if err != nil {
		return nil, err
	}

	externalID, err := s.archive.CreateContainer(ctx, "dvc-"+s.codec.Encode(repo.ID))
	if err != nil {
		return nil, unavailableError("archive", err)
	}

	err = s.database.Tx(ctx, func(q sqlc.Querier) error {
		_, err := q.InsertArchive(ctx, sqlc.InsertArchiveParams{
			RepositoryID: repositoryID,
			ExternalID:   externalID,
			CreatedAt:    s.now(),
		})
		if err != nil && !s.database.IsUniqueViolation(err) {
			return fmt.Errorf("inserting archive: %w", err)
		}
		archive, err = findArchive(ctx, q, repositoryID)
		if err == nil && archive == nil {
			err = fmt.Errorf("archive for repository %d missing after insert", repositoryID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("archive created", "repository", repo.Name, "container", archive.ExternalID)
	return archive, nil
}

// pack compresses text and, when keys are configured, encrypts the result.
func (s *DVCService) pack(text string) ([]byte, error) {
	var compressed bytes.Buffer
	enc, err := zstd.NewWriter(&compressed)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	if _, err := io.WriteString(enc, text); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compressing content: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compressing content: %w", err)
	}

	if s.encryptor == nil || !s.encryptor.IsConfigured() {
		return compressed.Bytes(), nil
	}
	var sealed bytes.Buffer
	if err := s.encryptor.Encrypt(&compressed, &sealed); err != nil {
		return nil, fmt.Errorf("encrypting content: %w", err)
	}
	return sealed.Bytes(), nil
}

func findBackup(ctx context.Context, q sqlc.Querier, versionID int64) (*sqlc.FileBackup, error) {
	backup, err := q.GetFileBackupByVersion(ctx, versionID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding backup: %w", err)
	}
	return &backup, nil
}

func findArchive(ctx context.Context, q sqlc.Querier, repositoryID int64) (*sqlc.Archive, error) {
	archive, err := q.GetArchiveByRepository(ctx, repositoryID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding archive: %w", err)
	}
	return &archive, nil
}
