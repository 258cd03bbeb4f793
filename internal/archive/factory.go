package archive

import (
	"context"
	"fmt"

	"dvc-go/internal/config"
	"dvc-go/internal/dvc"
)

// NewArchiveFromConfig creates an Archive implementation based on the archive config type.
func NewArchiveFromConfig(ctx context.Context, cfg config.ArchiveConfig) (dvc.Archive, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryArchive(cfg.Name), nil
	case "s3":
		a, err := NewS3Archive(ctx, cfg.Name, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem archive requires fs_root to be set")
		}
		a, err := NewFileSystemArchive(cfg.Name, cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
