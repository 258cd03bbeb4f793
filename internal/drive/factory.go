package drive

import (
	"fmt"

	"dvc-go/internal/config"
	"dvc-go/internal/dvc"
)

// NewDriveFromConfig creates a SyncAdapter based on the drive config type.
func NewDriveFromConfig(cfg config.DriveConfig) (dvc.SyncAdapter, error) {
	switch cfg.Type {
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem drive requires root to be set")
		}
		d, err := NewLocalDrive(cfg.Root, cfg.Ignore)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "memory", "":
		return NewMemoryDrive(RootID), nil
	default:
		return nil, fmt.Errorf("unknown drive type: %s", cfg.Type)
	}
}
