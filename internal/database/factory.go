package database

import (
	"fmt"
	"os"
	"path/filepath"

	"dvc-go/internal/config"
	"dvc-go/internal/dvc"
)

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config type.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, clock dvc.Clock) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, "dvc.db")
		return NewSQLiteDatabase(dbPath, clock)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:", clock)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating memory database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
