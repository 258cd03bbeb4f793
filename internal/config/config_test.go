package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:    "/home/user/.local/share/dvc",
		LogDir:     "/home/user/.local/share/dvc/log",
		Repository: "handbook",
		Branch:     "drafts",
		Author:     "ana",
		Archives: []ArchiveConfig{
			{Type: "filesystem", Name: "local", FSRoot: "/backup/archive"},
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/dvc/keys/dvc.pub",
			PrivateKeyPath: "/home/user/.local/share/dvc/keys/dvc.key",
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/dvc/db"},
		Drive: DriveConfig{
			Type:   "filesystem",
			Root:   "/home/user/docs",
			Ignore: []string{"*.tmp", ".git"},
		},
		IDs: IDsConfig{Salt: "pepper", MinLength: 10},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Repository != "handbook" || got.Branch != "drafts" || got.Author != "ana" {
		t.Errorf("Repository/Branch/Author = %q/%q/%q, want handbook/drafts/ana", got.Repository, got.Branch, got.Author)
	}
	if len(got.Archives) != 1 {
		t.Fatalf("len(Archives) = %d, want 1", len(got.Archives))
	}
	if got.Archives[0].FSRoot != "/backup/archive" {
		t.Errorf("Archive.FSRoot = %q, want %q", got.Archives[0].FSRoot, "/backup/archive")
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
	if got.Drive.Root != "/home/user/docs" {
		t.Errorf("Drive.Root = %q, want %q", got.Drive.Root, "/home/user/docs")
	}
	if len(got.Drive.Ignore) != 2 {
		t.Fatalf("len(Drive.Ignore) = %d, want 2", len(got.Drive.Ignore))
	}
	if got.IDs.Salt != "pepper" || got.IDs.MinLength != 10 {
		t.Errorf("IDs = %+v, want {pepper 10}", got.IDs)
	}
}

func TestManager_Read_DefaultIDLength(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader("[ids]\nsalt = \"s\"\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.IDs.MinLength != DefaultIDLength {
		t.Errorf("IDs.MinLength = %d, want %d", got.IDs.MinLength, DefaultIDLength)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("salt-1", "/data/dvc")

	if cfg.BaseDir != "/data/dvc" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/dvc")
	}
	if cfg.LogDir != "/data/dvc/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/dvc/log")
	}
	if cfg.Branch != "main" {
		t.Errorf("Branch = %q, want %q", cfg.Branch, "main")
	}
	if cfg.Encryption.PublicKeyPath != "/data/dvc/keys/dvc.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/dvc/keys/dvc.pub")
	}
	if cfg.Database.DataDir != "/data/dvc/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/dvc/db")
	}
	if cfg.IDs.Salt != "salt-1" {
		t.Errorf("IDs.Salt = %q, want %q", cfg.IDs.Salt, "salt-1")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"missing salt", func(c *Config) { c.IDs.Salt = "" }, "salt"},
		{"negative length", func(c *Config) { c.IDs.MinLength = -1 }, "min_length"},
		{"two archives", func(c *Config) {
			c.Archives = []ArchiveConfig{{Type: "memory"}, {Type: "memory"}}
		}, "one archive"},
		{"filesystem drive without root", func(c *Config) { c.Drive.Type = "filesystem" }, "root"},
		{"unknown drive", func(c *Config) { c.Drive.Type = "ftp" }, "unknown drive type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("salt", "/data/dvc")
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dvc.toml")
		cfg := NewConfig("s", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dvc.toml")
		cfg := NewConfig("s", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvc.toml")
	cfg := NewConfig("s", dir)
	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg.Repository = "handbook"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if got.Repository != "handbook" {
		t.Errorf("Repository = %q, want %q", got.Repository, "handbook")
	}
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dvc.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.IDs.Salt != "read-test" {
			t.Errorf("IDs.Salt = %q, want %q", got.IDs.Salt, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/dvc.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
