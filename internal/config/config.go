package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for dvc.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Repository string           `toml:"repository"`
	Branch     string           `toml:"branch"`
	Author     string           `toml:"author"`
	Archives   []ArchiveConfig  `toml:"archives"`
	Encryption EncryptionConfig `toml:"encryption"`
	Database   DatabaseConfig   `toml:"database"`
	Drive      DriveConfig      `toml:"drive"`
	IDs        IDsConfig        `toml:"ids"`
}

// EncryptionConfig holds paths to the age key pair used for archive encryption.
type EncryptionConfig struct {
	Type           string   `toml:"type"` // "age" (default), "test" or "none"
	PublicKeyPath  string   `toml:"public_key_path"`
	PrivateKeyPath string   `toml:"private_key_path"`
	Recipients     []string `toml:"recipients,omitempty"` // extra age public keys
}

// DriveConfig selects the drive that working trees are pulled from.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DriveConfig struct {
	Type   string   `toml:"type"`           // "filesystem" or "memory"
	Root   string   `toml:"root,omitempty"` // only used for type=filesystem
	Ignore []string `toml:"ignore"`
}

// ArchiveConfig represents configuration for a backup archive provider.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// IDsConfig parameterizes the public id encoding. Changing the salt
// invalidates every id handed out before.
type IDsConfig struct {
	Salt      string `toml:"salt"`
	MinLength int    `toml:"min_length"`
}

// DefaultIDLength is the minimum length of public ids when unset.
const DefaultIDLength = 8

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(salt, baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Branch:  "main",
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "dvc.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "dvc.key"),
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		IDs:      IDsConfig{Salt: salt, MinLength: DefaultIDLength},
	}
}

// Validate reports the first setting that can't work.
func (c *Config) Validate() error {
	if c.IDs.Salt == "" {
		return fmt.Errorf("ids.salt must be set")
	}
	if c.IDs.MinLength < 0 {
		return fmt.Errorf("ids.min_length must not be negative, got %d", c.IDs.MinLength)
	}
	if len(c.Archives) > 1 {
		return fmt.Errorf("only one archive is supported, got %d", len(c.Archives))
	}
	switch c.Drive.Type {
	case "", "memory":
	case "filesystem":
		if c.Drive.Root == "" {
			return fmt.Errorf("filesystem drive requires root to be set")
		}
	default:
		return fmt.Errorf("unknown drive type: %s", c.Drive.Type)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.IDs.MinLength == 0 {
		cfg.IDs.MinLength = DefaultIDLength
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Save overwrites the config file at path, used after `dvc init` binds a repository.
func Save(path string, cfg *Config) error {
	return writeToFile(path, cfg)
}
