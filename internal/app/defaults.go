package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the paths dvc uses when the config does not say otherwise.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - DVC_CONFIG_PATH: config file location (default: ~/.config/dvc.toml)
//   - DVC_HOME: base directory for dvc data (default: ~/.local/share/dvc)
func GetDefaults() (*Defaults, error) {
	configPath, err := envOrHome("DVC_CONFIG_PATH", ".config", "dvc.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := envOrHome("DVC_HOME", ".local", "share", "dvc")
	if err != nil {
		return nil, err
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns the env var if set, otherwise the path under the home directory.
func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
