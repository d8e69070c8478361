package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DorNorimberg/Food-Tracker/internal/config"
)

const (
	appDirName   = "foodtracker"
	dbFileName   = "foodtracker.db"
	jsonFileName = "foodtracker.json"
	backupDir    = "backups"
)

// DataDir is the directory holding the state file and backups.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", appDirName), nil
}

// DefaultStatePath returns where state lives for the given storage kind.
func DefaultStatePath(storage string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if storage == config.StorageJSON {
		return filepath.Join(dir, jsonFileName), nil
	}
	return filepath.Join(dir, dbFileName), nil
}

// DefaultBackupDir keeps backups next to the state file.
func DefaultBackupDir(statePath string) string {
	return filepath.Join(filepath.Dir(statePath), backupDir)
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
