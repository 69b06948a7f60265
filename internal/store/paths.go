package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default data directory.
// On Unix: ~/.reflex
// On Windows: %USERPROFILE%\.reflex
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".reflex"), nil
}

// ResolveDataDir expands an empty or "~" prefixed directory into an
// absolute path, falling back to the default when none is given.
func ResolveDataDir(dir string) (string, error) {
	if dir == "" {
		return DefaultDataDir()
	}
	if dir == "~" || len(dir) > 1 && dir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		if dir == "~" {
			return home, nil
		}
		return filepath.Join(home, dir[2:]), nil
	}
	return dir, nil
}

// ensureDir creates the data directory if it doesn't exist.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
