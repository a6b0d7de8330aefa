// Package paths resolves the per-user state directory used for lock files.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// StateDir returns the cocodex state directory (~/.cocodex), creating it if
// needed.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".cocodex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}
