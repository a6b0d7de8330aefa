// Package pyenv manages the sidecar's Python environment through uv: venv
// creation, dependency installation, and index runs via the cocoindex CLI.
package pyenv

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// runCommandFunc executes a command in the sidecar directory and returns
// combined output. Overridden in tests.
var runCommandFunc = func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Create makes the .venv virtual environment inside the sidecar dir.
func Create(ctx context.Context, dir string) error {
	out, err := runCommandFunc(ctx, dir, "uv", "venv")
	if err != nil {
		return fmt.Errorf("failed to create virtual environment: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Install installs the sidecar's Python dependencies into the venv.
func Install(ctx context.Context, dir string) error {
	out, err := runCommandFunc(ctx, dir, "uv", "pip", "install", "-r", "requirements.txt")
	if err != nil {
		return fmt.Errorf("failed to install sidecar dependencies: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Update runs a cocoindex index update against the sidecar flow. With setup
// true it also creates the target tables first (used for the initial index).
func Update(ctx context.Context, dir string, setup bool) error {
	bin := filepath.Join(".venv", "bin", "cocoindex")
	args := []string{"update"}
	if setup {
		args = append(args, "--setup")
	}
	args = append(args, "main.py")

	slog.Debug("running index update", "dir", dir, "setup", setup)
	out, err := runCommandFunc(ctx, dir, bin, args...)
	if err != nil {
		return fmt.Errorf("index update failed: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
