package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cocodex/cocodex/internal/provision"
	"github.com/cocodex/cocodex/internal/pyenv"
	"github.com/cocodex/cocodex/internal/reindex"
)

var reindexDir string

var reindexCmd = &cobra.Command{
	Use:     "reindex",
	GroupID: "maintenance",
	Short:   "Re-index the repository now",
	Long: `Runs a CocoIndex update against the sidecar. The post-commit hook
invokes this in the background after every commit.

Concurrent invocations are collapsed: if a re-index for this sidecar is
already running, the command exits quietly and the next commit catches up.`,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().StringVar(&reindexDir, "dir", "", "Sidecar directory (defaults to ./"+provision.SidecarDirName+")")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	dir := reindexDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = filepath.Join(wd, provision.SidecarDirName)
	}
	return runReindexIn(cmd.Context(), dir, func(ctx context.Context, dir string) error {
		return pyenv.Update(ctx, dir, false)
	})
}

func runReindexIn(ctx context.Context, dir string, update func(context.Context, string) error) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("sidecar directory %s not found; run `cocodex install` first", dir)
	}

	lock, err := reindex.Acquire(dir)
	if err != nil {
		if errors.Is(err, reindex.ErrHeld) {
			// Another hook invocation is indexing; nothing to do.
			slog.Debug("reindex already running, skipping", "dir", dir)
			return nil
		}
		return err
	}
	defer lock.Release()

	return update(ctx, dir)
}
