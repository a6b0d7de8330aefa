package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cocodex/cocodex/internal/compose"
	"github.com/cocodex/cocodex/internal/hook"
	"github.com/cocodex/cocodex/internal/mcpconfig"
	"github.com/cocodex/cocodex/internal/provision"
	"github.com/cocodex/cocodex/internal/ui"
)

var uninstallSkipConfirm bool

var uninstallCmd = &cobra.Command{
	Use:     "uninstall",
	GroupID: "maintenance",
	Short:   "Remove the sidecar, hook, and MCP entry",
	Long: `Reverses an install: stops the backing store and deletes its volumes,
removes the generated sidecar directory, strips the auto-update snippet from
the post-commit hook, and deletes the MCP entry from .mcp.json.

Unrelated hook content and .mcp.json entries are left untouched.

It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(uninstallCmd)
}

// uninstallDeps bundles the collaborators so tests can avoid docker.
type uninstallDeps struct {
	composeDown func(ctx context.Context, dir string) error
	removeHook  func(hookPath, snippet, marker string) (bool, error)
	removeEntry func(docPath, name string) (bool, error)
}

func defaultUninstallDeps() uninstallDeps {
	return uninstallDeps{
		composeDown: compose.Down,
		removeHook:  hook.Remove,
		removeEntry: mcpconfig.RemoveServerEntry,
	}
}

func runUninstall(cmd *cobra.Command, args []string) error {
	repoPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return runUninstallWithIO(cmd.Context(), os.Stdin, os.Stdout, repoPath, uninstallSkipConfirm, defaultUninstallDeps())
}

func runUninstallWithIO(ctx context.Context, input io.Reader, output io.Writer, repoPath string, skipConfirm bool, deps uninstallDeps) error {
	sidecar := filepath.Join(repoPath, provision.SidecarDirName)
	hookPath := filepath.Join(repoPath, ".git", "hooks", "post-commit")
	docPath := filepath.Join(repoPath, ".mcp.json")

	sidecarExists := false
	var projectID string
	if cfg, err := provision.LoadConfig(filepath.Join(sidecar, provision.ConfigTemplateName)); err == nil {
		sidecarExists = true
		projectID = cfg.Project
	} else if _, statErr := os.Stat(sidecar); statErr == nil {
		sidecarExists = true
		projectID = provision.DeriveProjectID(repoPath)
	}

	hookInstalled := false
	if data, err := os.ReadFile(hookPath); err == nil && strings.Contains(string(data), provision.HookMarker) {
		hookInstalled = true
	}

	serverName := projectID + "_cocoindex"
	entryExists := projectID != "" && mcpconfig.HasServerEntry(docPath, serverName)

	if !sidecarExists && !hookInstalled && !entryExists {
		fmt.Fprintln(output, "Nothing to uninstall.")
		return nil
	}

	fmt.Fprintln(output, "This will remove:")
	if sidecarExists {
		fmt.Fprintf(output, "  - The sidecar directory %s (containers and index data included)\n", sidecar)
	}
	if hookInstalled {
		fmt.Fprintln(output, "  - The auto-update snippet from .git/hooks/post-commit")
	}
	if entryExists {
		fmt.Fprintf(output, "  - The %q entry from .mcp.json\n", serverName)
	}

	if !skipConfirm {
		if !confirm(input, output, "Continue?") {
			fmt.Fprintln(output, "Aborted.")
			return nil
		}
	}

	fmt.Fprintln(output)

	if sidecarExists {
		if err := deps.composeDown(ctx, sidecar); err != nil {
			ui.Warnf(output, "Warning: %v", err)
		}
		if err := os.RemoveAll(sidecar); err != nil {
			return fmt.Errorf("failed to remove %s: %w", sidecar, err)
		}
		ui.Successf(output, "Removed %s", sidecar)
	}

	if hookInstalled {
		pctx := provision.Context{RepoDir: repoPath, ProjectID: projectID}
		removed, err := deps.removeHook(hookPath, pctx.HookSnippet(), provision.HookMarker)
		if err != nil {
			ui.Warnf(output, "Warning: %v", err)
		} else if removed {
			ui.Successf(output, "Removed auto-update snippet from post-commit hook")
		}
	}

	if entryExists {
		removed, err := deps.removeEntry(docPath, serverName)
		if err != nil {
			ui.Warnf(output, "Warning: %v", err)
		} else if removed {
			ui.Successf(output, "Removed %q from .mcp.json", serverName)
		}
	}

	return nil
}
