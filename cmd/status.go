package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cocodex/cocodex/internal/compose"
	"github.com/cocodex/cocodex/internal/mcpconfig"
	"github.com/cocodex/cocodex/internal/provision"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "maintenance",
	Short:   "Show sidecar installation status",
	Long: `Shows a one-shot summary of the sidecar installation: whether the
generated directory exists, the backing store is running, the post-commit
hook is installed, and the MCP server is registered in .mcp.json.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// composeRunningFunc reports whether the compose stack is up. Overridden in tests.
var composeRunningFunc = compose.Running

func runStatus(cmd *cobra.Command, args []string) error {
	repoPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return runStatusWithIO(cmd.Context(), os.Stdout, repoPath)
}

func runStatusWithIO(ctx context.Context, output io.Writer, repoPath string) error {
	sidecar := filepath.Join(repoPath, provision.SidecarDirName)

	w := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
	defer w.Flush()

	cfg, cfgErr := provision.LoadConfig(filepath.Join(sidecar, provision.ConfigTemplateName))
	if cfgErr != nil {
		fmt.Fprintf(w, "sidecar\t✗ not installed (%s missing)\n", sidecar)
		fmt.Fprintln(w, "\nRun `cocodex install` to set it up.")
		return nil
	}

	fmt.Fprintf(w, "sidecar\t✓ %s\n", sidecar)
	fmt.Fprintf(w, "project\t%s\n", cfg.Project)
	fmt.Fprintf(w, "port\t%d\n", cfg.Port)
	fmt.Fprintf(w, "patterns\t%s\n", provision.FormatPatternList(cfg.Patterns.Included))

	if composeRunningFunc(ctx, sidecar) {
		fmt.Fprintln(w, "backing store\t✓ running")
	} else {
		fmt.Fprintln(w, "backing store\t✗ not running (cd "+provision.SidecarDirName+" && docker compose up -d)")
	}

	hookPath := filepath.Join(repoPath, ".git", "hooks", "post-commit")
	if data, err := os.ReadFile(hookPath); err == nil && strings.Contains(string(data), provision.HookMarker) {
		fmt.Fprintln(w, "post-commit hook\t✓ installed")
	} else {
		fmt.Fprintln(w, "post-commit hook\t✗ not installed")
	}

	serverName := cfg.Project + "_cocoindex"
	if mcpconfig.HasServerEntry(filepath.Join(repoPath, ".mcp.json"), serverName) {
		fmt.Fprintf(w, "mcp server\t✓ %s\n", serverName)
	} else {
		fmt.Fprintf(w, "mcp server\t✗ %s not in .mcp.json\n", serverName)
	}

	return nil
}
