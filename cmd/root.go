package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cocodex/cocodex/internal/logger"
)

var (
	verboseMode           bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "cocodex",
	Short: "Provision a CocoIndex semantic code search sidecar into a repository",
	Long: `cocodex installs a self-contained semantic code search sidecar into the
current repository: a CocoIndex indexing flow, a Postgres/pgvector backing
store run via docker compose, an MCP server your coding agent can query,
and a post-commit hook that keeps the index fresh.

Run it once from the repository root and answer the prompts.`,
	Example: `  cocodex install     # Interactive setup in the current repo
  cocodex status      # Show what is installed and running
  cocodex reindex     # Re-index now (the git hook runs this for you)
  cocodex uninstall   # Remove the sidecar, hook, and MCP entry`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Enable debug logging")

	// Command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
		&cobra.Group{ID: "maintenance", Title: "Maintenance Commands:"},
	)

	// Hide the auto-generated completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

func initConfig() {
	logger.SetDebug(verboseMode)
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("cocodex %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("cocodex %s\n", version)
}
