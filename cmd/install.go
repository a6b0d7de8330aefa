package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cocodex/cocodex/internal/cli"
	"github.com/cocodex/cocodex/internal/compose"
	"github.com/cocodex/cocodex/internal/hook"
	"github.com/cocodex/cocodex/internal/mcpconfig"
	"github.com/cocodex/cocodex/internal/probe"
	"github.com/cocodex/cocodex/internal/provision"
	"github.com/cocodex/cocodex/internal/pyenv"
	"github.com/cocodex/cocodex/internal/ui"
)

var installCmd = &cobra.Command{
	Use:     "install",
	GroupID: "setup",
	Short:   "Interactive setup of the semantic search sidecar",
	Long: `Walks you through installing the CocoIndex sidecar:

  - Checks required tools (git, docker, uv)
  - Picks a project name and a free port for the backing store
  - Detects which file types to index
  - Generates the sidecar under ./cocoindex and starts its containers
  - Installs a post-commit hook and registers the MCP server in .mcp.json`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

// prereqCheckerFn is the type for the prerequisite check function.
type prereqCheckerFn func([]cli.Prerequisite) []cli.CheckResult

// installDeps bundles the external collaborators of the install run so tests
// can substitute them without touching docker, uv, or the network.
type installDeps struct {
	checker      prereqCheckerFn
	daemonCheck  func() error
	portProbe    probe.Probe
	probeWarning string
	materialize  func(ctx context.Context, pctx provision.Context) error
	envSetup     func(ctx context.Context, dir string) error
	composeUp    func(ctx context.Context, dir string) error
	waitReady    func(ctx context.Context, dir string) error
	runIndex     func(ctx context.Context, dir string) error
	installHook  func(hookPath, snippet, marker string) (hook.Result, error)
	mergeConfig  func(docPath, name string, server mcpconfig.Server) (mcpconfig.MergeResult, error)
}

func defaultInstallDeps() installDeps {
	portProbe, warning := probe.Detect()
	fetcher := provision.NewFetcher()
	return installDeps{
		checker:      cli.CheckAll,
		daemonCheck:  checkDockerDaemon,
		portProbe:    portProbe,
		probeWarning: warning,
		materialize: func(ctx context.Context, pctx provision.Context) error {
			return provision.Materialize(ctx, fetcher, provision.DefaultTemplates, pctx)
		},
		envSetup: func(ctx context.Context, dir string) error {
			if err := pyenv.Create(ctx, dir); err != nil {
				return err
			}
			return pyenv.Install(ctx, dir)
		},
		composeUp: compose.Up,
		waitReady: func(ctx context.Context, dir string) error {
			return compose.WaitReady(ctx, dir, compose.DefaultReadyAttempts, compose.DefaultReadyInterval)
		},
		runIndex: func(ctx context.Context, dir string) error {
			return pyenv.Update(ctx, dir, true)
		},
		installHook: hook.Install,
		mergeConfig: mcpconfig.MergeServerEntry,
	}
}

func runInstall(cmd *cobra.Command, args []string) error {
	repoPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return runInstallWithIO(cmd.Context(), os.Stdin, os.Stdout, repoPath, defaultInstallDeps())
}

func runInstallWithIO(ctx context.Context, input io.Reader, output io.Writer, repoPath string, deps installDeps) error {
	fmt.Fprintln(output, "=== cocodex install ===")
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Checking prerequisites...")
	fmt.Fprintln(output)

	results := deps.checker(cli.DefaultPrerequisites())

	anyRequiredMissing := false
	for _, r := range results {
		var status string
		switch {
		case r.Found:
			status = "✓"
		case r.Prerequisite.Required:
			status = "✗"
			anyRequiredMissing = true
		default:
			status = "○"
		}

		line := fmt.Sprintf("  %s %s", status, r.Prerequisite.Name)
		if r.Found && r.Version != "" {
			line += fmt.Sprintf(" (%s)", r.Version)
		} else if !r.Found {
			line += " [not found]"
		}
		fmt.Fprintln(output, line)
	}

	fmt.Fprintln(output)

	if anyRequiredMissing {
		fmt.Fprintln(output, "Some required tools are missing. Install them to continue:")
		fmt.Fprintln(output)
		for _, r := range results {
			if !r.Found && r.Prerequisite.Required {
				fmt.Fprintf(output, "  %s — %s\n", r.Prerequisite.Name, r.Prerequisite.Description)
				fmt.Fprintf(output, "    Install: %s\n", r.Prerequisite.InstallURL)
				fmt.Fprintln(output)
			}
		}
		fmt.Fprintln(output, "After installing, run `cocodex install` again.")
		return nil
	}

	if err := deps.daemonCheck(); err != nil {
		return err
	}

	ui.Successf(output, "All prerequisites installed!")
	fmt.Fprintln(output)

	gitDir := filepath.Join(repoPath, ".git")
	inGitRepo := true
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		inGitRepo = false
		ui.Warnf(output, "%s is not a git repository; the auto-update hook will be skipped.", repoPath)
		fmt.Fprintln(output)
	}

	scanner := bufio.NewScanner(input)
	pctx := provision.NewContext(repoPath)

	// Project identity
	fmt.Fprintf(output, "Project name [%s]: ", pctx.ProjectID)
	pctx = pctx.WithProjectID(provision.NormalizeProjectID(readWithDefault(scanner, pctx.ProjectID)))

	// Port selection, gated by the availability probe
	port, err := choosePort(ctx, scanner, output, deps, pctx.Port)
	if err != nil {
		return err
	}
	pctx = pctx.WithPort(port)

	// Index patterns
	fmt.Fprintln(output)
	ui.Infof(output, "Detected file types: %s", provision.FormatPatternList(pctx.Included))
	fmt.Fprint(output, "Include patterns (comma-separated, Enter to accept): ")
	if answer := readLine(scanner); answer != "" {
		included := provision.ParsePatternList(answer)
		if len(included) == 0 {
			included = provision.DefaultIncludePatterns
		}
		pctx = pctx.WithPatterns(included, pctx.Excluded)
	}
	fmt.Fprintf(output, "Exclude patterns [%s]: ", provision.FormatPatternList(pctx.Excluded))
	if answer := readLine(scanner); answer != "" {
		pctx = pctx.WithPatterns(pctx.Included, provision.ParsePatternList(answer))
	}

	// Hook opt-in
	if inGitRepo {
		fmt.Fprint(output, "Install a post-commit hook to re-index automatically? [Y/n]: ")
		pctx = pctx.WithInstallHook(readYesNo(scanner, true))
	} else {
		pctx = pctx.WithInstallHook(false)
	}

	// The materializer needs a fresh target directory.
	sidecar := pctx.SidecarDir()
	if _, err := os.Stat(sidecar); err == nil {
		fmt.Fprintln(output)
		ui.Warnf(output, "%s already exists.", sidecar)
		fmt.Fprint(output, "Remove it and reinstall? [y/N]: ")
		if !readYesNo(scanner, false) {
			fmt.Fprintln(output, "Aborted.")
			return nil
		}
		if err := os.RemoveAll(sidecar); err != nil {
			return fmt.Errorf("failed to remove %s: %w", sidecar, err)
		}
	}

	fmt.Fprintln(output)
	ui.Infof(output, "Generating sidecar in %s...", sidecar)
	if err := deps.materialize(ctx, pctx); err != nil {
		return err
	}

	ui.Infof(output, "Setting up Python environment...")
	if err := deps.envSetup(ctx, sidecar); err != nil {
		return err
	}

	ui.Infof(output, "Starting backing store...")
	if err := deps.composeUp(ctx, sidecar); err != nil {
		return err
	}
	if err := deps.waitReady(ctx, sidecar); err != nil {
		return err
	}

	ui.Infof(output, "Building initial index (this can take a few minutes)...")
	if err := deps.runIndex(ctx, sidecar); err != nil {
		return err
	}

	if pctx.InstallHook {
		hookPath := filepath.Join(gitDir, "hooks", "post-commit")
		result, err := deps.installHook(hookPath, pctx.HookSnippet(), provision.HookMarker)
		if err != nil {
			return err
		}
		switch result {
		case hook.Created, hook.Appended:
			ui.Successf(output, "Post-commit hook installed (%s).", result)
		case hook.AlreadyPresent:
			ui.Infof(output, "Post-commit hook already installed.")
		}
	}

	mergeMCPConfig(output, repoPath, pctx, deps.mergeConfig)

	fmt.Fprintln(output)
	ui.Successf(output, "Install complete!")
	fmt.Fprintf(output, "MCP server %q is registered in .mcp.json.\n", pctx.ServerName())
	fmt.Fprintln(output, "Restart your MCP client to pick it up.")

	return nil
}

// choosePort prompts for a port until the probe reports it free, giving up
// after a few busy answers. A missing probe tool degrades to a warning, not
// a failure: the compose step is the final authority on the conflict.
func choosePort(ctx context.Context, scanner *bufio.Scanner, output io.Writer, deps installDeps, defaultPort int) (int, error) {
	if deps.probeWarning != "" {
		ui.Warnf(output, "Warning: %s", deps.probeWarning)
	}

	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(output, "Backing store port [%d]: ", defaultPort)
		answer := readWithDefault(scanner, strconv.Itoa(defaultPort))

		port, err := probe.ValidatePort(answer)
		if err != nil {
			ui.Warnf(output, "%v", err)
			continue
		}
		if !deps.portProbe.Available(ctx, port) {
			ui.Warnf(output, "Port %d is already in use; pick another.", port)
			continue
		}
		return port, nil
	}
	return 0, fmt.Errorf("could not find a free port after 3 attempts")
}

// mergeMCPConfig registers the sidecar MCP server in .mcp.json. A write
// failure is not fatal: the descriptor is printed for manual application.
func mergeMCPConfig(output io.Writer, repoPath string, pctx provision.Context, merge func(string, string, mcpconfig.Server) (mcpconfig.MergeResult, error)) {
	docPath := filepath.Join(repoPath, ".mcp.json")
	server := mcpconfig.Server{
		Command: pctx.PythonPath(),
		Args:    []string{pctx.MCPServerScript()},
	}

	result, err := merge(docPath, pctx.ServerName(), server)
	if result.ReplacedMalformed {
		ui.Warnf(output, "Warning: %s was not valid JSON; unrecognized content was replaced.", docPath)
	}
	if err != nil {
		ui.Warnf(output, "Could not update %s: %v", docPath, err)
		fmt.Fprintln(output, "Add this entry to .mcp.json manually:")
		entry, marshalErr := json.MarshalIndent(map[string]mcpconfig.Server{pctx.ServerName(): server}, "  ", "  ")
		if marshalErr == nil {
			fmt.Fprintf(output, "  %s\n", entry)
		}
		return
	}

	switch result.Status {
	case mcpconfig.Configured:
		ui.Successf(output, "MCP server registered in .mcp.json.")
	case mcpconfig.AlreadyConfigured:
		ui.Infof(output, "MCP server already registered in .mcp.json.")
	}
}
