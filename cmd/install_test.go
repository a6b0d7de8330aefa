package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cocodex/cocodex/internal/cli"
	"github.com/cocodex/cocodex/internal/hook"
	"github.com/cocodex/cocodex/internal/mcpconfig"
	"github.com/cocodex/cocodex/internal/provision"
)

// allFoundChecker returns a checker where every prerequisite is found.
func allFoundChecker(prereqs []cli.Prerequisite) []cli.CheckResult {
	results := make([]cli.CheckResult, len(prereqs))
	for i, p := range prereqs {
		results[i] = cli.CheckResult{
			Prerequisite: p,
			Found:        true,
			Version:      p.Name + " version 1.0",
		}
	}
	return results
}

// noneFoundChecker returns a checker where no prerequisite is found.
func noneFoundChecker(prereqs []cli.Prerequisite) []cli.CheckResult {
	results := make([]cli.CheckResult, len(prereqs))
	for i, p := range prereqs {
		results[i] = cli.CheckResult{
			Prerequisite: p,
			Found:        false,
		}
	}
	return results
}

// freePortProbe always reports ports available.
type freePortProbe struct{}

func (freePortProbe) Name() string                              { return "fake" }
func (freePortProbe) Available(ctx context.Context, p int) bool { return true }

// busyPortProbe reports every port as bound.
type busyPortProbe struct{}

func (busyPortProbe) Name() string                              { return "fake" }
func (busyPortProbe) Available(ctx context.Context, p int) bool { return false }

// stubDeps returns deps where every external collaborator succeeds and the
// materializer actually writes the synthesized config (so later steps that
// read it back behave realistically).
func stubDeps() installDeps {
	return installDeps{
		checker:     allFoundChecker,
		daemonCheck: func() error { return nil },
		portProbe:   freePortProbe{},
		materialize: func(ctx context.Context, pctx provision.Context) error {
			if err := os.MkdirAll(pctx.SidecarDir(), 0o755); err != nil {
				return err
			}
			data, err := provision.RenderConfig(pctx)
			if err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(pctx.SidecarDir(), provision.ConfigTemplateName), data, 0o644)
		},
		envSetup:    func(ctx context.Context, dir string) error { return nil },
		composeUp:   func(ctx context.Context, dir string) error { return nil },
		waitReady:   func(ctx context.Context, dir string) error { return nil },
		runIndex:    func(ctx context.Context, dir string) error { return nil },
		installHook: hook.Install,
		mergeConfig: mcpconfig.MergeServerEntry,
	}
}

// gitRepo creates a temp dir with a .git directory.
func gitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git", "hooks"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunInstall_AllPrereqsMissing(t *testing.T) {
	var out bytes.Buffer
	deps := stubDeps()
	deps.checker = noneFoundChecker

	err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, gitRepo(t), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "Some required tools are missing") {
		t.Errorf("expected missing tools message, got:\n%s", output)
	}
	if !strings.Contains(output, "cocodex install") {
		t.Errorf("expected retry instruction, got:\n%s", output)
	}
	// Should not reach the wizard prompts
	if strings.Contains(output, "Project name") {
		t.Errorf("should not prompt when prereqs are missing, got:\n%s", output)
	}
}

func TestRunInstall_ShowsInstallURLs(t *testing.T) {
	var out bytes.Buffer
	deps := stubDeps()
	deps.checker = noneFoundChecker

	if err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, gitRepo(t), deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, url := range []string{"https://git-scm.com", "https://docs.docker.com", "https://docs.astral.sh/uv"} {
		if !strings.Contains(out.String(), url) {
			t.Errorf("expected install URL %s, got:\n%s", url, out.String())
		}
	}
}

func TestRunInstall_DaemonUnreachableIsFatal(t *testing.T) {
	var out bytes.Buffer
	deps := stubDeps()
	deps.daemonCheck = func() error { return errors.New("container runtime is not reachable") }

	err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, gitRepo(t), deps)
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %v", err)
	}
}

func TestRunInstall_FullRunWithDefaults(t *testing.T) {
	repo := gitRepo(t)
	// A Python file so pattern detection finds something.
	if err := os.WriteFile(filepath.Join(repo, "app.py"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	// Empty input: every prompt takes its default.
	err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, repo, stubDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out.String())
	}

	output := out.String()
	if !strings.Contains(output, "Install complete!") {
		t.Errorf("expected completion message, got:\n%s", output)
	}

	// Sidecar config written with defaults
	cfg, err := provision.LoadConfig(filepath.Join(repo, "cocoindex", "cocoindex.yaml"))
	if err != nil {
		t.Fatalf("sidecar config missing: %v", err)
	}
	if cfg.Port != provision.DefaultPort {
		t.Errorf("port = %d, want default %d", cfg.Port, provision.DefaultPort)
	}
	if len(cfg.Patterns.Included) == 0 {
		t.Error("include patterns empty")
	}

	// Hook installed by default
	hookData, err := os.ReadFile(filepath.Join(repo, ".git", "hooks", "post-commit"))
	if err != nil {
		t.Fatalf("hook not installed: %v", err)
	}
	if !strings.Contains(string(hookData), provision.HookMarker) {
		t.Errorf("hook missing marker:\n%s", hookData)
	}

	// MCP entry registered
	if !mcpconfig.HasServerEntry(filepath.Join(repo, ".mcp.json"), cfg.Project+"_cocoindex") {
		t.Error("MCP entry not registered")
	}
}

func TestRunInstall_CustomAnswers(t *testing.T) {
	repo := gitRepo(t)

	// project name, port, include patterns, exclude patterns, hook opt-out
	input := "MyProj\n6001\n*.go, *.md\n\nn\n"
	var out bytes.Buffer
	err := runInstallWithIO(context.Background(), strings.NewReader(input), &out, repo, stubDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out.String())
	}

	cfg, err := provision.LoadConfig(filepath.Join(repo, "cocoindex", "cocoindex.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project != "myproj" {
		t.Errorf("project = %q, want normalized %q", cfg.Project, "myproj")
	}
	if cfg.Port != 6001 {
		t.Errorf("port = %d, want 6001", cfg.Port)
	}
	if len(cfg.Patterns.Included) != 2 || cfg.Patterns.Included[0] != "*.go" {
		t.Errorf("included = %v", cfg.Patterns.Included)
	}

	// Hook declined
	if _, err := os.Stat(filepath.Join(repo, ".git", "hooks", "post-commit")); !os.IsNotExist(err) {
		t.Error("hook should not be installed when declined")
	}
}

func TestRunInstall_ProjectNameWithSlashKeepsBothParts(t *testing.T) {
	repo := gitRepo(t)

	// A slash in the name must not be treated as a path separator.
	input := "my/proj\n\n\n\nn\n"
	var out bytes.Buffer
	err := runInstallWithIO(context.Background(), strings.NewReader(input), &out, repo, stubDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out.String())
	}

	cfg, err := provision.LoadConfig(filepath.Join(repo, "cocoindex", "cocoindex.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project != "my_proj" {
		t.Errorf("project = %q, want %q", cfg.Project, "my_proj")
	}
}

func TestRunInstall_BusyPortExhaustsAttempts(t *testing.T) {
	repo := gitRepo(t)
	deps := stubDeps()
	deps.portProbe = busyPortProbe{}

	var out bytes.Buffer
	err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, repo, deps)
	if err == nil {
		t.Fatal("expected error after exhausting port attempts")
	}
	if !strings.Contains(out.String(), "already in use") {
		t.Errorf("expected busy-port warnings, got:\n%s", out.String())
	}
}

func TestRunInstall_ProbeFallbackWarns(t *testing.T) {
	repo := gitRepo(t)
	deps := stubDeps()
	deps.probeWarning = "no port inspection tool found"

	var out bytes.Buffer
	if err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, repo, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "no port inspection tool found") {
		t.Errorf("expected probe warning surfaced, got:\n%s", out.String())
	}
}

func TestRunInstall_ExistingSidecarAborts(t *testing.T) {
	repo := gitRepo(t)
	if err := os.MkdirAll(filepath.Join(repo, "cocoindex"), 0o755); err != nil {
		t.Fatal(err)
	}

	// Defaults down to the reinstall confirmation, then "n".
	input := "\n\n\n\n\nn\n"
	var out bytes.Buffer
	err := runInstallWithIO(context.Background(), strings.NewReader(input), &out, repo, stubDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Aborted.") {
		t.Errorf("expected abort, got:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Install complete!") {
		t.Errorf("install should not complete after abort:\n%s", out.String())
	}
}

func TestRunInstall_FetchFailureIsFatal(t *testing.T) {
	repo := gitRepo(t)
	deps := stubDeps()
	deps.materialize = func(ctx context.Context, pctx provision.Context) error {
		return errors.New("template fetch for main.py returned status 500")
	}

	var out bytes.Buffer
	err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, repo, deps)
	if err == nil {
		t.Fatal("expected fatal error on fetch failure")
	}
	if !strings.Contains(err.Error(), "main.py") {
		t.Errorf("error = %v", err)
	}
}

func TestRunInstall_MergeWriteFailurePrintsDescriptor(t *testing.T) {
	repo := gitRepo(t)
	deps := stubDeps()
	deps.mergeConfig = func(docPath, name string, server mcpconfig.Server) (mcpconfig.MergeResult, error) {
		return mcpconfig.MergeResult{Status: mcpconfig.WriteFailed}, errors.New("permission denied")
	}

	var out bytes.Buffer
	err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, repo, deps)
	if err != nil {
		t.Fatalf("write failure must not be fatal: %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "manually") {
		t.Errorf("expected manual-application fallback, got:\n%s", output)
	}
	if !strings.Contains(output, "mcp_server.py") {
		t.Errorf("expected descriptor printed, got:\n%s", output)
	}
}

func TestRunInstall_NonGitRepoSkipsHook(t *testing.T) {
	repo := t.TempDir() // no .git

	var out bytes.Buffer
	err := runInstallWithIO(context.Background(), strings.NewReader(""), &out, repo, stubDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "not a git repository") {
		t.Errorf("expected git warning, got:\n%s", out.String())
	}
	if strings.Contains(out.String(), "post-commit hook to re-index") {
		t.Errorf("should not offer hook outside a git repo:\n%s", out.String())
	}
}
