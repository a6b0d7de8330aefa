// Package cli checks for required command-line tools on the host.
package cli

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Prerequisite describes a tool the installer depends on.
type Prerequisite struct {
	Name        string
	Description string
	InstallURL  string
	Required    bool
	// VersionArgs are passed to the binary to get a version string.
	VersionArgs []string
}

// CheckResult pairs a prerequisite with its check outcome.
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Version      string
}

// DefaultPrerequisites returns the tools cocodex needs on the host.
func DefaultPrerequisites() []Prerequisite {
	return []Prerequisite{
		{
			Name:        "git",
			Description: "Version control; the auto-update hook lives in .git/hooks",
			InstallURL:  "https://git-scm.com/downloads",
			Required:    true,
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "docker",
			Description: "Runs the Postgres/pgvector backing store for the index",
			InstallURL:  "https://docs.docker.com/get-docker/",
			Required:    true,
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "uv",
			Description: "Creates the sidecar Python environment and installs CocoIndex",
			InstallURL:  "https://docs.astral.sh/uv/getting-started/installation/",
			Required:    true,
			VersionArgs: []string{"--version"},
		},
	}
}

// lookPathFunc is the function used to look up binaries on PATH.
// Overridden in tests.
var lookPathFunc = exec.LookPath

// versionFunc runs a binary to capture its version output. Overridden in tests.
var versionFunc = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// CheckAll checks every prerequisite and returns one result per entry,
// in the same order.
func CheckAll(prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, p := range prereqs {
		results[i] = check(p)
	}
	return results
}

func check(p Prerequisite) CheckResult {
	result := CheckResult{Prerequisite: p}

	if _, err := lookPathFunc(p.Name); err != nil {
		return result
	}
	result.Found = true

	if len(p.VersionArgs) == 0 {
		return result
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := versionFunc(ctx, p.Name, p.VersionArgs...)
	if err != nil {
		return result
	}
	result.Version = firstLine(string(out))
	return result
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
