// Package provision holds the provisioning context for one install run and
// materializes the sidecar file set from templates.
package provision

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SidecarDirName is the directory created under the host repository root.
const SidecarDirName = "cocoindex"

// HookMarker identifies a prior hook installation. It is a comment line, so
// collision with unrelated hook content is not a practical concern.
const HookMarker = "# cocoindex auto-update"

// Context captures everything one provisioning run needs. It is an immutable
// value: interactive revisions produce a new Context via the With* methods.
type Context struct {
	RepoDir     string
	ProjectID   string
	Port        int
	Included    []string
	Excluded    []string
	InstallHook bool
}

// NewContext builds the initial context for a repository with defaults
// applied: derived project id, default port, detected include patterns.
func NewContext(repoDir string) Context {
	return Context{
		RepoDir:     repoDir,
		ProjectID:   DeriveProjectID(repoDir),
		Port:        DefaultPort,
		Included:    DetectIncludePatterns(repoDir),
		Excluded:    append([]string(nil), DefaultExcludePatterns...),
		InstallHook: true,
	}
}

// DefaultPort is the suggested host port for the backing store. 5432 is left
// to any native Postgres install.
const DefaultPort = 5433

// WithProjectID returns a copy with the project id replaced.
func (c Context) WithProjectID(id string) Context {
	c.ProjectID = id
	return c
}

// WithPort returns a copy with the port replaced.
func (c Context) WithPort(port int) Context {
	c.Port = port
	return c
}

// WithPatterns returns a copy with the include/exclude pattern lists replaced.
func (c Context) WithPatterns(included, excluded []string) Context {
	c.Included = append([]string(nil), included...)
	c.Excluded = append([]string(nil), excluded...)
	return c
}

// WithInstallHook returns a copy with the hook opt-in replaced.
func (c Context) WithInstallHook(install bool) Context {
	c.InstallHook = install
	return c
}

// SidecarDir returns the directory the file set is materialized into.
func (c Context) SidecarDir() string {
	return filepath.Join(c.RepoDir, SidecarDirName)
}

// ServerName returns the MCP server name registered in .mcp.json.
func (c Context) ServerName() string {
	return c.ProjectID + "_cocoindex"
}

// PythonPath returns the sidecar venv python interpreter.
func (c Context) PythonPath() string {
	return filepath.Join(c.SidecarDir(), ".venv", "bin", "python")
}

// MCPServerScript returns the path of the materialized MCP server entry point.
func (c Context) MCPServerScript() string {
	return filepath.Join(c.SidecarDir(), "mcp_server.py")
}

// HookSnippet returns the shell snippet appended to the post-commit hook.
// The re-index runs in the background with output discarded, so a commit is
// never slowed down or failed by indexing.
func (c Context) HookSnippet() string {
	return fmt.Sprintf("\n%s\ncocodex reindex --dir %q >/dev/null 2>&1 &\n", HookMarker, c.SidecarDir())
}

// DeriveProjectID turns a repository path into a project id by normalizing
// its base name.
func DeriveProjectID(repoDir string) string {
	return NormalizeProjectID(filepath.Base(filepath.Clean(repoDir)))
}

// NormalizeProjectID maps a raw name onto the lowercase [a-z0-9_] identifier
// set the id is restricted to: ASCII letters are lowercased, ASCII digits
// kept, every other rune (non-ASCII included) becomes an underscore, and a
// leading digit gets a "p" prefix. The id ends up in the database URL, the
// flow name, and the MCP server name, so nothing outside that set may leak
// through.
func NormalizeProjectID(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" || strings.Trim(id, "_") == "" {
		return "project"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "p" + id
	}
	return id
}
