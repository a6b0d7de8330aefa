package provision

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultIncludePatterns is the fallback when no source extensions are
// detected in the repository.
var DefaultIncludePatterns = []string{"*.py", "*.js", "*.ts", "*.md", "*.yaml", "*.json"}

// DefaultExcludePatterns keeps the index away from VCS metadata, dependency
// trees, and the sidecar's own directory.
var DefaultExcludePatterns = []string{
	".git",
	"**/.git",
	"**/node_modules",
	"**/.venv",
	"**/__pycache__",
	"**/target",
	SidecarDirName,
}

// extensionGlobs maps file extensions found in the repo to include globs,
// with a deterministic ordering for the generated config.
var extensionGlobs = []struct {
	ext  string
	glob string
}{
	{".py", "*.py"},
	{".js", "*.js"},
	{".jsx", "*.jsx"},
	{".ts", "*.ts"},
	{".tsx", "*.tsx"},
	{".go", "*.go"},
	{".rs", "*.rs"},
	{".rb", "*.rb"},
	{".java", "*.java"},
	{".c", "*.c"},
	{".h", "*.h"},
	{".cpp", "*.cpp"},
	{".md", "*.md"},
	{".yaml", "*.yaml"},
	{".yml", "*.yml"},
	{".json", "*.json"},
	{".toml", "*.toml"},
}

// skipDirs are never descended into during detection.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"target":       true,
	SidecarDirName: true,
}

// DetectIncludePatterns scans the repository for known source extensions and
// returns the matching include globs in a fixed order. An empty detection
// result falls back to DefaultIncludePatterns.
func DetectIncludePatterns(repoDir string) []string {
	seen := make(map[string]bool)

	filepath.WalkDir(repoDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != repoDir && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		seen[strings.ToLower(filepath.Ext(d.Name()))] = true
		return nil
	})

	var patterns []string
	for _, eg := range extensionGlobs {
		if seen[eg.ext] {
			patterns = append(patterns, eg.glob)
		}
	}
	if len(patterns) == 0 {
		return append([]string(nil), DefaultIncludePatterns...)
	}
	return patterns
}

// FormatPatternList renders a pattern list for display in the wizard.
func FormatPatternList(patterns []string) string {
	return strings.Join(patterns, ", ")
}

// ParsePatternList parses a comma-separated pattern list entered by the
// user, trimming whitespace and dropping duplicates while preserving order.
func ParsePatternList(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
