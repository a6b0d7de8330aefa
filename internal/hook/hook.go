// Package hook installs the auto-update snippet into a git hook file.
// Installation is idempotent: a marker substring identifies a prior install,
// and re-running never duplicates the snippet. Pre-existing unrelated hook
// content is preserved.
package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Result describes what Install did to the hook file.
type Result int

const (
	// Created means the hook file did not exist and was created with a
	// shebang header and the snippet.
	Created Result = iota
	// Appended means the snippet was added below existing hook content.
	Appended
	// AlreadyPresent means the marker was found and nothing was written.
	AlreadyPresent
)

func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case Appended:
		return "appended"
	case AlreadyPresent:
		return "already present"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

const shebang = "#!/bin/sh\n"

// Install ensures snippet is present exactly once in the hook file at
// hookPath. The marker must be a substring of snippet chosen so it cannot
// collide with unrelated hook content. The file is left executable in all
// non-AlreadyPresent cases.
func Install(hookPath, snippet, marker string) (Result, error) {
	if !strings.Contains(snippet, marker) {
		return 0, fmt.Errorf("snippet does not contain marker %q", marker)
	}
	if !strings.HasSuffix(snippet, "\n") {
		snippet += "\n"
	}

	existing, err := os.ReadFile(hookPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, fmt.Errorf("failed to read hook file: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			return 0, fmt.Errorf("failed to create hooks directory: %w", err)
		}
		if err := os.WriteFile(hookPath, []byte(shebang+snippet), 0o755); err != nil {
			return 0, fmt.Errorf("failed to create hook file: %w", err)
		}
		return Created, nil
	}

	if strings.Contains(string(existing), marker) {
		return AlreadyPresent, nil
	}

	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += snippet
	if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
		return 0, fmt.Errorf("failed to append to hook file: %w", err)
	}
	if err := os.Chmod(hookPath, 0o755); err != nil {
		return 0, fmt.Errorf("failed to make hook executable: %w", err)
	}
	return Appended, nil
}

// Remove deletes snippet from the hook file, keeping unrelated content.
// If only the shebang header (or whitespace) remains afterwards the file is
// deleted entirely. Returns true if the hook file was modified or removed.
func Remove(hookPath, snippet, marker string) (bool, error) {
	existing, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read hook file: %w", err)
	}

	content := string(existing)
	if !strings.Contains(content, marker) {
		return false, nil
	}

	if !strings.HasSuffix(snippet, "\n") {
		snippet += "\n"
	}
	if strings.Contains(content, snippet) {
		content = strings.Replace(content, snippet, "", 1)
	} else {
		// Snippet text drifted between versions; drop the marker line and
		// the command line that follows it.
		content = removeMarkerBlock(content, marker)
	}

	if strings.TrimSpace(strings.TrimPrefix(content, strings.TrimSuffix(shebang, "\n"))) == "" {
		if err := os.Remove(hookPath); err != nil {
			return false, fmt.Errorf("failed to remove hook file: %w", err)
		}
		return true, nil
	}
	if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
		return false, fmt.Errorf("failed to rewrite hook file: %w", err)
	}
	return true, nil
}

// removeMarkerBlock removes the line containing marker plus the immediately
// following line.
func removeMarkerBlock(content, marker string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if strings.Contains(lines[i], marker) {
			i++ // skip the command line below the marker
			continue
		}
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}
