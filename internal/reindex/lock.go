// Package reindex provides a cross-process single-flight guard around index
// updates. Rapid successive git commits each fire a post-commit hook; the
// lock collapses the overlap to one running update, and a skipped update is
// always caught by the next commit.
package reindex

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/cocodex/cocodex/internal/paths"
)

// ErrHeld is returned when another re-index for the same sidecar is running.
var ErrHeld = errors.New("reindex already running")

// LockPath returns the lock file path for the given sidecar directory.
func LockPath(sidecarDir string) (string, error) {
	dir, err := paths.StateDir()
	if err != nil {
		return "", err
	}
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(sidecarDir)))
	return filepath.Join(dir, fmt.Sprintf("reindex-%s.lock", hash[:12])), nil
}

// Lock guards one sidecar's re-index runs.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the re-index lock for the given sidecar dir. It returns
// ErrHeld if a live process holds it; a lock left by a dead process is
// removed and re-acquired.
func Acquire(sidecarDir string) (*Lock, error) {
	fp, err := LockPath(sidecarDir)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(fp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}
		data, readErr := os.ReadFile(fp)
		if readErr == nil {
			pidStr := strings.TrimSpace(string(data))
			if pid, parseErr := strconv.Atoi(pidStr); parseErr == nil && !processAlive(pid) {
				// Stale lock; owning process is gone.
				os.Remove(fp)
				return Acquire(sidecarDir)
			}
		}
		return nil, ErrHeld
	}

	fmt.Fprintf(f, "%d", os.Getpid())
	return &Lock{path: fp, file: f}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
	}
	return os.Remove(l.path)
}

// processAlive reports whether a process with the given PID is running,
// using signal 0 which checks existence without delivering a signal.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
