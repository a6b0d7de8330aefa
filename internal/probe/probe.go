// Package probe checks whether a local TCP port already has a listener,
// using whichever inspection tool is available on the host (ss, lsof, or
// netstat). Probing is advisory: it never errors, and when no tool is
// present it degrades to reporting the port available with a warning the
// caller should surface. The final authority on a port conflict is whether
// the backing store container binds successfully later.
package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Probe reports whether a TCP port is free to bind.
type Probe interface {
	// Name identifies the underlying inspection tool.
	Name() string
	// Available reports true if no listener is bound to port. On any tool
	// failure it reports true (fail open).
	Available(ctx context.Context, port int) bool
}

// lookPathFunc is the function used to look up binaries on PATH.
// Overridden in tests.
var lookPathFunc = exec.LookPath

// runCommandFunc executes a probing tool and returns its stdout.
// Overridden in tests.
var runCommandFunc = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Detect returns the best available probe, trying ss, then lsof, then
// netstat. When none is on PATH it returns the fallback probe and a
// non-empty warning explaining that port usage cannot be verified.
func Detect() (Probe, string) {
	for _, p := range []Probe{ssProbe{}, lsofProbe{}, netstatProbe{}} {
		if _, err := lookPathFunc(p.Name()); err == nil {
			return p, ""
		}
	}
	return fallbackProbe{}, "no port inspection tool found (ss, lsof, or netstat); cannot verify the port is free"
}

// ValidatePort parses s as a TCP port number.
func ValidatePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("port must be a number, got %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return port, nil
}

// ssProbe uses ss with a socket filter; any output means a listener exists.
type ssProbe struct{}

func (ssProbe) Name() string { return "ss" }

func (ssProbe) Available(ctx context.Context, port int) bool {
	out, err := runCommandFunc(ctx, "ss", "-tlnH", fmt.Sprintf("sport = :%d", port))
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(out)) == ""
}

// lsofProbe uses lsof, which exits non-zero when nothing matches.
type lsofProbe struct{}

func (lsofProbe) Name() string { return "lsof" }

func (lsofProbe) Available(ctx context.Context, port int) bool {
	out, err := runCommandFunc(ctx, "lsof", "-nP", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN")
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(out)) == ""
}

// netstatProbe scans netstat output for a local address ending in the port.
type netstatProbe struct{}

func (netstatProbe) Name() string { return "netstat" }

func (netstatProbe) Available(ctx context.Context, port int) bool {
	out, err := runCommandFunc(ctx, "netstat", "-tln")
	if err != nil {
		return true
	}
	suffixColon := ":" + strconv.Itoa(port)
	suffixDot := "." + strconv.Itoa(port)
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		local := fields[3]
		if strings.HasSuffix(local, suffixColon) || strings.HasSuffix(local, suffixDot) {
			return false
		}
	}
	return true
}

// fallbackProbe is used when no inspection tool exists. It always reports
// the port available.
type fallbackProbe struct{}

func (fallbackProbe) Name() string { return "none" }

func (fallbackProbe) Available(ctx context.Context, port int) bool { return true }
