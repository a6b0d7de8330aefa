// Package compose drives the sidecar's docker compose stack: bringing the
// backing store up and down and waiting for it to accept connections.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Readiness is a bounded retry with a fixed budget, not a backoff policy.
const (
	DefaultReadyAttempts = 30
	DefaultReadyInterval = 2 * time.Second
)

// runCommandFunc executes docker compose in the given directory and returns
// combined output. Overridden in tests.
var runCommandFunc = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// sleepFunc is overridden in tests to avoid real delays.
var sleepFunc = time.Sleep

// Up starts the stack detached.
func Up(ctx context.Context, dir string) error {
	out, err := runCommandFunc(ctx, dir, "up", "-d")
	if err != nil {
		return fmt.Errorf("docker compose up failed: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Down stops the stack and removes its volumes.
func Down(ctx context.Context, dir string) error {
	out, err := runCommandFunc(ctx, dir, "down", "-v")
	if err != nil {
		return fmt.Errorf("docker compose down failed: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Running reports whether any service in the stack is currently up.
func Running(ctx context.Context, dir string) bool {
	out, err := runCommandFunc(ctx, dir, "ps", "--status", "running", "-q")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// WaitReady polls the database service with pg_isready until it accepts
// connections, retrying a fixed number of times at a fixed interval.
// Exhausting the budget is fatal to the install run.
func WaitReady(ctx context.Context, dir string, attempts int, interval time.Duration) error {
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := runCommandFunc(ctx, dir, "exec", "-T", "db", "pg_isready", "-U", "cocoindex")
		if err == nil {
			return nil
		}
		slog.Debug("backing store not ready", "attempt", i, "of", attempts, "output", strings.TrimSpace(string(out)))
		if i < attempts {
			sleepFunc(interval)
		}
	}
	return fmt.Errorf("backing store did not become ready after %d attempts", attempts)
}
