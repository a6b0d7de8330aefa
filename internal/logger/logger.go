// Package logger configures the process-wide slog default logger.
package logger

import (
	"log/slog"
	"os"
)

var level = new(slog.LevelVar)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// SetDebug toggles debug-level logging. When false, only info and above
// are emitted.
func SetDebug(debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}
