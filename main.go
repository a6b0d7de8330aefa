package main

import (
	"os"

	"github.com/cocodex/cocodex/cmd"
	"github.com/cocodex/cocodex/internal/ui"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(); err != nil {
		ui.Errorf(os.Stderr, "Error: %v", err)
		os.Exit(1)
	}
}
