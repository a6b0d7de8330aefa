package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// lookPathFunc is the function used to look up binaries on PATH.
// Overridden in tests to control behavior.
var lookPathFunc = exec.LookPath

// dockerInfoFunc runs "docker info" to check daemon reachability.
// Overridden in tests.
var dockerInfoFunc = func(ctx context.Context) error {
	return exec.CommandContext(ctx, "docker", "info").Run()
}

// checkDockerDaemon verifies a container runtime daemon is reachable, not just
// that the binary exists. This catches the case where Docker/Colima is installed
// but not running, which would otherwise surface as an opaque compose failure
// halfway through the install.
func checkDockerDaemon() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dockerInfoFunc(ctx); err != nil {
		hint := runtimeStartHint()
		return fmt.Errorf("container runtime is not reachable (is Colima or Docker Desktop running?)%s", hint)
	}
	return nil
}

// runtimeStartHint returns a help message suggesting how to start a container runtime.
// It checks whether colima is installed to tailor the suggestion.
func runtimeStartHint() string {
	if _, err := lookPathFunc("colima"); err == nil {
		return "\n\nStart with: colima start"
	}
	return "\n\nInstall a container runtime:\n  Docker Desktop: https://docs.docker.com/get-docker/\n  Colima:          https://github.com/abiosoft/colima"
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, output io.Writer, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Fprintf(output, "%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// readLine reads one line from the scanner and returns the trimmed text,
// or "" if the scanner is exhausted (EOF).
func readLine(scanner *bufio.Scanner) string {
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// readWithDefault reads one line and returns def if the input is empty or EOF.
func readWithDefault(scanner *bufio.Scanner, def string) string {
	if !scanner.Scan() {
		return def
	}
	text := strings.TrimSpace(scanner.Text())
	if text == "" {
		return def
	}
	return text
}

// readYesNo reads one line and interprets "y"/"yes" as true, "n"/"no" as false.
// Empty input or EOF returns defaultYes.
func readYesNo(scanner *bufio.Scanner, defaultYes bool) bool {
	if !scanner.Scan() {
		return defaultYes
	}
	text := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if text == "" {
		return defaultYes
	}
	return text == "y" || text == "yes"
}
