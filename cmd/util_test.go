package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "yes\n", true},
		{"uppercase", "Y\n", true},
		{"no", "n\n", false},
		{"empty defaults to no", "\n", false},
		{"eof defaults to no", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := confirm(strings.NewReader(tt.input), &out, "Continue?")
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Continue? [y/N]:") {
				t.Errorf("prompt missing, got %q", out.String())
			}
		})
	}
}

func TestReadWithDefault(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("hello\n\n  spaced  \n"))
	if got := readWithDefault(scanner, "def"); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := readWithDefault(scanner, "def"); got != "def" {
		t.Errorf("empty line should yield default, got %q", got)
	}
	if got := readWithDefault(scanner, "def"); got != "spaced" {
		t.Errorf("got %q", got)
	}
	if got := readWithDefault(scanner, "def"); got != "def" {
		t.Errorf("EOF should yield default, got %q", got)
	}
}

func TestReadYesNo(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("y\nno\n\n"))
	if !readYesNo(scanner, false) {
		t.Error("y should be true")
	}
	if readYesNo(scanner, true) {
		t.Error("no should be false")
	}
	if !readYesNo(scanner, true) {
		t.Error("empty should return the default")
	}
	if readYesNo(scanner, false) {
		t.Error("EOF should return the default")
	}
}

func TestCheckDockerDaemon(t *testing.T) {
	origInfo := dockerInfoFunc
	origLook := lookPathFunc
	defer func() {
		dockerInfoFunc = origInfo
		lookPathFunc = origLook
	}()

	dockerInfoFunc = func(ctx context.Context) error { return nil }
	if err := checkDockerDaemon(); err != nil {
		t.Errorf("reachable daemon should pass: %v", err)
	}

	dockerInfoFunc = func(ctx context.Context) error { return errors.New("connection refused") }
	lookPathFunc = func(name string) (string, error) { return "/usr/local/bin/colima", nil }
	err := checkDockerDaemon()
	if err == nil {
		t.Fatal("unreachable daemon should fail")
	}
	if !strings.Contains(err.Error(), "colima start") {
		t.Errorf("expected colima hint when colima is installed, got: %v", err)
	}

	lookPathFunc = func(name string) (string, error) { return "", errors.New("not found") }
	err = checkDockerDaemon()
	if err == nil {
		t.Fatal("unreachable daemon should fail")
	}
	if !strings.Contains(err.Error(), "Docker Desktop") {
		t.Errorf("expected runtime install hint, got: %v", err)
	}
}
