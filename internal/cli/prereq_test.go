package cli

import (
	"context"
	"errors"
	"testing"
)

func TestCheckAll_AllFound(t *testing.T) {
	origLook, origVer := lookPathFunc, versionFunc
	defer func() { lookPathFunc, versionFunc = origLook, origVer }()

	lookPathFunc = func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}
	versionFunc = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(name + " version 1.0\nextra line\n"), nil
	}

	results := CheckAll(DefaultPrerequisites())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Found {
			t.Errorf("%s: expected found", r.Prerequisite.Name)
		}
		want := r.Prerequisite.Name + " version 1.0"
		if r.Version != want {
			t.Errorf("%s: version = %q, want %q", r.Prerequisite.Name, r.Version, want)
		}
	}
}

func TestCheckAll_NotOnPath(t *testing.T) {
	origLook := lookPathFunc
	defer func() { lookPathFunc = origLook }()

	lookPathFunc = func(name string) (string, error) {
		return "", errors.New("not found")
	}

	results := CheckAll(DefaultPrerequisites())
	for _, r := range results {
		if r.Found {
			t.Errorf("%s: expected not found", r.Prerequisite.Name)
		}
		if r.Version != "" {
			t.Errorf("%s: expected empty version, got %q", r.Prerequisite.Name, r.Version)
		}
	}
}

func TestCheckAll_VersionCommandFails(t *testing.T) {
	origLook, origVer := lookPathFunc, versionFunc
	defer func() { lookPathFunc, versionFunc = origLook, origVer }()

	lookPathFunc = func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}
	versionFunc = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exec failed")
	}

	results := CheckAll(DefaultPrerequisites())
	for _, r := range results {
		if !r.Found {
			t.Errorf("%s: tool on PATH should still count as found", r.Prerequisite.Name)
		}
		if r.Version != "" {
			t.Errorf("%s: expected empty version on exec failure", r.Prerequisite.Name)
		}
	}
}

func TestDefaultPrerequisites_AllRequired(t *testing.T) {
	for _, p := range DefaultPrerequisites() {
		if !p.Required {
			t.Errorf("%s: expected required", p.Name)
		}
		if p.InstallURL == "" {
			t.Errorf("%s: missing install URL", p.Name)
		}
	}
}
