package cmd

import (
	"ablac/common"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func writeProfile(t *testing.T, src string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, common.AblaProfileFileName), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	return dir
}

func TestLoadProjectProfile(t *testing.T) {
	dir := writeProfile(t, `
name = "hello"
abla-version = "0.1.0"
entry = ["main.abla", "lib/util.abla"]
output = "build/hello"
parallel = true
log-level = "warn"

[[profiles]]
name = "native"
mode = "obj"
parallel = false
`)

	prof, err := LoadProfile(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &BuildProfile{
		ProjectName: "hello",
		RootDir:     dir,
		Entries:     []string{filepath.Join(dir, "main.abla"), filepath.Join(dir, "lib", "util.abla")},
		OutputBase:  filepath.Join(dir, "build", "hello"),
		OutputMode:  OutModeLLVM,
		Parallel:    true,
		LogLevel:    "warn",
	}

	if diff := pretty.Diff(want, prof); len(diff) > 0 {
		t.Errorf("bad profile: %v", diff)
	}

	if prof.OutputPath() != filepath.Join(dir, "build", "hello.ll") {
		t.Errorf("bad output path: %s", prof.OutputPath())
	}

	native, err := LoadProfile(dir, "native")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if native.OutputMode != OutModeObj || native.Parallel {
		t.Errorf("profile overrides not applied: %# v", pretty.Formatter(native))
	}

	if native.OutputPath() != filepath.Join(dir, "build", "hello.o") {
		t.Errorf("bad output path: %s", native.OutputPath())
	}
}

func TestLoadFileProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.abla")
	if err := os.WriteFile(path, []byte("fun main() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	prof, err := LoadProfile(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prof.ProjectName != "prog" || len(prof.Entries) != 1 || prof.Entries[0] != path {
		t.Errorf("bad file profile: %# v", pretty.Formatter(prof))
	}

	if err := prof.SetOutputMode("asm"); err != nil {
		t.Fatal(err)
	}

	if prof.OutputPath() != filepath.Join(dir, "prog.s") {
		t.Errorf("bad output path: %s", prof.OutputPath())
	}

	if _, err := LoadProfile(path, "release"); err == nil {
		t.Errorf("expected error selecting a profile for a file")
	}
}

func TestProfileErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		selected string
		msg      string
	}{
		{"missing name", `entry = ["a.abla"]`, "", "missing project name"},
		{"bad name", `name = "my project"`, "", "valid identifier"},
		{"bad version", "name = \"x\"\nabla-version = \"one\"", "", "invalid abla-version"},
		{"bad mode", "name = \"x\"\nmode = \"exe\"", "", "invalid output mode"},
		{"unknown profile", `name = "x"`, "debug", "has no profile"},
		{"bad toml", `name = `, "", "error parsing profile"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadProfile(writeProfile(t, test.src), test.selected)
			if err == nil || !strings.Contains(err.Error(), test.msg) {
				t.Errorf("expected error containing %q, got %v", test.msg, err)
			}
		})
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		warns   bool
	}{
		{common.AblaVersion, false},
		{"v" + common.AblaVersion, false},
		{"0.0.1", false},
		{"1.0.0", true},
		{"0.9.0", true},
		{"", true},
	}

	for _, test := range tests {
		warning, err := checkVersion("p", test.version)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.version, err)
		}

		if (warning != "") != test.warns {
			t.Errorf("%q: unexpected warning state: %q", test.version, warning)
		}
	}
}
