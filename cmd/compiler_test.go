package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompileProject(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.abla": `
#import("lib.abla")
extern fun puts(s: String): Int
compiler fun greet(name: String): String = "hello, ${name}"
fun main(): Int {
	puts(#greet("abla"))
	answer()
}
`,
		"lib.abla": `
fun answer(): Int = #(6 * 7)
`,
	}

	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	prof := &BuildProfile{
		ProjectName: "test",
		RootDir:     dir,
		Entries:     []string{filepath.Join(dir, "main.abla")},
		OutputBase:  filepath.Join(dir, "out", "test"),
		OutputMode:  OutModeLLVM,
	}

	c := NewCompiler(prof)
	if !c.Compile(context.Background()) {
		t.Fatalf("compilation failed")
	}

	if c.svc.Count() != 2 {
		t.Errorf("expected 2 units, got %d", c.svc.Count())
	}

	buff, err := os.ReadFile(prof.OutputPath())
	if err != nil {
		t.Fatalf("no output written: %v", err)
	}

	ll := string(buff)
	for _, want := range []string{
		"hello, abla",
		"@main()",
		"@__abla_main()",
		"@puts(i8*",
		"ret i32 42",
	} {
		if !strings.Contains(ll, want) {
			t.Errorf("output is missing %q:\n%s", want, ll)
		}
	}
}

func TestCompileFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.abla")
	if err := os.WriteFile(path, []byte("fun main(): Int = missing()"), 0o644); err != nil {
		t.Fatal(err)
	}

	prof := &BuildProfile{
		ProjectName: "bad",
		RootDir:     dir,
		Entries:     []string{path},
		OutputBase:  filepath.Join(dir, "bad"),
	}

	if NewCompiler(prof).Compile(context.Background()) {
		t.Errorf("expected compilation to fail")
	}

	if _, err := os.Stat(prof.OutputPath()); !os.IsNotExist(err) {
		t.Errorf("output written for a failed build")
	}
}
