package eval

import (
	"ablac/ast"
	"ablac/build"
	"ablac/depm"
	"ablac/report"
	"ablac/syntax"
	"ablac/typing"
	"ablac/walk"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newService() (*build.CompileService, *depm.Annotations) {
	ann := depm.NewAnnotations()
	svc := build.NewCompileService(syntax.NewFileParser(&ast.IDSource{}), walk.NewGatherer(ann), New(ann))
	return svc, ann
}

// compileSource compiles src as an inline unit and returns its AST.
func compileSource(t *testing.T, src string) (*ast.File, *depm.Annotations, error) {
	t.Helper()

	svc, ann := newService()
	name, err := svc.CompileSource(context.Background(), src, false, nil)
	if err != nil {
		return nil, ann, err
	}

	cu, ok := svc.Unit(name)
	if !ok {
		t.Fatalf("unit %s not installed", name)
	}

	return cu.File, ann, nil
}

// firstExec returns the compiler expression that is the first statement of the
// named function.
func firstExec(t *testing.T, file *ast.File, funcName string) *ast.CompilerExec {
	t.Helper()

	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Name == funcName {
			expr := fd.Body.Stmts[0].(*ast.ExprStmt).Expr
			ce, ok := expr.(*ast.CompilerExec)
			if !ok {
				t.Fatalf("expected compiler expression, got %T", expr)
			}

			return ce
		}
	}

	t.Fatalf("no function named %s", funcName)
	return nil
}

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// -----------------------------------------------------------------------------

func TestExecRecordsConsts(t *testing.T) {
	file, ann, err := compileSource(t, `
compiler fun twice(x: Int): Int = x * 2
fun main(): Int = #twice(21)
fun greeting(): String = #"a${1 + 2}b"
fun wrapped(): Int = #(2147483647 + 1)
fun check(): Bool = #("x" == "x")
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		fn   string
		want depm.ConstValue
	}{
		{"main", depm.ConstValue{Type: typing.PrimInt, Int: 42}},
		{"greeting", depm.ConstValue{Type: typing.PrimString, Str: "a3b"}},
		{"wrapped", depm.ConstValue{Type: typing.PrimInt, Int: -2147483648}},
		{"check", depm.ConstValue{Type: typing.PrimBool, Int: 1}},
	}

	for _, test := range tests {
		cv, ok := ann.Consts.Get(firstExec(t, file, test.fn))
		if !ok {
			t.Errorf("%s: no constant recorded", test.fn)
			continue
		}

		if cv != test.want {
			t.Errorf("%s: expected %+v, got %+v", test.fn, test.want, cv)
		}
	}
}

func TestExecClosures(t *testing.T) {
	file, ann, err := compileSource(t, `
compiler fun apply(f: () -> Int): Int = f()
fun main(): Int = #apply { 3 + 4 }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cv, _ := ann.Consts.Get(firstExec(t, file, "main")); cv.Int != 7 {
		t.Errorf("expected 7, got %d", cv.Int)
	}
}

func TestExecErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind report.ErrorKind
	}{
		{"call depth", "compiler fun loop(n: Int): Int = loop(n + 1)\n#loop(0)", report.KindExec},
		{"void result", "compiler fun nothing() {}\nfun f() { #nothing() }", report.KindExec},
		{"extern call", "extern fun puts(s: String): Int\n#puts(\"x\")", report.KindExec},
		{"undefined", "#missing()", report.KindUnresolved},
		{"division by zero", "fun f(): Int = #(1 / 0)", report.KindExec},
		{"parameter read", "fun f(x: Int): Int = #x", report.KindExec},
		{"function value", "fun g(): Int = 1\nfun f() { #g }", report.KindExec},
		{"bad builtin argument", "#import(1)", report.KindExec},
		{"missing import", "#import(\"/nonexistent/nowhere.abla\")", report.KindExec},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := compileSource(t, test.src)
			if err == nil {
				t.Fatalf("expected error")
			}

			if !report.IsKind(err, test.kind) {
				t.Errorf("expected %s, got %v", test.kind, err)
			}
		})
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.abla", `
fun helper(): Int = 7
compiler fun gen(): Int = 1
`)
	mainPath := writeFile(t, dir, "main.abla", `
#import("lib.abla")
fun main(): Int = helper()
`)

	svc, ann := newService()
	if err := svc.CompileFile(context.Background(), mainPath, false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.Count() != 2 {
		t.Errorf("expected the import to be compiled, got %d units", svc.Count())
	}

	cu, _ := svc.Unit(mainPath)
	fileTable, _ := ann.Scopes.Get(cu.File)

	sym, ok := fileTable.LookupLocal("helper")
	if !ok {
		t.Fatalf("helper not imported")
	}

	if sym.Unit != filepath.Join(dir, "lib.abla") {
		t.Errorf("bad defining unit: %s", sym.Unit)
	}

	if _, ok := fileTable.LookupLocal("gen"); ok {
		t.Errorf("compile-time only function was imported")
	}
}

func TestCompileBuiltin(t *testing.T) {
	svc, ann := newService()
	name, err := svc.CompileSource(context.Background(), `
#compile("fun gen(): Int = 5")
fun main(): Int = gen()
`, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.Count() != 2 {
		t.Errorf("expected inline unit to be compiled, got %d units", svc.Count())
	}

	cu, _ := svc.Unit(name)
	fileTable, _ := ann.Scopes.Get(cu.File)
	if _, ok := fileTable.LookupLocal("gen"); !ok {
		t.Errorf("gen not imported from inline unit")
	}
}

func TestImportCycle(t *testing.T) {
	dir := t.TempDir()
	aPath := writeFile(t, dir, "a.abla", "#import(\"b.abla\")\nfun fa(): Int = 1\n")
	bPath := writeFile(t, dir, "b.abla", "#import(\"a.abla\")\nfun fb(): Int = 2\n")

	svc, ann := newService()
	if err := svc.CompileFile(context.Background(), aPath, false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Drain(); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}

	a, _ := svc.Unit(aPath)
	b, _ := svc.Unit(bPath)
	if a == nil || b == nil {
		t.Fatalf("cyclic units not installed")
	}

	aTable, _ := ann.Scopes.Get(a.File)
	bTable, _ := ann.Scopes.Get(b.File)

	if _, ok := aTable.LookupLocal("fb"); !ok {
		t.Errorf("fb not imported into a")
	}

	if _, ok := bTable.LookupLocal("fa"); !ok {
		t.Errorf("fa not imported into b")
	}
}
