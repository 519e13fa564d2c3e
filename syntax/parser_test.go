package syntax

import (
	"ablac/ast"
	"ablac/report"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func parseString(t *testing.T, src string) *ast.File {
	t.Helper()

	file, err := NewFileParser(&ast.IDSource{}).Parse("test.abla", strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	return file
}

func TestParseFuncDecls(t *testing.T) {
	file := parseString(t, `
// entry point
fun main(): Int {
	return add(1, 2)
}

fun add(a: Int, b: Int): Int = a + b
extern("libc") fun puts(s: String): Int
compiler fun gen(): String { "x" }
`)

	if len(file.Decls) != 4 {
		t.Fatalf("expected 4 decls, got %d", len(file.Decls))
	}

	main := file.Decls[0].(*ast.FuncDecl)
	if main.Name != "main" || len(main.Params) != 0 || len(main.Body.Stmts) != 1 {
		t.Errorf("bad main decl: %# v", pretty.Formatter(main))
	}

	if _, ok := main.Body.Stmts[0].(*ast.ReturnStmt); !ok {
		t.Errorf("expected return statement, got %T", main.Body.Stmts[0])
	}

	add := file.Decls[1].(*ast.FuncDecl)
	if len(add.Params) != 2 || add.Params[1].Name != "b" {
		t.Errorf("bad params: %# v", pretty.Formatter(add.Params))
	}

	es, ok := add.Body.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expression body not wrapped in a statement: %T", add.Body.Stmts[0])
	}

	if bop, ok := es.Expr.(*ast.BinaryOp); !ok || bop.Op != ast.OpAdd {
		t.Errorf("expected addition, got %# v", pretty.Formatter(es.Expr))
	}

	puts := file.Decls[2].(*ast.FuncDecl)
	if !puts.IsExtern() || puts.Body != nil {
		t.Errorf("puts should be a bodiless extern")
	}

	if lib := puts.Extern().LibName; lib == nil || lib.Parts[0].(*ast.StringConst).Value != "libc" {
		t.Errorf("bad extern library name")
	}

	if gen := file.Decls[3].(*ast.FuncDecl); !gen.IsCompiler() {
		t.Errorf("gen should be a compiler function")
	}
}

func TestParsePrecedence(t *testing.T) {
	file := parseString(t, "fun f(): Bool = 1 + 2 * 3 == 7 - 0")
	expr := file.Decls[0].(*ast.FuncDecl).Body.Stmts[0].(*ast.ExprStmt).Expr

	eq, ok := expr.(*ast.BinaryOp)
	if !ok || eq.Op != ast.OpEq {
		t.Fatalf("expected == at the root, got %# v", pretty.Formatter(expr))
	}

	add := eq.Lhs.(*ast.BinaryOp)
	if add.Op != ast.OpAdd {
		t.Errorf("expected + under ==, got %s", add.Op)
	}

	if mul := add.Rhs.(*ast.BinaryOp); mul.Op != ast.OpMul {
		t.Errorf("expected * under +, got %s", mul.Op)
	}

	if sub := eq.Rhs.(*ast.BinaryOp); sub.Op != ast.OpSub {
		t.Errorf("expected - on the right of ==, got %s", sub.Op)
	}
}

func TestParseLeftAssociative(t *testing.T) {
	file := parseString(t, "fun f(): Int = 10 - 4 - 3")
	expr := file.Decls[0].(*ast.FuncDecl).Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.BinaryOp)

	if _, ok := expr.Lhs.(*ast.BinaryOp); !ok {
		t.Errorf("expected (10 - 4) - 3, got %# v", pretty.Formatter(expr))
	}
}

func TestParseCallsAndLiterals(t *testing.T) {
	file := parseString(t, `
fun f() {
	run(1) { 2 }
	each { 3 }
	g
	(4)
}
`)
	stmts := file.Decls[0].(*ast.FuncDecl).Body.Stmts
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d: %# v", len(stmts), pretty.Formatter(stmts))
	}

	call := stmts[0].(*ast.ExprStmt).Expr.(*ast.Call)
	if len(call.Args) != 2 {
		t.Errorf("expected trailing literal to be an argument")
	} else if _, ok := call.Args[1].(*ast.FuncLit); !ok {
		t.Errorf("expected func literal argument, got %T", call.Args[1])
	}

	each := stmts[1].(*ast.ExprStmt).Expr.(*ast.Call)
	if len(each.Args) != 1 {
		t.Errorf("expected a single literal argument")
	}

	// a call suffix on the next line is a new statement
	if _, ok := stmts[2].(*ast.ExprStmt).Expr.(*ast.Identifier); !ok {
		t.Errorf("expected identifier statement, got %T", stmts[2].(*ast.ExprStmt).Expr)
	}
}

func TestParseCompilerCalls(t *testing.T) {
	file := parseString(t, `
#import("lib.abla")
fun f(): Int = #twice(2)
`)

	cc, ok := file.Decls[0].(*ast.CompilerCall)
	if !ok {
		t.Fatalf("expected compiler call, got %T", file.Decls[0])
	}

	if call, ok := cc.Call.(*ast.Call); !ok || call.Func.(*ast.Identifier).Name != "import" {
		t.Errorf("bad compiler call: %# v", pretty.Formatter(cc.Call))
	}

	expr := file.Decls[1].(*ast.FuncDecl).Body.Stmts[0].(*ast.ExprStmt).Expr
	if _, ok := expr.(*ast.CompilerExec); !ok {
		t.Errorf("expected compiler exec, got %T", expr)
	}
}

func TestParseStringParts(t *testing.T) {
	file := parseString(t, `fun f(): String = "a\tb${x + 1}\"c\$"`)
	sl := file.Decls[0].(*ast.FuncDecl).Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.StringLit)

	if len(sl.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %# v", pretty.Formatter(sl.Parts))
	}

	if v := sl.Parts[0].(*ast.StringConst).Value; v != "a\tb" {
		t.Errorf("bad first part: %q", v)
	}

	interp := sl.Parts[1].(*ast.StringInterp)
	bop, ok := interp.Expr.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected binary interpolation, got %T", interp.Expr)
	}

	// `x` sits at column 25 of the line
	if span := bop.Lhs.Span(); span.StartCol != 25 || span.StartLine != 0 {
		t.Errorf("bad interpolation span: %# v", pretty.Formatter(span))
	}

	if v := sl.Parts[2].(*ast.StringConst).Value; v != "\"c$" {
		t.Errorf("bad last part: %q", v)
	}

	if sl.IsConstant() {
		t.Errorf("interpolated literal reported constant")
	}
}

func TestParseTypes(t *testing.T) {
	file := parseString(t, "fun f(xs: List<Int>, cb: (Int, String) -> Void) {}")
	params := file.Decls[0].(*ast.FuncDecl).Params

	nte := params[0].Type.(*ast.NamedTypeExpr)
	if nte.Name != "List" || len(nte.Params) != 1 {
		t.Errorf("bad named type: %# v", pretty.Formatter(nte))
	}

	fte := params[1].Type.(*ast.FuncTypeExpr)
	if len(fte.Params) != 2 || fte.ReturnType.(*ast.NamedTypeExpr).Name != "Void" {
		t.Errorf("bad func type: %# v", pretty.Formatter(fte))
	}
}

func TestParseClass(t *testing.T) {
	file := parseString(t, `
class Greeter {
	fun hello(): Int = 1
	class Inner
}
`)
	cd := file.Decls[0].(*ast.ClassDecl)
	if cd.Name != "Greeter" || len(cd.Members) != 2 {
		t.Errorf("bad class: %# v", pretty.Formatter(cd))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing paren", "fun f( {}"},
		{"unclosed string", "fun f() = \"abc"},
		{"bad escape", `fun f() = "\q"`},
		{"stray token", "fun f() {} }"},
		{"empty interpolation", `fun f() = "${}"`},
		{"lone bang", "fun f() = 1 ! 2"},
		{"compiler call without call", "#foo"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewFileParser(&ast.IDSource{}).Parse("bad.abla", strings.NewReader(test.src))
			if err == nil {
				t.Fatalf("expected parse error")
			}

			if !report.IsKind(err, report.KindParse) {
				t.Errorf("expected parse error kind, got %v", err)
			}

			if ce := err.(*report.CompileError); ce.File != "bad.abla" {
				t.Errorf("error not stamped with file name: %q", ce.File)
			}
		})
	}
}

func TestNodeIDsUnique(t *testing.T) {
	ids := &ast.IDSource{}
	a, _ := NewFileParser(ids).Parse("a", strings.NewReader("fun f() = 1"))
	b, _ := NewFileParser(ids).Parse("b", strings.NewReader("fun f() = 1"))

	if a.Decls[0].ID() == b.Decls[0].ID() {
		t.Errorf("node IDs shared between files")
	}
}
