package generate

import (
	"ablac/ast"
	"ablac/build"
	"ablac/common"
	"ablac/depm"
	"ablac/eval"
	"ablac/report"
	"ablac/syntax"
	"ablac/typing"
	"ablac/walk"
	"context"
	"testing"

	"github.com/kr/pretty"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// generateSources compiles each source as an inline unit and generates all of
// them into a single program.  It returns the first error.
func generateSources(t *testing.T, srcs ...string) (*Program, error) {
	t.Helper()

	ann := depm.NewAnnotations()
	svc := build.NewCompileService(syntax.NewFileParser(&ast.IDSource{}), walk.NewGatherer(ann), eval.New(ann))

	for _, src := range srcs {
		if _, err := svc.CompileSource(context.Background(), src, false, nil); err != nil {
			return nil, err
		}
	}

	if _, err := svc.Drain(); err != nil {
		return nil, err
	}

	p := NewProgram(ann)
	units := svc.Units()

	for _, cu := range units {
		if err := p.DeclareUnit(cu.File); err != nil {
			return p, err
		}
	}

	for _, cu := range units {
		if err := p.GenerateUnit(cu.File); err != nil {
			return p, err
		}
	}

	return p, nil
}

func mustGenerate(t *testing.T, srcs ...string) *Program {
	t.Helper()

	p, err := generateSources(t, srcs...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return p
}

func findFunc(t *testing.T, p *Program, name string) *ir.Func {
	t.Helper()

	for _, fn := range p.Module().Funcs {
		if fn.Name() == name {
			return fn
		}
	}

	t.Fatalf("no function named %s", name)
	return nil
}

func countFuncs(p *Program, name string) int {
	n := 0
	for _, fn := range p.Module().Funcs {
		if fn.Name() == name {
			n++
		}
	}

	return n
}

// instKinds returns the opcodes of the instructions of a block.
func instKinds(block *ir.Block) []string {
	kinds := make([]string, len(block.Insts))
	for i, inst := range block.Insts {
		kinds[i] = typeName(inst)
	}

	return kinds
}

func typeName(inst ir.Instruction) string {
	switch inst.(type) {
	case *ir.InstAdd:
		return "add"
	case *ir.InstSub:
		return "sub"
	case *ir.InstMul:
		return "mul"
	case *ir.InstSDiv:
		return "sdiv"
	case *ir.InstICmp:
		return "icmp"
	case *ir.InstCall:
		return "call"
	}

	return "other"
}

func expectKinds(t *testing.T, block *ir.Block, want ...string) {
	t.Helper()

	if diff := pretty.Diff(want, instKinds(block)); len(diff) > 0 {
		t.Errorf("bad instructions: %v", diff)
	}
}

// -----------------------------------------------------------------------------

func TestOperandOrder(t *testing.T) {
	p := mustGenerate(t, `
fun g(x: Int, y: Int): Int = x
fun arith(a: Int, b: Int): Int = a * b + a - b
fun calls(): Int = g(1 + 2, 3 * 4)
fun compare(a: Int, b: Int): Bool = a / b <= a
`)

	arith := findFunc(t, p, "u0.arith")
	expectKinds(t, arith.Blocks[0], "mul", "add", "sub")

	calls := findFunc(t, p, "u0.calls")
	expectKinds(t, calls.Blocks[0], "add", "mul", "call")

	compare := findFunc(t, p, "u0.compare")
	expectKinds(t, compare.Blocks[0], "sdiv", "icmp")

	if !compare.Sig.RetType.Equal(types.I1) {
		t.Errorf("expected i1 result, got %s", compare.Sig.RetType)
	}
}

func TestImplicitReturns(t *testing.T) {
	p := mustGenerate(t, `
fun value(a: Int): Int { a + 1 }
fun nothing() { 1 + 2 }
fun explicit(): Int { return 1; 2 }
fun empty(): Int { }
`)

	final := findFunc(t, p, "u0.value").Blocks[0]
	ret, ok := final.Term.(*ir.TermRet)
	if !ok || any(ret.X) != any(final.Insts[len(final.Insts)-1]) {
		t.Errorf("expected return of the final expression, got %v", final.Term)
	}

	// a non-void function without a final value falls through to `ret void`
	empty := findFunc(t, p, "u0.empty").Blocks[0]
	if ret, ok := empty.Term.(*ir.TermRet); !ok || ret.X != nil {
		t.Errorf("expected `ret void`, got %v", empty.Term)
	}

	nothing := findFunc(t, p, "u0.nothing").Blocks[0]
	if ret, ok := nothing.Term.(*ir.TermRet); !ok || ret.X != nil {
		t.Errorf("expected `ret void`, got %v", nothing.Term)
	}

	explicit := findFunc(t, p, "u0.explicit").Blocks[0]
	ret, ok = explicit.Term.(*ir.TermRet)
	if !ok {
		t.Fatalf("explicit return not generated")
	}

	if c, ok := ret.X.(*constant.Int); !ok || c.X.Int64() != 1 {
		t.Errorf("expected `ret i32 1`, got %v", ret.X)
	}
}

func TestMainWrapper(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		returnsIt bool
	}{
		{"int", "fun main(): Int = 7", true},
		{"void", "fun main() {}", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := mustGenerate(t, test.src)

			findFunc(t, p, common.UserMainFuncName)
			entry := findFunc(t, p, "main")

			if !entry.Sig.RetType.Equal(types.I32) || len(entry.Params) != 0 {
				t.Errorf("bad entry point signature: %s", entry.Sig)
			}

			block := entry.Blocks[0]
			call, ok := block.Insts[0].(*ir.InstCall)
			if !ok || call.Callee.(*ir.Func).Name() != common.UserMainFuncName {
				t.Fatalf("entry point does not call %s", common.UserMainFuncName)
			}

			ret := block.Term.(*ir.TermRet)
			if test.returnsIt {
				if ret.X != call {
					t.Errorf("entry point does not return the result of main")
				}
			} else if c, ok := ret.X.(*constant.Int); !ok || c.X.Int64() != 0 {
				t.Errorf("expected `ret i32 0`, got %v", ret.X)
			}
		})
	}
}

func TestStringConstants(t *testing.T) {
	p := mustGenerate(t, `
fun s(): String = "ab\ncd"
fun t(): String = "ab\ncd"
fun e(): String = #"x${40 + 2}"
`)

	globals := p.Module().Globals
	if len(globals) != 2 {
		t.Fatalf("expected 2 interned strings, got %d", len(globals))
	}

	want := [][]byte{[]byte("ab\ncd\x00"), []byte("x42\x00")}
	for i, glob := range globals {
		arr, ok := glob.Init.(*constant.CharArray)
		if !ok {
			t.Fatalf("global %d is not a char array", i)
		}

		if string(arr.X) != string(want[i]) {
			t.Errorf("global %d: expected %q, got %q", i, want[i], arr.X)
		}

		if !glob.Immutable {
			t.Errorf("global %d is mutable", i)
		}
	}

	if !findFunc(t, p, "u0.s").Sig.RetType.Equal(types.I8Ptr) {
		t.Errorf("strings must be i8*")
	}
}

func TestCompilerExecConstants(t *testing.T) {
	p := mustGenerate(t, `
compiler fun sq(x: Int): Int = x * x
fun main(): Int = #sq(7)
fun flag(): Bool = #(1 < 2)
`)

	ret := findFunc(t, p, common.UserMainFuncName).Blocks[0].Term.(*ir.TermRet)
	if c, ok := ret.X.(*constant.Int); !ok || c.X.Int64() != 49 {
		t.Errorf("expected `ret i32 49`, got %v", ret.X)
	}

	if countFuncs(p, "u0.sq") != 0 {
		t.Errorf("compiler function was generated")
	}

	if !findFunc(t, p, "u0.flag").Sig.RetType.Equal(types.I1) {
		t.Errorf("bools must be i1")
	}
}

func TestExterns(t *testing.T) {
	p := mustGenerate(t,
		"extern fun puts(s: String): Int\nfun main(): Int = puts(\"hi\")",
		"extern fun puts(s: String): Int\nfun other(): Int = puts(\"yo\")",
	)

	if countFuncs(p, "puts") != 1 {
		t.Errorf("extern declared more than once")
	}

	if puts := findFunc(t, p, "puts"); len(puts.Blocks) != 0 {
		t.Errorf("extern function has a body")
	}

	_, err := generateSources(t,
		"extern fun puts(s: String): Int",
		"extern fun puts(s: Int): Int",
	)
	if !report.IsKind(err, report.KindType) {
		t.Errorf("expected type error for conflicting externs, got %v", err)
	}
}

func TestClassMembers(t *testing.T) {
	p := mustGenerate(t, `
class Math {
	fun sq(x: Int): Int = x * x
}
`)

	findFunc(t, p, "u0.Math.sq")
}

func TestLambdas(t *testing.T) {
	p := mustGenerate(t, `
fun apply(g: () -> String): Int = 1
fun run(f: () -> Int): Int = f()
fun f(): Int = apply { "x" }
fun h(): Int = run { }
`)

	lambda := findFunc(t, p, "u0.lambda.0")
	if !lambda.Sig.RetType.Equal(types.I8Ptr) {
		t.Errorf("lambda return type not adjusted: %s", lambda.Sig.RetType)
	}

	sentinel := findFunc(t, p, "u0.lambda.1").Blocks[0].Term.(*ir.TermRet)
	if c, ok := sentinel.X.(*constant.Int); !ok || c.X.Int64() != 1 {
		t.Errorf("expected sentinel return, got %v", sentinel.X)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind report.ErrorKind
	}{
		{"interpolation", "fun s(x: Int): String = \"v${x}\"", report.KindUnsupported},
		{"unresolved", "fun f(): Int = g()", report.KindUnresolved},
		{"compiler function", "compiler fun c(): Int = 1\nfun f(): Int = c()", report.KindUnresolved},
		{"capture", "fun run(f: () -> Int): Int = f()\nfun g(x: Int): Int = run { x }", report.KindUnsupported},
		{"class type", "class Box {}\nfun f(b: Box) {}", report.KindUnknownType},
		{"not callable", "fun f(x: Int): Int = x()", report.KindType},
		{"argument type", "fun g(x: Int): Int = x\nfun f(): Int = g(\"s\")", report.KindType},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := generateSources(t, test.src)
			if !report.IsKind(err, test.kind) {
				t.Errorf("expected %s, got %v", test.kind, err)
			}
		})
	}
}

func TestConvType(t *testing.T) {
	tests := []struct {
		dt   typing.DataType
		want types.Type
	}{
		{typing.PrimInt, types.I32},
		{typing.PrimString, types.I8Ptr},
		{typing.PrimBool, types.I1},
		{typing.PrimVoid, types.Void},
		{
			&typing.FuncType{Params: []typing.DataType{typing.PrimInt}},
			types.NewPointer(types.NewFunc(types.Void, types.I32)),
		},
	}

	for _, test := range tests {
		if got := ConvType(test.dt); !got.Equal(test.want) {
			t.Errorf("%s: expected %s, got %s", test.dt.Repr(), test.want, got)
		}
	}

	var err error
	func() {
		defer report.CatchErrors("", &err)
		ConvType(&typing.UserType{Name: "List", Params: []typing.DataType{typing.PrimInt}})
	}()

	if !report.IsKind(err, report.KindUnknownType) {
		t.Errorf("expected unknown type error, got %v", err)
	}
}

func TestGeneratorContext(t *testing.T) {
	gc := &GeneratorContext{}
	block := ir.NewBlock("entry")

	gb := gc.PushBlock(block, depm.NewSymbolTable(nil))
	gc.PushValue(constant.NewInt(types.I32, 1))
	gc.PushValue(constant.NewInt(types.I32, 2))

	if gc.ValueDepth() != 2 {
		t.Errorf("bad value depth: %d", gc.ValueDepth())
	}

	gc.TruncateValues(1)
	if v, _ := gc.TopValue(); v.(*constant.Int).X.Int64() != 1 {
		t.Errorf("truncation kept the wrong value")
	}

	gb.HasReturned = true

	var err error
	func() {
		defer report.CatchErrors("", &err)
		gc.Emit(nil)
	}()

	if !report.IsKind(err, report.KindInternalState) {
		t.Errorf("expected emission into a terminated block to fail, got %v", err)
	}

	if gc.PopBlock() != gb {
		t.Errorf("popped the wrong block")
	}
}
