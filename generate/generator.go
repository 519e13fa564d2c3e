package generate

import (
	"ablac/ast"
	"ablac/report"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// funcFrame is the function whose body is being generated.
type funcFrame struct {
	fn *ir.Func

	// The return type of a function literal is inferred from the first value
	// it returns.
	isLambda    bool
	retInferred bool
}

// Generator converts the AST of one unit into LLVM IR.  It visits every
// declaration, statement and expression of the unit.
type Generator struct {
	p *Program

	// file is the unit being generated.
	file *ast.File

	// prefix is prepended to the names of the unit's functions.
	prefix string

	gc *GeneratorContext

	// frame is the function currently being generated.
	frame *funcFrame

	// lambdaCounter numbers the unit's function literals.
	lambdaCounter int
}

// -----------------------------------------------------------------------------

// VisitFuncDecl generates the body of a declared function.  Externs and
// compiler functions have no body to generate.
func (g *Generator) VisitFuncDecl(fd *ast.FuncDecl) {
	if fd.IsExtern() || fd.IsCompiler() {
		return
	}

	fnv, ok := g.p.handles.Value(fd)
	block, bok := g.p.handles.Block(fd)
	if !ok || !bok {
		panic(report.Raise(report.KindInternalState, fd.NameSpan, "function `%s` was never declared", fd.Name))
	}

	table, ok := g.p.ann.Scopes.Get(fd)
	if !ok {
		panic(report.Raise(report.KindInternalState, fd.NameSpan, "no scope recorded for `%s`", fd.Name))
	}

	fn := fnv.(*ir.Func)
	g.frame = &funcFrame{fn: fn}
	defer func() {
		g.frame = nil
	}()

	gb := g.gc.PushBlock(block, table)
	depth := g.gc.ValueDepth()
	g.genBlock(fd.Body)

	if !gb.HasReturned {
		g.genImplicitReturn(fd.Span(), depth)
	}

	g.gc.PopBlock()
	g.gc.ClearValues()

	if fd == g.p.mainDecl {
		g.p.genEntryPoint(fn)
	}
}

// VisitClassDecl generates the member functions of a class.
func (g *Generator) VisitClassDecl(cd *ast.ClassDecl) {
	if cd.IsCompiler() {
		return
	}

	for _, member := range cd.Members {
		member.Accept(g)
	}
}

// VisitCompilerCall does nothing: top level compiler calls only run at
// compile time.
func (g *Generator) VisitCompilerCall(cc *ast.CompilerCall) {}

// -----------------------------------------------------------------------------

// genBlock generates the statements of a block.  When it finishes, the value
// of the block's final expression statement (if any) is on top of the value
// stack.
func (g *Generator) genBlock(block *ast.Block) {
	gb := g.gc.CurrentBlock()
	depth := g.gc.ValueDepth()

	for _, stmt := range block.Stmts {
		if gb.HasReturned {
			report.ReportCompileWarning(g.file.Name, stmt.Span(), "unreachable code")
			break
		}

		// only the final statement's value may remain on the stack
		g.gc.TruncateValues(depth)
		stmt.Accept(g)
	}
}

// genImplicitReturn terminates a function's entry block with the value of its
// final expression statement (pushed above depth) or with `ret void`.
func (g *Generator) genImplicitReturn(span *report.TextSpan, depth int) {
	gb := g.gc.CurrentBlock()
	fn := g.frame.fn

	var result value.Value
	if g.gc.ValueDepth() > depth {
		result, _ = g.gc.TopValue()
	}

	if g.frame.isLambda {
		if result != nil {
			g.inferReturnType(span, result.Type())
		} else if !g.frame.retInferred {
			// literals producing no value return a sentinel
			result = constant.NewInt(types.I32, 1)
		}
	}

	// with no value available, control falls off the end as `ret void`
	// regardless of the declared return type
	if fn.Sig.RetType.Equal(types.Void) || result == nil {
		g.gc.Emit(span).NewRet(nil)
	} else {
		g.checkReturnType(span, result.Type())
		g.gc.Emit(span).NewRet(result)
	}

	gb.HasReturned = true
}

// inferReturnType sets the return type of the function literal being
// generated if it has not already been inferred.
func (g *Generator) inferReturnType(span *report.TextSpan, typ types.Type) {
	if !g.frame.retInferred {
		g.frame.fn.Sig.RetType = typ
		g.frame.retInferred = true
	} else {
		g.checkReturnType(span, typ)
	}
}

// checkReturnType checks that a value can be returned from the current
// function.
func (g *Generator) checkReturnType(span *report.TextSpan, typ types.Type) {
	if rt := g.frame.fn.Sig.RetType; !rt.Equal(typ) {
		panic(report.Raise(report.KindType, span, "cannot return a value of type `%s` from a function returning `%s`", typ, rt))
	}
}

// VisitExprStmt generates an expression statement.
func (g *Generator) VisitExprStmt(es *ast.ExprStmt) {
	es.Expr.Accept(g)
}

// VisitReturnStmt generates a return and marks the current block terminated.
func (g *Generator) VisitReturnStmt(rs *ast.ReturnStmt) {
	gb := g.gc.CurrentBlock()

	if rs.Value == nil {
		if g.frame.isLambda {
			g.inferReturnType(rs.Span(), types.Void)
		} else if !g.frame.fn.Sig.RetType.Equal(types.Void) {
			panic(report.Raise(report.KindType, rs.Span(), "missing return value"))
		}

		g.gc.Emit(rs.Span()).NewRet(nil)
	} else {
		v := g.genValue(rs.Value)

		if g.frame.isLambda {
			g.inferReturnType(rs.Span(), v.Type())
		} else {
			g.checkReturnType(rs.Span(), v.Type())
		}

		g.gc.Emit(rs.Span()).NewRet(v)
	}

	gb.HasReturned = true
}

// -----------------------------------------------------------------------------

// genValue generates an expression which must produce a value and pops it.
func (g *Generator) genValue(expr ast.Expr) value.Value {
	depth := g.gc.ValueDepth()
	expr.Accept(g)

	if g.gc.ValueDepth() == depth {
		panic(report.Raise(report.KindType, expr.Span(), "expression produces no value"))
	}

	return g.gc.PopValue()
}

// genLambda generates the function for a function literal.
func (g *Generator) genLambda(fl *ast.FuncLit) *ir.Func {
	table, ok := g.p.ann.Scopes.Get(fl)
	if !ok {
		panic(report.Raise(report.KindInternalState, fl.Span(), "no scope recorded for function literal"))
	}

	fn := g.p.mod.NewFunc(fmt.Sprintf("%slambda.%d", g.prefix, g.lambdaCounter), types.I32)
	fn.Linkage = enum.LinkageInternal
	fn.CallingConv = enum.CallingConvC
	g.lambdaCounter++

	enclosing := g.frame
	g.frame = &funcFrame{fn: fn, isLambda: true}
	defer func() {
		g.frame = enclosing
	}()

	depth := g.gc.ValueDepth()
	gb := g.gc.PushBlock(fn.NewBlock("entry"), table)
	g.genBlock(fl.Body)

	if !gb.HasReturned {
		g.genImplicitReturn(fl.Span(), depth)
	}

	g.gc.PopBlock()
	g.gc.TruncateValues(depth)

	return fn
}
