package generate

import (
	"ablac/ast"
	"ablac/depm"
	"ablac/report"
	"ablac/typing"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// VisitIdentifier pushes the backend value of the symbol an identifier names.
func (g *Generator) VisitIdentifier(id *ast.Identifier) {
	sym, ok := g.gc.CurrentBlock().Table.Lookup(id.Name)
	if !ok {
		panic(report.Raise(report.KindUnresolved, id.Span(), "undefined symbol: `%s`", id.Name))
	}

	if sym.IsCompileTimeOnly() {
		panic(report.Raise(report.KindUnresolved, id.Span(), "`%s` is a compiler function and has no runtime value", id.Name))
	} else if sym.DefKind == depm.DefKindType {
		panic(report.Raise(report.KindType, id.Span(), "`%s` is a type, not a value", id.Name))
	}

	v, ok := g.p.handles.Value(sym.Node)
	if !ok {
		panic(report.Raise(report.KindUnresolved, id.Span(), "`%s` has no runtime definition", id.Name))
	}

	if param, ok := v.(*ir.Param); ok && !g.ownsParam(param) {
		panic(report.Raise(report.KindUnsupported, id.Span(), "function literals cannot capture parameter `%s`", id.Name))
	}

	g.gc.PushValue(v)
}

// ownsParam returns whether a parameter belongs to the function being
// generated.
func (g *Generator) ownsParam(param *ir.Param) bool {
	for _, p := range g.frame.fn.Params {
		if p == param {
			return true
		}
	}

	return false
}

// VisitIntLit pushes an i32 constant.
func (g *Generator) VisitIntLit(il *ast.IntLit) {
	n, err := il.Int32()
	if err != nil {
		panic(report.Raise(report.KindParse, il.Span(), "invalid integer literal: `%s`", il.Value))
	}

	g.gc.PushValue(constant.NewInt(types.I32, int64(n)))
}

// VisitStringLit pushes a pointer to the global holding a constant string.
func (g *Generator) VisitStringLit(sl *ast.StringLit) {
	sb := strings.Builder{}
	for _, part := range sl.Parts {
		switch v := part.(type) {
		case *ast.StringConst:
			sb.WriteString(v.Value)
		case *ast.StringInterp:
			panic(report.Raise(report.KindUnsupported, v.Expr.Span(), "string interpolation is only supported at compile time"))
		}
	}

	g.gc.PushValue(g.p.stringConst(sb.String()))
}

// VisitCall generates the callee, then the arguments from left to right,
// and pushes the call's result unless it is void.
func (g *Generator) VisitCall(call *ast.Call) {
	callee := g.genValue(call.Func)

	args := make([]value.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = g.genValue(arg)
	}

	ft := calleeType(callee)
	if ft == nil {
		panic(report.Raise(report.KindType, call.Func.Span(), "cannot call a value of type `%s`", callee.Type()))
	} else if len(args) != len(ft.Params) {
		panic(report.Raise(report.KindType, call.Span(), "expected %d arguments but got %d", len(ft.Params), len(args)))
	}

	for i, arg := range args {
		if !arg.Type().Equal(ft.Params[i]) {
			panic(report.Raise(report.KindType, call.Args[i].Span(), "expected argument of type `%s` but got `%s`", ft.Params[i], arg.Type()))
		}
	}

	result := g.gc.Emit(call.Span()).NewCall(callee, args...)
	if !ft.RetType.Equal(types.Void) {
		g.gc.PushValue(result)
	}
}

// calleeType returns the function type of a callable value or nil if the value
// is not callable.
func calleeType(callee value.Value) *types.FuncType {
	if pt, ok := callee.Type().(*types.PointerType); ok {
		if ft, ok := pt.ElemType.(*types.FuncType); ok {
			return ft
		}
	}

	return nil
}

// VisitFuncLit generates a function literal and pushes the function.
func (g *Generator) VisitFuncLit(fl *ast.FuncLit) {
	g.gc.PushValue(g.genLambda(fl))
}

// VisitBinaryOp generates the left operand, then the right, then the operator.
func (g *Generator) VisitBinaryOp(bop *ast.BinaryOp) {
	lhs := g.genValue(bop.Lhs)
	rhs := g.genValue(bop.Rhs)

	if !lhs.Type().Equal(rhs.Type()) {
		panic(report.Raise(report.KindType, bop.Span(), "operator `%s` applied to mismatched types `%s` and `%s`", bop.Op, lhs.Type(), rhs.Type()))
	}

	block := g.gc.Emit(bop.Span())

	switch bop.Op {
	case ast.OpEq:
		g.gc.PushValue(block.NewICmp(enum.IPredEQ, lhs, rhs))
		return
	case ast.OpNeq:
		g.gc.PushValue(block.NewICmp(enum.IPredNE, lhs, rhs))
		return
	}

	if !lhs.Type().Equal(types.I32) {
		panic(report.Raise(report.KindType, bop.Span(), "operator `%s` is not defined for `%s`", bop.Op, lhs.Type()))
	}

	switch bop.Op {
	case ast.OpAdd:
		g.gc.PushValue(block.NewAdd(lhs, rhs))
	case ast.OpSub:
		g.gc.PushValue(block.NewSub(lhs, rhs))
	case ast.OpMul:
		g.gc.PushValue(block.NewMul(lhs, rhs))
	case ast.OpDiv:
		g.gc.PushValue(block.NewSDiv(lhs, rhs))
	case ast.OpGt:
		g.gc.PushValue(block.NewICmp(enum.IPredSGT, lhs, rhs))
	case ast.OpLt:
		g.gc.PushValue(block.NewICmp(enum.IPredSLT, lhs, rhs))
	case ast.OpGtEq:
		g.gc.PushValue(block.NewICmp(enum.IPredSGE, lhs, rhs))
	case ast.OpLtEq:
		g.gc.PushValue(block.NewICmp(enum.IPredSLE, lhs, rhs))
	default:
		panic(report.Raise(report.KindInternalState, bop.Span(), "unknown operator: %s", bop.Op))
	}
}

// VisitCompilerExec materializes the constant computed for a compiler
// expression during compile-time execution.
func (g *Generator) VisitCompilerExec(ce *ast.CompilerExec) {
	cv, ok := g.p.ann.Consts.Get(ce)
	if !ok {
		panic(report.Raise(report.KindInternalState, ce.Span(), "compiler expression was never executed"))
	}

	switch cv.Type {
	case typing.PrimInt:
		g.gc.PushValue(constant.NewInt(types.I32, cv.Int))
	case typing.PrimString:
		g.gc.PushValue(g.p.stringConst(cv.Str))
	case typing.PrimBool:
		g.gc.PushValue(constant.NewBool(cv.Int != 0))
	default:
		panic(report.Raise(report.KindInternalState, ce.Span(), "compiler expression produced a `%s`", cv.Type.Repr()))
	}
}
