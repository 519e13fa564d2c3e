package eval

import (
	"ablac/ast"
	"ablac/build"
	"ablac/depm"
	"ablac/report"
	"ablac/typing"
	"context"
	"strings"
)

// interp is the interpreter for the compile-time execution of one unit.
type interp struct {
	ctx context.Context
	ann *depm.Annotations
	svc *build.CompileService

	// cc is the context the unit is being compiled under.
	cc *build.CompilationContext

	// The unit being executed and its top level symbol table.
	file      *ast.File
	fileTable *depm.SymbolTable

	// depth is the current call depth.
	depth int
}

// evalExpr evaluates an expression.
func (in *interp) evalExpr(expr ast.Expr, e *env) Value {
	switch v := expr.(type) {
	case *ast.Identifier:
		return in.evalIdentifier(v, e)
	case *ast.IntLit:
		n, err := v.Int32()
		if err != nil {
			panic(report.Raise(report.KindParse, v.Span(), "invalid integer literal: `%s`", v.Value))
		}

		return IntValue(n)
	case *ast.StringLit:
		sb := strings.Builder{}
		for _, part := range v.Parts {
			switch p := part.(type) {
			case *ast.StringConst:
				sb.WriteString(p.Value)
			case *ast.StringInterp:
				pv := in.evalExpr(p.Expr, e)
				if _, ok := pv.(VoidValue); ok {
					in.error(p.Expr.Span(), "cannot interpolate a value of type `Void`")
				}

				sb.WriteString(pv.String())
			}
		}

		return StringValue(sb.String())
	case *ast.Call:
		fn := in.evalExpr(v.Func, e)

		args := make([]Value, len(v.Args))
		for i, arg := range v.Args {
			args[i] = in.evalExpr(arg, e)
		}

		return in.call(fn, args, v.Span())
	case *ast.FuncLit:
		return &FuncValue{Lit: v, Env: e}
	case *ast.BinaryOp:
		return in.evalBinaryOp(v, in.evalExpr(v.Lhs, e), in.evalExpr(v.Rhs, e))
	case *ast.CompilerExec:
		return in.evalExpr(v.Expr, e)
	}

	panic(report.Raise(report.KindInternalState, expr.Span(), "unknown expression: %T", expr))
}

// evalIdentifier evaluates an identifier: parameters bound by calls shadow the
// symbols of the lexical scope, which shadow the builtins.
func (in *interp) evalIdentifier(id *ast.Identifier, e *env) Value {
	if v, ok := e.lookupVar(id.Name); ok {
		return v
	}

	if sym, ok := e.table.Lookup(id.Name); ok {
		switch sym.DefKind {
		case depm.DefKindFunc:
			ft, _ := sym.Type.(*typing.FuncType)
			return &FuncValue{Decl: sym.Node.(*ast.FuncDecl), FuncType: ft}
		case depm.DefKindParam:
			in.error(id.Span(), "parameter `%s` has no value at compile time", id.Name)
		case depm.DefKindType:
			in.error(id.Span(), "`%s` is a type, not a value", id.Name)
		}
	}

	if bv, ok := builtins[id.Name]; ok {
		return bv
	}

	panic(report.Raise(report.KindUnresolved, id.Span(), "undefined symbol: `%s`", id.Name))
}

// -----------------------------------------------------------------------------

// call calls a function value.
func (in *interp) call(fn Value, args []Value, span *report.TextSpan) Value {
	if err := in.ctx.Err(); err != nil {
		in.error(span, "execution cancelled: %s", err)
	}

	in.depth++
	defer func() {
		in.depth--
	}()

	if in.depth > MaxCallDepth {
		in.error(span, "maximum call depth of %d exceeded", MaxCallDepth)
	}

	switch v := fn.(type) {
	case *BuiltinValue:
		in.checkArgs(v.Name, v.FuncType, args, span)
		return v.fn(in, args, span)
	case *FuncValue:
		if v.Lit != nil {
			if len(args) > 0 {
				in.error(span, "function literal takes no arguments but got %d", len(args))
			}

			result, _ := in.execBlock(v.Lit.Body, &env{table: v.Env.table, parent: v.Env})
			if result == nil {
				return IntValue(1)
			}

			return result
		}

		return in.callDecl(v, args, span)
	}

	in.error(span, "cannot call a value of type `%s`", fn.Type().Repr())
	return nil
}

// callDecl calls a declared function.
func (in *interp) callDecl(fv *FuncValue, args []Value, span *report.TextSpan) Value {
	fd := fv.Decl
	if fd.IsExtern() {
		in.error(span, "extern function `%s` cannot be called at compile time", fd.Name)
	}

	in.checkArgs(fd.Name, fv.FuncType, args, span)

	funcTable, ok := in.ann.Scopes.Get(fd)
	if !ok {
		panic(report.Raise(report.KindInternalState, span, "no scope recorded for `%s`", fd.Name))
	}

	callEnv := &env{vars: make(map[string]Value), table: funcTable}
	for i, param := range fd.Params {
		callEnv.vars[param.Name] = args[i]
	}

	result, _ := in.execBlock(fd.Body, callEnv)

	if fv.FuncType == nil || typing.IsVoid(fv.FuncType.ReturnType) {
		return VoidValue{}
	} else if result == nil {
		in.error(span, "function `%s` produced no value", fd.Name)
	}

	return result
}

// checkArgs checks the arguments of a call against the callee's type.
func (in *interp) checkArgs(name string, ft *typing.FuncType, args []Value, span *report.TextSpan) {
	if ft == nil {
		return
	}

	if len(args) != len(ft.Params) {
		in.error(span, "`%s` expects %d arguments but got %d", name, len(ft.Params), len(args))
	}

	for i, arg := range args {
		if _, ok := ft.Params[i].(typing.PrimType); ok && !arg.Type().Equiv(ft.Params[i]) {
			in.error(span, "argument %d of `%s` must be of type `%s` but got `%s`", i+1, name, ft.Params[i].Repr(), arg.Type().Repr())
		}
	}
}

// execBlock executes the statements of a block.  It returns the value of the
// block, the value of an explicit return or of the final expression
// statement, and whether an explicit return was executed.  The value is nil if
// the block produced none.
func (in *interp) execBlock(block *ast.Block, e *env) (Value, bool) {
	var last Value
	for _, stmt := range block.Stmts {
		switch v := stmt.(type) {
		case *ast.ExprStmt:
			last = in.evalExpr(v.Expr, e)
		case *ast.ReturnStmt:
			if v.Value == nil {
				return VoidValue{}, true
			}

			return in.evalExpr(v.Value, e), true
		}
	}

	return last, false
}

// -----------------------------------------------------------------------------

// evalBinaryOp applies a binary operator.
func (in *interp) evalBinaryOp(bop *ast.BinaryOp, lhs, rhs Value) Value {
	switch l := lhs.(type) {
	case IntValue:
		if r, ok := rhs.(IntValue); ok {
			return in.evalIntOp(bop, l, r)
		}
	case StringValue:
		if r, ok := rhs.(StringValue); ok {
			switch bop.Op {
			case ast.OpEq:
				return BoolValue(l == r)
			case ast.OpNeq:
				return BoolValue(l != r)
			}
		}
	case BoolValue:
		if r, ok := rhs.(BoolValue); ok {
			switch bop.Op {
			case ast.OpEq:
				return BoolValue(l == r)
			case ast.OpNeq:
				return BoolValue(l != r)
			}
		}
	}

	in.error(bop.Span(), "operator `%s` is not defined for `%s` and `%s`", bop.Op, lhs.Type().Repr(), rhs.Type().Repr())
	return nil
}

// evalIntOp applies a binary operator to integers.  Arithmetic wraps around.
func (in *interp) evalIntOp(bop *ast.BinaryOp, l, r IntValue) Value {
	switch bop.Op {
	case ast.OpAdd:
		return l + r
	case ast.OpSub:
		return l - r
	case ast.OpMul:
		return l * r
	case ast.OpDiv:
		if r == 0 {
			in.error(bop.Span(), "division by zero")
		}

		return l / r
	case ast.OpEq:
		return BoolValue(l == r)
	case ast.OpNeq:
		return BoolValue(l != r)
	case ast.OpGt:
		return BoolValue(l > r)
	case ast.OpLt:
		return BoolValue(l < r)
	case ast.OpGtEq:
		return BoolValue(l >= r)
	case ast.OpLtEq:
		return BoolValue(l <= r)
	}

	panic(report.Raise(report.KindInternalState, bop.Span(), "unknown operator: %s", bop.Op))
}

// error raises an execution error on the given span.
func (in *interp) error(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(report.KindExec, span, msg, args...))
}
