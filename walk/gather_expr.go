package walk

import (
	"ablac/ast"
	"ablac/depm"
	"ablac/typing"
)

// walkExpr walks an expression and returns its type if it can be determined.
// Identifiers which are not yet defined are left for code generation: they may
// be supplied by a compile-time import.
func (w *walker) walkExpr(table *depm.SymbolTable, expr ast.Expr) typing.DataType {
	dt := w.exprType(table, expr)
	if dt != nil {
		w.ann.Types.Set(expr, dt)
	}

	return dt
}

// exprType computes the type of an expression.
func (w *walker) exprType(table *depm.SymbolTable, expr ast.Expr) typing.DataType {
	switch v := expr.(type) {
	case *ast.Identifier:
		if sym, ok := table.Lookup(v.Name); ok && sym.DefKind != depm.DefKindType {
			return sym.Type
		}
	case *ast.IntLit:
		return typing.PrimInt
	case *ast.StringLit:
		for _, part := range v.Parts {
			if interp, ok := part.(*ast.StringInterp); ok {
				w.walkExpr(table, interp.Expr)
			}
		}

		return typing.PrimString
	case *ast.Call:
		ft, _ := w.walkExpr(table, v.Func).(*typing.FuncType)

		for _, arg := range v.Args {
			w.walkExpr(table, arg)
		}

		if ft != nil {
			if len(v.Args) != len(ft.Params) {
				w.error(v.Span(), "expected %d arguments but got %d", len(ft.Params), len(v.Args))
			}

			return ft.ReturnType
		}
	case *ast.FuncLit:
		return w.walkFuncLit(table, v)
	case *ast.BinaryOp:
		lt := w.walkExpr(table, v.Lhs)
		rt := w.walkExpr(table, v.Rhs)

		if lt != nil && rt != nil && !lt.Equiv(rt) {
			w.error(v.Span(), "mismatched operand types `%s` and `%s` for `%s`", lt.Repr(), rt.Repr(), v.Op)
		}

		switch v.Op {
		case ast.OpEq, ast.OpNeq:
			if typing.IsVoid(lt) && lt != nil {
				w.error(v.Span(), "cannot compare values of type `Void`")
			}

			return typing.PrimBool
		}

		if lt != nil && !lt.Equiv(typing.PrimInt) {
			w.error(v.Span(), "operator `%s` requires operands of type `Int` but got `%s`", v.Op, lt.Repr())
		} else if rt != nil && !rt.Equiv(typing.PrimInt) {
			w.error(v.Span(), "operator `%s` requires operands of type `Int` but got `%s`", v.Op, rt.Repr())
		}

		if v.Op.IsComparison() {
			return typing.PrimBool
		}

		return typing.PrimInt
	case *ast.CompilerExec:
		// the value is only known once the expression has been executed
		w.walkExpr(table, v.Expr)
	}

	return nil
}

// walkFuncLit walks a function literal.  Function literals share the scope of
// the enclosing block.
func (w *walker) walkFuncLit(table *depm.SymbolTable, fl *ast.FuncLit) typing.DataType {
	w.ann.Scopes.Set(fl, table)

	prevReturnType := w.enclosingReturnType
	w.enclosingReturnType = nil
	defer func() {
		w.enclosingReturnType = prevReturnType
	}()

	var rtType typing.DataType = typing.PrimInt
	for i, stmt := range fl.Body.Stmts {
		switch v := stmt.(type) {
		case *ast.ExprStmt:
			dt := w.walkExpr(table, v.Expr)

			if i == len(fl.Body.Stmts)-1 {
				rtType = dt
			}
		case *ast.ReturnStmt:
			w.walkReturn(table, v)

			if i == len(fl.Body.Stmts)-1 {
				rtType = typing.PrimVoid
				if v.Value != nil {
					rtType, _ = w.ann.Types.Get(v.Value)
				}
			}
		}
	}

	if rtType == nil {
		return nil
	}

	return &typing.FuncType{ReturnType: rtType}
}
