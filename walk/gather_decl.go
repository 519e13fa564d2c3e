package walk

import (
	"ablac/ast"
	"ablac/common"
	"ablac/depm"
	"ablac/report"
	"ablac/typing"
)

// declareClass declares a class and, recursively, its nested classes.
func (w *walker) declareClass(table *depm.SymbolTable, cd *ast.ClassDecl) {
	ut := &typing.UserType{Name: cd.Name}
	w.define(table, &depm.Symbol{
		Name:    cd.Name,
		Node:    cd,
		DefKind: depm.DefKindType,
		Type:    ut,
		Unit:    w.unit,
	}, cd.Span())
	w.ann.Types.Set(cd, ut)

	classTable := depm.NewSymbolTable(table)
	w.ann.Scopes.Set(cd, classTable)

	for _, member := range cd.Members {
		if inner, ok := member.(*ast.ClassDecl); ok {
			w.declareClass(classTable, inner)
		}
	}
}

// declareMembers declares the functions of a declaration list entry.  Classes
// must already be declared.
func (w *walker) declareMembers(table *depm.SymbolTable, decl ast.Decl) {
	switch v := decl.(type) {
	case *ast.FuncDecl:
		w.declareFunc(table, v)
	case *ast.ClassDecl:
		classTable, _ := w.ann.Scopes.Get(v)
		for _, member := range v.Members {
			w.declareMembers(classTable, member)
		}
	}
}

// declareFunc validates a function signature and declares the function.
func (w *walker) declareFunc(table *depm.SymbolTable, fd *ast.FuncDecl) {
	switch {
	case fd.IsExtern() && fd.IsCompiler():
		w.error(fd.NameSpan, "function cannot be both `extern` and `compiler`")
	case fd.IsExtern() && fd.Body != nil:
		w.error(fd.NameSpan, "extern function must not have a body")
	case fd.IsCompiler() && fd.Body == nil:
		w.error(fd.NameSpan, "compiler function must have a body")
	case !fd.IsExtern() && fd.Body == nil:
		w.error(fd.NameSpan, "function must have a body")
	}

	if ext := fd.Extern(); ext != nil && ext.LibName != nil && !ext.LibName.IsConstant() {
		w.error(ext.LibName.Span(), "extern library name must be a constant string")
	}

	ft := &typing.FuncType{ReturnType: typing.PrimVoid}
	for _, param := range fd.Params {
		pt := w.resolveType(table, param.Type)
		if typing.IsVoid(pt) {
			w.error(param.Span(), "parameter `%s` cannot be of type `Void`", param.Name)
		}

		ft.Params = append(ft.Params, pt)
		w.ann.Types.Set(param, pt)
	}

	if fd.ReturnType != nil {
		ft.ReturnType = w.resolveType(table, fd.ReturnType)
	}

	// only the top level `main` is the entry point
	if fd.Name == common.MainFuncName && table == w.fileTable {
		if len(fd.Params) > 0 {
			w.error(fd.NameSpan, "`main` must not take any parameters")
		}

		if !ft.ReturnType.Equiv(typing.PrimInt) && !typing.IsVoid(ft.ReturnType) {
			w.error(fd.NameSpan, "`main` must return `Int` or `Void`, not `%s`", ft.ReturnType.Repr())
		}
	}

	w.define(table, &depm.Symbol{
		Name:    fd.Name,
		Node:    fd,
		DefKind: depm.DefKindFunc,
		Type:    ft,
		Unit:    w.unit,
	}, fd.NameSpan)
	w.ann.Types.Set(fd, ft)
}

// -----------------------------------------------------------------------------

// resolveType converts a type label into a data type.
func (w *walker) resolveType(table *depm.SymbolTable, te ast.TypeExpr) typing.DataType {
	switch v := te.(type) {
	case *ast.NamedTypeExpr:
		if pt, ok := typing.PrimTypeByName(v.Name); ok {
			if len(v.Params) > 0 {
				w.error(v.Span(), "type `%s` does not take type parameters", v.Name)
			}

			return pt
		}

		if sym, ok := table.Lookup(v.Name); ok && sym.DefKind == depm.DefKindType {
			ut := &typing.UserType{Name: v.Name}
			for _, param := range v.Params {
				ut.Params = append(ut.Params, w.resolveType(table, param))
			}

			return ut
		}

		panic(report.Raise(report.KindUnknownType, v.Span(), "unknown type: `%s`", v.Name))
	case *ast.FuncTypeExpr:
		ft := &typing.FuncType{}
		for _, param := range v.Params {
			ft.Params = append(ft.Params, w.resolveType(table, param))
		}

		ft.ReturnType = w.resolveType(table, v.ReturnType)
		return ft
	}

	panic(report.Raise(report.KindInternalState, te.Span(), "unknown type expression: %T", te))
}

// -----------------------------------------------------------------------------

// walkDecl walks the bodies of a declaration.
func (w *walker) walkDecl(table *depm.SymbolTable, decl ast.Decl) {
	switch v := decl.(type) {
	case *ast.FuncDecl:
		if v.Body != nil {
			w.walkFuncBody(table, v)
		}
	case *ast.ClassDecl:
		classTable, _ := w.ann.Scopes.Get(v)
		for _, member := range v.Members {
			w.walkDecl(classTable, member)
		}
	case *ast.CompilerCall:
		w.walkExpr(table, v.Call)
	}
}

// walkFuncBody creates the function's scope and walks its body.
func (w *walker) walkFuncBody(table *depm.SymbolTable, fd *ast.FuncDecl) {
	funcTable := depm.NewSymbolTable(table)
	w.ann.Scopes.Set(fd, funcTable)

	for _, param := range fd.Params {
		pt, _ := w.ann.Types.Get(param)
		w.define(funcTable, &depm.Symbol{
			Name:    param.Name,
			Node:    param,
			DefKind: depm.DefKindParam,
			Type:    pt,
			Unit:    w.unit,
		}, param.Span())
	}

	ft, _ := w.ann.Types.Get(fd)
	w.enclosingReturnType = ft.(*typing.FuncType).ReturnType
	defer func() {
		w.enclosingReturnType = nil
	}()

	w.walkBlock(funcTable, fd.Body)

	// the final expression of a block is its implicit return value
	rtType := w.enclosingReturnType
	if n := len(fd.Body.Stmts); n > 0 && !typing.IsVoid(rtType) {
		if es, ok := fd.Body.Stmts[n-1].(*ast.ExprStmt); ok {
			if dt, ok := w.ann.Types.Get(es.Expr); ok && !dt.Equiv(rtType) {
				w.error(es.Span(), "expected value of type `%s` but got `%s`", rtType.Repr(), dt.Repr())
			}
		}
	}
}

// walkBlock walks the statements of a block.
func (w *walker) walkBlock(table *depm.SymbolTable, block *ast.Block) {
	for _, stmt := range block.Stmts {
		switch v := stmt.(type) {
		case *ast.ExprStmt:
			w.walkExpr(table, v.Expr)
		case *ast.ReturnStmt:
			w.walkReturn(table, v)
		}
	}
}

// walkReturn checks a return statement against the enclosing function.
func (w *walker) walkReturn(table *depm.SymbolTable, rs *ast.ReturnStmt) {
	// returns inside function literals return from the literal
	if w.enclosingReturnType == nil {
		if rs.Value != nil {
			w.walkExpr(table, rs.Value)
		}

		return
	}

	if rs.Value == nil {
		if !typing.IsVoid(w.enclosingReturnType) {
			w.error(rs.Span(), "missing return value of type `%s`", w.enclosingReturnType.Repr())
		}

		return
	}

	vt := w.walkExpr(table, rs.Value)
	if typing.IsVoid(w.enclosingReturnType) {
		w.error(rs.Value.Span(), "cannot return a value from a function returning `Void`")
	} else if vt != nil && !vt.Equiv(w.enclosingReturnType) {
		w.error(rs.Value.Span(), "expected return value of type `%s` but got `%s`", w.enclosingReturnType.Repr(), vt.Repr())
	}
}
