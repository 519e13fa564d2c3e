// Package eval implements compile-time execution: it evaluates top level
// compiler calls and the `#` expressions inside function bodies with a
// tree-walking interpreter.
package eval

import (
	"ablac/ast"
	"ablac/build"
	"ablac/depm"
	"ablac/report"
	"ablac/typing"
	"context"
)

// MaxCallDepth is the maximum depth of nested calls during compile-time
// execution.
const MaxCallDepth = 256

// Executor runs the compile-time execution phase.  It is safe for concurrent
// use: each call to Execute uses its own interpreter.
type Executor struct {
	ann *depm.Annotations
}

// New creates a new executor reading and recording into ann.
func New(ann *depm.Annotations) *Executor {
	return &Executor{ann: ann}
}

// Execute evaluates every top level compiler call of file in source order and
// then every compiler expression inside its function bodies.  Nested
// compilation requests are issued through svc with contexts derived from cc.
func (e *Executor) Execute(ctx context.Context, file *ast.File, cc *build.CompilationContext, svc *build.CompileService) (err error) {
	defer report.CatchErrors(file.Name, &err)

	fileTable, ok := e.ann.Scopes.Get(file)
	if !ok {
		panic(report.Raise(report.KindInternalState, file.Span(), "no scope recorded for `%s`", file.Name))
	}

	in := &interp{
		ctx:       ctx,
		ann:       e.ann,
		svc:       svc,
		cc:        cc,
		file:      file,
		fileTable: fileTable,
	}

	for _, decl := range file.Decls {
		if call, ok := decl.(*ast.CompilerCall); ok {
			in.evalExpr(call.Call, &env{table: fileTable})
		}
	}

	for _, decl := range file.Decls {
		in.execDecl(fileTable, decl)
	}

	return nil
}

// -----------------------------------------------------------------------------

// execDecl evaluates the compiler expressions in the bodies of a declaration.
// Compile-time only declarations are skipped: their compiler expressions run
// whenever they are called.
func (in *interp) execDecl(table *depm.SymbolTable, decl ast.Decl) {
	switch v := decl.(type) {
	case *ast.FuncDecl:
		if v.Body == nil || v.IsCompiler() {
			return
		}

		funcTable, ok := in.ann.Scopes.Get(v)
		if !ok {
			panic(report.Raise(report.KindInternalState, v.Span(), "no scope recorded for `%s`", v.Name))
		}

		in.execBlockConsts(funcTable, v.Body)
	case *ast.ClassDecl:
		if v.IsCompiler() {
			return
		}

		classTable, _ := in.ann.Scopes.Get(v)
		for _, member := range v.Members {
			in.execDecl(classTable, member)
		}
	}
}

// execBlockConsts evaluates the compiler expressions of a block.
func (in *interp) execBlockConsts(table *depm.SymbolTable, block *ast.Block) {
	for _, stmt := range block.Stmts {
		switch v := stmt.(type) {
		case *ast.ExprStmt:
			in.execExprConsts(table, v.Expr)
		case *ast.ReturnStmt:
			if v.Value != nil {
				in.execExprConsts(table, v.Value)
			}
		}
	}
}

// execExprConsts finds the compiler expressions within expr, evaluates them and
// records their values for code generation.
func (in *interp) execExprConsts(table *depm.SymbolTable, expr ast.Expr) {
	switch v := expr.(type) {
	case *ast.StringLit:
		for _, part := range v.Parts {
			if si, ok := part.(*ast.StringInterp); ok {
				in.execExprConsts(table, si.Expr)
			}
		}
	case *ast.Call:
		in.execExprConsts(table, v.Func)
		for _, arg := range v.Args {
			in.execExprConsts(table, arg)
		}
	case *ast.FuncLit:
		in.execBlockConsts(table, v.Body)
	case *ast.BinaryOp:
		in.execExprConsts(table, v.Lhs)
		in.execExprConsts(table, v.Rhs)
	case *ast.CompilerExec:
		in.recordConst(v, in.evalExpr(v.Expr, &env{table: table}))
	}
}

// recordConst records the value of a compiler expression.
func (in *interp) recordConst(ce *ast.CompilerExec, val Value) {
	var cv depm.ConstValue
	switch v := val.(type) {
	case IntValue:
		cv.Type = typing.PrimInt
		cv.Int = int64(v)
	case StringValue:
		cv.Type = typing.PrimString
		cv.Str = string(v)
	case BoolValue:
		cv.Type = typing.PrimBool
		if v {
			cv.Int = 1
		}
	case VoidValue:
		panic(report.Raise(report.KindExec, ce.Span(), "compile-time expression produced no value"))
	default:
		panic(report.Raise(report.KindExec, ce.Span(), "cannot embed a value of type `%s` computed at compile time", val.Type().Repr()))
	}

	in.ann.Consts.Set(ce, cv)
	in.ann.Types.Set(ce, val.Type())
}
