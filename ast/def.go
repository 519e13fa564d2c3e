package ast

import "ablac/report"

// File is the root of a single compilation unit.
type File struct {
	ASTBase

	// The unit name of the file: a path or a synthetic `<source#N>` name.
	Name string

	// The top level declarations of the file in source order.
	Decls []Decl
}

// Decl represents a top level or class member declaration.
type Decl interface {
	ASTNode

	// Accept dispatches the declaration to the matching visitor method.
	Accept(v DeclVisitor)
}

// -----------------------------------------------------------------------------

// Modifier represents a declaration modifier.
type Modifier interface {
	Span() *report.TextSpan
}

// Extern marks a declaration as externally defined.  LibName is the library
// the symbol is linked from; it may be nil.
type Extern struct {
	LibName *StringLit
	Pos     *report.TextSpan
}

func (e *Extern) Span() *report.TextSpan {
	return e.Pos
}

// ModCompiler marks a declaration as compile-time only.
type ModCompiler struct {
	Pos *report.TextSpan
}

func (mc *ModCompiler) Span() *report.TextSpan {
	return mc.Pos
}

// hasExtern returns whether a modifier list contains an extern modifier.
func hasExtern(mods []Modifier) bool {
	for _, mod := range mods {
		if _, ok := mod.(*Extern); ok {
			return true
		}
	}

	return false
}

// hasCompiler returns whether a modifier list contains a compiler modifier.
func hasCompiler(mods []Modifier) bool {
	for _, mod := range mods {
		if _, ok := mod.(*ModCompiler); ok {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// FuncDecl is an AST node for a function declaration.
type FuncDecl struct {
	ASTBase

	Name      string
	NameSpan  *report.TextSpan
	Params    []*Param
	Modifiers []Modifier

	// ReturnType is the declared return type.  It is nil if the function
	// returns `Void` implicitly.
	ReturnType TypeExpr

	// Body is nil for bodiless (usually extern) declarations.
	Body *Block
}

func (fd *FuncDecl) Accept(v DeclVisitor) {
	v.VisitFuncDecl(fd)
}

// IsExtern returns whether the function is declared `extern`.
func (fd *FuncDecl) IsExtern() bool {
	return hasExtern(fd.Modifiers)
}

// IsCompiler returns whether the function is compile-time only.
func (fd *FuncDecl) IsCompiler() bool {
	return hasCompiler(fd.Modifiers)
}

// Extern returns the function's extern modifier if it has one.
func (fd *FuncDecl) Extern() *Extern {
	for _, mod := range fd.Modifiers {
		if e, ok := mod.(*Extern); ok {
			return e
		}
	}

	return nil
}

// Param is a function parameter.
type Param struct {
	ASTBase

	Name string
	Type TypeExpr
}

// ClassDecl is an AST node for a class declaration.  Only declarations are
// supported: classes have no fields or instances yet.
type ClassDecl struct {
	ASTBase

	Name      string
	Modifiers []Modifier
	Members   []Decl
}

func (cd *ClassDecl) Accept(v DeclVisitor) {
	v.VisitClassDecl(cd)
}

// IsCompiler returns whether the class is compile-time only.
func (cd *ClassDecl) IsCompiler() bool {
	return hasCompiler(cd.Modifiers)
}

// CompilerCall is a top level `#call(...)` declaration: it is evaluated during
// compile-time execution and produces no runtime code.
type CompilerCall struct {
	ASTBase

	Call Expr
}

func (cc *CompilerCall) Accept(v DeclVisitor) {
	v.VisitCompilerCall(cc)
}
