// Package ast defines the Abla abstract syntax tree.  AST nodes are immutable
// once constructed: every fact derived by a later phase is stored in a side
// table keyed by the node's ID rather than in the node itself.
package ast

import (
	"ablac/report"
	"sync/atomic"
)

// NodeID uniquely identifies an AST node within a compile service.  The zero
// NodeID is never assigned.
type NodeID uint64

// IDSource allocates node IDs.  It is safe for concurrent use so that files
// parsed in parallel still receive distinct IDs.
type IDSource struct {
	last atomic.Uint64
}

// Next returns a fresh node ID.
func (ids *IDSource) Next() NodeID {
	return NodeID(ids.last.Add(1))
}

// The abstract interface for all AST nodes.
type ASTNode interface {
	// The unique ID of the node.
	ID() NodeID

	// The text span of the AST.
	Span() *report.TextSpan
}

// A utility base struct for all AST nodes.
type ASTBase struct {
	// The node's ID.
	id NodeID

	// The span over which the AST node occurs.
	span *report.TextSpan
}

// NewASTBaseOn creates a new AST base with the given span.
func NewASTBaseOn(ids *IDSource, span *report.TextSpan) ASTBase {
	return ASTBase{id: ids.Next(), span: span}
}

// NewASTBaseOver creates a new AST base spanning over two spans.
func NewASTBaseOver(ids *IDSource, start, end *report.TextSpan) ASTBase {
	return ASTBase{id: ids.Next(), span: report.NewSpanOver(start, end)}
}

func (ab ASTBase) ID() NodeID {
	return ab.id
}

func (ab ASTBase) Span() *report.TextSpan {
	return ab.span
}

// -----------------------------------------------------------------------------

// DeclVisitor visits each kind of declaration.
type DeclVisitor interface {
	VisitFuncDecl(fd *FuncDecl)
	VisitClassDecl(cd *ClassDecl)
	VisitCompilerCall(cc *CompilerCall)
}

// StmtVisitor visits each kind of statement.
type StmtVisitor interface {
	VisitExprStmt(es *ExprStmt)
	VisitReturnStmt(rs *ReturnStmt)
}

// ExprVisitor visits each kind of expression.
type ExprVisitor interface {
	VisitIdentifier(id *Identifier)
	VisitIntLit(il *IntLit)
	VisitStringLit(sl *StringLit)
	VisitCall(call *Call)
	VisitFuncLit(fl *FuncLit)
	VisitBinaryOp(bop *BinaryOp)
	VisitCompilerExec(ce *CompilerExec)
}
