package ast

// Stmt represents a statement.
type Stmt interface {
	ASTNode

	// Accept dispatches the statement to the matching visitor method.
	Accept(v StmtVisitor)
}

// Block is a list of statements.  It is the body of functions and function
// literals.
type Block struct {
	ASTBase

	Stmts []Stmt
}

// ExprStmt is an expression evaluated as a statement.
type ExprStmt struct {
	ASTBase

	Expr Expr
}

func (es *ExprStmt) Accept(v StmtVisitor) {
	v.VisitExprStmt(es)
}

// ReturnStmt returns from the enclosing function.  Value may be nil.
type ReturnStmt struct {
	ASTBase

	Value Expr
}

func (rs *ReturnStmt) Accept(v StmtVisitor) {
	v.VisitReturnStmt(rs)
}
