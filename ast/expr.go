package ast

import (
	"strconv"
	"strings"
)

// Expr represents an expression.  All expression nodes implement the `Expr`
// interface.
type Expr interface {
	ASTNode

	// Accept dispatches the expression to the matching visitor method.
	Accept(v ExprVisitor)
}

// Identifier is a reference to a named symbol.
type Identifier struct {
	ASTBase

	Name string
}

func (id *Identifier) Accept(v ExprVisitor) {
	v.VisitIdentifier(id)
}

// IntLit is an integer literal.  The value is kept as source text: it is
// converted by the phase that needs it.
type IntLit struct {
	ASTBase

	Value string
}

func (il *IntLit) Accept(v ExprVisitor) {
	v.VisitIntLit(il)
}

// Int32 parses the literal's value.  Literals which do not fit in 32 bits are
// an error.
func (il *IntLit) Int32() (int32, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(il.Value, "_", ""), 10, 32)
	return int32(v), err
}

// StringLit is a string literal made of constant and interpolated parts.
type StringLit struct {
	ASTBase

	Parts []StringPart
}

func (sl *StringLit) Accept(v ExprVisitor) {
	v.VisitStringLit(sl)
}

// IsConstant returns whether the literal has no interpolated parts.
func (sl *StringLit) IsConstant() bool {
	for _, part := range sl.Parts {
		if _, ok := part.(*StringConst); !ok {
			return false
		}
	}

	return true
}

// StringPart is a part of a string literal.
type StringPart interface {
	isStringPart()
}

// StringConst is a constant run of characters inside a string literal with
// escapes already processed.
type StringConst struct {
	Value string
}

// StringInterp is a `${expr}` interpolation inside a string literal.
type StringInterp struct {
	Expr Expr
}

func (*StringConst) isStringPart()  {}
func (*StringInterp) isStringPart() {}

// Call is a function call.
type Call struct {
	ASTBase

	Func Expr
	Args []Expr
}

func (call *Call) Accept(v ExprVisitor) {
	v.VisitCall(call)
}

// FuncLit is a function literal: an anonymous, parameterless function whose
// body reads through to the enclosing scope.
type FuncLit struct {
	ASTBase

	Body *Block
}

func (fl *FuncLit) Accept(v ExprVisitor) {
	v.VisitFuncLit(fl)
}

// BinaryOp is a binary operator application.
type BinaryOp struct {
	ASTBase

	Op       BinaryOperator
	Lhs, Rhs Expr
}

func (bop *BinaryOp) Accept(v ExprVisitor) {
	v.VisitBinaryOp(bop)
}

// BinaryOperator enumerates the binary operators.
type BinaryOperator int

// Enumeration of binary operators.
const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpGt
	OpLt
	OpGtEq
	OpLtEq
)

var binaryOperatorNames = [...]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpEq:   "==",
	OpNeq:  "!=",
	OpGt:   ">",
	OpLt:   "<",
	OpGtEq: ">=",
	OpLtEq: "<=",
}

func (op BinaryOperator) String() string {
	return binaryOperatorNames[op]
}

// IsComparison returns whether the operator yields a boolean.
func (op BinaryOperator) IsComparison() bool {
	return op >= OpEq
}

// CompilerExec is an expression evaluated at compile time: `#expr`.
type CompilerExec struct {
	ASTBase

	Expr Expr
}

func (ce *CompilerExec) Accept(v ExprVisitor) {
	v.VisitCompilerExec(ce)
}
