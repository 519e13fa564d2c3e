package ast

import "ablac/report"

// TypeExpr is a type label written in source code.  Type labels are resolved
// into data types by the type-gathering pass.
type TypeExpr interface {
	Span() *report.TextSpan

	isTypeExpr()
}

// NamedTypeExpr is a named, possibly parameterized type label: `List<Int>`.
type NamedTypeExpr struct {
	Name   string
	Params []TypeExpr
	Pos    *report.TextSpan
}

// FuncTypeExpr is a function type label: `(Int, String) -> Void`.
type FuncTypeExpr struct {
	Params     []TypeExpr
	ReturnType TypeExpr
	Pos        *report.TextSpan
}

func (nte *NamedTypeExpr) Span() *report.TextSpan {
	return nte.Pos
}

func (fte *FuncTypeExpr) Span() *report.TextSpan {
	return fte.Pos
}

func (*NamedTypeExpr) isTypeExpr() {}
func (*FuncTypeExpr) isTypeExpr()  {}
