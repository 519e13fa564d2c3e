package depm

import (
	"ablac/ast"
	"ablac/typing"
)

// Symbol represents a semantic symbol: a named value or definition.
type Symbol struct {
	// The name of the symbol.
	Name string

	// The declaring node: a *ast.FuncDecl, *ast.ClassDecl or *ast.Param.
	Node ast.ASTNode

	// The symbol's kind.  This must be one the enumerated definition kinds.
	DefKind int

	// The type of the value stored in the symbol.  This may be nil if it could
	// not be determined.
	Type typing.DataType

	// The unit that defines this symbol.
	Unit string
}

// Enumeration of different symbol kinds.
const (
	DefKindFunc = iota
	DefKindParam
	DefKindType
)

// IsCompileTimeOnly returns whether the symbol only exists during compile-time
// execution and has no runtime representation.
func (sym *Symbol) IsCompileTimeOnly() bool {
	switch v := sym.Node.(type) {
	case *ast.FuncDecl:
		return v.IsCompiler()
	case *ast.ClassDecl:
		return v.IsCompiler()
	}

	return false
}
