package depm

import (
	"ablac/ast"
	"ablac/typing"
	"sync"
)

// SideTable associates derived facts with AST nodes by node ID.  AST nodes are
// never mutated after parsing: each phase records what it learns in a side
// table so that the facts can be cleared or recomputed independently of the
// tree.  Side tables are safe for concurrent use.
type SideTable[T any] struct {
	m       sync.RWMutex
	entries map[ast.NodeID]T
}

// NewSideTable creates an empty side table.
func NewSideTable[T any]() *SideTable[T] {
	return &SideTable[T]{entries: make(map[ast.NodeID]T)}
}

// Set records the fact for the node.
func (st *SideTable[T]) Set(node ast.ASTNode, value T) {
	st.m.Lock()
	defer st.m.Unlock()

	st.entries[node.ID()] = value
}

// Get returns the fact recorded for the node.
func (st *SideTable[T]) Get(node ast.ASTNode) (T, bool) {
	st.m.RLock()
	defer st.m.RUnlock()

	value, ok := st.entries[node.ID()]
	return value, ok
}

// Delete removes the fact recorded for the node.
func (st *SideTable[T]) Delete(node ast.ASTNode) {
	st.m.Lock()
	defer st.m.Unlock()

	delete(st.entries, node.ID())
}

// Len returns the number of recorded facts.
func (st *SideTable[T]) Len() int {
	st.m.RLock()
	defer st.m.RUnlock()

	return len(st.entries)
}

// Clear removes every recorded fact.
func (st *SideTable[T]) Clear() {
	st.m.Lock()
	defer st.m.Unlock()

	st.entries = make(map[ast.NodeID]T)
}

// -----------------------------------------------------------------------------

// ConstValue is a value computed during compile-time execution which must be
// materialized by code generation.
type ConstValue struct {
	// The type of the constant: one of `Int`, `String` or `Bool`.
	Type typing.PrimType

	Int int64
	Str string
}

// Annotations are the side tables shared by all the phases of one compile
// service.
type Annotations struct {
	// Scopes holds the symbol table owned by each file, function declaration,
	// class declaration and function literal.
	Scopes *SideTable[*SymbolTable]

	// Types holds the resolved type of declarations and expressions.
	Types *SideTable[typing.DataType]

	// Consts holds the values of compile-time executed expressions.
	Consts *SideTable[ConstValue]
}

// NewAnnotations creates a new set of empty annotation tables.
func NewAnnotations() *Annotations {
	return &Annotations{
		Scopes: NewSideTable[*SymbolTable](),
		Types:  NewSideTable[typing.DataType](),
		Consts: NewSideTable[ConstValue](),
	}
}

// Clear removes every annotation.
func (a *Annotations) Clear() {
	a.Scopes.Clear()
	a.Types.Clear()
	a.Consts.Clear()
}
