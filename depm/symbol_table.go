package depm

import "sync"

// SymbolTable is a lexical scope: a mapping from names to symbols with a link
// to the enclosing scope.  Symbol tables are created per file, function and
// class by the type-gathering pass.  Lookups are synchronized because the
// table of a file may be extended by compile-time imports while other units
// read from it.
type SymbolTable struct {
	// parent is the enclosing table.  It is nil for file tables.
	parent *SymbolTable

	// m guards the symbols map.
	m sync.RWMutex

	// symbols holds the symbols defined directly in this scope.
	symbols map[string]*Symbol
}

// NewSymbolTable creates a new symbol table enclosed by parent.  The parent may
// be nil.
func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Parent returns the enclosing symbol table.
func (st *SymbolTable) Parent() *SymbolTable {
	return st.parent
}

// Define defines a new symbol in this scope.  It returns false if a symbol by
// the same name is already defined in this scope.
func (st *SymbolTable) Define(sym *Symbol) bool {
	st.m.Lock()
	defer st.m.Unlock()

	if _, ok := st.symbols[sym.Name]; ok {
		return false
	}

	st.symbols[sym.Name] = sym
	return true
}

// Import adds a symbol defined in another unit to this scope.  Local
// definitions always win over imported ones: importing a name that is already
// defined does nothing and returns false.
func (st *SymbolTable) Import(sym *Symbol) bool {
	return st.Define(sym)
}

// LookupLocal looks up a symbol defined directly in this scope.
func (st *SymbolTable) LookupLocal(name string) (*Symbol, bool) {
	st.m.RLock()
	defer st.m.RUnlock()

	sym, ok := st.symbols[name]
	return sym, ok
}

// Lookup looks up a symbol in this scope and then in all enclosing scopes.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for table := st; table != nil; table = table.parent {
		if sym, ok := table.LookupLocal(name); ok {
			return sym, true
		}
	}

	return nil, false
}

// Symbols returns the symbols defined directly in this scope.
func (st *SymbolTable) Symbols() []*Symbol {
	st.m.RLock()
	defer st.m.RUnlock()

	syms := make([]*Symbol, 0, len(st.symbols))
	for _, sym := range st.symbols {
		syms = append(syms, sym)
	}

	return syms
}
