// Package walk implements the type-gathering pass: it builds the symbol tables
// of a file, resolves declared types and records the types of expressions
// where they can already be determined.
package walk

import (
	"ablac/ast"
	"ablac/depm"
	"ablac/report"
	"ablac/typing"
)

// Gatherer runs the type-gathering pass over files.  All facts are recorded in
// the shared annotation tables.  A Gatherer is safe for concurrent use: each
// call to Gather uses its own walker.
type Gatherer struct {
	ann *depm.Annotations
}

// NewGatherer creates a new gatherer recording into ann.
func NewGatherer(ann *depm.Annotations) *Gatherer {
	return &Gatherer{ann: ann}
}

// Gather builds the symbol tables of file and resolves its declarations.
func (g *Gatherer) Gather(file *ast.File) (err error) {
	defer report.CatchErrors(file.Name, &err)

	w := &walker{
		ann:       g.ann,
		unit:      file.Name,
		fileTable: depm.NewSymbolTable(nil),
	}
	g.ann.Scopes.Set(file, w.fileTable)

	// Types are declared first so that function signatures may refer to
	// classes declared after them.
	for _, decl := range file.Decls {
		if cd, ok := decl.(*ast.ClassDecl); ok {
			w.declareClass(w.fileTable, cd)
		}
	}

	for _, decl := range file.Decls {
		w.declareMembers(w.fileTable, decl)
	}

	for _, decl := range file.Decls {
		w.walkDecl(w.fileTable, decl)
	}

	return nil
}

// -----------------------------------------------------------------------------

// walker holds the state of the gathering pass over a single file.
type walker struct {
	ann *depm.Annotations

	// The name of the unit being walked.
	unit string

	// The file's top level symbol table.
	fileTable *depm.SymbolTable

	// The return type of the enclosing function.  It is nil outside of
	// function bodies.
	enclosingReturnType typing.DataType
}

// define defines a symbol in table, raising an error on duplicates.
func (w *walker) define(table *depm.SymbolTable, sym *depm.Symbol, span *report.TextSpan) {
	if !table.Define(sym) {
		w.error(span, "multiple symbols named `%s` defined in the same scope", sym.Name)
	}
}

// error raises a type error on the given span.
func (w *walker) error(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(report.KindType, span, msg, args...))
}
