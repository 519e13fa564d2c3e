package eval

import (
	"ablac/report"
	"ablac/typing"
	"path/filepath"
	"strings"
)

// builtinFunc is the implementation of a builtin function.  Arguments have
// already been checked against the builtin's type.
type builtinFunc func(in *interp, args []Value, span *report.TextSpan) Value

// builtins is the table of builtin functions available during compile-time
// execution.
var builtins = map[string]*BuiltinValue{
	"import": {
		Name:     "import",
		FuncType: &typing.FuncType{Params: []typing.DataType{typing.PrimString}, ReturnType: typing.PrimVoid},
		fn:       builtinImport,
	},
	"compile": {
		Name:     "compile",
		FuncType: &typing.FuncType{Params: []typing.DataType{typing.PrimString}, ReturnType: typing.PrimString},
		fn:       builtinCompile,
	},
}

// builtinImport compiles the file at the given path, resolved relative to the
// requesting unit, and imports its symbols.
func builtinImport(in *interp, args []Value, span *report.TextSpan) Value {
	path := string(args[0].(StringValue))
	if !filepath.IsAbs(path) && !isSyntheticName(in.file.Name) {
		path = filepath.Join(filepath.Dir(in.file.Name), path)
	}

	name := filepath.Clean(path)
	if err := in.svc.CompileFile(in.ctx, name, false, in.cc.Derive(in.file.Name)); err != nil {
		in.error(span, "failed to import `%s`: %s", name, err)
	}

	in.importUnit(name, span)
	return VoidValue{}
}

// builtinCompile compiles inline source, imports its symbols and returns the
// name of the new unit.
func builtinCompile(in *interp, args []Value, span *report.TextSpan) Value {
	name, err := in.svc.CompileSource(in.ctx, string(args[0].(StringValue)), false, in.cc.Derive(in.file.Name))
	if err != nil {
		in.error(span, "failed to compile inline source: %s", err)
	}

	in.importUnit(name, span)
	return StringValue(name)
}

// importUnit adds the top level symbols defined by a unit to the file table of
// the unit being executed.  Compile-time only symbols are not imported and
// local definitions take precedence over imported ones.
func (in *interp) importUnit(name string, span *report.TextSpan) {
	file, ok := in.svc.File(name)
	if !ok {
		panic(report.Raise(report.KindInternalState, span, "imported unit `%s` has no AST", name))
	}

	table, ok := in.ann.Scopes.Get(file)
	if !ok {
		panic(report.Raise(report.KindInternalState, span, "no scope recorded for `%s`", name))
	}

	for _, sym := range table.Symbols() {
		if sym.Unit != name || sym.IsCompileTimeOnly() {
			continue
		}

		if !in.fileTable.Import(sym) {
			if existing, _ := in.fileTable.LookupLocal(sym.Name); existing != sym {
				report.ReportCompileWarning(in.file.Name, span, "imported symbol `%s` is shadowed by a local definition", sym.Name)
			}
		}
	}
}

// isSyntheticName returns whether a unit name was generated for inline source
// or a stream.
func isSyntheticName(name string) bool {
	return strings.HasPrefix(name, "<")
}
