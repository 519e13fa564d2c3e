package eval

import (
	"ablac/ast"
	"ablac/depm"
	"ablac/typing"
	"strconv"
)

// Value is a value computed during compile-time execution.
type Value interface {
	// Type returns the data type of the value.
	Type() typing.DataType

	// String returns the value as it appears when interpolated into a string.
	String() string
}

// IntValue is an `Int`.  Arithmetic wraps around at 32 bits.
type IntValue int32

// StringValue is a `String`.
type StringValue string

// BoolValue is a `Bool`.
type BoolValue bool

// VoidValue is the result of expressions that produce no value.
type VoidValue struct{}

func (IntValue) Type() typing.DataType    { return typing.PrimInt }
func (StringValue) Type() typing.DataType { return typing.PrimString }
func (BoolValue) Type() typing.DataType   { return typing.PrimBool }
func (VoidValue) Type() typing.DataType   { return typing.PrimVoid }

func (iv IntValue) String() string    { return strconv.Itoa(int(iv)) }
func (sv StringValue) String() string { return string(sv) }
func (bv BoolValue) String() string   { return strconv.FormatBool(bool(bv)) }
func (VoidValue) String() string      { return "" }

// -----------------------------------------------------------------------------

// FuncValue is a function: either a declared function or a function literal
// closed over the environment it was evaluated in.
type FuncValue struct {
	// Decl is the declared function.  It is nil for function literals.
	Decl *ast.FuncDecl

	// Lit is the function literal.  It is nil for declared functions.
	Lit *ast.FuncLit

	// Env is the environment a function literal was evaluated in.
	Env *env

	// FuncType is the function's type if it is known.
	FuncType *typing.FuncType
}

func (fv *FuncValue) Type() typing.DataType {
	if fv.FuncType == nil {
		return &typing.FuncType{ReturnType: typing.PrimInt}
	}

	return fv.FuncType
}

func (fv *FuncValue) String() string {
	if fv.Decl != nil {
		return "<fun " + fv.Decl.Name + ">"
	}

	return "<fun literal>"
}

// BuiltinValue is a function provided by the compiler.
type BuiltinValue struct {
	Name     string
	FuncType *typing.FuncType

	fn builtinFunc
}

func (bv *BuiltinValue) Type() typing.DataType {
	return bv.FuncType
}

func (bv *BuiltinValue) String() string {
	return "<builtin " + bv.Name + ">"
}

// -----------------------------------------------------------------------------

// env is a compile-time environment: the values of parameters bound by calls
// layered over the symbol table used for every other name.
type env struct {
	// vars holds parameter values bound in this environment.
	vars map[string]Value

	// table is the lexical scope of the code being executed.
	table *depm.SymbolTable

	parent *env
}

// lookupVar looks up a bound parameter value.
func (e *env) lookupVar(name string) (Value, bool) {
	for ev := e; ev != nil; ev = ev.parent {
		if v, ok := ev.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}
