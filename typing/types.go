// Package typing defines Abla's data types.
package typing

import "strings"

// DataType is the interface for all data types in Abla.
type DataType interface {
	// Repr returns the representative string of the type.
	Repr() string

	// Equiv returns whether two types are structurally equal.
	Equiv(other DataType) bool
}

// PrimType is a primitive type.  It must be one of the enumerated primitive
// types below.
type PrimType int

// Enumeration of primitive types.
const (
	PrimInt PrimType = iota
	PrimString
	PrimVoid
	PrimBool
)

var primTypeNames = [...]string{
	PrimInt:    "Int",
	PrimString: "String",
	PrimVoid:   "Void",
	PrimBool:   "Bool",
}

func (pt PrimType) Repr() string {
	return primTypeNames[pt]
}

func (pt PrimType) Equiv(other DataType) bool {
	if opt, ok := other.(PrimType); ok {
		return pt == opt
	}

	return false
}

// PrimTypeByName looks up a primitive type by its source name.
func PrimTypeByName(name string) (PrimType, bool) {
	for i, primName := range primTypeNames {
		if primName == name {
			return PrimType(i), true
		}
	}

	return 0, false
}

// IsVoid returns whether a type is `Void`.  A nil type is considered void.
func IsVoid(dt DataType) bool {
	return dt == nil || dt.Equiv(PrimVoid)
}

// -----------------------------------------------------------------------------

// FuncType represents a function type.
type FuncType struct {
	Params     []DataType
	ReturnType DataType
}

func (ft *FuncType) Repr() string {
	sb := strings.Builder{}
	sb.WriteRune('(')

	for i, param := range ft.Params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(param.Repr())
	}

	sb.WriteString(") -> ")

	if ft.ReturnType == nil {
		sb.WriteString(PrimVoid.Repr())
	} else {
		sb.WriteString(ft.ReturnType.Repr())
	}

	return sb.String()
}

func (ft *FuncType) Equiv(other DataType) bool {
	oft, ok := other.(*FuncType)
	if !ok || len(ft.Params) != len(oft.Params) {
		return false
	}

	for i, param := range ft.Params {
		if !param.Equiv(oft.Params[i]) {
			return false
		}
	}

	if IsVoid(ft.ReturnType) || IsVoid(oft.ReturnType) {
		return IsVoid(ft.ReturnType) && IsVoid(oft.ReturnType)
	}

	return ft.ReturnType.Equiv(oft.ReturnType)
}

// -----------------------------------------------------------------------------

// UserType is a named user type such as a class.  It may be parameterized.
type UserType struct {
	Name   string
	Params []DataType
}

func (ut *UserType) Repr() string {
	if len(ut.Params) == 0 {
		return ut.Name
	}

	paramReprs := make([]string, len(ut.Params))
	for i, param := range ut.Params {
		paramReprs[i] = param.Repr()
	}

	return ut.Name + "<" + strings.Join(paramReprs, ", ") + ">"
}

func (ut *UserType) Equiv(other DataType) bool {
	out, ok := other.(*UserType)
	if !ok || ut.Name != out.Name || len(ut.Params) != len(out.Params) {
		return false
	}

	for i, param := range ut.Params {
		if !param.Equiv(out.Params[i]) {
			return false
		}
	}

	return true
}
