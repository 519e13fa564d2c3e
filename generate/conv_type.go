package generate

import (
	"ablac/report"
	"ablac/typing"

	"github.com/llir/llvm/ir/types"
)

// ConvType converts an Abla data type into its LLVM representation.  Types
// with no backend representation are fatal errors.
func ConvType(dt typing.DataType) types.Type {
	switch v := dt.(type) {
	case typing.PrimType:
		return convPrimType(v)
	case *typing.FuncType:
		params := make([]types.Type, len(v.Params))
		for i, param := range v.Params {
			params[i] = ConvType(param)
		}

		return types.NewPointer(types.NewFunc(convReturnType(v.ReturnType), params...))
	case nil:
		panic(report.Raise(report.KindInternalState, nil, "missing type"))
	}

	panic(report.Raise(report.KindUnknownType, nil, "type `%s` has no backend representation", dt.Repr()))
}

// convReturnType converts a return type: a missing return type is `Void`.
func convReturnType(dt typing.DataType) types.Type {
	if dt == nil {
		return types.Void
	}

	return ConvType(dt)
}

func convPrimType(pt typing.PrimType) types.Type {
	switch pt {
	case typing.PrimInt:
		return types.I32
	case typing.PrimString:
		return types.I8Ptr
	case typing.PrimBool:
		return types.I1
	case typing.PrimVoid:
		return types.Void
	}

	panic(report.Raise(report.KindUnknownType, nil, "unknown primitive type: %d", pt))
}
