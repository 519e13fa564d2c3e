package typing

import "testing"

func TestRepr(t *testing.T) {
	tests := []struct {
		typ  DataType
		want string
	}{
		{PrimInt, "Int"},
		{&UserType{Name: "List", Params: []DataType{PrimInt}}, "List<Int>"},
		{&UserType{Name: "Map", Params: []DataType{PrimString, &UserType{Name: "List", Params: []DataType{PrimInt}}}}, "Map<String, List<Int>>"},
		{&FuncType{Params: []DataType{PrimInt, PrimString}, ReturnType: PrimVoid}, "(Int, String) -> Void"},
		{&FuncType{}, "() -> Void"},
	}

	for _, test := range tests {
		if got := test.typ.Repr(); got != test.want {
			t.Errorf("Repr() = %q, want %q", got, test.want)
		}
	}
}

func TestEquivIsStructural(t *testing.T) {
	a := &FuncType{Params: []DataType{PrimInt}, ReturnType: &UserType{Name: "Foo"}}
	b := &FuncType{Params: []DataType{PrimInt}, ReturnType: &UserType{Name: "Foo"}}
	if !a.Equiv(b) {
		t.Errorf("%s should equal %s", a.Repr(), b.Repr())
	}

	c := &FuncType{Params: []DataType{PrimString}, ReturnType: &UserType{Name: "Foo"}}
	if a.Equiv(c) {
		t.Errorf("%s should not equal %s", a.Repr(), c.Repr())
	}

	if !(&FuncType{}).Equiv(&FuncType{ReturnType: PrimVoid}) {
		t.Error("nil return type should be equivalent to Void")
	}

	if PrimInt.Equiv(&UserType{Name: "Int"}) {
		t.Error("primitive type should not equal a user type of the same name")
	}
}

func TestPrimTypeByName(t *testing.T) {
	if pt, ok := PrimTypeByName("String"); !ok || pt != PrimString {
		t.Errorf("PrimTypeByName(String) = %v, %v", pt, ok)
	}

	if _, ok := PrimTypeByName("Foo"); ok {
		t.Error("Foo should not be a primitive type")
	}
}
