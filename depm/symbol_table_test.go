package depm

import (
	"ablac/ast"
	"sync"
	"testing"
)

func TestLookupWalksParentChain(t *testing.T) {
	ids := &ast.IDSource{}
	global := NewSymbolTable(nil)
	local := NewSymbolTable(global)

	fooDecl := &ast.FuncDecl{ASTBase: ast.NewASTBaseOn(ids, nil), Name: "foo"}
	param := &ast.Param{ASTBase: ast.NewASTBaseOn(ids, nil), Name: "x"}

	if !global.Define(&Symbol{Name: "foo", Node: fooDecl, DefKind: DefKindFunc}) {
		t.Fatal("defining foo failed")
	}
	if !local.Define(&Symbol{Name: "x", Node: param, DefKind: DefKindParam}) {
		t.Fatal("defining x failed")
	}

	if sym, ok := local.Lookup("foo"); !ok || sym.Node != fooDecl {
		t.Errorf("Lookup(foo) = %v, %v", sym, ok)
	}

	if _, ok := global.Lookup("x"); ok {
		t.Error("parameter must not be visible from the enclosing scope")
	}

	if _, ok := local.LookupLocal("foo"); ok {
		t.Error("LookupLocal must not search parents")
	}
}

func TestDefineRejectsDuplicates(t *testing.T) {
	st := NewSymbolTable(nil)
	if !st.Define(&Symbol{Name: "a"}) {
		t.Fatal("first definition failed")
	}

	if st.Define(&Symbol{Name: "a"}) {
		t.Error("duplicate definition succeeded")
	}

	if st.Import(&Symbol{Name: "a", Unit: "other.abla"}) {
		t.Error("import shadowed a local definition")
	}
}

func TestShadowing(t *testing.T) {
	outer := NewSymbolTable(nil)
	inner := NewSymbolTable(outer)
	outer.Define(&Symbol{Name: "a", DefKind: DefKindFunc})
	inner.Define(&Symbol{Name: "a", DefKind: DefKindParam})

	if sym, _ := inner.Lookup("a"); sym.DefKind != DefKindParam {
		t.Error("inner definition should shadow outer one")
	}
}

func TestSideTableConcurrentAccess(t *testing.T) {
	ids := &ast.IDSource{}
	table := NewSideTable[int]()

	nodes := make([]*ast.IntLit, 64)
	for i := range nodes {
		nodes[i] = &ast.IntLit{ASTBase: ast.NewASTBaseOn(ids, nil)}
	}

	wg := sync.WaitGroup{}
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node *ast.IntLit) {
			defer wg.Done()
			table.Set(node, i)
		}(i, node)
	}
	wg.Wait()

	if table.Len() != len(nodes) {
		t.Fatalf("Len() = %d, want %d", table.Len(), len(nodes))
	}

	for i, node := range nodes {
		if v, ok := table.Get(node); !ok || v != i {
			t.Errorf("Get(node %d) = %d, %v", i, v, ok)
		}
	}

	table.Delete(nodes[0])
	if _, ok := table.Get(nodes[0]); ok {
		t.Error("deleted entry still present")
	}

	table.Clear()
	if table.Len() != 0 {
		t.Error("Clear() left entries behind")
	}
}
