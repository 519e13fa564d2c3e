package generate

import (
	"ablac/ast"
	"ablac/common"
	"ablac/depm"
	"ablac/report"
	"ablac/typing"
	"fmt"
	"sync"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// Program is the LLVM module generated for all the units of a compilation.
// Units are declared and then generated into it.  The module is shared by all
// units and is only accessed under the program's lock so the methods of a
// Program may be called concurrently.
type Program struct {
	m sync.Mutex

	mod     *ir.Module
	ann     *depm.Annotations
	handles *HandleTable

	// prefixes maps each declared unit to the prefix prepended to the names
	// of the functions it defines.
	prefixes map[string]string

	// generated records the units which have already been generated.
	generated map[string]bool

	// externs holds the extern functions by name.  Extern functions keep
	// their source names and are shared by every unit declaring them.
	externs map[string]*ir.Func

	// mainDecl is the declaration of the user's `main` function.
	mainDecl *ast.FuncDecl

	// strings interns the global string constants by content.
	strings map[string]constant.Constant
}

// NewProgram creates a new, empty program.
func NewProgram(ann *depm.Annotations) *Program {
	return &Program{
		mod:       ir.NewModule(),
		ann:       ann,
		handles:   NewHandleTable(),
		prefixes:  make(map[string]string),
		generated: make(map[string]bool),
		externs:   make(map[string]*ir.Func),
		strings:   make(map[string]constant.Constant),
	}
}

// Module returns the LLVM module.  It must not be used while units are still
// being declared or generated.
func (p *Program) Module() *ir.Module {
	return p.mod
}

// DeclareUnit declares every runtime function of a unit in the module.  All
// the units whose functions are referenced by a unit must be declared before
// it is generated.
func (p *Program) DeclareUnit(file *ast.File) (err error) {
	defer report.CatchErrors(file.Name, &err)

	p.m.Lock()
	defer p.m.Unlock()

	if _, ok := p.prefixes[file.Name]; ok {
		panic(report.Raise(report.KindInternalState, nil, "unit `%s` declared twice", file.Name))
	}

	prefix := fmt.Sprintf("u%d.", len(p.prefixes))
	p.prefixes[file.Name] = prefix

	for _, decl := range file.Decls {
		p.declareDecl(prefix, "", decl)
	}

	return nil
}

// declareDecl declares the functions defined by a declaration.  namePrefix is
// the prefix of enclosing classes.
func (p *Program) declareDecl(prefix, namePrefix string, decl ast.Decl) {
	switch v := decl.(type) {
	case *ast.FuncDecl:
		if !v.IsCompiler() {
			p.declareFunc(prefix, namePrefix, v)
		}
	case *ast.ClassDecl:
		if !v.IsCompiler() {
			for _, member := range v.Members {
				p.declareDecl(prefix, namePrefix+v.Name+".", member)
			}
		}
	}
}

// declareFunc declares a single function.
func (p *Program) declareFunc(prefix, namePrefix string, fd *ast.FuncDecl) {
	dt, ok := p.ann.Types.Get(fd)
	if !ok {
		panic(report.Raise(report.KindInternalState, fd.NameSpan, "no type recorded for `%s`", fd.Name))
	}

	ft := dt.(*typing.FuncType)

	params := make([]*ir.Param, len(fd.Params))
	for i, param := range fd.Params {
		params[i] = ir.NewParam(param.Name, ConvType(ft.Params[i]))
	}

	retType := convReturnType(ft.ReturnType)

	var fn *ir.Func
	if fd.IsExtern() {
		fn = p.declareExtern(fd, retType, params)
	} else {
		name := prefix + namePrefix + fd.Name
		if namePrefix == "" && fd.Name == common.MainFuncName {
			if p.mainDecl != nil {
				panic(report.Raise(report.KindType, fd.NameSpan, "multiple definitions of `main`"))
			}

			p.mainDecl = fd
			name = common.UserMainFuncName
		}

		fn = p.mod.NewFunc(name, retType, params...)
		fn.CallingConv = enum.CallingConvC
		p.handles.SetBlock(fd, fn.NewBlock("entry"))
	}

	p.handles.SetValue(fd, fn)
	for i, param := range fd.Params {
		p.handles.SetValue(param, fn.Params[i])
	}
}

// declareExtern declares an extern function or reuses the matching
// declaration made by another unit.
func (p *Program) declareExtern(fd *ast.FuncDecl, retType types.Type, params []*ir.Param) *ir.Func {
	if fn, ok := p.externs[fd.Name]; ok {
		paramTypes := make([]types.Type, len(params))
		for i, param := range params {
			paramTypes[i] = param.Typ
		}

		if !fn.Sig.Equal(types.NewFunc(retType, paramTypes...)) {
			panic(report.Raise(report.KindType, fd.NameSpan, "conflicting declarations of extern function `%s`", fd.Name))
		}

		return fn
	}

	fn := p.mod.NewFunc(fd.Name, retType, params...)
	fn.Linkage = enum.LinkageExternal
	fn.CallingConv = enum.CallingConvC
	p.externs[fd.Name] = fn
	return fn
}

// GenerateUnit generates the bodies of the functions of a declared unit.
func (p *Program) GenerateUnit(file *ast.File) (err error) {
	defer report.CatchErrors(file.Name, &err)

	p.m.Lock()
	defer p.m.Unlock()

	prefix, ok := p.prefixes[file.Name]
	if !ok {
		panic(report.Raise(report.KindInternalState, nil, "unit `%s` was never declared", file.Name))
	} else if p.generated[file.Name] {
		panic(report.Raise(report.KindInternalState, nil, "unit `%s` generated twice", file.Name))
	}

	p.generated[file.Name] = true

	g := &Generator{
		p:      p,
		file:   file,
		prefix: prefix,
		gc:     &GeneratorContext{},
	}

	for _, decl := range file.Decls {
		decl.Accept(g)
	}

	return nil
}

// -----------------------------------------------------------------------------

// stringConst returns an `i8*` to a NUL-terminated global holding a string.
func (p *Program) stringConst(s string) constant.Constant {
	if c, ok := p.strings[s]; ok {
		return c
	}

	arr := constant.NewCharArrayFromString(s + "\x00")
	glob := p.mod.NewGlobalDef(fmt.Sprintf("str.%d", len(p.strings)), arr)
	glob.Linkage = enum.LinkagePrivate
	glob.Immutable = true

	zero := constant.NewInt(types.I32, 0)
	c := constant.NewGetElementPtr(arr.Typ, glob, zero, zero)
	p.strings[s] = c
	return c
}

// genEntryPoint generates the process entry point which calls the user's
// `main` function and returns its result if it is an `Int` or zero otherwise.
func (p *Program) genEntryPoint(abmain *ir.Func) {
	entry := p.mod.NewFunc(common.MainFuncName, types.I32)
	entry.Linkage = enum.LinkageExternal
	entry.CallingConv = enum.CallingConvC

	block := entry.NewBlock("entry")
	result := block.NewCall(abmain)

	if abmain.Sig.RetType.Equal(types.I32) {
		block.NewRet(result)
	} else {
		block.NewRet(constant.NewInt(types.I32, 0))
	}
}
