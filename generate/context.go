package generate

import (
	"ablac/ast"
	"ablac/depm"
	"ablac/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// HandleTable associates AST nodes with the LLVM values and blocks generated
// for them: functions and parameters with their values and function bodies
// with their entry blocks.
type HandleTable struct {
	values map[ast.NodeID]value.Value
	blocks map[ast.NodeID]*ir.Block
}

// NewHandleTable creates an empty handle table.
func NewHandleTable() *HandleTable {
	return &HandleTable{
		values: make(map[ast.NodeID]value.Value),
		blocks: make(map[ast.NodeID]*ir.Block),
	}
}

// SetValue records the value generated for a node.
func (ht *HandleTable) SetValue(node ast.ASTNode, v value.Value) {
	ht.values[node.ID()] = v
}

// Value returns the value generated for a node.
func (ht *HandleTable) Value(node ast.ASTNode) (value.Value, bool) {
	v, ok := ht.values[node.ID()]
	return v, ok
}

// SetBlock records the entry block generated for a node.
func (ht *HandleTable) SetBlock(node ast.ASTNode, block *ir.Block) {
	ht.blocks[node.ID()] = block
}

// Block returns the entry block generated for a node.
func (ht *HandleTable) Block(node ast.ASTNode) (*ir.Block, bool) {
	block, ok := ht.blocks[node.ID()]
	return block, ok
}

// -----------------------------------------------------------------------------

// GenerationBlock is an LLVM block paired with the symbol table of the lexical
// scope it is generated in.
type GenerationBlock struct {
	Block *ir.Block
	Table *depm.SymbolTable

	// HasReturned indicates that the block has been terminated.  Once set, it
	// is never cleared.
	HasReturned bool
}

// GeneratorContext holds the generation state for one unit: the stack of
// blocks being generated and the stack of values produced by expressions.
type GeneratorContext struct {
	blocks []*GenerationBlock
	values []value.Value
}

// PushBlock pushes a new generation block.
func (gc *GeneratorContext) PushBlock(block *ir.Block, table *depm.SymbolTable) *GenerationBlock {
	gb := &GenerationBlock{Block: block, Table: table}
	gc.blocks = append(gc.blocks, gb)
	return gb
}

// PopBlock pops the current generation block.
func (gc *GeneratorContext) PopBlock() *GenerationBlock {
	gb := gc.CurrentBlock()
	gc.blocks = gc.blocks[:len(gc.blocks)-1]
	return gb
}

// CurrentBlock returns the generation block on top of the block stack.
func (gc *GeneratorContext) CurrentBlock() *GenerationBlock {
	if len(gc.blocks) == 0 {
		panic(report.Raise(report.KindInternalState, nil, "block stack is empty"))
	}

	return gc.blocks[len(gc.blocks)-1]
}

// Emit returns the LLVM block that instructions are emitted into.  Emitting
// into a terminated block is an error.
func (gc *GeneratorContext) Emit(span *report.TextSpan) *ir.Block {
	gb := gc.CurrentBlock()
	if gb.HasReturned {
		panic(report.Raise(report.KindInternalState, span, "emission into a terminated block"))
	}

	return gb.Block
}

// PushValue pushes a value onto the value stack.
func (gc *GeneratorContext) PushValue(v value.Value) {
	gc.values = append(gc.values, v)
}

// PopValue pops the value on top of the value stack.
func (gc *GeneratorContext) PopValue() value.Value {
	if len(gc.values) == 0 {
		panic(report.Raise(report.KindInternalState, nil, "value stack is empty"))
	}

	v := gc.values[len(gc.values)-1]
	gc.values = gc.values[:len(gc.values)-1]
	return v
}

// TopValue returns the value on top of the value stack if there is one.
func (gc *GeneratorContext) TopValue() (value.Value, bool) {
	if len(gc.values) == 0 {
		return nil, false
	}

	return gc.values[len(gc.values)-1], true
}

// ValueDepth returns the number of values on the value stack.
func (gc *GeneratorContext) ValueDepth() int {
	return len(gc.values)
}

// TruncateValues discards every value above the given depth.
func (gc *GeneratorContext) TruncateValues(depth int) {
	if depth < len(gc.values) {
		gc.values = gc.values[:depth]
	}
}

// ClearValues discards every value on the value stack.
func (gc *GeneratorContext) ClearValues() {
	gc.values = gc.values[:0]
}

// Reset clears both stacks.
func (gc *GeneratorContext) Reset() {
	gc.blocks = nil
	gc.values = nil
}
