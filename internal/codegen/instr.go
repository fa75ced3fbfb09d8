package codegen

import (
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"bfc/internal/bfir"
)

// compileSequence emits instrs in order, threading the current block
// through each one (Loop is the only variant that introduces new blocks).
func (g *generator) compileSequence(instrs []bfir.Instruction, bb *ir.Block) *ir.Block {
	for _, instr := range instrs {
		bb = g.compileInstr(instr, bb)
	}
	return bb
}

func (g *generator) compileInstr(instr bfir.Instruction, bb *ir.Block) *ir.Block {
	switch i := instr.(type) {
	case bfir.Increment:
		return g.compileIncrement(i, bb)
	case bfir.Set:
		return g.compileSet(i, bb)
	case bfir.PointerIncrement:
		return g.compilePointerIncrement(i, bb)
	case bfir.Read:
		return g.compileRead(bb)
	case bfir.Write:
		return g.compileWrite(bb)
	case bfir.Loop:
		return g.compileLoop(i, bb)
	case bfir.MultiplyMove:
		return g.compileMultiplyMove(i, bb)
	default:
		panic("codegen: unhandled Instruction variant")
	}
}

func (g *generator) compileIncrement(i bfir.Increment, bb *ir.Block) *ir.Block {
	ptr := g.currentCellPtr(bb, i.Offset)
	old := bb.NewLoad(types.I8, ptr)
	sum := bb.NewAdd(old, constant.NewInt(types.I8, int64(int8(i.Amount))))
	bb.NewStore(sum, ptr)
	return bb
}

func (g *generator) compileSet(i bfir.Set, bb *ir.Block) *ir.Block {
	ptr := g.currentCellPtr(bb, i.Offset)
	bb.NewStore(constant.NewInt(types.I8, int64(int8(i.Amount))), ptr)
	return bb
}

func (g *generator) compilePointerIncrement(i bfir.PointerIncrement, bb *ir.Block) *ir.Block {
	old := bb.NewLoad(types.I32, g.ptrSlot)
	sum := bb.NewAdd(old, constant.NewInt(types.I32, int64(i.Amount)))
	bb.NewStore(sum, g.ptrSlot)
	return bb
}

func (g *generator) compileRead(bb *ir.Block) *ir.Block {
	c := bb.NewCall(g.getcharFn)
	// getchar returns EOF (-1) as an i32; BF treats EOF as 0, and any
	// other value truncates to its low byte.
	isEOF := bb.NewICmp(enum.IPredEQ, c, constant.NewInt(types.I32, -1))
	truncated := bb.NewTrunc(c, types.I8)
	read := bb.NewSelect(isEOF, constant.NewInt(types.I8, 0), truncated)
	bb.NewStore(read, g.currentCellPtr(bb, 0))
	return bb
}

func (g *generator) compileWrite(bb *ir.Block) *ir.Block {
	v := bb.NewLoad(types.I8, g.currentCellPtr(bb, 0))
	widened := bb.NewSExt(v, types.I32)
	bb.NewCall(g.putcharFn, widened)
	return bb
}

// compileLoop emits the standard header/body/after block trio: check,
// branch into body if nonzero, loop back to check at the body's end.
func (g *generator) compileLoop(loop bfir.Loop, bb *ir.Block) *ir.Block {
	fn := bb.Parent
	header := fn.NewBlock("")
	body := fn.NewBlock("")
	after := fn.NewBlock("")

	bb.NewBr(header)

	cur := g.loadCurrentCell(header)
	cond := header.NewICmp(enum.IPredNE, cur, constant.NewInt(types.I8, 0))
	header.NewCondBr(cond, body, after)

	bodyExit := g.compileSequence(loop.Body, body)
	bodyExit.NewBr(header)

	return after
}

func (g *generator) loadCurrentCell(bb *ir.Block) *ir.InstLoad {
	return bb.NewLoad(types.I8, g.currentCellPtr(bb, 0))
}

// compileMultiplyMove has no equivalent in the instruction set the
// original LLVM backend this package is modeled on ever saw, since
// multiply-loop extraction postdates it: it didn't need to invent this
// lowering because its peephole layer never produced the instruction.
// The lowering itself is the obvious one — read the source cell once,
// then for each target add source*factor and store — sorted by offset
// purely so two runs of the compiler produce byte-identical IR for the
// same tree (Go map iteration order is not fixed).
func (g *generator) compileMultiplyMove(i bfir.MultiplyMove, bb *ir.Block) *ir.Block {
	source := g.loadCurrentCell(bb)

	offsets := make([]int, 0, len(i.Targets))
	for offset := range i.Targets {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	for _, offset := range offsets {
		factor := i.Targets[offset]
		ptr := g.currentCellPtr(bb, offset)
		old := bb.NewLoad(types.I8, ptr)
		scaled := bb.NewMul(source, constant.NewInt(types.I8, int64(int8(factor))))
		sum := bb.NewAdd(old, scaled)
		bb.NewStore(sum, ptr)
	}
	bb.NewStore(constant.NewInt(types.I8, 0), g.currentCellPtr(bb, 0))
	return bb
}
