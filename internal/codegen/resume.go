package codegen

import (
	"github.com/llir/llvm/ir"

	"bfc/internal/bfir"
	"bfc/internal/interp"
)

// compileResumption emits the residual program abstract execution left
// behind, identified by cursor (interp.Cursor): a path of instruction
// indices, outermost first, into instrs and the bodies of whatever Loops
// enclose the point execution stopped at.
//
// An empty cursor means the residual program is simply instrs[0:] — the
// interpreter never entered a loop before stopping (including the
// Completed, nothing-left-to-do case, which never reaches this function
// at all; see Generate). A one-element cursor [i] means instrs[i] itself
// is where native code must resume — typically a Read. A longer cursor
// [i, ...rest] means instrs[i] is a Loop whose *current* iteration must
// finish from rest before the loop goes back to its ordinary
// repeat-while-nonzero behavior; everything before instrs[i] at every
// level was already run by the abstract interpreter and is never
// compiled at all.
func (g *generator) compileResumption(instrs []bfir.Instruction, cursor interp.Cursor, bb *ir.Block) *ir.Block {
	if len(cursor) == 0 {
		return g.compileSequence(instrs, bb)
	}

	i := cursor[0]
	if len(cursor) == 1 {
		return g.compileSequence(instrs[i:], bb)
	}

	loop := instrs[i].(bfir.Loop)
	// Finish the iteration execution stopped in, then fall into the
	// loop's ordinary repeat-while-nonzero shape for any further
	// iterations — compileLoop's header/body/after trio checks the cell
	// before doing anything, so this is just "go check whether to loop
	// again", not a redundant extra iteration.
	bb = g.compileResumption(loop.Body, cursor[1:], bb)
	bb = g.compileLoop(loop, bb)
	return g.compileSequence(instrs[i+1:], bb)
}
