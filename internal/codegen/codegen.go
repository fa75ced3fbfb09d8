// Package codegen turns the residual instruction tree and abstract
// execution state produced by internal/interp into a *ir.Module built
// with the llir/llvm IR builder (spec.md §6.2). The builder is an opaque
// collaborator: this package's job ends at handing back a well-formed
// module; compiling it to an object file and linking it is
// internal/build's job.
package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"bfc/internal/bfir"
	"bfc/internal/interp"
)

// generator holds the module-wide values every per-instruction compile
// function in instr.go and resume.go needs: the function declarations
// for the external runtime calls, and the two "registers" every BF
// program is built around — the malloc'd cell array and the cell index.
type generator struct {
	module *ir.Module

	mallocFn  *ir.Func
	memsetFn  *ir.Func
	freeFn    *ir.Func
	getcharFn *ir.Func
	putcharFn *ir.Func
	writeFn   *ir.Func

	cells   value.Value // i8*, the malloc'd tape
	ptrSlot value.Value // i32*, the current cell index
}

// Generate builds a complete "main" function compiling instrs' residual
// program (the part abstract execution in state did not already run),
// seeded from state per the resumption contract of spec.md §4.E: state's
// Outputs are written to file descriptor 1 before any native code runs,
// state's Cells seed the tape's initial nonzero values, and state's Ptr
// seeds the runtime cell index. tapeLen is the cell count the bounds
// analysis computed.
func Generate(instrs []bfir.Instruction, state interp.State, tapeLen int) *ir.Module {
	g := &generator{module: ir.NewModule()}
	g.declareExternals()

	mainFn := g.module.NewFunc("main", types.I32)
	entry := mainFn.NewBlock("entry")

	g.cells = g.emitTapeInit(entry, tapeLen, state.Cells)
	g.ptrSlot = entry.NewAlloca(types.I32)
	entry.NewStore(constant.NewInt(types.I32, int64(state.Ptr)), g.ptrSlot)

	entry = g.emitOutputsWrite(entry, state.Outputs)

	// Completed means abstract execution already ran the whole program;
	// there is no residual code left to compile (spec.md §4.E).
	exit := entry
	if state.Outcome != interp.Completed {
		exit = g.compileResumption(instrs, state.Start, entry)
	}

	exit.NewCall(g.freeFn, g.cells)
	exit.NewRet(constant.NewInt(types.I32, 0))
	return g.module
}

// declareExternals declares the six functions generated code may call:
// malloc/free for the tape, llvm.memset for zero-filling it, getchar for
// Read, putchar for Write, and write for the single batched dump of the
// abstract interpreter's already-known output bytes. All six are declared
// whether or not the residual program uses them.
func (g *generator) declareExternals() {
	g.mallocFn = g.module.NewFunc("malloc", types.I8Ptr, ir.NewParam("size", types.I64))
	g.memsetFn = g.module.NewFunc("llvm.memset.p0i8.i32", types.Void,
		ir.NewParam("dst", types.I8Ptr),
		ir.NewParam("val", types.I8),
		ir.NewParam("len", types.I32),
		ir.NewParam("align", types.I32),
		ir.NewParam("volatile", types.I1),
	)
	g.freeFn = g.module.NewFunc("free", types.Void, ir.NewParam("ptr", types.I8Ptr))
	g.getcharFn = g.module.NewFunc("getchar", types.I32)
	g.putcharFn = g.module.NewFunc("putchar", types.I32, ir.NewParam("c", types.I32))
	g.writeFn = g.module.NewFunc("write", types.I64,
		ir.NewParam("fd", types.I32),
		ir.NewParam("buf", types.I8Ptr),
		ir.NewParam("count", types.I64),
	)
}

// emitTapeInit mallocs a tapeLen-byte buffer, zero-fills it, then stores
// any statically known nonzero prefix values abstract execution produced
// (spec.md §4.E: the residual program must not redo work the abstract
// interpreter already did).
func (g *generator) emitTapeInit(bb *ir.Block, tapeLen int, known []bfir.Cell) value.Value {
	size := constant.NewInt(types.I64, int64(tapeLen))
	cells := bb.NewCall(g.mallocFn, size)
	bb.NewCall(g.memsetFn, cells,
		constant.NewInt(types.I8, 0),
		constant.NewInt(types.I32, int64(tapeLen)),
		constant.NewInt(types.I32, 1),
		constant.NewInt(types.I1, 0),
	)
	for i, v := range known {
		if v == 0 {
			continue
		}
		dst := bb.NewGetElementPtr(types.I8, cells, constant.NewInt(types.I32, int64(i)))
		bb.NewStore(constant.NewInt(types.I8, int64(int8(v))), dst)
	}
	return cells
}

// emitOutputsWrite emits, if outputs is non-empty, a global constant byte
// array plus a single write(1, buf, len) call dumping it. Returns the
// block subsequent code should continue in (write has no control flow, so
// this is always bb itself, but the signature mirrors the other emit
// helpers for consistency).
func (g *generator) emitOutputsWrite(bb *ir.Block, outputs []byte) *ir.Block {
	if len(outputs) == 0 {
		return bb
	}
	data := constant.NewCharArrayFromString(string(outputs))
	global := g.module.NewGlobalDef("outputs", data)
	global.Immutable = true

	zero := constant.NewInt(types.I64, 0)
	ptr := constant.NewGetElementPtr(data.Typ, global, zero, zero)
	bb.NewCall(g.writeFn,
		constant.NewInt(types.I32, 1),
		ptr,
		constant.NewInt(types.I64, int64(len(outputs))),
	)
	return bb
}

// currentCellPtr loads the cell index and returns a pointer to
// cells[index + offset].
func (g *generator) currentCellPtr(bb *ir.Block, offset int) value.Value {
	index := bb.NewLoad(types.I32, g.ptrSlot)
	target := value.Value(index)
	if offset != 0 {
		target = bb.NewAdd(index, constant.NewInt(types.I32, int64(offset)))
	}
	return bb.NewGetElementPtr(types.I8, g.cells, target)
}
