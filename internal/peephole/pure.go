package peephole

import "bfc/internal/bfir"

// RemovePureCode truncates the program at the last instruction with an
// observable effect — Read, Write, Loop, or MultiplyMove (spec.md §4.C.10).
// Pure arithmetic trailing the last such instruction can never affect
// output, so it is dropped. Declared output-preserving but not
// cell-preserving.
//
// MultiplyMove counts as observable alongside Read/Write/Loop even though
// it only ever touches cells directly, never I/O: it is the product of
// ExtractMultiply folding an entire loop into one instruction, and this
// pass runs after that folding in the same fixed-point round. Treating it
// as prunable pure code would let a later round undo ExtractMultiply's work
// the moment nothing downstream happens to read the cells it targets.
//
// Deliberately does not recurse into loop bodies via mapLoops: trailing
// arithmetic inside a loop body still mutates cell state the loop
// condition and the next iteration depend on, so it is never dead code
// the way trailing arithmetic at the end of the whole program is.
func RemovePureCode(instrs []bfir.Instruction) []bfir.Instruction {
	last := -1
	for i, instr := range instrs {
		switch instr.(type) {
		case bfir.Read, bfir.Write, bfir.Loop, bfir.MultiplyMove:
			last = i
		}
	}
	return instrs[:last+1]
}
