package peephole

import "bfc/internal/bfir"

// CombineBeforeRead discards the cell-change immediately preceding a Read
// that targets the same cell the Read is about to overwrite (spec.md
// §4.C.9). Declared output-preserving but not cell-preserving: the value
// being overwritten is gone either way, but the discarded instruction's
// intermediate cell state is no longer observable.
func CombineBeforeRead(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, CombineBeforeRead)

	drop := make(map[int]bool)
	for i, instr := range instrs {
		if _, ok := instr.(bfir.Read); !ok {
			continue
		}
		if at, found := PreviousCellChange(instrs, i); found {
			drop[at] = true
		}
	}

	out := make([]bfir.Instruction, 0, len(instrs))
	for i, instr := range instrs {
		if drop[i] {
			continue
		}
		out = append(out, instr)
	}
	return out
}
