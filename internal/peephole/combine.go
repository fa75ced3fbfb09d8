package peephole

import "bfc/internal/bfir"

// CombineIncrements merges adjacent Increment instructions that target
// the same offset into one, dropping the result entirely when the two
// amounts cancel out (spec.md §4.C.1). It also descends into loop
// bodies via mapLoops.
func CombineIncrements(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, CombineIncrements)

	out := make([]bfir.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		inc, ok := instr.(bfir.Increment)
		if !ok || len(out) == 0 {
			out = append(out, instr)
			continue
		}
		prev, ok := out[len(out)-1].(bfir.Increment)
		if !ok || prev.Offset != inc.Offset {
			out = append(out, instr)
			continue
		}
		combined := prev.Amount + inc.Amount
		pos := prev.Pos.Union(inc.Pos)
		if combined == 0 {
			out = out[:len(out)-1]
			continue
		}
		out[len(out)-1] = bfir.Increment{Amount: combined, Offset: prev.Offset, Pos: pos}
	}
	return out
}

// CombinePointerIncrements is the PointerIncrement analogue of
// CombineIncrements (spec.md §4.C.2): adjacent pointer moves collapse
// into one, and a net-zero move disappears entirely.
func CombinePointerIncrements(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, CombinePointerIncrements)

	out := make([]bfir.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		ptr, ok := instr.(bfir.PointerIncrement)
		if !ok || len(out) == 0 {
			out = append(out, instr)
			continue
		}
		prev, ok := out[len(out)-1].(bfir.PointerIncrement)
		if !ok {
			out = append(out, instr)
			continue
		}
		combined := prev.Amount + ptr.Amount
		pos := prev.Pos.Union(ptr.Pos)
		if combined == 0 {
			out = out[:len(out)-1]
			continue
		}
		out[len(out)-1] = bfir.PointerIncrement{Amount: combined, Pos: pos}
	}
	return out
}
