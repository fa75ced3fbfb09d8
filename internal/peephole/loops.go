package peephole

import "bfc/internal/bfir"

// SimplifyLoops rewrites the canonical clear-cell idiom Loop{[Increment{-1,
// 0}]} to Set{0, 0} (spec.md §4.C.3). It deliberately does not generalize to
// Increment{-n, 0} for n>1: such a loop would not terminate for cell values
// not divisible by n once wrap-around is considered, so the rewrite would be
// unsound.
func SimplifyLoops(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, SimplifyLoops)

	out := make([]bfir.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		loop, ok := instr.(bfir.Loop)
		if ok && isClearCellBody(loop.Body) {
			out = append(out, bfir.Set{Amount: 0, Offset: 0})
			continue
		}
		out = append(out, instr)
	}
	return out
}

func isClearCellBody(body []bfir.Instruction) bool {
	if len(body) != 1 {
		return false
	}
	inc, ok := body[0].(bfir.Increment)
	return ok && inc.Offset == 0 && inc.Amount == bfir.NegCell(1)
}

// RemoveDeadLoops deletes a Loop whose immediately preceding cell-effect on
// the current cell is Set{0,0} — the loop can never execute (spec.md
// §4.C.4). A Read or another Loop in between is "unknown" and inhibits the
// removal, per PreviousCellChange's semantics.
func RemoveDeadLoops(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, RemoveDeadLoops)

	out := make([]bfir.Instruction, 0, len(instrs))
	for i, instr := range instrs {
		if _, ok := instr.(bfir.Loop); ok {
			if at, found := PreviousCellChange(instrs, i); found && isSetZero(instrs[at]) {
				continue
			}
		}
		out = append(out, instr)
	}
	return out
}
