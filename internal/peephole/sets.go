package peephole

import "bfc/internal/bfir"

// CombineSetAndIncrements folds adjacent Set/Increment pairs that share an
// offset into a single Set (spec.md §4.C.5):
//
//	Increment{_, off}; Set{a, off}  -> Set{a, off}
//	Set{a, off}; Increment{b, off}  -> Set{a+b, off}
//	Set{_, off}; Set{a, off}        -> Set{a, off}
func CombineSetAndIncrements(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, CombineSetAndIncrements)

	out := make([]bfir.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		if len(out) == 0 {
			out = append(out, instr)
			continue
		}
		prev := out[len(out)-1]

		switch cur := instr.(type) {
		case bfir.Set:
			switch p := prev.(type) {
			case bfir.Increment:
				if p.Offset == cur.Offset {
					out[len(out)-1] = bfir.Set{Amount: cur.Amount, Offset: cur.Offset}
					continue
				}
			case bfir.Set:
				if p.Offset == cur.Offset {
					out[len(out)-1] = bfir.Set{Amount: cur.Amount, Offset: cur.Offset}
					continue
				}
			}
		case bfir.Increment:
			if p, ok := prev.(bfir.Set); ok && p.Offset == cur.Offset {
				out[len(out)-1] = bfir.Set{Amount: p.Amount + cur.Amount, Offset: p.Offset}
				continue
			}
		}
		out = append(out, instr)
	}
	return out
}

// RemoveRedundantSets drops Set{0,0} instructions that have no effect
// (spec.md §4.C.6): a leading Set{0,0} at program start (the tape begins
// zeroed), and a Set{0,0} that is the next cell-change after a Loop or
// MultiplyMove (both of which already guarantee the current cell is zero).
// Only the program's own first instruction counts as leading; a loop body
// is entered with a nonzero cell, so a Set{0,0} at its start is kept.
func RemoveRedundantSets(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = removeRedundantSetsInner(instrs)
	if len(instrs) > 0 && isSetZero(instrs[0]) {
		return instrs[1:]
	}
	return instrs
}

// removeRedundantSetsInner drops a Set{0,0} that follows a Loop or
// MultiplyMove, recursing into loop bodies.
func removeRedundantSetsInner(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, removeRedundantSetsInner)

	drop := make(map[int]bool)
	for i, instr := range instrs {
		switch instr.(type) {
		case bfir.Loop, bfir.MultiplyMove:
			if at, found := NextCellChange(instrs, i); found && isSetZero(instrs[at]) {
				drop[at] = true
			}
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

// AnnotateKnownZero inserts Set{0,0} at the very start of the program and
// immediately after every Loop, recording that the tape begins zeroed and
// that a Loop's postcondition is a zero current cell (spec.md §4.C.7).
// These annotations are hints consumed by later passes in the same round
// and are cleaned back up by RemoveRedundantSets.
//
// The leading Set{0,0} is only true at the very start of the whole
// program — a loop body does not begin with a known-zero cell, since
// entering the body at all means the cell was nonzero. So the top-level
// prepend happens once here; the recursion into loop bodies is handled
// by annotateKnownZeroInner, which only ever appends after a Loop.
func AnnotateKnownZero(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = annotateKnownZeroInner(instrs)
	out := make([]bfir.Instruction, 0, len(instrs)+1)
	out = append(out, bfir.Set{Amount: 0, Offset: 0})
	out = append(out, instrs...)
	return out
}

// annotateKnownZeroInner appends Set{0,0} after every Loop, recursing
// into loop bodies, but never prepends one — a loop body is entered
// precisely when the current cell is nonzero, so there is no known-zero
// fact to record at a body's start.
func annotateKnownZeroInner(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, annotateKnownZeroInner)

	out := make([]bfir.Instruction, 0, len(instrs)+1)
	for _, instr := range instrs {
		out = append(out, instr)
		if _, ok := instr.(bfir.Loop); ok {
			out = append(out, bfir.Set{Amount: 0, Offset: 0})
		}
	}
	return out
}
