package peephole

import "bfc/internal/bfir"

// PreviousCellChange walks backward from index, tracking which cell
// offset (relative to the pointer at index) each step is being asked
// about, and returns the index of the nearest earlier instruction that
// is known to change that cell. found is false if no such instruction
// could be identified (a Read or a Loop blocks the walk) or if the
// start of the sequence is reached.
//
// It ignores the Offset field of the instruction at index itself, even
// if that instruction has one — we're asking "what changed ptr+0 from
// this instruction's point of view", not ptr+its own offset.
func PreviousCellChange(instrs []bfir.Instruction, index int) (at int, found bool) {
	neededOffset := 0
	for i := index - 1; i >= 0; i-- {
		switch instr := instrs[i].(type) {
		case bfir.Increment:
			if instr.Offset == neededOffset {
				return i, true
			}
		case bfir.Set:
			if instr.Offset == neededOffset {
				return i, true
			}
		case bfir.PointerIncrement:
			neededOffset += instr.Amount
		case bfir.MultiplyMove:
			if neededOffset == 0 {
				return i, true
			}
			if _, ok := instr.Targets[neededOffset]; ok {
				return i, true
			}
		case bfir.Write:
			// No cell changed; keep walking.
		case bfir.Read, bfir.Loop:
			// May have changed the cell; we don't know.
			return 0, false
		default:
			panic("peephole: unhandled Instruction variant in PreviousCellChange")
		}
	}
	return 0, false
}

// NextCellChange is the forward dual of PreviousCellChange.
func NextCellChange(instrs []bfir.Instruction, index int) (at int, found bool) {
	neededOffset := 0
	for i := index + 1; i < len(instrs); i++ {
		switch instr := instrs[i].(type) {
		case bfir.Increment:
			if instr.Offset == neededOffset {
				return i, true
			}
		case bfir.Set:
			if instr.Offset == neededOffset {
				return i, true
			}
		case bfir.PointerIncrement:
			neededOffset -= instr.Amount
		case bfir.MultiplyMove:
			if neededOffset == 0 {
				return i, true
			}
			if _, ok := instr.Targets[neededOffset]; ok {
				return i, true
			}
		case bfir.Write:
			// No cell changed; keep walking.
		case bfir.Read, bfir.Loop:
			return 0, false
		default:
			panic("peephole: unhandled Instruction variant in NextCellChange")
		}
	}
	return 0, false
}

// isSetZero reports whether instr is Set{Amount: 0, Offset: 0}.
func isSetZero(instr bfir.Instruction) bool {
	s, ok := instr.(bfir.Set)
	return ok && s.Amount == 0 && s.Offset == 0
}
