package peephole

import "bfc/internal/bfir"

// ExtractMultiply recognizes the "multiply loop" idiom — a loop that only
// shuffles multiples of the current cell's value into other cells and then
// zeros itself — and replaces it with a single atomic MultiplyMove (spec.md
// §4.C.12). A loop body qualifies when it:
//  1. contains only Increment and PointerIncrement instructions,
//  2. has zero net pointer movement,
//  3. decrements the current cell by exactly one, and
//  4. touches at least two distinct cells.
func ExtractMultiply(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, ExtractMultiply)

	out := make([]bfir.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		loop, ok := instr.(bfir.Loop)
		if !ok {
			out = append(out, instr)
			continue
		}
		if targets, ok := multiplyTargets(loop.Body); ok {
			out = append(out, bfir.MultiplyMove{Targets: targets})
			continue
		}
		out = append(out, instr)
	}
	return out
}

// multiplyTargets reports the MultiplyMove targets for body, and whether
// body actually qualifies as a multiply loop.
func multiplyTargets(body []bfir.Instruction) (map[int]bfir.Cell, bool) {
	for _, instr := range body {
		switch instr.(type) {
		case bfir.Increment, bfir.PointerIncrement:
		default:
			return nil, false
		}
	}

	changes, netPointer := cellChanges(body)
	if netPointer != 0 {
		return nil, false
	}
	if changes[0] != bfir.NegCell(1) {
		return nil, false
	}
	delete(changes, 0)
	if len(changes) < 1 {
		return nil, false
	}
	return changes, true
}

// cellChanges folds body into a mapping offset (relative to the pointer at
// loop entry) -> net Cell delta, threading a running pointer delta through
// PointerIncrement, and also returns that final net pointer delta.
//
// The reference implementation this is ported from reads the accumulator at
// cellIndex+offset but writes back at cellIndex alone; that only matches
// when offset is always zero, which is no longer guaranteed once
// sort_by_offset has run earlier in the same fixed-point round. This
// version reads and writes at cellIndex+offset consistently, per the
// documented fix.
func cellChanges(body []bfir.Instruction) (map[int]bfir.Cell, int) {
	changes := make(map[int]bfir.Cell)
	cellIndex := 0
	for _, instr := range body {
		switch v := instr.(type) {
		case bfir.Increment:
			key := cellIndex + v.Offset
			changes[key] = changes[key] + v.Amount
		case bfir.PointerIncrement:
			cellIndex += v.Amount
		}
	}
	return changes, cellIndex
}
