package peephole

import (
	"sort"

	"bfc/internal/bfir"
)

// SortByOffset coalesces each maximal run of Increment/Set/PointerIncrement
// instructions into offset-sorted Increment/Set operations followed by a
// single trailing PointerIncrement carrying the run's net pointer delta
// (spec.md §4.C.11). Read, Write, Loop, and MultiplyMove terminate a run;
// loop bodies are visited recursively. Exposes further combine_* opportunities
// and reduces code-gen address arithmetic.
func SortByOffset(instrs []bfir.Instruction) []bfir.Instruction {
	instrs = mapLoops(instrs, SortByOffset)

	out := make([]bfir.Instruction, 0, len(instrs))
	i := 0
	for i < len(instrs) {
		if !isRunMember(instrs[i]) {
			out = append(out, instrs[i])
			i++
			continue
		}
		j := i
		for j < len(instrs) && isRunMember(instrs[j]) {
			j++
		}
		out = append(out, sortRun(instrs[i:j])...)
		i = j
	}
	return out
}

func isRunMember(instr bfir.Instruction) bool {
	switch instr.(type) {
	case bfir.Increment, bfir.Set, bfir.PointerIncrement:
		return true
	default:
		return false
	}
}

type rebased struct {
	instr  bfir.Instruction
	offset int
}

// sortRun rebases every Increment/Set in a run to an absolute offset from
// the pointer position at the start of the run, sorts them by that offset
// (stable, so same-offset instructions keep their relative order), and
// appends a single PointerIncrement for the run's net delta.
func sortRun(run []bfir.Instruction) []bfir.Instruction {
	delta := 0
	var lastPtrIncPos bfir.Position
	havePtrIncPos := false
	rebasedInstrs := make([]rebased, 0, len(run))
	for _, instr := range run {
		switch v := instr.(type) {
		case bfir.Increment:
			rebasedInstrs = append(rebasedInstrs, rebased{
				instr:  bfir.Increment{Amount: v.Amount, Offset: v.Offset + delta, Pos: v.Pos},
				offset: v.Offset + delta,
			})
		case bfir.Set:
			rebasedInstrs = append(rebasedInstrs, rebased{
				instr:  bfir.Set{Amount: v.Amount, Offset: v.Offset + delta},
				offset: v.Offset + delta,
			})
		case bfir.PointerIncrement:
			delta += v.Amount
			if havePtrIncPos {
				lastPtrIncPos = lastPtrIncPos.Union(v.Pos)
			} else {
				lastPtrIncPos = v.Pos
				havePtrIncPos = true
			}
		}
	}

	sort.SliceStable(rebasedInstrs, func(a, b int) bool {
		return rebasedInstrs[a].offset < rebasedInstrs[b].offset
	})

	out := make([]bfir.Instruction, 0, len(rebasedInstrs)+1)
	for _, r := range rebasedInstrs {
		out = append(out, r.instr)
	}
	if delta != 0 {
		out = append(out, bfir.PointerIncrement{Amount: delta, Pos: lastPtrIncPos})
	}
	return out
}
