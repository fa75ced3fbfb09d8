// Package bounds implements the static analysis that determines the
// minimum tape size a program requires (spec.md §4.B): the highest
// tape cell index any execution may touch, soundly over-approximated.
package bounds

import "bfc/internal/bfir"

// MaxCellIndex is the runtime's tape size minus one (30,000 cells,
// zero-indexed).
const MaxCellIndex = 29999

// saturating is the abstract domain Number(x) | Max. Max absorbs any
// operation it takes part in and compares greater than every Number.
type saturating struct {
	value    int64
	isMax    bool
}

func number(x int64) saturating { return saturating{value: x} }

var satMax = saturating{isMax: true}

func (a saturating) add(b saturating) saturating {
	if a.isMax || b.isMax {
		return satMax
	}
	return number(a.value + b.value)
}

func (a saturating) less(b saturating) bool {
	switch {
	case a.isMax && b.isMax:
		return false
	case a.isMax:
		return false
	case b.isMax:
		return true
	default:
		return a.value < b.value
	}
}

func maxSat(a, b saturating) saturating {
	if a.less(b) {
		return b
	}
	return a
}

// HighestCellIndex returns the highest cell index that can be reached
// executing instrs, clamped to MaxCellIndex.
func HighestCellIndex(instrs []bfir.Instruction) int {
	highest, _ := overallMovement(instrs)
	if highest.isMax || highest.value > MaxCellIndex {
		return MaxCellIndex
	}
	return int(highest.value)
}

// overallMovement returns (highest cell index reached, net pointer
// change) for a sequence, folding left over movement(instr). Each
// instruction's own high mark is relative to the pointer it starts at, so
// it is shifted by the net movement of the instructions before it.
func overallMovement(instrs []bfir.Instruction) (saturating, saturating) {
	net := number(0)
	highest := number(0)
	for _, instr := range instrs {
		hi, n := movement(instr)
		highest = maxSat(highest, maxSat(net.add(hi), net.add(n)))
		net = net.add(n)
	}
	return highest, net
}

// movement returns (highest cell index reached, net pointer change)
// for a single instruction, relative to the pointer on entry.
func movement(instr bfir.Instruction) (saturating, saturating) {
	switch i := instr.(type) {
	case bfir.Increment, bfir.Set, bfir.Read, bfir.Write:
		return number(0), number(0)
	case bfir.PointerIncrement:
		if i.Amount < 0 {
			return number(0), number(int64(i.Amount))
		}
		return number(int64(i.Amount)), number(int64(i.Amount))
	case bfir.MultiplyMove:
		highest := int64(0)
		for k := range i.Targets {
			if int64(k) > highest {
				highest = int64(k)
			}
		}
		return number(highest), number(0)
	case bfir.Loop:
		bodyHigh, bodyNet := overallMovement(i.Body)
		switch {
		case bodyNet.isMax:
			// Unbounded drift inside the body: the loop itself is unbounded.
			return satMax, satMax
		case bodyNet.value <= 0:
			// The loop may execute zero times, so conservatively assume
			// no net movement; but it could still have reached bodyHigh.
			return bodyHigh, number(0)
		default:
			// Positive net drift, repeated an unknown number of times:
			// unbounded.
			return satMax, satMax
		}
	default:
		panic("bounds: unhandled Instruction variant")
	}
}
