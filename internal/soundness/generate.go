package soundness

import (
	"math/rand"

	"bfc/internal/bfir"
)

// randomInstruction picks one of the thirteen cases the reference's
// quickcheck Arbitrary impl for Instruction enumerates. Loop bodies are
// intentionally shallow — at most one instruction — because generating
// arbitrarily deep nested trees through this same distribution blows up
// combinatorially and the reference harness never attempted it either.
func randomInstruction(rng *rand.Rand) bfir.Instruction {
	switch rng.Intn(13) {
	case 0:
		return bfir.Increment{Amount: bfir.Cell(rng.Intn(256)), Offset: 0}
	case 1:
		return bfir.PointerIncrement{Amount: smallSignedInt(rng)}
	case 2:
		return bfir.Set{Amount: bfir.Cell(rng.Intn(256)), Offset: 0}
	case 3:
		return bfir.Read{}
	case 4:
		return bfir.Write{}
	case 5:
		return bfir.Loop{Body: []bfir.Instruction{}}
	case 6:
		return bfir.Loop{Body: []bfir.Instruction{
			bfir.Increment{Amount: bfir.Cell(rng.Intn(256)), Offset: 0},
		}}
	case 7:
		return bfir.Loop{Body: []bfir.Instruction{
			bfir.PointerIncrement{Amount: smallSignedInt(rng)},
		}}
	case 8:
		return bfir.Loop{Body: []bfir.Instruction{
			bfir.Set{Amount: bfir.Cell(rng.Intn(256)), Offset: 0},
		}}
	case 9, 10:
		return bfir.Loop{Body: []bfir.Instruction{bfir.Read{}}}
	case 11:
		return bfir.MultiplyMove{Targets: map[int]bfir.Cell{1: bfir.NegCell(1)}}
	default:
		return bfir.MultiplyMove{Targets: map[int]bfir.Cell{1: 2, 4: 10}}
	}
}

// smallSignedInt keeps PointerIncrement amounts within a range that won't
// immediately walk off even a small abstract tape, so that most generated
// programs are actually exercised rather than discarded for RuntimeError.
func smallSignedInt(rng *rand.Rand) int {
	return rng.Intn(7) - 3
}

// randomProgram generates a flat instruction sequence of length size.
func randomProgram(rng *rand.Rand, size int) []bfir.Instruction {
	if size < 0 {
		size = 0
	}
	out := make([]bfir.Instruction, size)
	for i := range out {
		out[i] = randomInstruction(rng)
	}
	return out
}
