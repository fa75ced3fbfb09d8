// Package peephole implements the family of pure IR-to-IR
// transformations described in spec.md §4.C. Every pass recurses into
// loop bodies via mapLoops and never mutates its input tree.
package peephole

import "bfc/internal/bfir"

// mapLoops applies f to the body of every Loop at the top level of
// instrs, leaving every other instruction untouched. It is the Go
// analogue of the reference implementation's MapLoopsExt iterator
// adapter.
func mapLoops(instrs []bfir.Instruction, f func([]bfir.Instruction) []bfir.Instruction) []bfir.Instruction {
	out := make([]bfir.Instruction, len(instrs))
	for i, instr := range instrs {
		if loop, ok := instr.(bfir.Loop); ok {
			out[i] = bfir.Loop{Body: f(loop.Body), Pos: loop.Pos}
		} else {
			out[i] = instr
		}
	}
	return out
}
