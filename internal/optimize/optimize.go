// Package optimize drives the peephole passes in internal/peephole to a
// fixed point (spec.md §4.D). It owns pass ordering and round iteration;
// the passes themselves stay pure and order-agnostic.
package optimize

import (
	"bfc/internal/bfir"
	"bfc/internal/peephole"
)

// Pass is one named, pure IR transformation. Name is used for --passes
// subset selection and for diagnostics.
type Pass struct {
	Name string
	Run  func([]bfir.Instruction) []bfir.Instruction
}

// DefaultPipeline is the full set of passes in the order spec.md §4.D
// prescribes for a single round.
var DefaultPipeline = []Pass{
	{"combine_increments", peephole.CombineIncrements},
	{"annotate_known_zero", peephole.AnnotateKnownZero},
	{"extract_multiply", peephole.ExtractMultiply},
	{"simplify_loops", peephole.SimplifyLoops},
	{"combine_set_and_increments", peephole.CombineSetAndIncrements},
	{"remove_dead_loops", peephole.RemoveDeadLoops},
	{"remove_redundant_sets", peephole.RemoveRedundantSets},
	{"combine_before_read", peephole.CombineBeforeRead},
	{"remove_pure_code", peephole.RemovePureCode},
	{"sort_by_offset", peephole.SortByOffset},
}

// sanityCapRounds bounds the fixed-point loop defensively. Every pass is
// monotone non-increasing in instruction count under the well-ordering the
// spec describes, so convergence is expected well before this is hit; it
// exists only to turn a latent bug in a new pass into a returned result
// instead of a hang.
const sanityCapRounds = 10000

// Result carries the optimized IR together with bookkeeping useful to a
// caller that wants to report on the run (--dump-ir, build logging).
type Result struct {
	Instructions []bfir.Instruction
	Rounds       int
}

// Optimize runs the default pipeline to a fixed point: passes apply in
// order within a round, and rounds repeat until a round leaves the tree
// unchanged (bfir.Equal on the whole tree), per spec.md §4.D.
func Optimize(instrs []bfir.Instruction) Result {
	return OptimizeWith(instrs, DefaultPipeline)
}

// OptimizeWith runs a caller-supplied pipeline (e.g. a --passes subset) to
// a fixed point.
func OptimizeWith(instrs []bfir.Instruction, pipeline []Pass) Result {
	prev := instrs
	rounds := 0
	for {
		next := runRound(prev, pipeline)
		rounds++
		if bfir.Equal(prev, next) || rounds >= sanityCapRounds {
			return Result{Instructions: next, Rounds: rounds}
		}
		prev = next
	}
}

func runRound(instrs []bfir.Instruction, pipeline []Pass) []bfir.Instruction {
	for _, pass := range pipeline {
		instrs = pass.Run(instrs)
	}
	return instrs
}

// Select returns the subset of DefaultPipeline named in names, preserving
// DefaultPipeline's order regardless of the order names were given in —
// the pipeline's ordering is load-bearing (spec.md §4.D), a --passes flag
// only narrows which steps run, it does not let a user reorder them. An
// unknown name is silently ignored; callers that want to warn about a typo
// should diff len(names) against the returned slice length themselves.
func Select(names []string) []Pass {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make([]Pass, 0, len(DefaultPipeline))
	for _, p := range DefaultPipeline {
		if wanted[p.Name] {
			out = append(out, p)
		}
	}
	return out
}
