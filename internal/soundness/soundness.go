// Package soundness implements the property-based equivalence checker
// spec.md §4.F and §8 call for: running a transformation against many
// randomly generated programs and comparing the original's observable
// behavior against the transformed one's. There is no quickcheck library
// in the dependency pack this project draws from, so the trial loop is
// built directly on testing/quick's Generator interface (see DESIGN.md for
// why that is the right call here rather than hand-rolling one more
// bespoke fuzzer). Trials run concurrently via errgroup, and a failing
// trial is rendered with kr/pretty so a test failure shows a readable diff
// instead of a %+v dump.
package soundness

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing/quick"

	"github.com/kr/pretty"
	"golang.org/x/sync/errgroup"

	"bfc/internal/bfir"
	"bfc/internal/interp"
)

const (
	maxSteps  = 1000
	maxCells  = 1000
	numTrials = 200
)

// Transform is a pure IR-to-IR pass: the unit of soundness this package
// checks.
type Transform func([]bfir.Instruction) []bfir.Instruction

// program adapts a random instruction sequence to testing/quick's
// Generator interface, so CheckTransform can ask quick for fresh inputs
// without hand-rolling its own size/seed bookkeeping.
type program struct {
	instrs []bfir.Instruction
}

func (program) Generate(rng *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(program{instrs: randomProgram(rng, size)})
}

// Violation describes a soundness failure: transform changed the
// observable behavior of original.
type Violation struct {
	Original    []bfir.Instruction
	Transformed []bfir.Instruction
	Reason      string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s\noriginal:\n%s\ntransformed:\n%s",
		v.Reason, bfir.String(v.Original), bfir.String(v.Transformed))
}

// CheckTransform runs transform against numTrials randomly generated
// programs, in parallel, and reports the first soundness violation found
// (or nil if none). checkCells selects whether final cell contents must
// also match; this package's tests pass false only for combine_before_read,
// remove_pure_code, and the whole pipeline, which are checked for
// output preservation only.
func CheckTransform(transform Transform, checkCells bool) error {
	trials := make([]program, numTrials)
	rng := rand.New(rand.NewSource(1))
	for i := range trials {
		v, ok := quick.Value(reflect.TypeOf(program{}), rng)
		if !ok {
			return fmt.Errorf("soundness: failed to generate trial %d", i)
		}
		trials[i] = v.Interface().(program)
	}

	var group errgroup.Group
	for _, trial := range trials {
		trial := trial
		group.Go(func() error {
			if v := checkOne(trial.instrs, transform, checkCells); v != nil {
				return v
			}
			return nil
		})
	}
	return group.Wait()
}

// checkOne runs one trial: execute instrs, execute transform(instrs), and
// compare. A trial whose original program doesn't terminate cleanly within
// budget is uninformative (the transform is free to change the behavior of
// a program that was already erroneous or non-terminating) and is silently
// discarded, mirroring the reference harness's TestResult::discard().
func checkOne(instrs []bfir.Instruction, transform Transform, checkCells bool) *Violation {
	before := interp.RunWithTapeSize(instrs, maxSteps, maxCells)
	if before.Outcome == interp.RuntimeError || before.Outcome == interp.OutOfSteps {
		return nil
	}

	transformed := transform(bfir.Clone(instrs))
	after := interp.RunWithTapeSize(transformed, maxSteps, maxCells)

	if !sameShape(before.Outcome, after.Outcome) {
		return &Violation{
			Original:    instrs,
			Transformed: transformed,
			Reason:      fmt.Sprintf("outcome diverged: %s vs %s", before.Outcome, after.Outcome),
		}
	}
	if string(before.Outputs) != string(after.Outputs) {
		return &Violation{
			Original:    instrs,
			Transformed: transformed,
			Reason:      fmt.Sprintf("outputs diverged:\n%s", pretty.Sprint(before.Outputs, after.Outputs)),
		}
	}
	if checkCells && !cellsEqual(before.Cells, after.Cells) {
		return &Violation{
			Original:    instrs,
			Transformed: transformed,
			Reason:      fmt.Sprintf("cells diverged:\n%s", pretty.Sprint(before.Cells, after.Cells)),
		}
	}
	return nil
}

// sameShape treats Completed and ReachedRuntimeValue as the only two
// "terminated cleanly" outcomes a sound transform may produce when the
// original terminated cleanly, matching the reference harness: it permits
// either outcome to flip between those two (a transform can consume or
// expose a Read differently) but not into RuntimeError or OutOfSteps.
func sameShape(before, after interp.Outcome) bool {
	cleanBefore := before == interp.Completed || before == interp.ReachedRuntimeValue
	cleanAfter := after == interp.Completed || after == interp.ReachedRuntimeValue
	return cleanBefore == cleanAfter
}

func cellsEqual(a, b []bfir.Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
