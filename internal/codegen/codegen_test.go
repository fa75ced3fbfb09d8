package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bfc/internal/bfir"
	"bfc/internal/bounds"
	"bfc/internal/interp"
)

func mustParse(t *testing.T, source string) []bfir.Instruction {
	t.Helper()
	instrs, err := bfir.Parse(source)
	require.NoError(t, err)
	return instrs
}

func TestGenerateCompletedProgramEmitsNoResidualCode(t *testing.T) {
	instrs := mustParse(t, "++++++++.")
	state := interp.Run(instrs, interp.DefaultStepBudget)
	require.Equal(t, interp.Completed, state.Outcome)

	m := Generate(instrs, state, bounds.HighestCellIndex(instrs)+1)
	ir := m.String()

	require.Contains(t, ir, "define i32 @main")
	require.Contains(t, ir, "@outputs")
	require.Contains(t, ir, "call i64 @write")
	// Nothing to compile: the abstract interpreter already produced the
	// whole output, so no getchar/putchar calls should appear.
	require.NotContains(t, ir, "call i32 @getchar")
	require.NotContains(t, ir, "call i32 @putchar")
}

func TestGenerateReadStopsAbstractExecutionAndResumesNatively(t *testing.T) {
	instrs := mustParse(t, ",.")
	state := interp.Run(instrs, interp.DefaultStepBudget)
	require.Equal(t, interp.ReachedRuntimeValue, state.Outcome)
	require.Equal(t, interp.Cursor{0}, state.Start)

	m := Generate(instrs, state, bounds.HighestCellIndex(instrs)+1)
	ir := m.String()

	require.Contains(t, ir, "call i32 @getchar")
	require.Contains(t, ir, "call i32 @putchar")
}

func TestGenerateLoopContainingReadResumesInsideLoopBody(t *testing.T) {
	instrs := mustParse(t, "+[,]")
	state := interp.Run(instrs, interp.DefaultStepBudget)
	require.Equal(t, interp.ReachedRuntimeValue, state.Outcome)
	require.Equal(t, interp.Cursor{1, 0}, state.Start)

	m := Generate(instrs, state, bounds.HighestCellIndex(instrs)+1)
	ir := m.String()

	require.Contains(t, ir, "call i32 @getchar")
	// A loop header/body/after trio should appear once for the
	// continuation of the in-progress iteration.
	require.True(t, strings.Count(ir, "icmp ne i8") >= 1)
}

func TestGenerateMultiplyMoveLowersToLoadMulAdd(t *testing.T) {
	// The optimized form of ",[->+++<]".
	instrs := []bfir.Instruction{
		bfir.Read{},
		bfir.MultiplyMove{Targets: map[int]bfir.Cell{1: 3}},
	}
	state := interp.Run(instrs, interp.DefaultStepBudget)
	require.Equal(t, interp.ReachedRuntimeValue, state.Outcome)

	m := Generate(instrs, state, bounds.HighestCellIndex(instrs)+1)
	ir := m.String()

	require.Contains(t, ir, "call i32 @getchar")
	require.Contains(t, ir, "mul i8")
}

func TestGenerateOutOfStepsResumesAtLoopHeader(t *testing.T) {
	instrs := mustParse(t, "+[]")
	state := interp.Run(instrs, 10)
	require.Equal(t, interp.OutOfSteps, state.Outcome)

	m := Generate(instrs, state, bounds.HighestCellIndex(instrs)+1)
	require.Contains(t, m.String(), "define i32 @main")
}
