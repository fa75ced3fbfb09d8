package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bfc/internal/bferrors"
	"bfc/internal/bfir"
	"bfc/internal/bounds"
	"bfc/internal/codegen"
	"bfc/internal/diagnostics"
	"bfc/internal/interp"
	"bfc/internal/optimize"
)

// Options is every knob cmd/bfc exposes, collected in one struct so
// Build has a single, testable entry point instead of reading flags
// itself (spec.md §A.1/§A.2, mirroring main.rs's compile_file).
type Options struct {
	SourcePath     string
	Source         string
	OutputPath     string
	OptLevel       int // 0, 1, or 2
	Passes         []string
	LLVMOptLevel   int // part of the build cache key only; not passed to llc, which runs at its default level
	TargetTriple   string
	Strip          bool
	DumpIR         bool
	DumpLLVM       bool
	CacheDir       string // "" disables the build cache
	StepBudget     int
}

// Result reports what Build actually did, for the CLI to print and for
// tests to assert against without parsing stdout.
type Result struct {
	DumpedIR       string // populated when Options.DumpIR was set
	DumpedLLVM     string // populated when Options.DumpLLVM was set
	ExecutablePath string
	CacheHit       bool
	Rounds         int
}

// Build runs the whole pipeline: parse, optimize, abstractly execute,
// generate LLVM IR, assemble, link, and optionally strip — stopping
// early when DumpIR or DumpLLVM is set, exactly as compile_file does.
func Build(opts Options) (Result, error) {
	instrs, err := bfir.Parse(opts.Source)
	if err != nil {
		return Result{}, err
	}

	rounds := 0
	if opts.OptLevel > 0 {
		pipeline := optimize.DefaultPipeline
		if len(opts.Passes) > 0 {
			pipeline = optimize.Select(opts.Passes)
		}
		result := optimize.OptimizeWith(instrs, pipeline)
		instrs = result.Instructions
		rounds = result.Rounds
	}

	if opts.DumpIR {
		return Result{DumpedIR: bfir.String(instrs), Rounds: rounds}, nil
	}

	state := abstractlyExecute(instrs, opts)

	tapeLen := bounds.HighestCellIndex(instrs) + 1
	module := codegen.Generate(instrs, state, tapeLen)
	llvmIR := module.String()

	if opts.DumpLLVM {
		return Result{DumpedLLVM: llvmIR, Rounds: rounds}, nil
	}

	executablePath := opts.OutputPath
	if executablePath == "" {
		executablePath = executableName(opts.SourcePath)
	}

	var cache *Cache
	var key string
	if opts.CacheDir != "" {
		cache, err = NewCache(opts.CacheDir)
		if err != nil {
			return Result{}, err
		}
		key = Key(opts.Source, fmt.Sprint(opts.OptLevel), strings.Join(opts.Passes, ","),
			fmt.Sprint(opts.LLVMOptLevel), opts.TargetTriple)
		if cached, ok := cache.Lookup(key); ok {
			if err := copyExecutable(cached, executablePath); err != nil {
				return Result{}, err
			}
			return Result{ExecutablePath: executablePath, CacheHit: true, Rounds: rounds}, nil
		}
	}

	llFile, err := os.CreateTemp("", "bfc-*.ll")
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(llFile.Name())
	if _, err := llFile.WriteString(llvmIR); err != nil {
		llFile.Close()
		return Result{}, err
	}
	llFile.Close()

	objFile, err := os.CreateTemp("", "bfc-*.o")
	if err != nil {
		return Result{}, err
	}
	objFile.Close()
	defer os.Remove(objFile.Name())

	if err := AssembleObject(llFile.Name(), objFile.Name(), opts.TargetTriple); err != nil {
		return Result{}, err
	}
	if err := LinkObject(objFile.Name(), executablePath, opts.TargetTriple); err != nil {
		return Result{}, err
	}
	if opts.Strip {
		if err := StripExecutable(executablePath); err != nil {
			return Result{}, err
		}
	}

	if cache != nil {
		if _, err := cache.Store(key, executablePath); err != nil {
			// A cache write failure shouldn't fail a build that already
			// succeeded; just warn and move on.
			diagnostics.Emit(diagnostics.Info{
				Level:    diagnostics.Warning,
				Filename: opts.SourcePath,
				Message:  "could not write build cache entry: " + err.Error(),
			})
		}
	}

	return Result{ExecutablePath: executablePath, Rounds: rounds}, nil
}

// abstractlyExecute runs the abstract interpreter at OptLevel 2 only —
// levels 0 and 1 skip it entirely and compile the whole program
// natively starting from the top, matching main.rs's behavior of
// setting start_instr to the very first instruction without ever
// calling execute().
func abstractlyExecute(instrs []bfir.Instruction, opts Options) interp.State {
	if opts.OptLevel < 2 || len(instrs) == 0 {
		outcome := interp.Completed
		var start interp.Cursor
		if len(instrs) > 0 {
			outcome = interp.ReachedRuntimeValue
			start = interp.Cursor{0}
		}
		tapeLen := bounds.HighestCellIndex(instrs) + 1
		return interp.State{
			Outcome: outcome,
			Start:   start,
			Cells:   make([]bfir.Cell, tapeLen),
			Ptr:     0,
		}
	}
	budget := opts.StepBudget
	if budget == 0 {
		budget = interp.DefaultStepBudget
	}
	return interp.Run(instrs, budget)
}

// executableName converts "foo.bf" to "foo", matching main.rs's
// executable_name: drop the last extension, keep everything else,
// including any further dots in the base name.
func executableName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	parts := strings.Split(base, ".")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

func copyExecutable(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return bferrors.NewLinkerError("could not read cached executable", err)
	}
	return os.WriteFile(dst, data, 0o755)
}
