// Command bfc is a highly optimizing compiler for BF.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"bfc/internal/bferrors"
	"bfc/internal/build"
	"bfc/internal/diagnostics"
)

const version = "0.1.0"

func usage() string {
	var b strings.Builder
	b.WriteString("Usage: bfc SOURCE_FILE [options]\n\n")
	b.WriteString("  -h, --help             print usage\n")
	b.WriteString("  -v, --version          print bfc version\n")
	b.WriteString("  -O, --opt LEVEL        optimization level (0 to 2, default 2)\n")
	b.WriteString("      --llvm-opt LEVEL   LLVM optimization level (0 to 3, default 3)\n")
	b.WriteString("      --passes LIST      limit bfc optimizations to those named, comma-separated\n")
	b.WriteString("      --dump-ir          print BF IR generated\n")
	b.WriteString("      --dump-llvm        print LLVM IR generated\n")
	b.WriteString("      --target TRIPLE    LLVM target triple (default: host)\n")
	b.WriteString("      --strip yes|no     strip symbols from the binary (default: yes)\n")
	b.WriteString("  -o PATH                write the executable to PATH\n")
	return b.String()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, sourcePath, err := parseArgs(args)
	if err != nil {
		if err == errWantHelp {
			fmt.Print(usage())
			return 0
		}
		if err == errWantVersion {
			fmt.Printf("bfc %s\n", version)
			return 0
		}
		fmt.Fprint(os.Stderr, usage())
		return 1
	}

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		diagnostics.Emit(diagnostics.Info{Level: diagnostics.Error, Filename: sourcePath, Message: err.Error()})
		return 2
	}
	opts.SourcePath = sourcePath
	opts.Source = string(src)

	result, err := build.Build(opts)
	if err != nil {
		emitBuildError(sourcePath, err)
		return 2
	}

	switch {
	case opts.DumpIR:
		fmt.Print(result.DumpedIR)
	case opts.DumpLLVM:
		fmt.Print(result.DumpedLLVM)
	default:
		if result.CacheHit {
			fmt.Fprintf(os.Stderr, "%s: using cached build\n", sourcePath)
		}
	}
	return 0
}

func emitBuildError(sourcePath string, err error) {
	if bfErr, ok := err.(*bferrors.BFError); ok {
		diagnostics.Emit(diagnostics.FromError(sourcePath, bfErr))
		return
	}
	diagnostics.Emit(diagnostics.Info{Level: diagnostics.Error, Filename: sourcePath, Message: err.Error()})
}

var (
	errWantHelp    = fmt.Errorf("help requested")
	errWantVersion = fmt.Errorf("version requested")
)

// parseArgs is a small hand-rolled option parser: one positional
// SOURCE_FILE plus the flag table from usage(). There is no CLI flag
// library anywhere in this project's dependency pack (the reference
// itself hand-rolls its option table with getopts rather than reaching
// for a framework), so this follows the same shape rather than adding
// one dependency's worth of flag parsing for a dozen options.
func parseArgs(args []string) (build.Options, string, error) {
	opts := build.Options{OptLevel: 2, LLVMOptLevel: 3, Strip: true}
	var source string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("%s requires an argument", arg)
			}
			return args[i], nil
		}

		switch arg {
		case "-h", "--help":
			return opts, "", errWantHelp
		case "-v", "--version":
			return opts, "", errWantVersion
		case "-O", "--opt":
			v, err := next()
			if err != nil {
				return opts, "", err
			}
			level, err := strconv.Atoi(v)
			if err != nil || level < 0 || level > 2 {
				return opts, "", fmt.Errorf("invalid optimization level %q", v)
			}
			opts.OptLevel = level
		case "--llvm-opt":
			v, err := next()
			if err != nil {
				return opts, "", err
			}
			level, err := strconv.Atoi(v)
			if err != nil || level < 0 || level > 3 {
				return opts, "", fmt.Errorf("invalid LLVM optimization level %q", v)
			}
			opts.LLVMOptLevel = level
		case "--passes":
			v, err := next()
			if err != nil {
				return opts, "", err
			}
			opts.Passes = strings.Split(v, ",")
		case "--dump-ir":
			opts.DumpIR = true
		case "--dump-llvm":
			opts.DumpLLVM = true
		case "--target":
			v, err := next()
			if err != nil {
				return opts, "", err
			}
			opts.TargetTriple = v
		case "--strip":
			v, err := next()
			if err != nil {
				return opts, "", err
			}
			if v != "yes" && v != "no" {
				return opts, "", fmt.Errorf("--strip expects yes or no, got %q", v)
			}
			opts.Strip = v == "yes"
		case "-o":
			v, err := next()
			if err != nil {
				return opts, "", err
			}
			opts.OutputPath = v
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, "", fmt.Errorf("unrecognized option %q", arg)
			}
			if source != "" {
				return opts, "", fmt.Errorf("unexpected extra argument %q", arg)
			}
			source = arg
		}
	}

	if source == "" {
		return opts, "", fmt.Errorf("missing SOURCE_FILE")
	}
	return opts, source, nil
}
