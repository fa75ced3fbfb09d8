package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/require"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, source, err := parseArgs([]string{"hello.bf"})
	require.NoError(t, err)
	require.Equal(t, "hello.bf", source)
	require.Equal(t, 2, opts.OptLevel)
	require.True(t, opts.Strip)
}

func TestParseArgsRejectsUnknownOption(t *testing.T) {
	_, _, err := parseArgs([]string{"--nope", "hello.bf"})
	require.Error(t, err)
}

func TestParseArgsRejectsBadOptLevel(t *testing.T) {
	_, _, err := parseArgs([]string{"-O", "9", "hello.bf"})
	require.Error(t, err)
}

func TestParseArgsMissingSourceFile(t *testing.T) {
	_, _, err := parseArgs(nil)
	require.Error(t, err)
}

func TestParseArgsDumpIRAndPasses(t *testing.T) {
	opts, _, err := parseArgs([]string{"--dump-ir", "--passes", "combine_increments,sort_by_offset", "hello.bf"})
	require.NoError(t, err)
	require.True(t, opts.DumpIR)
	require.Equal(t, []string{"combine_increments", "sort_by_offset"}, opts.Passes)
}

// TestMain lets testscript invoke bfc's own main in-process via the
// "bfc" command inside .txtar scripts, instead of needing a built binary
// on $PATH.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"bfc": func() int { return run(os.Args[1:]) },
	}))
}

func TestDumpIRScript(t *testing.T) {
	testscript.Run(t, testscript.Params{Dir: "testdata"})
}
