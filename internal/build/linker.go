// Package build orchestrates the tail end of a bfc invocation: handing
// a generated LLVM module to the system LLVM/clang toolchain and
// producing an executable. It shells out rather than linking an LLVM
// C-API binding, mirroring the reference compiler's own shell.rs: the
// IR builder library this project uses (llir/llvm) only ever produces
// IR text, never object code or a linked binary, so getting from .ll
// to a binary always goes through external tools either way.
package build

import (
	"bytes"
	"os/exec"
	"runtime"

	"bfc/internal/bferrors"
)

// runShellCommand runs command with args, returning stderr (trimmed) as
// the error on a nonzero exit or a missing binary — the same contract
// the reference's run_shell_command has, translated to Go's exec.Command.
func runShellCommand(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.Error); ok {
			return bferrors.NewLinkerError(command+" not found; is it on $PATH?", err)
		}
		return bferrors.NewLinkerError(stderr.String(), err)
	}
	return nil
}

// AssembleObject invokes llc to turn LLVM IR text (llPath) into a native
// object file (objPath) for targetTriple (empty means llc's host
// default).
func AssembleObject(llPath, objPath, targetTriple string) error {
	args := []string{"-filetype=obj", "-o", objPath, llPath}
	if targetTriple != "" {
		args = append([]string{"-mtriple=" + targetTriple}, args...)
	}
	return runShellCommand("llc", args...)
}

// LinkObject invokes clang to link objPath into an executable at
// executablePath, optionally cross-linking for targetTriple.
func LinkObject(objPath, executablePath, targetTriple string) error {
	args := []string{objPath, "-o", executablePath}
	if targetTriple != "" {
		args = append(args, "-target", targetTriple)
	}
	return runShellCommand("clang", args...)
}

// StripExecutable removes symbols from executablePath. macOS's strip
// doesn't accept GNU's "-s" flag, so the flag differs by OS exactly as
// it does in the reference's strip_executable.
func StripExecutable(executablePath string) error {
	if runtime.GOOS == "darwin" {
		return runShellCommand("strip", executablePath)
	}
	return runShellCommand("strip", "-s", executablePath)
}
