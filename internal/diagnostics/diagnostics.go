// Package diagnostics renders compiler messages the way the CLI prints
// them to the user: filename-prefixed, with the severity word colored
// when stderr is a terminal. There is no ANSI color library anywhere in
// this project's dependency pack, so the handful of escape codes this
// file needs are written directly — see DESIGN.md for why pulling in a
// whole color library for two constants wasn't worth it.
package diagnostics

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"bfc/internal/bferrors"
	"bfc/internal/bfir"
)

const (
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiPurple = "\x1b[35m"
	ansiReset  = "\x1b[0m"
)

// Level classifies an Info as fatal or advisory.
type Level int

const (
	Warning Level = iota
	Error
)

// Info is one diagnostic message: a severity, the file it concerns, a
// human message, and — when it traces back to a specific place in the
// source — the byte range and the source text itself. String prints
// neither Pos nor Source.
type Info struct {
	Level    Level
	Filename string
	Message  string
	Pos      *bfir.Position
	Source   string
}

// FromError builds an Info from a *bferrors.BFError, classifying
// ParseError as fatal and everything else (bounds overflow, abstract
// interpreter runtime errors, step budget exhaustion) as a warning —
// none of those stop compilation, they just mean less of the program
// could be resolved at compile time.
func FromError(filename string, err *bferrors.BFError) Info {
	level := Warning
	if err.Kind == bferrors.ParseError {
		level = Error
	}
	info := Info{Level: level, Filename: filename, Message: err.Error()}
	if err.Pos != nil {
		info.Pos = err.Pos
	}
	return info
}

// String renders the diagnostic as "filename: warning: message", coloring
// the severity word and bolding the message when colorEnabled is true.
func (i Info) String() string {
	word, color := "warning:", ansiPurple
	if i.Level == Error {
		word, color = "error:", ansiRed
	}
	if !colorEnabled {
		return fmt.Sprintf("%s: %s %s", i.Filename, word, i.Message)
	}
	return fmt.Sprintf("%s: %s%s%s %s%s%s", i.Filename, color, word, ansiReset, ansiBold, i.Message, ansiReset)
}

// colorEnabled is resolved once at package init from whether stderr is a
// terminal, matching the reference's unconditional-color behavior but
// degrading gracefully for redirected output and CI logs.
var colorEnabled = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

// Emit writes info to stderr, one line, newline-terminated.
func Emit(info Info) {
	fmt.Fprintln(os.Stderr, info.String())
}
