// Package bferrors models the error kinds bfc can raise (spec.md §7),
// in the style of the teacher's own internal/errors package: a single
// concrete error type carrying a Kind, a message, and an optional
// source Position, rather than ad-hoc fmt.Errorf strings scattered
// across the compiler.
package bferrors

import (
	"fmt"

	"github.com/pkg/errors"

	"bfc/internal/bfir"
)

// Kind classifies a BFError.
type Kind string

const (
	// ParseError is fatal: an unmatched bracket. Carries a Position.
	ParseError Kind = "ParseError"
	// BoundsOverflow means the program demands more than
	// bounds.MaxCellIndex cells; downgraded to a warning, the access is
	// clamped rather than rejected.
	BoundsOverflow Kind = "BoundsOverflow"
	// AbstractRuntimeError means the abstract interpreter hit an
	// out-of-bounds pointer or similar while speculatively executing;
	// logged as a warning and speculative execution is abandoned.
	AbstractRuntimeError Kind = "AbstractRuntimeError"
	// StepBudgetExhausted is not really an error: the interpreter ran
	// out of its step budget and the remainder of the program becomes
	// residual, same as hitting a Read.
	StepBudgetExhausted Kind = "StepBudgetExhausted"
	// BackendError wraps a failure from the low-level IR builder.
	BackendError Kind = "BackendError"
	// LinkerError wraps a failure invoking the system linker or strip
	// tool.
	LinkerError Kind = "LinkerError"
)

// BFError is the concrete error type raised across bfc.
type BFError struct {
	Kind    Kind
	Message string
	Pos     *bfir.Position
	Cause   error
}

func (e *BFError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s: %s (at byte %d)", e.Kind, e.Message, e.Pos.Start)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *BFError) Unwrap() error { return e.Cause }

// NewParseError builds a fatal ParseError at the given source offset.
func NewParseError(message string, pos int) *BFError {
	p := bfir.Position{Start: pos, End: pos + 1}
	return &BFError{Kind: ParseError, Message: message, Pos: &p}
}

// NewBoundsOverflow builds a BoundsOverflow warning.
func NewBoundsOverflow(message string) *BFError {
	return &BFError{Kind: BoundsOverflow, Message: message}
}

// NewAbstractRuntimeError builds an AbstractRuntimeError warning.
func NewAbstractRuntimeError(message string, pos bfir.Position) *BFError {
	return &BFError{Kind: AbstractRuntimeError, Message: message, Pos: &pos}
}

// NewBackendError wraps cause as a BackendError, attaching a stack
// trace via github.com/pkg/errors to the wrapped Cause, recording where
// in the low-level builder glue the failure originated.
func NewBackendError(message string, cause error) *BFError {
	return &BFError{Kind: BackendError, Message: message, Cause: errors.Wrap(cause, message)}
}

// NewLinkerError wraps a failure shelling out to the system linker or
// strip tool.
func NewLinkerError(message string, cause error) *BFError {
	return &BFError{Kind: LinkerError, Message: message, Cause: errors.Wrap(cause, message)}
}
