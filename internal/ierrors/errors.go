// Package ierrors implements the distinct, non-recoverable error kinds the
// expression evaluator and the constraint solver can raise (spec.md §7).
// Every kind is carried by the single *Error type and named by its Kind
// field, so callers recover the error with errors.As and then read Kind
// rather than string-matching a message.
package ierrors

import (
	"fmt"

	"github.com/strata-lang/strata/internal/ir"
)

// Kind names one of the eight error kinds spec.md §7 enumerates.
type Kind string

const (
	KindArithmeticError     Kind = "ArithmeticError"
	KindNonExhaustiveMatch  Kind = "NonExhaustiveMatch"
	KindNonExhaustiveSwitch Kind = "NonExhaustiveSwitch"
	KindUserError           Kind = "UserError"
	KindUnboundVariable     Kind = "UnboundVariable"
	KindTypeMismatch        Kind = "TypeMismatch"
	KindIntegrityViolation  Kind = "IntegrityViolation"
	KindHostError           Kind = "HostError"
)

// Error is the single error type every failure in the core surfaces as,
// carrying the originating source location per spec.md §7's "User-visible
// failure is a single error object with the originating source location."
type Error struct {
	Kind    Kind
	Pos     ir.Pos
	Message string
	// Wrapped holds the underlying native error for KindHostError so
	// callers can still unwrap to the original cause.
	Wrapped error
}

func (e *Error) Error() string {
	if e.Pos == ir.NoPos {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

func New(kind Kind, pos ir.Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Arithmetic(pos ir.Pos, format string, args ...any) *Error {
	return New(KindArithmeticError, pos, format, args...)
}

func NonExhaustiveMatch(pos ir.Pos, format string, args ...any) *Error {
	return New(KindNonExhaustiveMatch, pos, format, args...)
}

func NonExhaustiveSwitch(pos ir.Pos, format string, args ...any) *Error {
	return New(KindNonExhaustiveSwitch, pos, format, args...)
}

func UserErr(pos ir.Pos, message string) *Error {
	return New(KindUserError, pos, "%s", message)
}

func UnboundVariable(pos ir.Pos, name string) *Error {
	return New(KindUnboundVariable, pos, "unbound variable %q", name)
}

func TypeMismatch(pos ir.Pos, format string, args ...any) *Error {
	return New(KindTypeMismatch, pos, format, args...)
}

func IntegrityViolation(pos ir.Pos, format string, args ...any) *Error {
	return New(KindIntegrityViolation, pos, format, args...)
}

func Host(pos ir.Pos, cause error) *Error {
	return &Error{Kind: KindHostError, Pos: pos, Message: cause.Error(), Wrapped: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
