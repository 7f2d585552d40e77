package rxbuild

import (
	"fmt"
)

// ErrorKind classifies errors returned by the builder.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota

	// KindInvalidArgument is a nil or otherwise unusable argument.
	KindInvalidArgument

	// KindInvalidBound is a negative quantifier bound (or min > max).
	KindInvalidBound

	// KindUnsupportedQuantifier is a quantifier that has no textual form.
	KindUnsupportedQuantifier

	// KindCycleDetected is an attach that would make a group contain itself.
	KindCycleDetected

	// KindCompileFailure is a pattern or flag set rejected by the engine.
	KindCompileFailure

	// KindCloneFailure means a node could not be cloned; it's a bug, not bad input.
	KindCloneFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindInvalidBound:
		return "invalid bound"
	case KindUnsupportedQuantifier:
		return "unsupported quantifier"
	case KindCycleDetected:
		return "cycle detected"
	case KindCompileFailure:
		return "compile failure"
	case KindCloneFailure:
		return "clone failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks; they match any *Error of the same kind.
var (
	ErrInvalidArgument       = &Error{Kind: KindInvalidArgument}
	ErrInvalidBound          = &Error{Kind: KindInvalidBound}
	ErrUnsupportedQuantifier = &Error{Kind: KindUnsupportedQuantifier}
	ErrCycleDetected         = &Error{Kind: KindCycleDetected}
	ErrCompileFailure        = &Error{Kind: KindCompileFailure}
	ErrCloneFailure          = &Error{Kind: KindCloneFailure}
)

// Error is the error type returned by all rxbuild operations.
type Error struct {
	Kind ErrorKind

	// Msg describes the failed operation and its parameters.
	Msg string

	// Pattern is the rendered pattern, set for compile failures.
	Pattern string

	// Err is the underlying cause, if any (e.g. the engine diagnostic).
	Err error
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Pattern != "" {
		s += fmt.Sprintf(" (pattern %q)", e.Pattern)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Must is a helper that wraps a call returning (T, error) and panics
// if the error is non-nil. It is intended for package-level pattern templates.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
