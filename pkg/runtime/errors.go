package runtime

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies runtime failures.
type ErrorKind int

const (
	UndefinedReference ErrorKind = iota
	DuplicateIdentifier
	TypeMismatch
	InvalidOperator
	ArityMismatch
	NotCallable
	NotAVariable
	NotIndexable
	Bounds
	ControlFlowMisuse
	// Native marks a failure reported by a host function behind an internal call.
	Native
	// Internal marks a defect in the evaluator itself or an exhausted resource
	// limit, never a mistake in the evaluated program.
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case UndefinedReference:
		return "undefined reference"
	case DuplicateIdentifier:
		return "duplicate identifier"
	case TypeMismatch:
		return "type mismatch"
	case InvalidOperator:
		return "invalid operator"
	case ArityMismatch:
		return "arity mismatch"
	case NotCallable:
		return "not callable"
	case NotAVariable:
		return "not a variable"
	case NotIndexable:
		return "not indexable"
	case Bounds:
		return "out of bounds"
	case ControlFlowMisuse:
		return "control flow misuse"
	case Native:
		return "native failure"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("unknown_error_kind_%d", int(k))
	}
}

// Frame is one entry of the evaluator's call stack.
type Frame struct {
	Function string
	Line     int
}

// Error is raised by evaluation and carries the source line it was detected on.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	// Trace lists the active call frames, innermost first, when the error escaped
	// one or more function calls.
	Trace []Frame
	// Cause is the underlying error for failures that originate outside the
	// evaluator.
	Cause error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TraceString renders the call trace one frame per line.
func (e *Error) TraceString() string {
	if len(e.Trace) == 0 {
		return ""
	}
	var b strings.Builder
	for i, frame := range e.Trace {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "at %s (line %d)", frame.Function, frame.Line)
	}
	return b.String()
}

// Errorf builds a runtime error of the given kind.
func Errorf(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line}
}

// IsKind reports whether err is a runtime error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Kind == kind
	}
	return false
}
