// Package obxerr defines the exception-kind taxonomy shared by the parser
// and the evaluator (spec.md §4.1, §7): every exception value in the system
// carries one of these kinds, a message, and optionally a wrapped cause.
//
// This mirrors the teacher's internal/tqerrors package (a single error type
// with a technical message and a wrapped cause), generalized from a single
// "interpreter error" kind to the full exception-kind enum the spec
// requires, and with a Payload field so Return/Exit can carry a value for
// non-local control flow.
package obxerr

import "fmt"

// Kind identifies the category of an exception, per spec.md §4.1/§6.
type Kind int

const (
	// SyntaxError is raised by the parser on a token mismatch or an Error
	// token delivered by the lexer (spec.md §4.4, §7).
	SyntaxError Kind = iota
	// TypeError is raised when a value doesn't support an operation or
	// cast it was asked to perform (e.g. a non-boolean Ternary condition).
	TypeError
	// NotCallable is raised when a Call node's target cannot be invoked.
	NotCallable
	// Exhausted is raised by an iterator with no further elements.
	Exhausted
	// Return carries a function's return value as non-local control flow.
	Return
	// Exit carries a process exit code as non-local control flow.
	Exit
	// Break unwinds out of the nearest enclosing Loop, non-local control
	// flow raised by the "break" standard action's constructed node.
	Break
	// Continue unwinds to the next iteration check of the nearest
	// enclosing Loop, raised by the "continue" standard action's
	// constructed node.
	Continue
	// InternalError indicates a bug in the grammar, parser, or evaluator
	// itself rather than a problem with the input program.
	InternalError
	// IOError wraps an error from the underlying character stream.
	IOError
	// ProtocolError indicates a value was used in a way its model forbids
	// (e.g. calling iter.next() on something that never returned an
	// iterator from iter()).
	ProtocolError
	// Name is raised when a variable or function name cannot be resolved
	// in the current context.
	Name
	// Runtime covers evaluation failures with no more specific kind, such
	// as division by zero.
	Runtime
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case NotCallable:
		return "NotCallable"
	case Exhausted:
		return "Exhausted"
	case Return:
		return "Return"
	case Exit:
		return "Exit"
	case Break:
		return "Break"
	case Continue:
		return "Continue"
	case InternalError:
		return "InternalError"
	case IOError:
		return "IOError"
	case ProtocolError:
		return "ProtocolError"
	case Name:
		return "Name"
	case Runtime:
		return "Runtime"
	default:
		return "UnknownKind"
	}
}

// Exception is the error type every Obelix-level failure is reported as. Its
// Payload is present for Return and Exit, where it's the propagating value
// or exit code respectively; callers that need the original typed value (an
// obvalue.Value) type-assert Payload themselves, since obxerr cannot import
// obvalue without creating an import cycle.
type Exception struct {
	kind    Kind
	msg     string
	wrap    error
	Payload any
}

func (e *Exception) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Kind returns the exception's kind.
func (e *Exception) Kind() Kind { return e.kind }

// Unwrap gives the error that the Exception wraps, if it wraps one.
func (e *Exception) Unwrap() error { return e.wrap }

// New returns an Exception of the given kind with a formatted message.
func New(kind Kind, format string, a ...any) *Exception {
	return &Exception{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an Exception of the given kind that wraps cause, formatting
// its own message from format/a and appending cause's message for context.
func Wrap(cause error, kind Kind, format string, a ...any) *Exception {
	msg := fmt.Sprintf(format, a...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause.Error())
	}
	return &Exception{kind: kind, msg: msg, wrap: cause}
}

// WithPayload attaches a control-flow payload (a Return value or Exit code)
// to an Exception and returns it for chaining.
func (e *Exception) WithPayload(payload any) *Exception {
	e.Payload = payload
	return e
}

// As reports whether err is an *Exception of the given kind, returning it if
// so.
func As(err error, kind Kind) (*Exception, bool) {
	exc, ok := err.(*Exception)
	if !ok || exc.kind != kind {
		return nil, false
	}
	return exc, true
}

// IsReturn and IsExit recognize the two Kinds that signal non-local control
// flow rather than a genuine user-facing error (per REDESIGN FLAGS: "encode
// these as dedicated variants... distinguishable without string matching"),
// so callers that need to tell "function returned" or "script called leave"
// apart from an ordinary Runtime/TypeError failure don't have to inspect
// Error() strings.
func IsReturn(err error) bool {
	_, ok := As(err, Return)
	return ok
}

func IsExit(err error) bool {
	_, ok := As(err, Exit)
	return ok
}
