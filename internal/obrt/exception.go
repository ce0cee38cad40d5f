package obrt

import (
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// Exception adapts an *obxerr.Exception into an obvalue.Value, so it can
// flow through the same channels (AST call results, data-stack slots) as
// any other value, per spec.md §4.1's "exceptions" primitive and §7's
// treatment of Return/Exit as exception-valued control flow.
type Exception struct {
	Exc *obxerr.Exception
}

// NewException wraps an *obxerr.Exception as an obvalue.Value.
func NewException(exc *obxerr.Exception) *Exception {
	return &Exception{Exc: exc}
}

func (e *Exception) Type() string { return "exception:" + e.Exc.Kind().String() }

func (e *Exception) Equal(other obvalue.Value) bool {
	o, ok := other.(*Exception)
	return ok && o.Exc == e.Exc
}

func (e *Exception) Bool() (bool, error) { return false, nil }

func (e *Exception) String() string { return e.Exc.Error() }

func (e *Exception) Iter() (obvalue.Iterator, error) {
	return nil, obxerr.New(obxerr.TypeError, "exception values are not iterable")
}

func (e *Exception) Execute(opName string, args []obvalue.Value) (obvalue.Value, error) {
	return nil, e.Exc
}

func (e *Exception) Call(method string, args []obvalue.Value) (obvalue.Value, error) {
	return nil, e.Exc
}

// Payload returns the wrapped value carried by a Return/Exit exception, if
// any (see obxerr.Exception.Payload), type-asserted back to obvalue.Value.
func (e *Exception) Payload() (obvalue.Value, bool) {
	v, ok := e.Exc.Payload.(obvalue.Value)
	return v, ok
}

// AsValue converts err into an obvalue.Value: if it's already an
// *obxerr.Exception it's wrapped directly, otherwise it's wrapped as an
// InternalError.
func AsValue(err error) obvalue.Value {
	if exc, ok := err.(*obxerr.Exception); ok {
		return NewException(exc)
	}
	return NewException(obxerr.Wrap(err, obxerr.InternalError, "unexpected error"))
}

// IsException reports whether v is an Exception value, returning its
// wrapped *obxerr.Exception if so.
func IsException(v obvalue.Value) (*obxerr.Exception, bool) {
	e, ok := v.(*Exception)
	if !ok {
		return nil, false
	}
	return e.Exc, true
}
