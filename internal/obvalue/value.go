// Package obvalue defines the external value-model contract the core
// (obparse, obast) consumes opaquely, per spec.md §4.1: "The core uses this
// model opaquely." It deliberately contains interfaces only — no concrete
// int/float/string/collection types, no exception registry — those belong
// to a host implementation such as internal/obrt.
//
// This mirrors how the teacher's tunascript front-end keeps its own
// concrete Value type (tunascript/syntax/value.go) in a leaf package the
// parser/AST layer depends on directly; we instead make that dependency
// explicit and substitutable, matching spec.md's "value model (external)"
// framing, by splitting the contract (here) from the one reference
// implementation (internal/obrt).
package obvalue

// Value is a tagged, dynamically-typed value as produced by the evaluator
// and consumed by semantic actions. Implementations carry primitives (int,
// float, bool, string, null), collections, closures, exceptions, and user
// types, per spec.md §2 item 1.
type Value interface {
	// Type names this value's dynamic type, for diagnostics and the
	// grammar's literal-token-to-value conversion.
	Type() string

	// Equal reports whether this value is equal to other under the host's
	// equality semantics.
	Equal(other Value) bool

	// Bool casts this value to a boolean per the host's truthiness rules.
	// Returns an error (conventionally an *obxerr.Exception of kind
	// TypeError) if the value has no boolean interpretation.
	Bool() (bool, error)

	// String renders this value for display.
	String() string

	// Execute invokes a named operation on this value (an operator like
	// "+", a method call, a cast) with the given arguments, per spec.md
	// §4.1's `value.execute(op_name, args) → value | exception`. A
	// returned error is conventionally an *obxerr.Exception.
	Execute(opName string, args []Value) (Value, error)

	// Iter returns an Iterator over this value's elements, or an error if
	// this value isn't iterable.
	Iter() (Iterator, error)

	// Call invokes this value as a callable with the given arguments, per
	// spec.md §2 item 1's `value.call(method, args) → value`. method is
	// empty for a plain call and otherwise names a sub-callable (bound
	// method) to invoke instead of the value itself.
	Call(method string, args []Value) (Value, error)
}

// Iterator produces a sequence of values. Next returns an error of kind
// obxerr.Exhausted (see internal/obxerr) once the sequence is spent, per
// spec.md §4.1's `iter.next() → value | ExhaustedException`.
type Iterator interface {
	Next() (Value, error)
}

// FunctionResolver looks up callables by name for the grammar's semantic
// actions, per spec.md §4.1: "resolve(name) → function ... Resolution
// order: prefix+name, then parser_+name, then name, failing if none
// exists." The prefix itself is configured on the Grammar, not here; a
// resolver only needs to answer single-name lookups, with resolution-order
// fallback handled by the caller (internal/obgrammar).
type FunctionResolver interface {
	// Resolve looks up name, returning ok=false if no function of that
	// exact name exists. It performs no prefix fallback; that is the
	// caller's responsibility.
	Resolve(name string) (fn Function, ok bool)
}

// Function is a callable the grammar's semantic actions or the evaluator's
// Call node invoke. ctx is the evaluation context in effect (an
// obast.Context, carried opaquely here to avoid an import cycle between
// obvalue and obast); args are already-evaluated argument values.
type Function func(ctx any, args []Value) (Value, error)
