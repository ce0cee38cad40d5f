package obrt

import "github.com/obelix-lang/obelix/internal/obvalue"

// MapResolver is a simple map-backed obvalue.FunctionResolver, grounded on
// the spec's description of resolution as a flat name lookup (spec.md §4.1)
// with prefix fallback handled by the caller (obgrammar.Grammar.Resolve).
type MapResolver struct {
	fns map[string]obvalue.Function
}

func NewMapResolver() *MapResolver {
	return &MapResolver{fns: make(map[string]obvalue.Function)}
}

// Register adds or replaces the function registered under name.
func (r *MapResolver) Register(name string, fn obvalue.Function) {
	r.fns[name] = fn
}

func (r *MapResolver) Resolve(name string) (obvalue.Function, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}
