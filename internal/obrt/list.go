package obrt

import (
	"strings"

	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// List is the reference collection type: an ordered, growable sequence of
// values, covering the "collections" requirement of spec.md §2 item 1 (the
// concrete container itself — indexing, linked-list backing, etc. — is the
// out-of-scope "concrete container libraries" territory; this is the
// minimal host-side stand-in the evaluator needs to exercise Generator and
// `for ... in ...`).
type List struct {
	items []obvalue.Value
}

func NewList(items ...obvalue.Value) *List {
	return &List{items: append([]obvalue.Value(nil), items...)}
}

func (l *List) Type() string { return "list" }

func (l *List) Equal(other obvalue.Value) bool {
	o, ok := other.(*List)
	if !ok || len(l.items) != len(o.items) {
		return false
	}
	for i := range l.items {
		if !l.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}

func (l *List) Bool() (bool, error) { return len(l.items) > 0, nil }

func (l *List) String() string {
	parts := make([]string, len(l.items))
	for i, v := range l.items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Iter() (obvalue.Iterator, error) {
	return newSliceIterator(l.items), nil
}

func (l *List) Call(method string, args []obvalue.Value) (obvalue.Value, error) {
	return nil, obxerr.New(obxerr.NotCallable, "list is not callable")
}

// Execute supports "+" (concatenation) and the "len"/"append" pseudo-ops a
// minimal runtime needs to be useful without a dedicated builtin registry.
func (l *List) Execute(opName string, args []obvalue.Value) (obvalue.Value, error) {
	switch opName {
	case "+":
		if len(args) != 1 {
			return nil, obxerr.New(obxerr.TypeError, "+ expects exactly one operand")
		}
		o, ok := args[0].(*List)
		if !ok {
			return nil, obxerr.New(obxerr.TypeError, "cannot concatenate list with %s", args[0].Type())
		}
		combined := append(append([]obvalue.Value(nil), l.items...), o.items...)
		return NewList(combined...), nil
	case "len":
		return Int(len(l.items)), nil
	case "append":
		combined := append(append([]obvalue.Value(nil), l.items...), args...)
		return NewList(combined...), nil
	case "get":
		if len(args) != 1 {
			return nil, obxerr.New(obxerr.TypeError, "get expects exactly one index")
		}
		idx, ok := args[0].(Primitive)
		if !ok || idx.Kind() != KindInt {
			return nil, obxerr.New(obxerr.TypeError, "get expects an int index")
		}
		i := idx.Int()
		if i < 0 || i >= len(l.items) {
			return nil, obxerr.New(obxerr.Runtime, "index %d out of range for list of length %d", i, len(l.items))
		}
		return l.items[i], nil
	default:
		return nil, obxerr.New(obxerr.TypeError, "unknown list operation %q", opName)
	}
}
