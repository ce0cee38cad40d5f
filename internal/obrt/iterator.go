package obrt

import (
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// stringIterator iterates a string's runes as one-character strings, giving
// a usable default for `for c in "abc"`-style source.
type stringIterator struct {
	runes []rune
	pos   int
}

func newStringIterator(s string) *stringIterator {
	return &stringIterator{runes: []rune(s)}
}

func (it *stringIterator) Next() (obvalue.Value, error) {
	if it.pos >= len(it.runes) {
		return nil, obxerr.New(obxerr.Exhausted, "string iterator exhausted")
	}
	r := it.runes[it.pos]
	it.pos++
	return String(string(r)), nil
}

// sliceIterator iterates a List's elements in order.
type sliceIterator struct {
	items []obvalue.Value
	pos   int
}

func newSliceIterator(items []obvalue.Value) *sliceIterator {
	return &sliceIterator{items: items}
}

func (it *sliceIterator) Next() (obvalue.Value, error) {
	if it.pos >= len(it.items) {
		return nil, obxerr.New(obxerr.Exhausted, "list iterator exhausted")
	}
	v := it.items[it.pos]
	it.pos++
	return v, nil
}
