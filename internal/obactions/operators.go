package obactions

import (
	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
)

// registerOperators wires spec.md §4.4's "Operators" group (infix_op,
// call_op, deref, deref_function) plus the "Structural" bookmark actions
// (bookmark, instruction_bookmark, discard_instruction_bookmark,
// defer_bookmarked_block) that call_op and friends share: a grammar opens a
// bookmark before an argument/statement list and the matching action
// collects everything pushed since.
func (r *Registry) registerOperators() {
	r.add("infix_op", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		right, err := popNode(p)
		if err != nil {
			return nil, err
		}
		left, err := popNode(p)
		if err != nil {
			return nil, err
		}
		op := p.LastToken().Text
		if len(args) > 0 {
			op = args[0].String()
		}
		pushNode(p, obast.NewInfix(left, op, right))
		return nil, nil
	})

	r.add("call_op", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		argNodes, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		fn, err := popNode(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewCall(fn, argNodes))
		return nil, nil
	})

	r.add("deref", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		name, err := popNode(p)
		if err != nil {
			return nil, err
		}
		base, err := popNode(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewInfix(base, ".", name))
		return nil, nil
	})

	r.add("deref_function", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		argNodes, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		name, err := popNode(p)
		if err != nil {
			return nil, err
		}
		base, err := popNode(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewCall(obast.NewInfix(base, ".", name), argNodes))
		return nil, nil
	})

	r.add("bookmark", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		pushBookmark(p)
		return nil, nil
	})
	// instruction_bookmark marks a position in an eventual statement
	// sequence rather than an argument list, but the bookkeeping a bracket
	// marker needs is identical either way.
	r.alias("instruction_bookmark", "bookmark")

	r.add("discard_instruction_bookmark", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		_, err = popBookmark(p)
		return nil, err
	})

	r.add("defer_bookmarked_block", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		statements, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewBlock(statements, obrt.Null))
		return nil, nil
	})
}
