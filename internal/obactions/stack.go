package obactions

import (
	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obparse"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// registerStack wires spec.md §4.4's "Stack shaping" group: push, pop, dup,
// pushval, pushconst, pushval_from_stack, stash, unstash.
func (r *Registry) registerStack() {
	r.add("push", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		var data obvalue.Value
		if len(args) > 0 {
			data = args[0]
		}
		pushNode(p, obast.NewConst(data))
		return nil, nil
	})
	// pushconst/pushval push the same literal data argument as push; kept
	// as distinct standard-action names since grammars pick whichever
	// reads best for a given rule (a bare literal vs. "the value just
	// lexed"), not because the host behavior differs.
	r.alias("pushconst", "push")
	r.alias("pushval", "push")

	r.add("pop", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		_, err = popNode(p)
		return nil, err
	})

	r.add("dup", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		top, err := peekNode(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, top)
		return nil, nil
	})

	// pushval_from_stack validates that the top of the stack has already
	// reduced to a literal (as opposed to e.g. a partially-built
	// expression) and leaves it in place; grammars use it where a rule
	// optionally resolves a value earlier and just needs to confirm it's
	// ready before a later rule consumes it.
	r.add("pushval_from_stack", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		top, err := peekNode(p)
		if err != nil {
			return nil, err
		}
		if top.Kind() != obast.KindConst {
			return nil, obxerr.New(obxerr.InternalError, "pushval_from_stack: top of stack is not a resolved value")
		}
		return nil, nil
	})

	r.add("stash", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		n, err := popNode(p)
		if err != nil {
			return nil, err
		}
		s := stashSlice(p)
		*s = append(*s, n)
		return nil, nil
	})

	r.add("unstash", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		s := stashSlice(p)
		if len(*s) == 0 {
			return nil, obxerr.New(obxerr.InternalError, "unstash: nothing stashed")
		}
		n := (*s)[len(*s)-1]
		*s = (*s)[:len(*s)-1]
		pushNode(p, n)
		return nil, nil
	})
}

func stashSlice(p *obparse.Parser) *[]obast.Node {
	v, ok := p.Aux("stash")
	if !ok {
		s := []obast.Node{}
		p.SetAux("stash", &s)
		return &s
	}
	return v.(*[]obast.Node)
}
