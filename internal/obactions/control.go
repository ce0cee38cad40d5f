package obactions

import (
	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obparse"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// condClause is one arm of an if/elif chain (or, reused below, one arm of a
// case/test chain): a condition and the statement it guards.
type condClause struct {
	cond, then obast.Node
}

// condBuilder accumulates an if/elif/.../else chain (or a case/test/.../
// rollup_cases chain) across several action firings, finalized into a
// right-nested Ternary by foldCond.
type condBuilder struct {
	clauses      []condClause
	elseNode     obast.Node
	awaitingElse bool
	// forCase marks a builder opened by case_prolog/case rather than if, so
	// case can tell whether a later firing should open a new chain or
	// extend the current one (case has no separate "first case" action).
	forCase bool
}

func foldCond(b *condBuilder) obast.Node {
	result := b.elseNode
	if result == nil {
		result = obast.NewPass(obrt.Null)
	}
	for i := len(b.clauses) - 1; i >= 0; i-- {
		result = obast.NewTernary(b.clauses[i].cond, b.clauses[i].then, result)
	}
	return result
}

func condStack(p *obparse.Parser) *[]*condBuilder {
	v, ok := p.Aux("cond_stack")
	if !ok {
		s := []*condBuilder{}
		p.SetAux("cond_stack", &s)
		return &s
	}
	return v.(*[]*condBuilder)
}

func pushCondBuilder(p *obparse.Parser, b *condBuilder) {
	cs := condStack(p)
	*cs = append(*cs, b)
}

func topCondBuilder(p *obparse.Parser) (*condBuilder, error) {
	cs := condStack(p)
	if len(*cs) == 0 {
		return nil, obxerr.New(obxerr.InternalError, "no conditional in progress")
	}
	return (*cs)[len(*cs)-1], nil
}

func popCondBuilder(p *obparse.Parser) (*condBuilder, error) {
	cs := condStack(p)
	if len(*cs) == 0 {
		return nil, obxerr.New(obxerr.InternalError, "no conditional in progress")
	}
	b := (*cs)[len(*cs)-1]
	*cs = (*cs)[:len(*cs)-1]
	return b, nil
}

// loopBuilder accumulates a while- or for-loop's pieces across start_loop/
// for and the matching end_loop.
type loopBuilder struct {
	cond     obast.Node
	isFor    bool
	varName  string
	iterExpr obast.Node
}

func loopStack(p *obparse.Parser) *[]*loopBuilder {
	v, ok := p.Aux("loop_stack")
	if !ok {
		s := []*loopBuilder{}
		p.SetAux("loop_stack", &s)
		return &s
	}
	return v.(*[]*loopBuilder)
}

func popLoopBuilder(p *obparse.Parser) (*loopBuilder, error) {
	ls := loopStack(p)
	if len(*ls) == 0 {
		return nil, obxerr.New(obxerr.InternalError, "no loop in progress")
	}
	b := (*ls)[len(*ls)-1]
	*ls = (*ls)[:len(*ls)-1]
	return b, nil
}

// registerControl wires spec.md §4.4's "Control-flow markers" group:
// if/elif/else/end_conditional build a right-nested Ternary chain;
// start_loop/for/end_loop/break/continue build a LoopNode; case/case_prolog/
// rollup_cases/test build an equality-chain Ternary over a scrutinee,
// reusing the same condBuilder/foldCond machinery as if/elif/else.
func (r *Registry) registerControl() {
	r.add("if", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cond, err := popNode(p)
		if err != nil {
			return nil, err
		}
		pushCondBuilder(p, &condBuilder{clauses: []condClause{{cond: cond}}})
		return nil, nil
	})

	r.add("elif", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cond, err := popNode(p)
		if err != nil {
			return nil, err
		}
		then, err := popNode(p)
		if err != nil {
			return nil, err
		}
		b, err := topCondBuilder(p)
		if err != nil {
			return nil, err
		}
		b.clauses[len(b.clauses)-1].then = then
		b.clauses = append(b.clauses, condClause{cond: cond})
		return nil, nil
	})

	r.add("else", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		then, err := popNode(p)
		if err != nil {
			return nil, err
		}
		b, err := topCondBuilder(p)
		if err != nil {
			return nil, err
		}
		b.clauses[len(b.clauses)-1].then = then
		b.awaitingElse = true
		return nil, nil
	})

	r.add("end_conditional", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		last, err := popNode(p)
		if err != nil {
			return nil, err
		}
		b, err := popCondBuilder(p)
		if err != nil {
			return nil, err
		}
		if b.awaitingElse {
			b.elseNode = last
		} else {
			b.clauses[len(b.clauses)-1].then = last
		}
		pushNode(p, foldCond(b))
		return nil, nil
	})

	r.add("start_loop", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cond, err := popNode(p)
		if err != nil {
			return nil, err
		}
		ls := loopStack(p)
		*ls = append(*ls, &loopBuilder{cond: cond})
		return nil, nil
	})

	r.add("for", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		iterExpr, err := popNode(p)
		if err != nil {
			return nil, err
		}
		varName, err := popConstString(p)
		if err != nil {
			return nil, err
		}
		ls := loopStack(p)
		*ls = append(*ls, &loopBuilder{isFor: true, varName: varName, iterExpr: iterExpr})
		return nil, nil
	})

	r.add("end_loop", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		body, err := popNode(p)
		if err != nil {
			return nil, err
		}
		b, err := popLoopBuilder(p)
		if err != nil {
			return nil, err
		}
		if b.isFor {
			pushNode(p, obast.NewForLoop(b.varName, obast.NewGenerator(b.iterExpr), body, obrt.Null))
		} else {
			pushNode(p, obast.NewLoop(b.cond, body))
		}
		return nil, nil
	})

	r.add("break", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewSignal(obxerr.Break))
		return nil, nil
	})

	r.add("continue", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewSignal(obxerr.Continue))
		return nil, nil
	})

	r.registerCase()
}

// registerCase wires case_prolog/test/case/rollup_cases: a switch-style
// construct desugared into the same right-nested Ternary shape if/elif/
// else produces, testing each case's label for equality against one
// scrutinee expression evaluated once up front.
func (r *Registry) registerCase() {
	r.add("case_prolog", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		scrutinee, err := popNode(p)
		if err != nil {
			return nil, err
		}
		ss := scrutineeStack(p)
		*ss = append(*ss, scrutinee)
		return nil, nil
	})

	r.add("test", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		candidate, err := popNode(p)
		if err != nil {
			return nil, err
		}
		ss := scrutineeStack(p)
		if len(*ss) == 0 {
			return nil, obxerr.New(obxerr.InternalError, "test: no case_prolog in progress")
		}
		scrutinee := (*ss)[len(*ss)-1]
		pushNode(p, obast.NewInfix(scrutinee, "==", candidate))
		return nil, nil
	})

	// case behaves exactly like if the first time it fires for a given
	// case_prolog (opening the chain on the equality cond test just
	// pushed) and like elif every time after (closing the previous
	// clause's body and opening the next).
	r.add("case", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cs := condStack(p)
		if len(*cs) == 0 || !(*cs)[len(*cs)-1].forCase {
			cond, err := popNode(p)
			if err != nil {
				return nil, err
			}
			pushCondBuilder(p, &condBuilder{clauses: []condClause{{cond: cond}}, forCase: true})
			return nil, nil
		}
		return r.fns["elif"](ctx, args)
	})

	r.add("rollup_cases", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		last, err := popNode(p)
		if err != nil {
			return nil, err
		}
		b, err := popCondBuilder(p)
		if err != nil {
			return nil, err
		}
		b.clauses[len(b.clauses)-1].then = last
		pushNode(p, foldCond(b))

		ss := scrutineeStack(p)
		if len(*ss) > 0 {
			*ss = (*ss)[:len(*ss)-1]
		}
		return nil, nil
	})
}

func scrutineeStack(p *obparse.Parser) *[]obast.Node {
	v, ok := p.Aux("case_scrutinee")
	if !ok {
		s := []obast.Node{}
		p.SetAux("case_scrutinee", &s)
		return &s
	}
	return v.(*[]obast.Node)
}
