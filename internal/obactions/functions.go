package obactions

import (
	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obparse"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// funcBuilder accumulates a function or constructor definition across
// setup_function/init_function/start_function/end_function (or the
// constructor-flavored equivalents), finalized into a FunctionLiteralNode.
type funcBuilder struct {
	name        string
	params      []string
	isCtor      bool
	baseCalls   []obast.Node
}

func funcStack(p *obparse.Parser) *[]*funcBuilder {
	v, ok := p.Aux("func_stack")
	if !ok {
		s := []*funcBuilder{}
		p.SetAux("func_stack", &s)
		return &s
	}
	return v.(*[]*funcBuilder)
}

func topFuncBuilder(p *obparse.Parser) (*funcBuilder, error) {
	fs := funcStack(p)
	if len(*fs) == 0 {
		return nil, obxerr.New(obxerr.InternalError, "no function definition in progress")
	}
	return (*fs)[len(*fs)-1], nil
}

func popFuncBuilder(p *obparse.Parser) (*funcBuilder, error) {
	fs := funcStack(p)
	if len(*fs) == 0 {
		return nil, obxerr.New(obxerr.InternalError, "no function definition in progress")
	}
	b := (*fs)[len(*fs)-1]
	*fs = (*fs)[:len(*fs)-1]
	return b, nil
}

// registerFunctions wires spec.md §4.4's "Functions/objects" group:
// setup_function/init_function/start_function/end_function build a single
// FunctionLiteralNode across a rule's span the same way condBuilder folds
// an if/elif/else chain; setup_constructor/baseclass_constructors/
// end_constructors are the same shape with base-class super-calls spliced
// into the body; native_function stands a name in for a body supplied
// outside the grammar; new_counter/discard_counter/incr back the small
// synthetic-name counters a grammar's desugaring needs (e.g. anonymous
// parameter names).
func (r *Registry) registerFunctions() {
	r.add("setup_function", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		name, err := popConstString(p)
		if err != nil {
			return nil, err
		}
		fs := funcStack(p)
		*fs = append(*fs, &funcBuilder{name: name})
		pushBookmark(p)
		return nil, nil
	})

	r.add("init_function", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		paramNodes, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		b, err := topFuncBuilder(p)
		if err != nil {
			return nil, err
		}
		for _, n := range paramNodes {
			if n.Kind() != obast.KindConst {
				return nil, obxerr.New(obxerr.InternalError, "init_function: parameter name is not a literal")
			}
			b.params = append(b.params, n.AsConst().Value.String())
		}
		return nil, nil
	})

	r.add("setup_constructor", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		name, err := popConstString(p)
		if err != nil {
			return nil, err
		}
		fs := funcStack(p)
		*fs = append(*fs, &funcBuilder{name: name, isCtor: true})
		pushBookmark(p)
		return nil, nil
	})

	r.add("baseclass_constructors", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		calls, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		b, err := topFuncBuilder(p)
		if err != nil {
			return nil, err
		}
		b.baseCalls = calls
		pushBookmark(p)
		return nil, nil
	})

	r.add("end_constructors", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		return r.fns["end_function"](ctx, args)
	})

	r.add("start_function", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		pushBookmark(p)
		return nil, nil
	})

	r.add("end_function", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		bodyStatements, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		b, err := popFuncBuilder(p)
		if err != nil {
			return nil, err
		}
		statements := append(append([]obast.Node{}, b.baseCalls...), bodyStatements...)
		body := obast.NewBlock(statements, obrt.Null)
		pushNode(p, obast.NewFunctionLiteral(b.name, b.params, body))
		return nil, nil
	})

	// native_function stands a closure in for a function whose body is
	// supplied by the embedding host rather than the grammar; until a host
	// native registry is wired in, the closure reports clearly instead of
	// silently returning null.
	r.add("native_function", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		name, err := popConstString(p)
		if err != nil {
			return nil, err
		}
		stub := func(_ any, _ []obvalue.Value) (obvalue.Value, error) {
			return nil, obxerr.New(obxerr.InternalError, "native function %q has no registered implementation", name)
		}
		pushNode(p, obast.NewConst(obrt.NewClosure(name, stub, nil)))
		return nil, nil
	})

	r.alias("func_call", "call_op")

	r.add("new_counter", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cs := counterStack(p)
		*cs = append(*cs, 0)
		return nil, nil
	})

	r.add("discard_counter", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cs := counterStack(p)
		if len(*cs) == 0 {
			return nil, obxerr.New(obxerr.InternalError, "discard_counter: no counter in progress")
		}
		*cs = (*cs)[:len(*cs)-1]
		return nil, nil
	})

	// incr advances the innermost counter and pushes its new value as a
	// literal, for grammars synthesizing sequential names (e.g. "_p0",
	// "_p1", ...) from it.
	r.add("incr", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cs := counterStack(p)
		if len(*cs) == 0 {
			return nil, obxerr.New(obxerr.InternalError, "incr: no counter in progress")
		}
		(*cs)[len(*cs)-1]++
		pushNode(p, obast.NewConst(obrt.Int((*cs)[len(*cs)-1])))
		return nil, nil
	})
}

func counterStack(p *obparse.Parser) *[]int {
	v, ok := p.Aux("counters")
	if !ok {
		s := []int{}
		p.SetAux("counters", &s)
		return &s
	}
	return v.(*[]int)
}
