package obactions

import (
	"strconv"

	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obparse"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// comprehensionBuilder accumulates a `for x in source [where cond] done
// body comprehension` across init/where/done/comprehension, desugared into
// a declare-accumulate-return Block: no AST node here models a collection
// literal directly, so the desugaring routes through the same Infix("append",
// ...) + Assignment shape an ordinary append expression would use.
type comprehensionBuilder struct {
	varName string
	source  obast.Node
	where   obast.Node
	body    obast.Node
}

func comprehensionStack(p *obparse.Parser) *[]*comprehensionBuilder {
	v, ok := p.Aux("comprehension_stack")
	if !ok {
		s := []*comprehensionBuilder{}
		p.SetAux("comprehension_stack", &s)
		return &s
	}
	return v.(*[]*comprehensionBuilder)
}

func topComprehensionBuilder(p *obparse.Parser) (*comprehensionBuilder, error) {
	cs := comprehensionStack(p)
	if len(*cs) == 0 {
		return nil, obxerr.New(obxerr.InternalError, "no comprehension in progress")
	}
	return (*cs)[len(*cs)-1], nil
}

func popComprehensionBuilder(p *obparse.Parser) (*comprehensionBuilder, error) {
	cs := comprehensionStack(p)
	if len(*cs) == 0 {
		return nil, obxerr.New(obxerr.InternalError, "no comprehension in progress")
	}
	b := (*cs)[len(*cs)-1]
	*cs = (*cs)[:len(*cs)-1]
	return b, nil
}

// registerFlow wires spec.md §4.4's "Scopes and flow" group (begin/
// end_context_block, throw_exception, leave, nop, assign, reduce,
// comprehension, where) plus the remaining "Structural" actions not already
// covered by the bookmark machinery in registerOperators (init, done,
// rollup_name, rollup_list, rollup_to).
func (r *Registry) registerFlow() {
	// begin_context_block/end_context_block bracket a nested statement
	// sequence the same way defer_bookmarked_block does for any other
	// bookmarked span; the new lexical scope itself is introduced at
	// evaluation time by whichever construct runs the resulting Block (a
	// function body, a loop body), not by the block node itself.
	r.alias("begin_context_block", "bookmark")
	r.alias("end_context_block", "defer_bookmarked_block")

	r.add("throw_exception", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := popNode(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewThrow(payload, obxerr.Runtime))
		return nil, nil
	})

	// leave behaves like throw_exception but raises the dedicated Exit
	// control-flow kind rather than an ordinary runtime exception value.
	r.add("leave", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := popNode(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewThrow(payload, obxerr.Exit))
		return nil, nil
	})

	r.add("nop", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		return nil, nil
	})

	r.add("assign", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		value, err := popNode(p)
		if err != nil {
			return nil, err
		}
		name, err := popConstString(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewAssignment(name, value, false))
		return nil, nil
	})

	// reduce marks an expression as wanting full resolution rather than a
	// single Eval step, the parse-time counterpart of ReturnNode.FullResolve:
	// it rewraps the top of the stack in a FunctionLiteral-less Block of one
	// statement so the evaluator's normal Reduce loop runs it to a fixed
	// point instead of the caller doing a single Eval.
	r.add("reduce", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		n, err := popNode(p)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewBlock([]obast.Node{n}, obrt.Null))
		return nil, nil
	})

	r.add("where", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		cond, err := popNode(p)
		if err != nil {
			return nil, err
		}
		b, err := topComprehensionBuilder(p)
		if err != nil {
			return nil, err
		}
		b.where = cond
		return nil, nil
	})

	r.add("init", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		source, err := popNode(p)
		if err != nil {
			return nil, err
		}
		varName, err := popConstString(p)
		if err != nil {
			return nil, err
		}
		cs := comprehensionStack(p)
		*cs = append(*cs, &comprehensionBuilder{varName: varName, source: source})
		return nil, nil
	})

	r.add("done", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		body, err := popNode(p)
		if err != nil {
			return nil, err
		}
		b, err := topComprehensionBuilder(p)
		if err != nil {
			return nil, err
		}
		b.body = body
		return nil, nil
	})

	r.add("comprehension", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		b, err := popComprehensionBuilder(p)
		if err != nil {
			return nil, err
		}

		cs := counterStack(p)
		if len(*cs) == 0 {
			*cs = append(*cs, 0)
		}
		(*cs)[len(*cs)-1]++
		accName := "__comp" + strconv.Itoa((*cs)[len(*cs)-1])

		declare := obast.NewAssignment(accName, obast.NewConst(obrt.NewList()), true)
		appendExpr := obast.NewInfix(obast.NewVariable(accName), "append", b.body)
		step := obast.Node(obast.NewAssignment(accName, appendExpr, false))
		if b.where != nil {
			step = obast.NewTernary(b.where, step, obast.NewPass(obrt.Bool(false)))
		}
		loop := obast.NewForLoop(b.varName, obast.NewGenerator(b.source), step, obrt.Null)
		pushNode(p, obast.NewBlock([]obast.Node{declare, loop, obast.NewVariable(accName)}, obrt.Null))
		return nil, nil
	})

	r.add("rollup_name", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		parts, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		name := ""
		for _, part := range parts {
			if part.Kind() != obast.KindConst {
				return nil, obxerr.New(obxerr.InternalError, "rollup_name: component is not a literal")
			}
			name += part.AsConst().Value.String()
		}
		pushNode(p, obast.NewConst(obrt.String(name)))
		return nil, nil
	})

	r.add("rollup_list", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		depth, err := popBookmark(p)
		if err != nil {
			return nil, err
		}
		items, err := popNodesSince(p, depth)
		if err != nil {
			return nil, err
		}
		values := make([]obvalue.Value, len(items))
		for i, item := range items {
			if item.Kind() != obast.KindConst {
				return nil, obxerr.New(obxerr.InternalError, "rollup_list: element is not a literal")
			}
			values[i] = item.AsConst().Value
		}
		pushNode(p, obast.NewConst(obrt.NewList(values...)))
		return nil, nil
	})

	r.add("rollup_to", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		marker := '"'
		if len(args) > 0 && len(args[0].String()) > 0 {
			marker = []rune(args[0].String())[0]
		}
		tok := p.Lexer().RollupTo(marker)
		v, err := obrt.FromToken(tok.Code.String(), tok.Text)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewConst(v))
		return nil, nil
	})
}

