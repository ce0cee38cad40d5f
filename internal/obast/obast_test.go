package obast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

func Test_Infix_reducesBothSidesBeforeExecuting(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()

	// (2 + 3) * x, with x bound to 4 in ctx.
	ctx.Declare("x", obrt.Int(4))
	expr := NewInfix(
		NewInfix(NewConst(obrt.Int(2)), "+", NewConst(obrt.Int(3))),
		"*",
		NewVariable("x"),
	)

	v, err := Reduce(expr, ctx)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(20, v.(obrt.Primitive).Int())
}

func Test_Variable_undefinedNameIsException(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()

	_, err := Reduce(NewVariable("missing"), ctx)
	assert.Error(err)
}

func Test_Ternary_selectsBranchByCondition(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()

	expr := NewTernary(
		NewConst(obrt.Bool(false)),
		NewConst(obrt.Int(1)),
		NewConst(obrt.Int(2)),
	)
	v, err := Reduce(expr, ctx)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(2, v.(obrt.Primitive).Int())
}

func Test_Assignment_declareVsSet(t *testing.T) {
	assert := assert.New(t)
	outer := NewContext()
	outer.Declare("n", obrt.Int(1))
	inner := outer.Child()

	// set (no Declare) should write through to the outer scope.
	_, err := Reduce(NewAssignment("n", NewConst(obrt.Int(9)), false), inner)
	if !assert.NoError(err) {
		return
	}
	v, _ := outer.Get("n")
	assert.Equal(9, v.(obrt.Primitive).Int())

	// declare shadows in the inner scope only.
	_, err = Reduce(NewAssignment("n", NewConst(obrt.Int(100)), true), inner)
	if !assert.NoError(err) {
		return
	}
	outerVal, _ := outer.Get("n")
	innerVal, _ := inner.Get("n")
	assert.Equal(9, outerVal.(obrt.Primitive).Int())
	assert.Equal(100, innerVal.(obrt.Primitive).Int())
}

func Test_Block_shortCircuitsOnException(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()

	block := NewBlock([]Node{
		NewAssignment("a", NewConst(obrt.Int(1)), true),
		NewVariable("does-not-exist"),
		NewAssignment("a", NewConst(obrt.Int(2)), true),
	}, obrt.Null)

	_, err := Reduce(block, ctx)
	assert.Error(err)

	v, _ := ctx.Get("a")
	assert.Equal(1, v.(obrt.Primitive).Int(), "statement after the exception must not run")
}

func Test_Block_emptyReducesToNull(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()

	v, err := Reduce(NewBlock(nil, obrt.Null), ctx)
	if !assert.NoError(err) {
		return
	}
	assert.True(v.Equal(obrt.Null))
}

func Test_Loop_countsDownToZero(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()
	ctx.Declare("n", obrt.Int(3))
	ctx.Declare("total", obrt.Int(0))

	loop := NewLoop(
		NewInfix(NewVariable("n"), ">", NewConst(obrt.Int(0))),
		NewBlock([]Node{
			NewAssignment("total", NewInfix(NewVariable("total"), "+", NewVariable("n")), false),
			NewAssignment("n", NewInfix(NewVariable("n"), "-", NewConst(obrt.Int(1))), false),
		}, obrt.Null),
	)

	_, err := Reduce(loop, ctx)
	if !assert.NoError(err) {
		return
	}
	total, _ := ctx.Get("total")
	assert.Equal(6, total.(obrt.Primitive).Int())
}

func Test_Return_fullResolveRaisesReturnException(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()

	_, err := Reduce(NewReturn(NewConst(obrt.Int(42)), true), ctx)
	if !assert.Error(err) {
		return
	}
	exc, ok := obxerr.As(err, obxerr.Return)
	if !assert.True(ok) {
		return
	}
	assert.Equal(42, exc.Payload.(obrt.Primitive).Int())
}

func Test_Pass_reducesToNull(t *testing.T) {
	assert := assert.New(t)
	v, err := Reduce(NewPass(obrt.Null), NewContext())
	if !assert.NoError(err) {
		return
	}
	assert.True(v.Equal(obrt.Null))
}

// sliceIterator is a tiny test-only obvalue.Iterator over a fixed slice, for
// exercising GeneratorNode without depending on obrt's iterable types.
type sliceIterator struct {
	values []obvalue.Value
	pos    int
}

func (s *sliceIterator) Next() (obvalue.Value, error) {
	if s.pos >= len(s.values) {
		return nil, obxerr.New(obxerr.Exhausted, "iterator exhausted")
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}

type iterableConst struct {
	obrt.Primitive
	iter *sliceIterator
}

func (c iterableConst) Iter() (obvalue.Iterator, error) { return c.iter, nil }

func Test_Generator_yieldsUntilExhausted(t *testing.T) {
	assert := assert.New(t)
	ctx := NewContext()

	src := iterableConst{
		Primitive: obrt.Null,
		iter: &sliceIterator{values: []obvalue.Value{obrt.Int(1), obrt.Int(2)}},
	}
	gen := NewGenerator(NewConst(src))

	first, err := gen.Eval(ctx)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(1, first.AsConst().Value.(obrt.Primitive).Int())

	second, err := gen.Eval(ctx)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(2, second.AsConst().Value.(obrt.Primitive).Int())

	_, err = gen.Eval(ctx)
	assert.Error(err)
}
