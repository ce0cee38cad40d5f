package obactions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/oblex"
	"github.com/obelix-lang/obelix/internal/obgrammar"
	"github.com/obelix-lang/obelix/internal/obparse"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obtoken"
	"github.com/obelix-lang/obelix/internal/obvalue"
)

// buildSumGrammar builds S -> Integer Tail; Tail -> '+' Integer Tail |
// epsilon, wiring push_token onto every Integer terminal and infix_op onto
// the repeated one so the data stack folds left-to-right as each '+' is
// matched, mirroring spec.md §6 scenario "a repeated-terminal count" but
// over the standard action vocabulary instead of a single custom hook.
func buildSumGrammar(t *testing.T) *obgrammar.Grammar {
	t.Helper()
	g := obgrammar.NewGrammar(New())
	g.Nonterminal("S") // declared first so that S is the entrypoint

	tail := g.Nonterminal("Tail")
	r := tail.Rule()
	r.Keyword("+")
	intEntry := r.Terminal(obtoken.Integer)
	if err := intEntry.AddAction("push_token", nil); err != nil {
		t.Fatalf("AddAction push_token: %v", err)
	}
	if err := intEntry.AddAction("infix_op", obrt.String("+")); err != nil {
		t.Fatalf("AddAction infix_op: %v", err)
	}
	r.NonTerminalRef("Tail")
	tail.Rule() // epsilon

	s := g.Nonterminal("S")
	rs := s.Rule()
	first := rs.Terminal(obtoken.Integer)
	if err := first.AddAction("push_token", nil); err != nil {
		t.Fatalf("AddAction push_token: %v", err)
	}
	rs.NonTerminalRef("Tail")

	if err := g.Analyze(); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return g
}

func newSumLexer(src string, g *obgrammar.Grammar) *oblex.Lexer {
	lx := oblex.Create(strings.NewReader(src))
	lx.SetOption(oblex.IgnoreAllWhitespace, true)
	lx.AddKeyword(g.Keyword("+"), "+")
	return lx
}

// popReducedInt pops the top of p's data stack, reduces it to a fixed point
// against a fresh context, and returns its int value.
func popReducedInt(t *testing.T, p *obparse.Parser) int {
	t.Helper()
	v, err := p.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	nv, ok := v.(obast.NodeValue)
	if !ok {
		t.Fatalf("top of stack is not an obast.NodeValue: %T", v)
	}
	result, err := obast.Reduce(nv.N, obast.NewContext())
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	prim, ok := result.(obrt.Primitive)
	if !ok {
		t.Fatalf("reduced value is not a Primitive: %T", result)
	}
	return prim.Int()
}

func Test_InfixOp_foldsLeftToRightAcrossRepeatedTerminal(t *testing.T) {
	assert := assert.New(t)
	g := buildSumGrammar(t)
	lx := newSumLexer("1+2+3", g)

	p := obparse.New(g, lx)
	if !assert.NoError(p.Parse()) {
		return
	}

	assert.Equal(6, popReducedInt(t, p))
}

func Test_Stack_pushPopDup(t *testing.T) {
	assert := assert.New(t)
	r := New()

	g := obgrammar.NewGrammar(r)
	p := obparse.New(g, oblex.Create(strings.NewReader("")))

	pushFn, ok := r.Resolve("push")
	if !assert.True(ok) {
		return
	}
	if _, err := pushFn(p, []obvalue.Value{obrt.Int(7)}); !assert.NoError(err) {
		return
	}

	dupFn, _ := r.Resolve("dup")
	if _, err := dupFn(p, nil); !assert.NoError(err) {
		return
	}
	assert.Equal(2, p.DataStackLen())

	popFn, _ := r.Resolve("pop")
	if _, err := popFn(p, nil); !assert.NoError(err) {
		return
	}
	assert.Equal(1, p.DataStackLen())
}

// Test_IfElifElse_buildsNestedTernary exercises the condBuilder fold
// directly through the registry, since driving the full if/elif/else
// grammar shape would need a much larger fixture than the fold logic
// itself warrants.
func Test_IfElifElse_buildsNestedTernary(t *testing.T) {
	assert := assert.New(t)
	r := New()
	g := obgrammar.NewGrammar(r)
	p := obparse.New(g, oblex.Create(strings.NewReader("")))

	pushConst := func(v obvalue.Value) {
		fn, _ := r.Resolve("push")
		if _, err := fn(p, []obvalue.Value{v}); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	call := func(name string) {
		fn, ok := r.Resolve(name)
		if !assert.True(ok, name) {
			return
		}
		if _, err := fn(p, nil); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}

	// if false then 1 elif false then 3 else 2 end
	pushConst(obrt.Bool(false))
	call("if")
	pushConst(obrt.Int(1))
	pushConst(obrt.Bool(false))
	call("elif")
	pushConst(obrt.Int(3))
	call("else")
	pushConst(obrt.Int(2))
	call("end_conditional")

	assert.Equal(2, popReducedInt(t, p))
}
