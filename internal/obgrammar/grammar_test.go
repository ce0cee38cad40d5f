package obgrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/obtoken"
	"github.com/obelix-lang/obelix/internal/obvalue"
)

// buildExprGrammar constructs the textbook left-factored expression grammar
//
//	Expr   -> Term ExprRest
//	ExprRest -> "+" Term ExprRest | ε
//	Term   -> Factor TermRest
//	TermRest -> "*" Factor TermRest | ε
//	Factor -> "(" Expr ")" | Integer
//
// used throughout to exercise FIRST/FOLLOW/LL(1)/parse-table construction.
func buildExprGrammar(t *testing.T) *Grammar {
	t.Helper()
	g := NewGrammar(nil)

	expr := g.Nonterminal("Expr")
	exprRest := g.Nonterminal("ExprRest")
	term := g.Nonterminal("Term")
	termRest := g.Nonterminal("TermRest")
	factor := g.Nonterminal("Factor")

	expr.Rule().NonTerminalRef("Term").owner.NonTerminalRef("ExprRest")

	r := exprRest.Rule()
	r.Terminal(obtoken.Code('+'))
	r.NonTerminalRef("Term")
	r.NonTerminalRef("ExprRest")
	exprRest.Rule() // epsilon

	r = term.Rule()
	r.NonTerminalRef("Factor")
	r.NonTerminalRef("TermRest")

	r = termRest.Rule()
	r.Terminal(obtoken.Code('*'))
	r.NonTerminalRef("Factor")
	r.NonTerminalRef("TermRest")
	termRest.Rule() // epsilon

	r = factor.Rule()
	r.Terminal(obtoken.Code('('))
	r.NonTerminalRef("Expr")
	r.Terminal(obtoken.Code(')'))
	factor.Rule().Terminal(obtoken.Integer)

	return g
}

func Test_Grammar_Analyze_expressionGrammar(t *testing.T) {
	assert := assert.New(t)
	g := buildExprGrammar(t)

	err := g.Analyze()
	if !assert.NoError(err) {
		return
	}

	expr := g.Lookup("Expr")
	assert.ElementsMatch([]obtoken.Code{obtoken.Code('('), obtoken.Integer}, expr.First())

	exprRest := g.Lookup("ExprRest")
	assert.ElementsMatch([]obtoken.Code{obtoken.Code('+'), obtoken.Empty}, keysWithEpsilon(exprRest))
	assert.ElementsMatch([]obtoken.Code{obtoken.End, obtoken.Code(')')}, exprRest.Follow())

	factor := g.Lookup("Factor")
	assert.ElementsMatch([]obtoken.Code{obtoken.Code('('), obtoken.Integer}, factor.First())

	entrypoint := g.Entrypoint()
	assert.Equal("Expr", entrypoint.Name)

	rule, ok := expr.Predict(obtoken.Integer)
	assert.True(ok)
	assert.NotNil(rule)

	_, ok = exprRest.Predict(obtoken.End)
	assert.True(ok, "nullable rule should be selected on a FOLLOW token")
}

// keysWithEpsilon returns a nonterminal's FIRST set plus one Empty marker
// for each of its nullable rules, to assert both halves of a nullable
// nonterminal's FIRST in one ElementsMatch call.
func keysWithEpsilon(nt *Nonterminal) []obtoken.Code {
	out := append([]obtoken.Code{}, nt.First()...)
	for _, r := range nt.Rules {
		if r.nullable {
			out = append(out, obtoken.Empty)
		}
	}
	return out
}

func Test_Grammar_Analyze_rejectsAmbiguousGrammar(t *testing.T) {
	assert := assert.New(t)
	g := NewGrammar(nil)

	s := g.Nonterminal("S")
	r1 := s.Rule()
	r1.Terminal(obtoken.Integer)
	r2 := s.Rule()
	r2.Terminal(obtoken.Integer)

	err := g.Analyze()
	assert.Error(err, "two rules sharing a FIRST token must be rejected as non-LL(1)")
}

func Test_Grammar_Keyword_stableAndCollisionFree(t *testing.T) {
	assert := assert.New(t)
	g := NewGrammar(nil)

	c1 := g.Keyword("while")
	c2 := g.Keyword("while")
	c3 := g.Keyword("format")

	assert.Equal(c1, c2)
	assert.NotEqual(c1, c3)
	assert.True(c1.IsKeyword())
	assert.True(c3.IsKeyword())

	text, ok := g.KeywordText(c1)
	assert.True(ok)
	assert.Equal("while", text)
}

func Test_Grammar_Resolve_prefixOrder(t *testing.T) {
	assert := assert.New(t)
	resolver := newStubResolver()
	resolver.register("parser_foo")
	g := NewGrammar(resolver)
	g.FunctionPrefix = "obelix_"

	fn, err := g.Resolve("foo")
	if assert.NoError(err) {
		assert.NotNil(fn)
	}

	_, err = g.Resolve("bar")
	assert.Error(err)
}

type stubResolver struct {
	names map[string]bool
}

func newStubResolver() *stubResolver { return &stubResolver{names: make(map[string]bool)} }

func (s *stubResolver) register(name string) { s.names[name] = true }

func (s *stubResolver) Resolve(name string) (obvalue.Function, bool) {
	if s.names[name] {
		return func(ctx any, args []obvalue.Value) (obvalue.Value, error) { return nil, nil }, true
	}
	return nil, false
}
