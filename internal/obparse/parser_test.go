package obparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/oblex"
	"github.com/obelix-lang/obelix/internal/obgrammar"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
)

// buildCountingGrammar builds spec.md §8 scenario 4's S -> 'a' S | epsilon,
// with an action on the 'a' terminal entry that increments a counter stored
// in the parser's cross-action variable map.
func buildCountingGrammar(t *testing.T) *obgrammar.Grammar {
	t.Helper()
	resolver := obrt.NewMapResolver()
	resolver.Register("count_a", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p := ctx.(*Parser)
		n := 0
		if v, ok := p.Get("count"); ok {
			n = v.(obrt.Primitive).Int()
		}
		p.Set("count", obrt.Int(n+1))
		return nil, nil
	})

	g := obgrammar.NewGrammar(resolver)
	s := g.Nonterminal("S")

	r := s.Rule()
	entry := r.Keyword("a")
	if err := entry.AddAction("count_a", nil); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	r.NonTerminalRef("S")

	s.Rule() // epsilon

	if err := g.Analyze(); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return g
}

// newLexerWithKeywords builds a lexer over src and registers every keyword
// the grammar knows about, mirroring how a real front end wires a grammar's
// keyword table into its lexer before parsing (spec.md §4.2's add_keyword).
func newLexerWithKeywords(src string, g *obgrammar.Grammar) *oblex.Lexer {
	lx := oblex.Create(strings.NewReader(src))
	lx.SetOption(oblex.IgnoreAllWhitespace, true)
	code := g.Keyword("a")
	lx.AddKeyword(code, "a")
	return lx
}

func Test_Parser_countsRepeatedTerminal(t *testing.T) {
	assert := assert.New(t)
	g := buildCountingGrammar(t)

	lx := newLexerWithKeywords("aa", g)
	p := New(g, lx)
	err := p.Parse()
	if !assert.NoError(err) {
		return
	}

	v, ok := p.Get("count")
	if !assert.True(ok) {
		return
	}
	assert.Equal(2, v.(obrt.Primitive).Int())
}

func Test_Parser_emptyInputAccepted(t *testing.T) {
	assert := assert.New(t)
	g := buildCountingGrammar(t)

	lx := oblex.Create(strings.NewReader(""))
	lx.SetOption(oblex.IgnoreAllWhitespace, true)

	p := New(g, lx)
	assert.NoError(p.Parse())
	_, ok := p.Get("count")
	assert.False(ok, "epsilon branch should never fire the counting action")
}

func Test_Parser_mismatchIsSyntaxError(t *testing.T) {
	assert := assert.New(t)
	g := buildCountingGrammar(t)

	lx := oblex.Create(strings.NewReader("b"))
	lx.SetOption(oblex.IgnoreAllWhitespace, true)

	p := New(g, lx)
	err := p.Parse()
	assert.Error(err)
}
