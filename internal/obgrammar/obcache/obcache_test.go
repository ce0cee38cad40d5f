package obcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/obgrammar"
	"github.com/obelix-lang/obelix/internal/obtoken"
)

func buildSmallGrammar(t *testing.T) *obgrammar.Grammar {
	t.Helper()
	g := obgrammar.NewGrammar(nil)
	s := g.Nonterminal("S")
	r := s.Rule()
	r.Terminal(obtoken.Code('('))
	r.NonTerminalRef("S")
	r.Terminal(obtoken.Code(')'))
	s.Rule() // epsilon

	if err := g.Analyze(); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return g
}

func Test_SaveLoad_roundTrip(t *testing.T) {
	assert := assert.New(t)
	g := buildSmallGrammar(t)
	path := filepath.Join(t.TempDir(), "grammar.cache")
	hash := SourceHash([]byte("S -> ( S ) | epsilon"))

	assert.NoError(Save(path, hash, g))

	g2 := buildSmallGrammar(t)
	applied, err := Load(path, hash, g2)
	if !assert.NoError(err) {
		return
	}
	assert.True(applied)

	s := g2.Lookup("S")
	rule, ok := s.Predict(obtoken.Code('('))
	assert.True(ok)
	assert.NotNil(rule)
}

func Test_Load_hashMismatchSkipsApply(t *testing.T) {
	assert := assert.New(t)
	g := buildSmallGrammar(t)
	path := filepath.Join(t.TempDir(), "grammar.cache")

	assert.NoError(Save(path, SourceHash([]byte("v1")), g))

	g2 := buildSmallGrammar(t)
	applied, err := Load(path, SourceHash([]byte("v2")), g2)
	assert.NoError(err)
	assert.False(applied)
}

func Test_Load_missingFile(t *testing.T) {
	assert := assert.New(t)
	g := buildSmallGrammar(t)
	applied, err := Load(filepath.Join(t.TempDir(), "missing.cache"), "anyhash", g)
	assert.NoError(err)
	assert.False(applied)
}
