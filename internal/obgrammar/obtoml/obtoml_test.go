package obtoml

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obtoken"
)

const sampleGrammar = `
format = "obelix-grammar"

[options]
_case_sensitive = "true"

[[nonterminal]]
name = "Expr"

  [[nonterminal.rule]]
    [[nonterminal.rule.entry]]
    terminal = "Integer"

  [[nonterminal.rule]]
    [[nonterminal.rule.entry]]
    terminal = "("

    [[nonterminal.rule.entry]]
    nonterminal = "Expr"

    [[nonterminal.rule.entry]]
    terminal = ")"
`

func Test_Parse_buildsAnalyzedGrammar(t *testing.T) {
	assert := assert.New(t)
	resolver := obrt.NewMapResolver()

	g, err := Parse([]byte(sampleGrammar), resolver)
	if !assert.NoError(err) {
		return
	}

	expr := g.Lookup("Expr")
	if !assert.NotNil(expr) {
		return
	}
	rule, ok := expr.Predict(obtoken.Integer)
	assert.True(ok)
	assert.NotNil(rule)

	rule, ok = expr.Predict(obtoken.Code('('))
	assert.True(ok)
	assert.NotNil(rule)
}

func Test_Parse_rejectsWrongFormat(t *testing.T) {
	assert := assert.New(t)
	_, err := Parse([]byte(`format = "something-else"`), obrt.NewMapResolver())
	assert.Error(err)
}
