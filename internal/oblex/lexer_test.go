package oblex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/obtoken"
)

type expectedToken struct {
	code obtoken.Code
	text string
}

func collectTokens(lx *Lexer) []expectedToken {
	var got []expectedToken
	for {
		tok := lx.NextToken()
		if tok.Code == obtoken.Exhausted {
			break
		}
		got = append(got, expectedToken{code: tok.Code, text: tok.Text})
	}
	return got
}

func Test_Lexer_basicTokens(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		options map[Option]any
		expect  []expectedToken
	}{
		{
			name:  "identifier and integer",
			input: "abc 123",
			options: map[Option]any{
				IgnoreAllWhitespace: true,
			},
			expect: []expectedToken{
				{obtoken.Identifier, "abc"},
				{obtoken.Integer, "123"},
				{obtoken.End, ""},
			},
		},
		{
			name:  "hex number plus integer",
			input: "0x1F + 2",
			options: map[Option]any{
				IgnoreAllWhitespace: true,
			},
			expect: []expectedToken{
				{obtoken.HexNumber, "0x1F"},
				{obtoken.Code('+'), "+"},
				{obtoken.Integer, "2"},
				{obtoken.End, ""},
			},
		},
		{
			name:  "block comment is discarded",
			input: "/* comment */ x",
			options: map[Option]any{
				IgnoreAllWhitespace: true,
			},
			expect: []expectedToken{
				{obtoken.Identifier, "x"},
				{obtoken.End, ""},
			},
		},
		{
			name:  "line comment is discarded",
			input: "x // trailing\ny",
			options: map[Option]any{
				IgnoreAllWhitespace: true,
			},
			expect: []expectedToken{
				{obtoken.Identifier, "x"},
				{obtoken.Identifier, "y"},
				{obtoken.End, ""},
			},
		},
		{
			name:  "empty input yields only End",
			input: "",
			expect: []expectedToken{
				{obtoken.End, ""},
			},
		},
		{
			name:  "whitespace only with IgnoreAllWhitespace yields only End",
			input: "   \n\t  ",
			options: map[Option]any{
				IgnoreAllWhitespace: true,
			},
			expect: []expectedToken{
				{obtoken.End, ""},
			},
		},
		{
			name:  "quoted string with escapes",
			input: `"line1\nline2"`,
			expect: []expectedToken{
				{obtoken.DQuoted, "line1\nline2"},
				{obtoken.End, ""},
			},
		},
		{
			name:  "float with exponent",
			input: "3.14e+10",
			expect: []expectedToken{
				{obtoken.Float, "3.14e+10"},
				{obtoken.End, ""},
			},
		},
		{
			name:  "leading zeroes are stripped",
			input: "007",
			expect: []expectedToken{
				{obtoken.Integer, "7"},
				{obtoken.End, ""},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			lx := Create(strings.NewReader(tc.input))
			for opt, val := range tc.options {
				lx.SetOption(opt, val)
			}
			got := collectTokens(lx)
			if !assert.Len(got, len(tc.expect)) {
				return
			}
			for i, exp := range tc.expect {
				assert.Equalf(exp.code, got[i].code, "token %d code", i)
				assert.Equalf(exp.text, got[i].text, "token %d text", i)
			}
		})
	}
}

func Test_Lexer_endThenExhausted(t *testing.T) {
	assert := assert.New(t)
	lx := Create(strings.NewReader(""))

	first := lx.NextToken()
	assert.Equal(obtoken.End, first.Code)

	second := lx.NextToken()
	assert.Equal(obtoken.Exhausted, second.Code)

	third := lx.NextToken()
	assert.Equal(obtoken.Exhausted, third.Code)
}

func Test_Lexer_keywords(t *testing.T) {
	assert := assert.New(t)
	lx := Create(strings.NewReader("while format formatx"))
	lx.SetOption(IgnoreAllWhitespace, true)

	const whileCode obtoken.Code = 210
	const formatCode obtoken.Code = 211
	lx.AddKeyword(whileCode, "while")
	lx.AddKeyword(formatCode, "format")

	got := collectTokens(lx)
	want := []expectedToken{
		{whileCode, "while"},
		{formatCode, "format"},
		{obtoken.Identifier, "formatx"},
		{obtoken.End, ""},
	}
	if !assert.Len(got, len(want)) {
		return
	}
	for i, exp := range want {
		assert.Equalf(exp.code, got[i].code, "token %d code", i)
		assert.Equalf(exp.text, got[i].text, "token %d text", i)
	}
}

func Test_Lexer_symbolKeywordsMaximalMunch(t *testing.T) {
	assert := assert.New(t)
	lx := Create(strings.NewReader("a == b != c = d"))
	lx.SetOption(IgnoreAllWhitespace, true)

	const eqCode obtoken.Code = 220
	const neCode obtoken.Code = 221
	lx.AddKeyword(eqCode, "==")
	lx.AddKeyword(neCode, "!=")

	got := collectTokens(lx)
	want := []expectedToken{
		{obtoken.Identifier, "a"},
		{eqCode, "=="},
		{obtoken.Identifier, "b"},
		{neCode, "!="},
		{obtoken.Identifier, "c"},
		{obtoken.Code('='), "="},
		{obtoken.Identifier, "d"},
		{obtoken.End, ""},
	}
	if !assert.Len(got, len(want)) {
		return
	}
	for i, exp := range want {
		assert.Equalf(exp.code, got[i].code, "token %d code", i)
		assert.Equalf(exp.text, got[i].text, "token %d text", i)
	}
}

func Test_Lexer_unterminatedBlockCommentIsError(t *testing.T) {
	assert := assert.New(t)
	lx := Create(strings.NewReader("/* never closed"))
	tok := lx.NextToken()
	assert.Equal(obtoken.Error, tok.Code)
}

func Test_Lexer_unterminatedStringIsError(t *testing.T) {
	assert := assert.New(t)
	lx := Create(strings.NewReader(`"never closed`))
	tok := lx.NextToken()
	assert.Equal(obtoken.Error, tok.Code)
}

func Test_Lexer_onNewLineHookFires(t *testing.T) {
	assert := assert.New(t)
	var lines []int
	lx := Create(strings.NewReader("a\nb\nc"))
	lx.SetOption(IgnoreAllWhitespace, true)
	lx.SetOption(OnNewLine, NewLineFunc(func(_ *Lexer, newLine int) {
		lines = append(lines, newLine)
	}))

	collectTokens(lx)
	assert.Equal([]int{1, 2, 3}, lines)
}
