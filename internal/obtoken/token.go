// Package obtoken defines the lexeme record produced by oblex and consumed
// by obgrammar/obparse: a (code, text, line, column) tuple.
package obtoken

import "fmt"

// Code identifies the class of a Token. Codes below 200 are built in to the
// lexer; codes 200 and above are keyword codes, assigned by hashing the
// keyword text at grammar-build time so that equal keyword text always
// shares a code (see obgrammar.Grammar.Keyword). Single-character
// punctuation is coded as the ASCII codepoint of the character itself, so
// '+' is Code('+') and so on. The named built-ins below that fall inside the
// printable ASCII range either reuse a letter the lexer never emits as
// punctuation (Identifier, Integer, Float, HexNumber) or equal the code of
// the character they stand for (the three quotes, Hash, Slash).
type Code int

const (
	Identifier Code = 105
	Integer    Code = 100
	HexNumber  Code = 120
	Float      Code = 102
	SQuoted    Code = 39
	DQuoted    Code = 34
	BackQuoted Code = 96
	RawString  Code = -7 // no ASCII home either; sits in the private band below
	Hash       Code = 35
	Slash      Code = 47

	// NewLine, Whitespace, Error, End, Exhausted and Empty have no natural
	// ASCII/ordinal home, so they're placed in a small private band below
	// the printable-ASCII punctuation codes lexers otherwise rely on.
	NewLine    Code = -1
	Whitespace Code = -2
	Error      Code = -3
	End        Code = -4
	Exhausted  Code = -5
	Empty      Code = -6
)

// KeywordBase is the first code handed out to keywords. Hashing begins here
// so that keyword codes never collide with the built-ins above, all of
// which are either negative or below 200, or with single-character
// punctuation codes, all of which are positive ASCII codepoints and none of
// which reach 200 (the highest printable ASCII codepoint is 126).
const KeywordBase Code = 200

// IsKeyword reports whether c is in the keyword-code range.
func (c Code) IsKeyword() bool {
	return c >= KeywordBase
}

// IsBuiltin reports whether c lies below the keyword range. Single-character
// punctuation codes lie there too, so it returns true for them as well.
func (c Code) IsBuiltin() bool {
	return c < 200 && c >= 0 || c < 0
}

func (c Code) String() string {
	switch c {
	case Identifier:
		return "Identifier"
	case Integer:
		return "Integer"
	case HexNumber:
		return "HexNumber"
	case Float:
		return "Float"
	case SQuoted:
		return "SQuoted"
	case DQuoted:
		return "DQuoted"
	case BackQuoted:
		return "BackQuoted"
	case RawString:
		return "RawString"
	case NewLine:
		return "NewLine"
	case Whitespace:
		return "Whitespace"
	case Error:
		return "Error"
	case End:
		return "End"
	case Exhausted:
		return "Exhausted"
	case Empty:
		return "Empty"
	}
	if c >= 32 && c < 127 {
		return fmt.Sprintf("%q", rune(c))
	}
	return fmt.Sprintf("Keyword(%d)", int(c))
}

// Token is a lexeme read from source text along with the Code it was lexed
// as and its position. Tokens are owned by the caller of Lexer.NextToken;
// the lexer keeps no copy of a token once it has returned it.
type Token struct {
	Code   Code
	Text   string
	Line   int
	Column int
}

func New(code Code, text string, line, column int) Token {
	return Token{Code: code, Text: text, Line: line, Column: column}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Code, t.Text, t.Line, t.Column)
}

// Is reports whether the token matches the given code. Empty matches any
// code, per the parser's terminal-matching rule (spec.md §4.4 step 1).
func (t Token) Is(code Code) bool {
	return code == Empty || t.Code == code
}

// codeNames holds the named (non-ASCII-punctuation) built-in codes, used by
// ParseCodeName to invert Code.String() for external grammar descriptors
// (see obgrammar/obtoml) that must name a terminal code as text.
var codeNames = map[string]Code{
	"Identifier": Identifier,
	"Integer":    Integer,
	"HexNumber":  HexNumber,
	"Float":      Float,
	"SQuoted":    SQuoted,
	"DQuoted":    DQuoted,
	"BackQuoted": BackQuoted,
	"RawString":  RawString,
	"Hash":       Hash,
	"Slash":      Slash,
	"NewLine":    NewLine,
	"Whitespace": Whitespace,
	"Error":      Error,
	"End":        End,
	"Exhausted":  Exhausted,
	"Empty":      Empty,
}

// ParseCodeName converts a named built-in code (e.g. "Integer") or a
// single-character punctuation literal (e.g. "+") into a Code, for use by
// external grammar descriptors that can't embed a Go constant directly.
func ParseCodeName(s string) (Code, error) {
	if code, ok := codeNames[s]; ok {
		return code, nil
	}
	if len([]rune(s)) == 1 {
		return Code([]rune(s)[0]), nil
	}
	return 0, fmt.Errorf("obtoken: unrecognized terminal code name %q", s)
}
