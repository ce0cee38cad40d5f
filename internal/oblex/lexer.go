// Package oblex implements the table-driven cooperative-state-machine lexer
// described in spec.md §4.2: a character stream goes in, Tokens come out one
// at a time. The state set and character-class policies are ported from
// original_source/src/parser/lexer.c (lexer_state_t and its handlers), which
// the distilled spec summarizes but does not fully enumerate.
package oblex

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/obelix-lang/obelix/internal/obtoken"
)

// Lexer converts a character stream into a token stream. It owns its input
// buffer; callers own every Token returned from NextToken.
type Lexer struct {
	r *pushbackReader

	state    state
	quote    rune // active quote char, or active sign char in PlusMinus
	line     int
	column   int
	prevChar rune

	keywords *keywordTracker

	ignoreWhitespace    bool
	ignoreNewLines      bool
	caseSensitive       bool
	hashPling           bool
	signedNumbers       bool
	onNewLine           NewLineFunc

	startedNewlineHook bool
	sawEnd             bool
	sawExhausted       bool
}

// Create returns a new Lexer reading from r. It corresponds to spec.md
// §4.2's create(reader).
func Create(r io.Reader) *Lexer {
	lx := &Lexer{
		r:             newPushbackReader(r),
		state:         stateFresh,
		line:          1,
		column:        0,
		prevChar:      0,
		caseSensitive: true,
	}
	lx.keywords = newKeywordTracker(lx.caseSensitive)
	return lx
}

// SetOption configures a boolean lexer option, or in the case of OnNewLine, a
// NewLineFunc hook.
func (lx *Lexer) SetOption(opt Option, value any) {
	switch opt {
	case IgnoreWhitespace:
		lx.ignoreWhitespace, _ = value.(bool)
	case IgnoreNewLines:
		lx.ignoreNewLines, _ = value.(bool)
	case IgnoreAllWhitespace:
		b, _ := value.(bool)
		lx.ignoreWhitespace = b
		lx.ignoreNewLines = b
	case CaseSensitive:
		lx.caseSensitive, _ = value.(bool)
		lx.keywords.caseSensitive = lx.caseSensitive
	case HashPling:
		lx.hashPling, _ = value.(bool)
	case SignedNumbers:
		lx.signedNumbers, _ = value.(bool)
	case OnNewLine:
		lx.onNewLine, _ = value.(NewLineFunc)
	}
}

// GetOption returns the current value of the given option.
func (lx *Lexer) GetOption(opt Option) any {
	switch opt {
	case IgnoreWhitespace:
		return lx.ignoreWhitespace
	case IgnoreNewLines:
		return lx.ignoreNewLines
	case IgnoreAllWhitespace:
		return lx.ignoreWhitespace && lx.ignoreNewLines
	case CaseSensitive:
		return lx.caseSensitive
	case HashPling:
		return lx.hashPling
	case SignedNumbers:
		return lx.signedNumbers
	case OnNewLine:
		return lx.onNewLine
	default:
		return nil
	}
}

// AddKeyword registers a keyword's text under the given code. Repeated
// registration of the same text always yields the same code so long as the
// caller is consistent, per the invariant in spec.md §3.
func (lx *Lexer) AddKeyword(code obtoken.Code, text string) {
	lx.keywords.add(code, text)
}

// Line and Column report the lexer's current cursor, 1-indexed and
// 0-or-1-indexed respectively per spec.md §4.2.
func (lx *Lexer) Line() int   { return lx.line }
func (lx *Lexer) Column() int { return lx.column }

// NextToken returns the next token in the stream. It returns End exactly
// once, and Exhausted on every call thereafter (spec.md §4.2).
func (lx *Lexer) NextToken() obtoken.Token {
	if !lx.startedNewlineHook {
		lx.startedNewlineHook = true
		lx.fireOnNewLine(1)
	}

	if lx.sawExhausted {
		return obtoken.New(obtoken.Exhausted, "", lx.line, lx.column)
	}
	if lx.sawEnd {
		lx.sawExhausted = true
		return obtoken.New(obtoken.Exhausted, "", lx.line, lx.column)
	}

	for {
		tok := lx.scanOne()

		if tok.Code == obtoken.NewLine {
			lx.fireOnNewLine(lx.line)
			if lx.ignoreNewLines {
				continue
			}
		}
		if tok.Code == obtoken.Whitespace && lx.ignoreWhitespace {
			continue
		}
		if tok.Code == obtoken.End {
			lx.sawEnd = true
		}
		return tok
	}
}

// RollupTo consumes characters up to and including marker, honoring `\` as
// an escape for the marker itself (and for `\`), and returns them as a
// RawString token with the marker and escapes stripped. Used by grammar
// actions that need to read raw content the table-driven states don't model
// (e.g. a regex literal's body), per spec.md §4.2.
func (lx *Lexer) RollupTo(marker rune) obtoken.Token {
	startLine, startCol := lx.line, lx.column
	var sb strings.Builder
	for {
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("unterminated raw content: expected %q before end of input", marker)
		}
		if ch == '\\' {
			next, err := lx.next()
			if err != nil {
				return lx.errorTokenf("unterminated raw content: expected %q before end of input", marker)
			}
			if next == marker || next == '\\' {
				sb.WriteRune(next)
				continue
			}
			sb.WriteRune(ch)
			sb.WriteRune(next)
			continue
		}
		if ch == marker {
			return obtoken.New(obtoken.RawString, sb.String(), startLine, startCol)
		}
		sb.WriteRune(ch)
	}
}

func (lx *Lexer) fireOnNewLine(line int) {
	if lx.onNewLine != nil {
		lx.onNewLine(lx, line)
	}
}

// scanOne reads exactly one non-comment token from the stream, or an Error/
// End token. Comments are fully consumed internally and never surface as a
// token: the scanner loops back around after skipping one.
func (lx *Lexer) scanOne() obtoken.Token {
	for {
		startLine, startCol := lx.line, lx.column
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error())
		}
		if ch == eof {
			return obtoken.New(obtoken.End, "", lx.line, lx.column)
		}

		switch {
		case isEOL(ch):
			return lx.scanNewLine(ch, startLine, startCol)
		case unicode.IsSpace(ch):
			return lx.scanWhitespace(ch, startLine, startCol)
		case unicode.IsLetter(ch) || ch == '_':
			return lx.scanIdentifierOrKeyword(ch, startLine, startCol)
		case (ch == '+' || ch == '-') && lx.signedNumbers:
			if tok, ok := lx.scanSignedNumber(ch, startLine, startCol); ok {
				return tok
			}
			return obtoken.New(obtoken.Code(ch), string(ch), startLine, startCol)
		case ch == '0':
			return lx.scanNumber(ch, startLine, startCol)
		case unicode.IsDigit(ch):
			return lx.scanNumber(ch, startLine, startCol)
		case ch == '\'' || ch == '"' || ch == '`':
			return lx.scanQuoted(ch, startLine, startCol)
		case ch == '/':
			if done, tok := lx.scanSlash(startLine, startCol); done {
				return tok
			}
			continue // consumed a comment; look for the next real token
		case ch == '#' && startLine == 1 && startCol == 0 && lx.hashPling:
			if done, tok := lx.scanHashPling(ch, startLine, startCol); done {
				return tok
			}
			continue
		default:
			if tok, ok := lx.scanSymbolKeyword(ch, startLine, startCol); ok {
				return tok
			}
			return obtoken.New(obtoken.Code(ch), string(ch), startLine, startCol)
		}
	}
}

func (lx *Lexer) next() (rune, error) {
	ch, err := lx.r.read()
	if err != nil {
		return eof, err
	}
	lx.updateLocation(ch)
	return ch, nil
}

func (lx *Lexer) unread(ch rune) {
	// position tracking isn't unwound on unread: handlers only ever unread
	// the single lookahead character that terminated the current token, and
	// that position is recomputed fresh the next time it's read.
	lx.r.unread(ch)
}

func (lx *Lexer) updateLocation(ch rune) {
	if ch == eof {
		return
	}
	if isEOL(ch) {
		if !isEOL(lx.prevChar) || ch == lx.prevChar {
			lx.line++
			lx.column = 0
		}
	} else {
		lx.column++
	}
	lx.prevChar = ch
}

func isEOL(ch rune) bool { return ch == '\n' || ch == '\r' }

func (lx *Lexer) errorTokenf(format string, args ...any) obtoken.Token {
	return obtoken.New(obtoken.Error, fmt.Sprintf(format, args...), lx.line, lx.column)
}

// scanNewLine absorbs a run of adjacent line breaks (including blank lines)
// into a single NewLine token, matching the original lexer_state_newline
// handler's "keep consuming while it's \r or \n" behavior.
func (lx *Lexer) scanNewLine(first rune, line, col int) obtoken.Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error())
		}
		if ch == eof || !isEOL(ch) {
			lx.unread(ch)
			break
		}
		sb.WriteRune(ch)
	}
	return obtoken.New(obtoken.NewLine, sb.String(), line, col)
}

func (lx *Lexer) scanWhitespace(first rune, line, col int) obtoken.Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error())
		}
		if ch == eof || isEOL(ch) || !unicode.IsSpace(ch) {
			lx.unread(ch)
			break
		}
		sb.WriteRune(ch)
	}
	return obtoken.New(obtoken.Whitespace, sb.String(), line, col)
}

// scanIdentifierOrKeyword consumes a full identifier-shaped run, then looks
// it up in the keyword table; a keyword whose text is identifier-shaped can
// therefore only be recognized after its terminating non-identifier
// character, per spec.md §4.2.
func (lx *Lexer) scanIdentifierOrKeyword(first rune, line, col int) obtoken.Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error())
		}
		if ch == eof || !(unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_') {
			lx.unread(ch)
			break
		}
		sb.WriteRune(ch)
	}
	text := sb.String()
	if code, ok := lx.exactKeyword(text); ok {
		return obtoken.New(code, text, line, col)
	}
	return obtoken.New(obtoken.Identifier, text, line, col)
}

func (lx *Lexer) exactKeyword(text string) (obtoken.Code, bool) {
	lx.keywords.match(text)
	switch lx.keywords.state {
	case FullMatch, FullMatchAndPrefixes, IdentifierFullMatch, IdentifierFullMatchAndPrefixes:
		return lx.keywords.code, true
	}
	return 0, false
}

// scanSymbolKeyword greedily matches the longest registered keyword starting
// at the current (non-identifier, non-digit) character, backtracking to the
// last exact match if the run stops matching before reaching one (GNU-lex
// style "prefer longest, then first defined" resolution, spec.md §4.2/§8).
func (lx *Lexer) scanSymbolKeyword(first rune, line, col int) (obtoken.Token, bool) {
	buf := []rune{first}
	lx.keywords.match(string(buf))
	if lx.keywords.state == NoMatch {
		return obtoken.Token{}, false
	}

	lastGoodLen := 0
	lastGoodCode := obtoken.Empty
	if isExactMatch(lx.keywords.state) {
		lastGoodLen = 1
		lastGoodCode = lx.keywords.code
	}

	var pending []rune
	for {
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error()), true
		}
		if ch == eof {
			break
		}
		buf = append(buf, ch)
		lx.keywords.match(string(buf))
		if lx.keywords.state == NoMatch {
			pending = append(pending, ch)
			buf = buf[:len(buf)-1]
			break
		}
		if isExactMatch(lx.keywords.state) {
			lastGoodLen = len(buf)
			lastGoodCode = lx.keywords.code
		}
	}

	if lastGoodLen == 0 {
		// never matched a full keyword; put everything back except the
		// first character and fall through to single-char punctuation.
		for i := len(buf) - 1; i >= 1; i-- {
			lx.unread(buf[i])
		}
		for i := len(pending) - 1; i >= 0; i-- {
			lx.unread(pending[i])
		}
		return obtoken.Token{}, false
	}

	text := string(buf[:lastGoodLen])
	for i := len(buf) - 1; i >= lastGoodLen; i-- {
		lx.unread(buf[i])
	}
	for i := len(pending) - 1; i >= 0; i-- {
		lx.unread(pending[i])
	}
	return obtoken.New(lastGoodCode, text, line, col), true
}

func isExactMatch(s MatchState) bool {
	return s == FullMatch || s == FullMatchAndPrefixes || s == IdentifierFullMatch || s == IdentifierFullMatchAndPrefixes
}
