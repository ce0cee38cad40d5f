package oblex

import (
	"strings"

	"github.com/obelix-lang/obelix/internal/obtoken"
)

// scanQuoted consumes a single-, double-, or back-quoted string literal,
// translating \n, \r, \t escapes and passing any other escaped character
// through literally, per the QuotedStr/QuotedStrEscape states in
// original_source/src/parser/lexer.c. The returned token's Text holds the
// dequoted content, not the surrounding quote characters.
func (lx *Lexer) scanQuoted(quote rune, line, col int) obtoken.Token {
	code := quoteCode(quote)
	var sb strings.Builder
	for {
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error())
		}
		if ch == eof {
			return lx.errorTokenf("Unterminated string starting at %d:%d", line, col)
		}
		if ch == quote {
			return obtoken.New(code, sb.String(), line, col)
		}
		if ch == '\\' {
			esc, eerr := lx.next()
			if eerr != nil {
				return lx.errorTokenf("I/O error: %s", eerr.Error())
			}
			if esc == eof {
				return lx.errorTokenf("Unterminated string starting at %d:%d", line, col)
			}
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 'r':
				sb.WriteRune('\r')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(ch)
	}
}

func quoteCode(quote rune) obtoken.Code {
	switch quote {
	case '\'':
		return obtoken.SQuoted
	case '"':
		return obtoken.DQuoted
	case '`':
		return obtoken.BackQuoted
	default:
		return obtoken.Error
	}
}

// scanSlash disambiguates '/' as a division operator, the start of a line
// comment ("//"), or the start of a block comment ("/* ... */"). done is
// false only when it successfully skipped a comment and the caller should
// keep looking for the next real token.
func (lx *Lexer) scanSlash(line, col int) (done bool, tok obtoken.Token) {
	ch, err := lx.next()
	if err != nil {
		return true, lx.errorTokenf("I/O error: %s", err.Error())
	}
	switch ch {
	case '/':
		lx.skipLineComment()
		return false, obtoken.Token{}
	case '*':
		if ok := lx.skipBlockComment(); !ok {
			return true, lx.errorTokenf("Unterminated block comment starting at %d:%d", line, col)
		}
		return false, obtoken.Token{}
	default:
		lx.unread(ch)
		return true, obtoken.New(obtoken.Slash, "/", line, col)
	}
}

func (lx *Lexer) skipLineComment() {
	for {
		ch, err := lx.next()
		if err != nil || ch == eof || isEOL(ch) {
			if isEOL(ch) {
				lx.unread(ch)
			}
			return
		}
	}
}

// skipBlockComment returns false if EOF is reached before the closing "*/".
func (lx *Lexer) skipBlockComment() bool {
	for {
		ch, err := lx.next()
		if err != nil || ch == eof {
			return false
		}
		if ch != '*' {
			continue
		}
		next, err := lx.next()
		if err != nil || next == eof {
			return false
		}
		if next == '/' {
			return true
		}
		lx.unread(next)
	}
}

// scanHashPling recognizes a "#!" shebang line at line 1, column 1, skipping
// it as a line comment. If the character after '#' isn't '!', the '#' is
// emitted as ordinary punctuation.
func (lx *Lexer) scanHashPling(hash rune, line, col int) (done bool, tok obtoken.Token) {
	ch, err := lx.next()
	if err != nil {
		return true, lx.errorTokenf("I/O error: %s", err.Error())
	}
	if ch != '!' {
		lx.unread(ch)
		return true, obtoken.New(obtoken.Hash, "#", line, col)
	}
	lx.skipLineComment()
	return false, obtoken.Token{}
}
