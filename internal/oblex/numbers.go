package oblex

import (
	"strings"
	"unicode"

	"github.com/obelix-lang/obelix/internal/obtoken"
)

// scanSignedNumber handles a leading '+' or '-' when SignedNumbers is set: the
// sign is only absorbed into a number token if a digit or '.' immediately
// follows, mirroring the original lexer's PlusMinus state. Otherwise ok is
// false and the caller emits the sign as ordinary single-char punctuation.
func (lx *Lexer) scanSignedNumber(sign rune, line, col int) (obtoken.Token, bool) {
	ch, err := lx.next()
	if err != nil {
		return lx.errorTokenf("I/O error: %s", err.Error()), true
	}
	if ch == eof || !(unicode.IsDigit(ch) || ch == '.') {
		lx.unread(ch)
		return obtoken.Token{}, false
	}

	if ch == '.' {
		lx.unread(ch)
		tok := lx.scanNumber(0, line, col)
		return prependSign(sign, tok), true
	}
	if ch == '0' {
		tok := lx.scanNumber('0', line, col)
		return prependSign(sign, tok), true
	}
	tok := lx.scanNumber(ch, line, col)
	return prependSign(sign, tok), true
}

func prependSign(sign rune, tok obtoken.Token) obtoken.Token {
	if tok.Code == obtoken.Integer || tok.Code == obtoken.Float || tok.Code == obtoken.HexNumber {
		tok.Text = string(sign) + tok.Text
	}
	return tok
}

// scanNumber consumes an Integer, HexNumber, or Float literal starting with
// first (a decimal digit, or 0 if first is 0). When first is the zero value
// it is treated as "no digit yet consumed" so scanSignedNumber can delegate
// straight into a leading '.'.
func (lx *Lexer) scanNumber(first rune, line, col int) obtoken.Token {
	var intPart strings.Builder
	if first != 0 {
		intPart.WriteRune(first)
	}

	if first == '0' {
		ch, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error())
		}
		if ch == 'x' || ch == 'X' {
			var hex strings.Builder
			hex.WriteRune('0')
			hex.WriteRune(ch)
			for {
				d, derr := lx.next()
				if derr != nil {
					return lx.errorTokenf("I/O error: %s", derr.Error())
				}
				if d == eof || !isHexDigit(d) {
					lx.unread(d)
					break
				}
				hex.WriteRune(d)
			}
			return obtoken.New(obtoken.HexNumber, hex.String(), line, col)
		}
		lx.unread(ch)
	}

	for {
		d, err := lx.next()
		if err != nil {
			return lx.errorTokenf("I/O error: %s", err.Error())
		}
		if d == eof || !unicode.IsDigit(d) {
			lx.unread(d)
			break
		}
		intPart.WriteRune(d)
	}

	intText := stripLeadingZeros(intPart.String())

	ch, err := lx.next()
	if err != nil {
		return lx.errorTokenf("I/O error: %s", err.Error())
	}
	if ch != '.' {
		lx.unread(ch)
		return obtoken.New(obtoken.Integer, intText, line, col)
	}

	var frac strings.Builder
	for {
		d, derr := lx.next()
		if derr != nil {
			return lx.errorTokenf("I/O error: %s", derr.Error())
		}
		if d == eof || !unicode.IsDigit(d) {
			lx.unread(d)
			break
		}
		frac.WriteRune(d)
	}

	text := intText + "." + frac.String()

	ch, err = lx.next()
	if err != nil {
		return lx.errorTokenf("I/O error: %s", err.Error())
	}
	if ch != 'e' && ch != 'E' {
		lx.unread(ch)
		return obtoken.New(obtoken.Float, text, line, col)
	}

	text += "e"
	sign, serr := lx.next()
	if serr != nil {
		return lx.errorTokenf("I/O error: %s", serr.Error())
	}
	if sign == '+' || sign == '-' {
		text += string(sign)
	} else {
		lx.unread(sign)
	}
	for {
		d, derr := lx.next()
		if derr != nil {
			return lx.errorTokenf("I/O error: %s", derr.Error())
		}
		if d == eof || !unicode.IsDigit(d) {
			lx.unread(d)
			break
		}
		text += string(d)
	}
	return obtoken.New(obtoken.Float, text, line, col)
}

func isHexDigit(ch rune) bool {
	return unicode.IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// stripLeadingZeros drops redundant leading zeroes from a decimal integer
// run (spec.md §4.2), keeping a single "0" for the literal zero.
func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
