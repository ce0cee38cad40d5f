package oblex

import (
	"bufio"
	"io"
)

// pushbackReader reads runes from an underlying io.Reader one at a time,
// supporting a single level of arbitrary-depth pushback so that a state
// handler that over-reads by one character (the usual case: it read the
// character that terminates the current token) can return it to the stream
// for the next call.
//
// Unlike the teacher's regexReader (internal/ictiobus/lex/reader.go), this
// reader doesn't need mark/restore-for-regex semantics: the cooperative
// state machine only ever needs to give back the runes it didn't consume,
// in order, so a simple stack of pushed-back runes suffices.
type pushbackReader struct {
	r    *bufio.Reader
	back []rune
}

func newPushbackReader(r io.Reader) *pushbackReader {
	return &pushbackReader{r: bufio.NewReader(r)}
}

// eof is the sentinel rune read() returns once the underlying reader is
// exhausted; it is never a valid source character because valid source is
// read as runes, which are always >= 0.
const eof = rune(-1)

// read returns the next rune in the stream, or eof when the stream is
// exhausted. readErr is non-nil only for I/O errors other than io.EOF.
func (pr *pushbackReader) read() (ch rune, readErr error) {
	if n := len(pr.back); n > 0 {
		ch = pr.back[n-1]
		pr.back = pr.back[:n-1]
		return ch, nil
	}

	r, _, err := pr.r.ReadRune()
	if err == io.EOF {
		return eof, nil
	} else if err != nil {
		return eof, err
	}
	return r, nil
}

// unread pushes ch back so the next call to read returns it again. Used by
// state handlers that read one character past the end of the current token.
func (pr *pushbackReader) unread(ch rune) {
	if ch == eof {
		return
	}
	pr.back = append(pr.back, ch)
}
