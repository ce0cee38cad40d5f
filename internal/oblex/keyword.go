package oblex

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/obelix-lang/obelix/internal/obtoken"
)

// MatchState is the result of comparing the current token buffer against
// every registered keyword, per spec.md §4.2.
type MatchState int

const (
	NoMatch MatchState = iota
	PrefixMatched
	PrefixesMatched
	FullMatch
	FullMatchAndPrefixes
	IdentifierFullMatch
	IdentifierFullMatchAndPrefixes
	MatchLost
)

func (m MatchState) String() string {
	switch m {
	case NoMatch:
		return "NoMatch"
	case PrefixMatched:
		return "PrefixMatched"
	case PrefixesMatched:
		return "PrefixesMatched"
	case FullMatch:
		return "FullMatch"
	case FullMatchAndPrefixes:
		return "FullMatchAndPrefixes"
	case IdentifierFullMatch:
		return "IdentifierFullMatch"
	case IdentifierFullMatchAndPrefixes:
		return "IdentifierFullMatchAndPrefixes"
	case MatchLost:
		return "MatchLost"
	default:
		return "Unknown"
	}
}

type keyword struct {
	code obtoken.Code
	text string
}

// keywordTracker inspects the growing token buffer against all registered
// keywords on each character, reporting the match state the lexer uses to
// decide between emitting a keyword token, continuing to grow a prefix, or
// falling back to an identifier (spec.md §4.2).
type keywordTracker struct {
	keywords      []keyword
	caseSensitive bool
	folder        cases.Caser

	state MatchState
	code  obtoken.Code
}

func newKeywordTracker(caseSensitive bool) *keywordTracker {
	return &keywordTracker{
		caseSensitive: caseSensitive,
		folder:        cases.Fold(),
		state:         NoMatch,
	}
}

// fold applies Unicode case folding (rather than a byte-wise strings.ToLower)
// so that case-insensitive keyword matching behaves correctly for
// non-ASCII keyword text, per spec.md §6's CaseSensitive option.
func (kt *keywordTracker) fold(s string) string {
	if kt.caseSensitive {
		return s
	}
	return kt.folder.String(s)
}

// match re-evaluates the tracker's state against the given token buffer.
// Called once per character while a keyword candidate is being grown.
func (kt *keywordTracker) match(token string) {
	prevState := kt.state
	kt.code = obtoken.Empty

	if token == "" {
		kt.state = NoMatch
		return
	}

	folded := kt.fold(token)
	matches := 0
	var exactCode obtoken.Code
	haveExact := false

	for _, kw := range kt.keywords {
		kwText := kt.fold(kw.text)
		if len(folded) <= len(kwText) && strings.HasPrefix(kwText, folded) {
			matches++
			if len(folded) == len(kwText) {
				exactCode = kw.code
				haveExact = true
			}
		}
	}

	switch matches {
	case 0:
		if prevState == FullMatchAndPrefixes || prevState == IdentifierFullMatch {
			kt.state = MatchLost
		} else {
			kt.state = NoMatch
		}
	case 1:
		if haveExact {
			kt.state = FullMatch
			kt.code = exactCode
		} else {
			kt.state = PrefixMatched
		}
	default:
		if prevState == MatchLost {
			if haveExact {
				kt.state = FullMatch
				kt.code = exactCode
			} else {
				kt.state = NoMatch
			}
		} else if haveExact {
			kt.state = FullMatchAndPrefixes
			kt.code = exactCode
		} else {
			kt.state = PrefixesMatched
		}
	}

	if kt.state == FullMatch && isIdentifierText(token) {
		kt.state = IdentifierFullMatch
	}
}

func (kt *keywordTracker) add(code obtoken.Code, text string) {
	kt.keywords = append(kt.keywords, keyword{code: code, text: text})
}

func (kt *keywordTracker) reset() {
	kt.state = NoMatch
	kt.code = obtoken.Empty
}

func isIdentifierText(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
