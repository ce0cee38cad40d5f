package oblex

// Option identifies a boolean (or, for OnNewLine, callable) lexer setting,
// per spec.md §6.
type Option int

const (
	IgnoreWhitespace Option = iota
	IgnoreNewLines
	IgnoreAllWhitespace
	CaseSensitive
	HashPling
	SignedNumbers
	OnNewLine
	optionCount
)

func (o Option) String() string {
	switch o {
	case IgnoreWhitespace:
		return "IgnoreWhitespace"
	case IgnoreNewLines:
		return "IgnoreNewLines"
	case IgnoreAllWhitespace:
		return "IgnoreAllWhitespace"
	case CaseSensitive:
		return "CaseSensitive"
	case HashPling:
		return "HashPling"
	case SignedNumbers:
		return "SignedNumbers"
	case OnNewLine:
		return "OnNewLine"
	default:
		return "UnknownOption"
	}
}

// NewLineFunc is called with the lexer and the new 1-indexed line number
// immediately after a newline is recognized, when set via
// SetOption(OnNewLine, fn).
type NewLineFunc func(lx *Lexer, newLine int)
