package oblex

// state is one node of the lexer's cooperative state machine, ported from
// the state set catalogued in original_source/src/parser/lexer.c
// (lexer_state_t) and named identically in spec.md §4.2.
type state int

const (
	stateFresh state = iota
	stateInit
	stateSuccess
	stateWhitespace
	stateNewLine
	stateIdentifier
	stateKeyword
	statePlusMinus
	stateZero
	stateNumber
	stateDecimalInteger
	stateHexInteger
	stateFloat
	stateSciFloat
	stateQuotedStr
	stateQuotedStrEscape
	stateHashPling
	stateSlash
	stateBlockComment
	stateLineComment
	stateStar
	stateDone
)

func (s state) String() string {
	names := [...]string{
		"Fresh", "Init", "Success", "Whitespace", "NewLine", "Identifier",
		"Keyword", "PlusMinus", "Zero", "Number", "DecimalInteger",
		"HexInteger", "Float", "SciFloat", "QuotedStr", "QuotedStrEscape",
		"HashPling", "Slash", "BlockComment", "LineComment", "Star", "Done",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}
