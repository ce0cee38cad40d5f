// Package obgrammar implements the declarative grammar model and its LL(1)
// analyzer (spec.md §3, §4.3): nonterminals own alternative rules, rules own
// ordered rule entries (terminals or nonterminal references), and every
// element carries semantic actions and configuration variables.
//
// The element/Rule/Production shape is grounded on the teacher's
// internal/tunascript/grammar.go (Grammar/Rule/Production, ordered
// name->index maps, Copy/String idioms), generalized from tunascript's
// flat string-sequence productions to the richer Nonterminal -> Rule ->
// RuleEntry -> GrammarAction/variables model spec.md §3 requires, and with
// the FIRST/FOLLOW/parse-table machinery built fresh against that model
// (the teacher's own grammar package only carries LR item helpers, see
// DESIGN.md).
package obgrammar

import (
	"fmt"
	"hash/fnv"

	"github.com/obelix-lang/obelix/internal/obtoken"
	"github.com/obelix-lang/obelix/internal/obvalue"
)

// GrammarAction is a semantic action attached to a grammar element: a named
// function reference plus an optional literal data argument, per spec.md
// §3's "(function-reference, optional literal data)".
type GrammarAction struct {
	Name string
	Fn   obvalue.Function
	Data obvalue.Value
}

// elementData is the action list + variable map every grammar element
// (Nonterminal, Rule, RuleEntry) owns, per spec.md §3.
type elementData struct {
	actions   []GrammarAction
	variables map[string]obtoken.Token
}

func (e *elementData) addAction(a GrammarAction) {
	e.actions = append(e.actions, a)
}

func (e *elementData) setVariable(name string, value obtoken.Token) {
	if e.variables == nil {
		e.variables = make(map[string]obtoken.Token)
	}
	e.variables[name] = value
}

func (e *elementData) Variable(name string) (obtoken.Token, bool) {
	v, ok := e.variables[name]
	return v, ok
}

func (e *elementData) Actions() []GrammarAction { return e.actions }

// RuleEntryKind distinguishes a RuleEntry's two cases, per spec.md §3's
// "tagged variant: Terminal(token) or NonTerminalRef(name)".
type RuleEntryKind int

const (
	EntryTerminal RuleEntryKind = iota
	EntryNonTerminal
)

// RuleEntry is one symbol in a Rule's sequence: either a terminal (matched
// by token code) or a reference to another nonterminal by name.
type RuleEntry struct {
	elementData

	owner *Rule

	Kind         RuleEntryKind
	TerminalCode obtoken.Code
	NonTerminal  string
}

// AddAction resolves name via the owning grammar and appends it as a
// semantic action to re, per spec.md §4.3's ge_add_action.
func (re *RuleEntry) AddAction(name string, data obvalue.Value) error {
	fn, err := re.owner.owner.grammar.Resolve(name)
	if err != nil {
		return err
	}
	re.addAction(GrammarAction{Name: name, Fn: fn, Data: data})
	return nil
}

// SetOption implements ge_set_option for a RuleEntry: a name starting with
// '_' is stored as a variable; anything else is resolved to a function and
// appended as an action with no data argument (spec.md §4.3).
func (re *RuleEntry) SetOption(name string, value obtoken.Token) error {
	if len(name) > 0 && name[0] == '_' {
		re.setVariable(name, value)
		return nil
	}
	return re.AddAction(name, nil)
}

// Rule is one alternative production of a Nonterminal: an ordered sequence
// of RuleEntries, plus its own actions/variables and (after analysis)
// derived FIRST.
type Rule struct {
	elementData

	owner   *Nonterminal
	Entries []*RuleEntry

	first    map[obtoken.Code]bool
	nullable bool
}

// Terminal appends a terminal entry matching code and returns it, per
// spec.md §4.3's rule_entry_terminal.
func (r *Rule) Terminal(code obtoken.Code) *RuleEntry {
	re := &RuleEntry{owner: r, Kind: EntryTerminal, TerminalCode: code}
	r.Entries = append(r.Entries, re)
	return re
}

// Keyword appends a terminal entry matching the keyword DQuoted token with
// the given text, registering it in the owning Grammar's keyword table if
// it isn't known yet (spec.md §4.3's "Keyword insertion").
func (r *Rule) Keyword(text string) *RuleEntry {
	code := r.owner.grammar.Keyword(text)
	return r.Terminal(code)
}

// NonTerminalRef appends a reference to another nonterminal by name, per
// spec.md §4.3's rule_entry_non_terminal.
func (r *Rule) NonTerminalRef(name string) *RuleEntry {
	re := &RuleEntry{owner: r, Kind: EntryNonTerminal, NonTerminal: name}
	r.Entries = append(r.Entries, re)
	return re
}

// SetOption implements ge_set_option for a Rule.
func (r *Rule) SetOption(name string, value obtoken.Token) error {
	if len(name) > 0 && name[0] == '_' {
		r.setVariable(name, value)
		return nil
	}
	return r.AddAction(name, nil)
}

// IsEpsilon reports whether this rule has no entries, i.e. it's an epsilon
// production (spec.md §4.3's rule_entry_empty leaves the rule with zero
// entries, making it nullable).
func (r *Rule) IsEpsilon() bool { return len(r.Entries) == 0 }

func (r *Rule) String() string {
	if r.IsEpsilon() {
		return "ε"
	}
	s := ""
	for i, e := range r.Entries {
		if i > 0 {
			s += " "
		}
		if e.Kind == EntryNonTerminal {
			s += e.NonTerminal
		} else {
			s += e.TerminalCode.String()
		}
	}
	return s
}

// Nonterminal owns an ordered list of alternative Rules plus, after
// analysis, its derived FIRST, FOLLOW, and parse table.
type Nonterminal struct {
	elementData

	grammar *Grammar
	Name    string
	Rules   []*Rule

	first      map[obtoken.Code]bool
	follow     map[obtoken.Code]bool
	parseTable map[obtoken.Code]*Rule
}

// Rule appends a new alternative to this nonterminal and returns it, per
// spec.md §4.3's rule_create.
func (nt *Nonterminal) Rule() *Rule {
	r := &Rule{owner: nt}
	nt.Rules = append(nt.Rules, r)
	return r
}

func (nt *Nonterminal) String() string {
	s := nt.Name + " ->"
	for i, r := range nt.Rules {
		if i > 0 {
			s += " |"
		}
		s += " " + r.String()
	}
	return s
}

// Grammar is the top-level element: an ordered map of nonterminals, a
// keyword table, lexer option values, a function-name prefix, and a
// designated entrypoint (the first nonterminal declared), per spec.md §3.
type Grammar struct {
	names        []string
	nonterminals map[string]*Nonterminal
	entrypoint   string

	keywordByText map[string]obtoken.Code
	keywordByCode map[obtoken.Code]string
	nextKeyword   obtoken.Code

	FunctionPrefix string
	Variables      map[string]obtoken.Token

	resolver obvalue.FunctionResolver
}

// NewGrammar returns an empty Grammar, per spec.md §4.3's grammar_create.
func NewGrammar(resolver obvalue.FunctionResolver) *Grammar {
	return &Grammar{
		nonterminals:  make(map[string]*Nonterminal),
		keywordByText: make(map[string]obtoken.Code),
		keywordByCode: make(map[obtoken.Code]string),
		nextKeyword:   obtoken.KeywordBase,
		Variables:     make(map[string]obtoken.Token),
		resolver:      resolver,
	}
}

// Nonterminal returns the named nonterminal, creating it if it doesn't
// exist yet. The first nonterminal ever created becomes the grammar's
// entrypoint, per spec.md §3: "designated entrypoint nonterminal (the first
// declared)".
func (g *Grammar) Nonterminal(name string) *Nonterminal {
	if nt, ok := g.nonterminals[name]; ok {
		return nt
	}
	nt := &Nonterminal{grammar: g, Name: name}
	g.nonterminals[name] = nt
	g.names = append(g.names, name)
	if g.entrypoint == "" {
		g.entrypoint = name
	}
	return nt
}

// Entrypoint returns the grammar's designated start nonterminal.
func (g *Grammar) Entrypoint() *Nonterminal { return g.nonterminals[g.entrypoint] }

// Nonterminals returns all nonterminals in declaration order.
func (g *Grammar) Nonterminals() []*Nonterminal {
	result := make([]*Nonterminal, len(g.names))
	for i, n := range g.names {
		result[i] = g.nonterminals[n]
	}
	return result
}

// Lookup returns the named nonterminal, or nil if none exists.
func (g *Grammar) Lookup(name string) *Nonterminal { return g.nonterminals[name] }

// Keyword hashes text to a stable code >= obtoken.KeywordBase and records it
// in the keyword table, returning the same code on repeated calls with the
// same text (spec.md §4.3's "Keyword insertion" / §3's invariant that each
// keyword text maps to exactly one code).
func (g *Grammar) Keyword(text string) obtoken.Code {
	if code, ok := g.keywordByText[text]; ok {
		return code
	}
	code := hashKeyword(text, g.keywordByCode)
	g.keywordByText[text] = code
	g.keywordByCode[code] = text
	return code
}

// KeywordText returns the text registered under code, if any.
func (g *Grammar) KeywordText(code obtoken.Code) (string, bool) {
	t, ok := g.keywordByCode[code]
	return t, ok
}

// KeywordTexts returns a copy of the grammar's full code->text keyword
// table, for callers (a lexer setup routine) that need to register every
// keyword the grammar knows about rather than look one up by name.
func (g *Grammar) KeywordTexts() map[obtoken.Code]string {
	out := make(map[obtoken.Code]string, len(g.keywordByCode))
	for code, text := range g.keywordByCode {
		out[code] = text
	}
	return out
}

// hashKeyword computes a deterministic code >= obtoken.KeywordBase from
// text's FNV-1a hash, resolving collisions by linear probing. Hashing
// (rather than sequential assignment) is a direct requirement of spec.md
// §4.3: "the grammar hashes the text to a code >= 200".
func hashKeyword(text string, taken map[obtoken.Code]string) obtoken.Code {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum32()

	const band = 1 << 20
	code := obtoken.KeywordBase + obtoken.Code(sum%band)
	for {
		if existing, ok := taken[code]; !ok || existing == text {
			return code
		}
		code++
	}
}

// Resolve looks up a semantic-action function name, applying the
// resolution order from spec.md §4.1: prefix+name, then parser_+name, then
// name, failing if none exists.
func (g *Grammar) Resolve(name string) (obvalue.Function, error) {
	candidates := []string{}
	if g.FunctionPrefix != "" {
		candidates = append(candidates, g.FunctionPrefix+name)
	}
	candidates = append(candidates, "parser_"+name, name)

	for _, candidate := range candidates {
		if fn, ok := g.resolver.Resolve(candidate); ok {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("obgrammar: no function registered for action %q (tried %v)", name, candidates)
}

// AddAction resolves name via Resolve and appends it as a semantic action
// to nt, per spec.md §4.3's ge_add_action when the caller already knows the
// action name rather than an already-resolved function.
func (nt *Nonterminal) AddAction(name string, data obvalue.Value) error {
	fn, err := nt.grammar.Resolve(name)
	if err != nil {
		return err
	}
	nt.addAction(GrammarAction{Name: name, Fn: fn, Data: data})
	return nil
}

// AddAction resolves name via the owning grammar and appends it as a
// semantic action to r.
func (r *Rule) AddAction(name string, data obvalue.Value) error {
	fn, err := r.owner.grammar.Resolve(name)
	if err != nil {
		return err
	}
	r.addAction(GrammarAction{Name: name, Fn: fn, Data: data})
	return nil
}

// SetOption implements ge_set_option for a Nonterminal.
func (nt *Nonterminal) SetOption(name string, value obtoken.Token) error {
	if len(name) > 0 && name[0] == '_' {
		nt.setVariable(name, value)
		return nil
	}
	return nt.AddAction(name, nil)
}

// SetGrammarOption implements ge_set_option at the grammar level for the
// seven options named in spec.md §4.3: each value is recorded in
// g.Variables, and _prefix also sets FunctionPrefix; anything else is a
// construction error. The options are not applied to any Lexer: a lexer's
// options are set only through its own SetOption.
func (g *Grammar) SetGrammarOption(name string, value obtoken.Token) error {
	switch name {
	case "_strategy", "_lib", "_ignore", "_case_sensitive", "_hashpling", "_signed_numbers":
		g.Variables[name] = value
		return nil
	case "_prefix":
		g.FunctionPrefix = value.Text
		g.Variables[name] = value
		return nil
	default:
		return fmt.Errorf("obgrammar: unknown grammar option %q", name)
	}
}
