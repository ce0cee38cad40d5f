// Package obparse implements the predictive LL(1) driver from spec.md §4.4:
// it walks an explicit pushdown of rule-entry frames against a
// obgrammar.Grammar's parse table, pulling tokens from an oblex.Lexer and
// firing each visited element's semantic actions against a user-visible
// data stack.
//
// The iterative stack-of-symbols loop is grounded on the teacher's
// internal/ictiobus/parse/ll1.go (GenerateLL1Parser/ll1Parser.Parse):
// same shape (symbol stack seeded with the start symbol, the lowercase/
// uppercase convention replaced here by RuleEntryKind, an explicit parse
// tree elsewhere in the teacher versus this package's data stack), pushing
// a rule's entries in reverse order so they pop off in left-to-right
// order. Action firing, the data stack, and the post-rule/post-entry
// sentinel frames are new: the teacher's LL(1) parser builds a parse tree
// directly and has no semantic-action concept (that lives only in its LR
// family, see internal/ictiobus/parse/lraction.go), so obparse generalizes
// the teacher's traversal shape to spec.md's action-driven model instead of
// copying an existing action-firing implementation.
package obparse

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/obelix-lang/obelix/internal/oblex"
	"github.com/obelix-lang/obelix/internal/obgrammar"
	"github.com/obelix-lang/obelix/internal/obtoken"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// frameKind distinguishes the four kinds of pushdown entries the parser's
// stack can hold: the two rule-entry kinds from obgrammar plus the two
// sentinel kinds spec.md §4.4 step 3 introduces to fire actions once a rule
// or an entry's referent is fully resolved.
type frameKind int

const (
	frameTerminal frameKind = iota
	frameNonTerminal
	framePostRule
	framePostEntry
)

type frame struct {
	kind   frameKind
	entry  *obgrammar.RuleEntry // frameTerminal, frameNonTerminal, framePostEntry
	nt     *obgrammar.Nonterminal
	rule   *obgrammar.Rule // framePostRule
}

// Parser drives a predictive parse of one token stream against one grammar.
// It is not safe for concurrent use and is meant to be constructed fresh
// per parse, per spec.md §5's "Lexers and parsers are not shareable across
// threads; each parse owns its own."
type Parser struct {
	ID uuid.UUID

	grammar *obgrammar.Grammar
	lexer   *oblex.Lexer

	stack     []frame
	dataStack []obvalue.Value
	vars      map[string]obvalue.Value

	// aux is scratch storage for a host action registry (internal/obactions)
	// to keep its own bookkeeping (bracket-matching bookmarks, in-progress
	// function/conditional builders) without having to box arbitrary Go
	// state as an obvalue.Value just to fit it through vars or the data
	// stack.
	aux map[string]any

	lastToken   obtoken.Token
	inStatement bool
	lookahead   obtoken.Token

	// activeElement is whichever grammar element is currently firing its
	// actions; Variable delegates to it so actions can read element-scoped
	// configuration (spec.md §3's "map of variables ... used for
	// configuration passed to actions").
	activeElement elementVariabler
}

// elementVariabler is implemented by the three grammar element kinds
// (Nonterminal, Rule, RuleEntry) whose per-element Variable lookup
// Parser.Variable exposes to whichever element is currently firing.
type elementVariabler interface {
	Variable(name string) (obtoken.Token, bool)
}

// New constructs a Parser over lexer driven by grammar. grammar must already
// have been analyzed (see obgrammar.Grammar.Analyze).
func New(grammar *obgrammar.Grammar, lexer *oblex.Lexer) *Parser {
	return &Parser{
		ID:      uuid.New(),
		grammar: grammar,
		lexer:   lexer,
		vars:    make(map[string]obvalue.Value),
	}
}

// --- Data stack, shared by standard actions (internal/obactions) ---

func (p *Parser) Push(v obvalue.Value) { p.dataStack = append(p.dataStack, v) }

func (p *Parser) Pop() (obvalue.Value, error) {
	if len(p.dataStack) == 0 {
		return nil, p.syntaxErrorf("data stack underflow")
	}
	v := p.dataStack[len(p.dataStack)-1]
	p.dataStack = p.dataStack[:len(p.dataStack)-1]
	return v, nil
}

func (p *Parser) Peek() (obvalue.Value, error) {
	if len(p.dataStack) == 0 {
		return nil, p.syntaxErrorf("data stack underflow")
	}
	return p.dataStack[len(p.dataStack)-1], nil
}

func (p *Parser) DataStackLen() int { return len(p.dataStack) }

// --- User-visible key-value map, for cross-action state ---

func (p *Parser) Set(name string, v obvalue.Value) { p.vars[name] = v }

func (p *Parser) Get(name string) (obvalue.Value, bool) {
	v, ok := p.vars[name]
	return v, ok
}

// Aux retrieves host-registry scratch state previously stored under key via
// SetAux.
func (p *Parser) Aux(key string) (any, bool) {
	v, ok := p.aux[key]
	return v, ok
}

// SetAux stores host-registry scratch state under key, for bookkeeping that
// doesn't belong on the data stack or the obvalue-typed vars map.
func (p *Parser) SetAux(key string, v any) {
	if p.aux == nil {
		p.aux = make(map[string]any)
	}
	p.aux[key] = v
}

// Variable returns a configuration value set via ge_set_option on whichever
// grammar element is currently firing its actions.
func (p *Parser) Variable(name string) (obtoken.Token, bool) {
	if p.activeElement == nil {
		return obtoken.Token{}, false
	}
	return p.activeElement.Variable(name)
}

func (p *Parser) LastToken() obtoken.Token { return p.lastToken }

// Lexer exposes the underlying token source for actions (rollup_to) that
// need to read raw content the grammar's terminals don't otherwise model.
func (p *Parser) Lexer() *oblex.Lexer { return p.lexer }

func (p *Parser) InStatement() bool { return p.inStatement }

func (p *Parser) SetInStatement(v bool) { p.inStatement = v }

// Grammar returns the grammar this parser is driving against, so actions
// can resolve further names or inspect keyword text.
func (p *Parser) Grammar() *obgrammar.Grammar { return p.grammar }

func (p *Parser) syntaxErrorf(format string, a ...any) *obxerr.Exception {
	msg := fmt.Sprintf(format, a...)
	return obxerr.New(obxerr.SyntaxError, "[session %s] %s", p.ID, msg)
}

// Parse drives the parse to completion, per spec.md §4.4's four-step
// algorithm, returning a SyntaxError exception on the first mismatch,
// unresolvable nonterminal, or lexer Error token. The first error an action
// returns also stops the parse: an *obxerr.Exception is returned unchanged,
// with its own kind, and any other error is wrapped as a SyntaxError.
func (p *Parser) Parse() error {
	var err error
	p.lookahead, err = p.nextAcceptedToken()
	if err != nil {
		return err
	}

	p.stack = []frame{{kind: frameNonTerminal, nt: p.grammar.Entrypoint()}}

	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]

		switch top.kind {
		case frameTerminal:
			if err := p.stepTerminal(top); err != nil {
				return err
			}
		case frameNonTerminal:
			if err := p.stepNonTerminal(top); err != nil {
				return err
			}
		case framePostRule:
			if err := p.fireActions(top.rule.Actions(), top.rule); err != nil {
				return err
			}
		case framePostEntry:
			if err := p.fireActions(top.entry.Actions(), top.entry); err != nil {
				return err
			}
		}
	}

	if p.lookahead.Code != obtoken.End {
		return p.syntaxErrorf("unexpected trailing input %s", p.lookahead)
	}
	return nil
}

// stepTerminal implements spec.md §4.4 step 1: match the lookahead against
// the entry's expected code (or accept anything if the code is Empty),
// consuming the token and firing the entry's actions with it stored as
// last_token.
func (p *Parser) stepTerminal(f frame) error {
	if !p.lookahead.Is(f.entry.TerminalCode) {
		return p.syntaxErrorf("expected %s, got %s", f.entry.TerminalCode, p.lookahead)
	}
	p.lastToken = p.lookahead

	next, err := p.nextAcceptedToken()
	if err != nil {
		return err
	}
	p.lookahead = next

	return p.fireActions(f.entry.Actions(), f.entry)
}

// stepNonTerminal implements spec.md §4.4 step 2: look up the rule
// predicted for the current lookahead, fire the nonterminal's own actions,
// then push a post-rule sentinel and the rule's entries (each nonterminal
// entry followed by its own post-entry sentinel) in reverse order so they
// pop in left-to-right declaration order.
func (p *Parser) stepNonTerminal(f frame) error {
	rule, ok := f.nt.Predict(p.lookahead.Code)
	if !ok {
		return p.syntaxErrorf("unexpected token %s while parsing %s", p.lookahead, f.nt.Name)
	}

	if err := p.fireActions(f.nt.Actions(), f.nt); err != nil {
		return err
	}

	p.stack = append(p.stack, frame{kind: framePostRule, rule: rule})
	for i := len(rule.Entries) - 1; i >= 0; i-- {
		entry := rule.Entries[i]
		switch entry.Kind {
		case obgrammar.EntryTerminal:
			// Terminal entries fire their own actions inline, right after
			// the token is consumed (see stepTerminal), since there's no
			// sub-derivation to wait on; no post-entry sentinel is needed.
			p.stack = append(p.stack, frame{kind: frameTerminal, entry: entry})
		case obgrammar.EntryNonTerminal:
			target := p.grammar.Lookup(entry.NonTerminal)
			if target == nil {
				return p.syntaxErrorf("grammar references unknown nonterminal %q", entry.NonTerminal)
			}
			p.stack = append(p.stack, frame{kind: framePostEntry, entry: entry})
			p.stack = append(p.stack, frame{kind: frameNonTerminal, nt: target, entry: entry})
		}
	}
	return nil
}

func (p *Parser) fireActions(actions []obgrammar.GrammarAction, owner elementVariabler) error {
	prevElement := p.activeElement
	p.activeElement = owner
	defer func() { p.activeElement = prevElement }()

	for _, action := range actions {
		var args []obvalue.Value
		if action.Data != nil {
			args = []obvalue.Value{action.Data}
		}
		_, err := action.Fn(p, args)
		if err != nil {
			if exc, ok := err.(*obxerr.Exception); ok {
				return exc
			}
			return obxerr.Wrap(err, obxerr.SyntaxError, "action %q failed", action.Name)
		}
	}
	return nil
}

// nextAcceptedToken reads exactly one token from the lexer (NewLine and
// Whitespace tokens are suppressed, or not, by the lexer's own options;
// this function does not filter them), returning a SyntaxError if the
// lexer itself produced an Error token (spec.md §7: "An Error token from
// the lexer ... become[s] parse errors").
func (p *Parser) nextAcceptedToken() (obtoken.Token, error) {
	tok := p.lexer.NextToken()
	if tok.Code == obtoken.Error {
		return tok, p.syntaxErrorf("lexer error: %s", tok.Text)
	}
	return tok, nil
}
