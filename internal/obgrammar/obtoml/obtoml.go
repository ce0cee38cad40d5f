// Package obtoml loads a Grammar from an external TOML descriptor file, the
// declarative alternative to building one with obgrammar's Go constructor
// calls directly (spec.md §3's Non-goal list excludes a concrete grammar
// file FORMAT, but the module it describes obviously has to come from
// somewhere when not embedded in code — a loader is the natural ambient
// counterpart).
//
// The struct shape and "parse raw, then walk and build the real model"
// two-pass approach is grounded on the teacher's internal/tqw package,
// which loads TunaQuest world data the same way: a topLevelWorldData TOML
// struct decoded with github.com/BurntSushi/toml, then converted field by
// field into the game package's real types (internal/tqw/marshaledtypes.go,
// internal/tqw/tqw.go).
package obtoml

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/obelix-lang/obelix/internal/obgrammar"
	"github.com/obelix-lang/obelix/internal/obtoken"
	"github.com/obelix-lang/obelix/internal/obvalue"
)

// topLevelGrammar is the raw shape of a grammar descriptor file, decoded
// directly by BurntSushi/toml before being walked into a *obgrammar.Grammar.
type topLevelGrammar struct {
	Format string `toml:"format"`

	Options      map[string]string       `toml:"options"`
	Nonterminals []nonterminalDescriptor `toml:"nonterminal"`
}

type nonterminalDescriptor struct {
	Name    string           `toml:"name"`
	Options map[string]string `toml:"options"`
	Rules   []ruleDescriptor `toml:"rule"`
}

type ruleDescriptor struct {
	Options map[string]string `toml:"options"`
	Entries []entryDescriptor `toml:"entry"`
	Actions []actionDescriptor `toml:"action"`
}

type entryDescriptor struct {
	// Exactly one of Terminal, Keyword, or NonTerminal must be set.
	Terminal    string `toml:"terminal"`
	Keyword     string `toml:"keyword"`
	NonTerminal string `toml:"nonterminal"`

	Options map[string]string  `toml:"options"`
	Actions []actionDescriptor `toml:"action"`
}

type actionDescriptor struct {
	Name string `toml:"name"`
	Data string `toml:"data"`
}

// Load reads a grammar descriptor file at path and builds a *obgrammar.Grammar
// from it, resolving named semantic actions via resolver.
func Load(path string, resolver obvalue.FunctionResolver) (*obgrammar.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("obtoml: %w", err)
	}
	return Parse(data, resolver)
}

// Parse decodes a grammar descriptor from data and builds a
// *obgrammar.Grammar from it.
func Parse(data []byte, resolver obvalue.FunctionResolver) (*obgrammar.Grammar, error) {
	var top topLevelGrammar
	if _, err := toml.Decode(string(data), &top); err != nil {
		return nil, fmt.Errorf("obtoml: decode: %w", err)
	}
	if top.Format != "obelix-grammar" {
		return nil, fmt.Errorf("obtoml: unrecognized format %q, want \"obelix-grammar\"", top.Format)
	}

	g := obgrammar.NewGrammar(resolver)

	for name, value := range top.Options {
		if err := g.SetGrammarOption(name, obtoken.New(obtoken.Identifier, value, 0, 0)); err != nil {
			return nil, fmt.Errorf("obtoml: grammar option %q: %w", name, err)
		}
	}

	// First pass: declare every nonterminal so forward references in rule
	// entries resolve regardless of declaration order in the file.
	for _, ntd := range top.Nonterminals {
		g.Nonterminal(ntd.Name)
	}

	for _, ntd := range top.Nonterminals {
		nt := g.Nonterminal(ntd.Name)
		for name, value := range ntd.Options {
			if err := nt.SetOption(name, obtoken.New(obtoken.Identifier, value, 0, 0)); err != nil {
				return nil, fmt.Errorf("obtoml: nonterminal %q option %q: %w", ntd.Name, name, err)
			}
		}

		for _, rd := range ntd.Rules {
			r := nt.Rule()
			for name, value := range rd.Options {
				if err := r.SetOption(name, obtoken.New(obtoken.Identifier, value, 0, 0)); err != nil {
					return nil, fmt.Errorf("obtoml: rule in %q option %q: %w", ntd.Name, name, err)
				}
			}
			for _, ad := range rd.Actions {
				if err := r.AddAction(ad.Name, literalData(ad.Data)); err != nil {
					return nil, fmt.Errorf("obtoml: rule in %q action %q: %w", ntd.Name, ad.Name, err)
				}
			}

			for _, ed := range rd.Entries {
				re, err := buildEntry(r, ed)
				if err != nil {
					return nil, fmt.Errorf("obtoml: nonterminal %q: %w", ntd.Name, err)
				}
				for name, value := range ed.Options {
					if err := re.SetOption(name, obtoken.New(obtoken.Identifier, value, 0, 0)); err != nil {
						return nil, fmt.Errorf("obtoml: entry in %q option %q: %w", ntd.Name, name, err)
					}
				}
				for _, ad := range ed.Actions {
					if err := re.AddAction(ad.Name, literalData(ad.Data)); err != nil {
						return nil, fmt.Errorf("obtoml: entry in %q action %q: %w", ntd.Name, ad.Name, err)
					}
				}
			}
		}
	}

	if err := g.Analyze(); err != nil {
		return nil, err
	}
	return g, nil
}

func buildEntry(r *obgrammar.Rule, ed entryDescriptor) (*obgrammar.RuleEntry, error) {
	switch {
	case ed.Keyword != "":
		return r.Keyword(ed.Keyword), nil
	case ed.NonTerminal != "":
		return r.NonTerminalRef(ed.NonTerminal), nil
	case ed.Terminal != "":
		code, err := obtoken.ParseCodeName(ed.Terminal)
		if err != nil {
			return nil, err
		}
		return r.Terminal(code), nil
	default:
		return nil, fmt.Errorf("entry has none of terminal/keyword/nonterminal set")
	}
}

// literalData wraps a raw descriptor string as an obvalue.Value data
// argument if non-empty, matching the teacher's toml.Primitive deferred
// decode for flag.Default (internal/tqw/marshaledtypes.go's flag struct):
// the format can't statically know whether it's an int, string or bool, so
// it's carried as text and interpreted by the consuming action.
func literalData(s string) obvalue.Value {
	if s == "" {
		return nil
	}
	return textValue(s)
}

// textValue is the minimal obvalue.Value obtoml needs for action data
// literals; obrt.Primitive is the richer runtime counterpart used
// everywhere else once execution starts.
type textValue string

func (t textValue) Type() string        { return "string" }
func (t textValue) Equal(o obvalue.Value) bool {
	other, ok := o.(textValue)
	return ok && other == t
}
func (t textValue) Bool() (bool, error) { return t != "", nil }
func (t textValue) String() string      { return string(t) }
func (t textValue) Iter() (obvalue.Iterator, error) {
	return nil, fmt.Errorf("obtoml: literal text values are not iterable")
}
func (t textValue) Execute(string, []obvalue.Value) (obvalue.Value, error) {
	return nil, fmt.Errorf("obtoml: literal text values define no operators")
}
func (t textValue) Call(string, []obvalue.Value) (obvalue.Value, error) {
	return nil, fmt.Errorf("obtoml: literal text values are not callable")
}
