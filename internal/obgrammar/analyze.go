package obgrammar

import (
	"fmt"
	"sort"

	"github.com/obelix-lang/obelix/internal/obtoken"
)

// Analyze computes FIRST and FOLLOW sets for every nonterminal, checks the
// grammar is LL(1), and builds each nonterminal's predictive parse table,
// per spec.md §4.3's four-step analysis algorithm. It is idempotent: calling
// it again recomputes everything from scratch.
func (g *Grammar) Analyze() error {
	if g.Entrypoint() == nil {
		return fmt.Errorf("obgrammar: grammar has no nonterminals")
	}

	g.computeFirst()
	g.computeFollow()
	if err := g.checkLL1(); err != nil {
		return err
	}
	g.buildParseTables()
	return nil
}

// computeFirst fills in FIRST(rule) and FIRST(nonterminal) for every rule
// and nonterminal by fixed-point iteration, per spec.md §4.3 step 1:
// FIRST(N) = union of FIRST(R) over N's rules; FIRST(R) is built by
// concatenating the FIRST sets of R's entries left to right, stopping at
// the first entry whose FIRST doesn't contain epsilon (i.e. isn't
// nullable); FIRST(terminal) = {its code}; an empty rule has FIRST = {ε}.
func (g *Grammar) computeFirst() {
	for _, nt := range g.Nonterminals() {
		nt.first = make(map[obtoken.Code]bool)
		for _, r := range nt.Rules {
			r.first = make(map[obtoken.Code]bool)
			r.nullable = r.IsEpsilon()
		}
	}

	for changed := true; changed; {
		changed = false
		for _, nt := range g.Nonterminals() {
			for _, r := range nt.Rules {
				before := len(r.first)
				beforeNullable := r.nullable
				nullable := r.IsEpsilon()

				for _, entry := range r.Entries {
					entryFirst, entryNullable := g.entryFirst(entry)
					for code := range entryFirst {
						r.first[code] = true
					}
					if !entryNullable {
						nullable = false
						break
					}
					nullable = true
				}
				r.nullable = nullable

				if len(r.first) != before || r.nullable != beforeNullable {
					changed = true
				}
			}
			ntBefore := len(nt.first)
			for _, r := range nt.Rules {
				for code := range r.first {
					nt.first[code] = true
				}
			}
			if len(nt.first) != ntBefore {
				changed = true
			}
		}
	}
}

// entryFirst returns the FIRST set of a single rule entry and whether the
// entry is nullable. A terminal's FIRST is always exactly {its code} and
// it's never nullable (an Empty-coded terminal entry, if one ever existed,
// would match anything, but grammars only construct Empty through
// Rule.IsEpsilon's zero-entry form, never as a RuleEntry).
func (g *Grammar) entryFirst(entry *RuleEntry) (map[obtoken.Code]bool, bool) {
	if entry.Kind == EntryTerminal {
		return map[obtoken.Code]bool{entry.TerminalCode: true}, false
	}
	ref := g.Lookup(entry.NonTerminal)
	if ref == nil {
		return map[obtoken.Code]bool{}, false
	}
	nullable := false
	for _, r := range ref.Rules {
		if r.nullable {
			nullable = true
			break
		}
	}
	return ref.first, nullable
}

// computeFollow fills in FOLLOW(nonterminal) for every nonterminal by
// fixed-point iteration, per spec.md §4.3 step 2: the entrypoint's FOLLOW
// starts containing End; for every occurrence of nonterminal B in a
// production A -> alpha B beta, FOLLOW(B) gains FIRST(beta) minus epsilon,
// plus all of FOLLOW(A) if beta is empty or entirely nullable.
func (g *Grammar) computeFollow() {
	for _, nt := range g.Nonterminals() {
		nt.follow = make(map[obtoken.Code]bool)
	}
	g.Entrypoint().follow[obtoken.End] = true

	for changed := true; changed; {
		changed = false
		for _, nt := range g.Nonterminals() {
			for _, r := range nt.Rules {
				for i, entry := range r.Entries {
					if entry.Kind != EntryNonTerminal {
						continue
					}
					target := g.Lookup(entry.NonTerminal)
					if target == nil {
						continue
					}
					before := len(target.follow)

					betaNullable := true
					for _, beta := range r.Entries[i+1:] {
						betaFirst, betaEntryNullable := g.entryFirst(beta)
						for code := range betaFirst {
							target.follow[code] = true
						}
						if !betaEntryNullable {
							betaNullable = false
							break
						}
					}
					if betaNullable {
						for code := range nt.follow {
							target.follow[code] = true
						}
					}

					if len(target.follow) != before {
						changed = true
					}
				}
			}
		}
	}
}

// checkLL1 verifies the grammar is LL(1), per spec.md §4.3 step 3: for each
// nonterminal, the FIRST sets of its rules must be pairwise disjoint, and if
// any rule is nullable, the FIRST sets of the nonterminal's other rules must
// also be disjoint from the nonterminal's FOLLOW.
func (g *Grammar) checkLL1() error {
	for _, nt := range g.Nonterminals() {
		seen := make(map[obtoken.Code]*Rule)
		for _, r := range nt.Rules {
			for code := range r.first {
				if prev, ok := seen[code]; ok {
					return fmt.Errorf("obgrammar: %s is not LL(1): rules %q and %q both start with %s",
						nt.Name, prev.String(), r.String(), code)
				}
				seen[code] = r
			}
		}
		for _, r := range nt.Rules {
			if !r.nullable {
				continue
			}
			for code := range nt.follow {
				if prev, ok := seen[code]; ok && prev != r {
					return fmt.Errorf("obgrammar: %s is not LL(1): nullable rule %q conflicts with %q on FOLLOW token %s",
						nt.Name, r.String(), prev.String(), code)
				}
			}
		}
	}
	return nil
}

// buildParseTables fills in each nonterminal's predictive parse table, per
// spec.md §4.3 step 4: parse_table[N][t] = R for every t in FIRST(R) minus
// epsilon, and additionally for every t in FOLLOW(N) if R is nullable.
// checkLL1 having passed guarantees no entry is written twice with
// different rules, but ties are resolved first-rule-wins regardless.
func (g *Grammar) buildParseTables() {
	for _, nt := range g.Nonterminals() {
		nt.parseTable = make(map[obtoken.Code]*Rule)
		for _, r := range nt.Rules {
			for code := range r.first {
				if _, ok := nt.parseTable[code]; !ok {
					nt.parseTable[code] = r
				}
			}
			if r.nullable {
				for code := range nt.follow {
					if _, ok := nt.parseTable[code]; !ok {
						nt.parseTable[code] = r
					}
				}
			}
		}
	}
}

// Predict returns the rule to expand when the nonterminal is on top of the
// parse stack and code is the current lookahead, per spec.md §4.4 step 1.
// The bool is false if no rule applies (a SyntaxError at the parser level).
func (nt *Nonterminal) Predict(code obtoken.Code) (*Rule, bool) {
	r, ok := nt.parseTable[code]
	return r, ok
}

// First returns the sorted codes in this nonterminal's FIRST set, for
// diagnostics and tests.
func (nt *Nonterminal) First() []obtoken.Code { return sortedCodes(nt.first) }

// Follow returns the sorted codes in this nonterminal's FOLLOW set, for
// diagnostics and tests.
func (nt *Nonterminal) Follow() []obtoken.Code { return sortedCodes(nt.follow) }

// NonterminalAnalysis is an exported, serialization-friendly snapshot of one
// nonterminal's computed FIRST/FOLLOW/parse-table, used by obgrammar/obcache
// to persist and restore the result of Analyze without re-running the
// fixed-point computation, per the teacher's fetmpl generated-parser pattern
// of shipping a precomputed table alongside the grammar that produced it
// (tunascript/fetmpl/parser.ict.go's go:embed parser.cff + DecodeBytes).
type NonterminalAnalysis struct {
	Name   string
	First  []obtoken.Code
	Follow []obtoken.Code
	// ParseTable maps a lookahead code to the index, within the
	// nonterminal's Rules slice, of the rule predicted for that lookahead.
	ParseTable map[obtoken.Code]int
}

// ExportAnalysis returns a serialization-friendly snapshot of every
// nonterminal's analysis results. Analyze must have been called first.
func (g *Grammar) ExportAnalysis() []NonterminalAnalysis {
	out := make([]NonterminalAnalysis, 0, len(g.names))
	for _, nt := range g.Nonterminals() {
		table := make(map[obtoken.Code]int, len(nt.parseTable))
		for code, r := range nt.parseTable {
			for i, candidate := range nt.Rules {
				if candidate == r {
					table[code] = i
					break
				}
			}
		}
		out = append(out, NonterminalAnalysis{
			Name:       nt.Name,
			First:      nt.First(),
			Follow:     nt.Follow(),
			ParseTable: table,
		})
	}
	return out
}

// ImportAnalysis restores a previously exported analysis snapshot onto this
// grammar's nonterminals, skipping the fixed-point computation in Analyze.
// It fails if the snapshot's nonterminal count differs from the grammar's,
// if it names a nonterminal the grammar lacks, or if a parse-table entry
// points past the end of that nonterminal's Rules, which are the signals
// that the grammar changed since the snapshot was taken and the cache is
// stale. Rule counts are not compared otherwise.
func (g *Grammar) ImportAnalysis(snapshot []NonterminalAnalysis) error {
	if len(snapshot) != len(g.names) {
		return fmt.Errorf("obgrammar: analysis snapshot has %d nonterminals, grammar has %d", len(snapshot), len(g.names))
	}
	for _, entry := range snapshot {
		nt := g.Lookup(entry.Name)
		if nt == nil {
			return fmt.Errorf("obgrammar: analysis snapshot names unknown nonterminal %q", entry.Name)
		}
		nt.first = toSet(entry.First)
		nt.follow = toSet(entry.Follow)
		nt.parseTable = make(map[obtoken.Code]*Rule, len(entry.ParseTable))
		for code, idx := range entry.ParseTable {
			if idx < 0 || idx >= len(nt.Rules) {
				return fmt.Errorf("obgrammar: analysis snapshot for %q references out-of-range rule %d", entry.Name, idx)
			}
			nt.parseTable[code] = nt.Rules[idx]
		}
	}
	return nil
}

func toSet(codes []obtoken.Code) map[obtoken.Code]bool {
	m := make(map[obtoken.Code]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

func sortedCodes(m map[obtoken.Code]bool) []obtoken.Code {
	out := make([]obtoken.Code, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
