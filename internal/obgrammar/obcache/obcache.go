// Package obcache persists a Grammar's FIRST/FOLLOW/parse-table analysis to
// disk keyed by a hash of the grammar source it was computed from, so a
// program that builds the same grammar repeatedly (every REPL launch, every
// test run) can skip Grammar.Analyze's fixed-point computation when the
// source hasn't changed.
//
// The encode-then-validate-byte-count approach is grounded on the teacher's
// server/dao/sqlite package, which serializes *game.State the same way
// (rezi.EncBinary/DecBinary, checking the decoded byte count against the
// input length; see convertToDB_GameStatePtr and convertFromDB_GameStatePtr
// in server/dao/sqlite/sqlite.go). The inner field-by-field layout follows
// the teacher's own hand-rolled AST codec (internal/tunascript/binary.go),
// adapted in codec.go.
package obcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dekarrin/rezi"

	"github.com/obelix-lang/obelix/internal/obgrammar"
	"github.com/obelix-lang/obelix/internal/obtoken"
)

// SourceHash returns a stable, short identifier for a grammar source blob
// (e.g. the contents of an obtoml descriptor file), used to detect when a
// cached analysis no longer matches the grammar that would be built from
// the current source.
func SourceHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// entry is the on-disk record: the source hash the analysis was computed
// from, plus one analysis snapshot per nonterminal.
type entry struct {
	sourceHash string
	analysis   []obgrammar.NonterminalAnalysis
}

func (e entry) MarshalBinary() ([]byte, error) {
	data := encString(e.sourceHash)
	data = append(data, encInt(len(e.analysis))...)
	for _, a := range e.analysis {
		data = append(data, encodeAnalysis(a)...)
	}
	return data, nil
}

func (e *entry) UnmarshalBinary(data []byte) error {
	hash, n, err := decString(data)
	if err != nil {
		return err
	}
	data = data[n:]
	e.sourceHash = hash

	count, n, err := decInt(data)
	if err != nil {
		return err
	}
	data = data[n:]

	e.analysis = make([]obgrammar.NonterminalAnalysis, count)
	for i := 0; i < count; i++ {
		a, consumed, err := decodeAnalysis(data)
		if err != nil {
			return err
		}
		data = data[consumed:]
		e.analysis[i] = a
	}
	return nil
}

func encodeAnalysis(a obgrammar.NonterminalAnalysis) []byte {
	data := encString(a.Name)
	data = append(data, encIntSlice(codesToInts(a.First))...)
	data = append(data, encIntSlice(codesToInts(a.Follow))...)

	keys := make([]int, 0, len(a.ParseTable))
	vals := make([]int, 0, len(a.ParseTable))
	for code, idx := range a.ParseTable {
		keys = append(keys, int(code))
		vals = append(vals, idx)
	}
	data = append(data, encIntSlice(keys)...)
	data = append(data, encIntSlice(vals)...)
	return data
}

func decodeAnalysis(data []byte) (obgrammar.NonterminalAnalysis, int, error) {
	total := 0

	name, n, err := decString(data)
	if err != nil {
		return obgrammar.NonterminalAnalysis{}, 0, err
	}
	data, total = data[n:], total+n

	first, n, err := decIntSlice(data)
	if err != nil {
		return obgrammar.NonterminalAnalysis{}, 0, err
	}
	data, total = data[n:], total+n

	follow, n, err := decIntSlice(data)
	if err != nil {
		return obgrammar.NonterminalAnalysis{}, 0, err
	}
	data, total = data[n:], total+n

	keys, n, err := decIntSlice(data)
	if err != nil {
		return obgrammar.NonterminalAnalysis{}, 0, err
	}
	data, total = data[n:], total+n

	vals, n, err := decIntSlice(data)
	if err != nil {
		return obgrammar.NonterminalAnalysis{}, 0, err
	}
	total += n

	if len(keys) != len(vals) {
		return obgrammar.NonterminalAnalysis{}, 0, fmt.Errorf("obcache: parse table key/value count mismatch for %q", name)
	}
	table := make(map[obtoken.Code]int, len(keys))
	for i, k := range keys {
		table[obtoken.Code(k)] = vals[i]
	}

	return obgrammar.NonterminalAnalysis{
		Name:       name,
		First:      intsToCodes(first),
		Follow:     intsToCodes(follow),
		ParseTable: table,
	}, total, nil
}

func codesToInts(codes []obtoken.Code) []int {
	out := make([]int, len(codes))
	for i, c := range codes {
		out[i] = int(c)
	}
	return out
}

func intsToCodes(ints []int) []obtoken.Code {
	out := make([]obtoken.Code, len(ints))
	for i, v := range ints {
		out[i] = obtoken.Code(v)
	}
	return out
}

// Save writes g's current analysis to path, tagged with sourceHash.
func Save(path string, sourceHash string, g *obgrammar.Grammar) error {
	e := entry{sourceHash: sourceHash, analysis: g.ExportAnalysis()}
	data := rezi.EncBinary(e)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("obcache: write %s: %w", path, err)
	}
	return nil
}

// Load reads a cached analysis from path and, if its source hash matches
// sourceHash, applies it to g via Grammar.ImportAnalysis, skipping
// Grammar.Analyze entirely. It reports applied=false (with no error) on a
// hash mismatch, a missing file, or a cache format that doesn't match the
// grammar's current shape, each of which just means the caller should fall
// back to calling g.Analyze() itself.
func Load(path string, sourceHash string, g *obgrammar.Grammar) (applied bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("obcache: read %s: %w", path, err)
	}

	var e entry
	n, err := rezi.DecBinary(data, &e)
	if err != nil || n != len(data) {
		return false, nil
	}
	if e.sourceHash != sourceHash {
		return false, nil
	}
	if err := g.ImportAnalysis(e.analysis); err != nil {
		return false, nil
	}
	return true, nil
}
