// Package pattern summarises vertical windows of cell signatures into the
// context a rule predicate compares a candidate cell against.
package pattern

import (
	"github.com/tablescout/tablescout/internal/signature"
)

// Summary is the context-pattern summary for one column over one window of
// rows: a majority chain (forward and backward), a symbol-set intersection,
// a case/length summary, population counts, and a numeric-purity flag.
type Summary struct {
	Chain           signature.Train
	ChainConsistent bool
	BwChain         signature.Train
	Symbols         map[string]struct{}
	Case            signature.Case
	LengthMin       int
	LengthMax       int
	LengthMode      int
	SummaryStrength int
	ConsistentSymbolSets bool
	AllNumeric      bool
	TokenCounts     map[string]int
	ValueCounts     map[string]int
}

// Build computes a Summary from a vertical slice of cells in one column,
// in the order supplied (callers typically pass a forward top-to-bottom
// slice for the forward summary and a reversed slice for the backward one).
func Build(cells []signature.Cell) Summary {
	s := Summary{
		Symbols:     map[string]struct{}{},
		TokenCounts: map[string]int{},
		ValueCounts: map[string]int{},
	}
	nonEmpty := make([]signature.Cell, 0, len(cells))
	for _, c := range cells {
		if len(c.Train) > 0 {
			nonEmpty = append(nonEmpty, c)
		}
	}
	s.SummaryStrength = len(nonEmpty)

	trains := make([]signature.Train, len(nonEmpty))
	for i, c := range nonEmpty {
		trains[i] = c.Train
	}
	s.Chain, s.ChainConsistent = chainSummary(trains)

	bwTrains := make([]signature.Train, len(nonEmpty))
	for i, c := range nonEmpty {
		bwTrains[i] = c.BwTrain
	}
	s.BwChain, _ = chainSummary(bwTrains)

	s.Symbols = symbolIntersection(nonEmpty)
	s.ConsistentSymbolSets = isConsistentSymbolSets(nonEmpty)
	s.Case = caseSummary(nonEmpty)
	s.LengthMin, s.LengthMax, s.LengthMode = lengthSummary(nonEmpty)
	s.AllNumeric = allNumeric(nonEmpty)

	for _, c := range cells {
		for _, tok := range c.Tokens {
			s.TokenCounts[tok]++
		}
		if c.Value != "" {
			s.ValueCounts[c.Value]++
		}
	}
	return s
}

// chainSummary computes the longest common prefix-chain of class runs
// across all non-empty trains. Lengths collapse to their common value where
// every train agrees, else to a wildcard (Count == -1). ChainConsistent is
// true iff every non-empty train equals the resulting chain exactly.
func chainSummary(trains []signature.Train) (signature.Train, bool) {
	if len(trains) == 0 {
		return nil, false
	}
	maxLen := len(trains[0])
	for _, t := range trains[1:] {
		if len(t) < maxLen {
			maxLen = len(t)
		}
	}
	chain := make(signature.Train, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		class := trains[0][i].Class
		agree := true
		for _, t := range trains[1:] {
			if t[i].Class != class {
				agree = false
				break
			}
		}
		if !agree {
			break
		}
		count := trains[0][i].Count
		for _, t := range trains[1:] {
			if t[i].Count != count {
				count = -1
			}
		}
		chain = append(chain, signature.Run{Class: class, Count: count})
	}
	consistent := true
	for _, t := range trains {
		if !trainEqualsChain(t, chain) {
			consistent = false
			break
		}
	}
	return chain, consistent
}

func trainEqualsChain(t signature.Train, chain signature.Train) bool {
	if len(t) != len(chain) {
		return false
	}
	for i, run := range chain {
		if t[i].Class != run.Class || t[i].Count != run.Count {
			return false
		}
	}
	return true
}

func symbolIntersection(cells []signature.Cell) map[string]struct{} {
	out := map[string]struct{}{}
	first := true
	for _, c := range cells {
		if first {
			for k := range c.Symbols {
				out[k] = struct{}{}
			}
			first = false
			continue
		}
		for k := range out {
			if _, ok := c.Symbols[k]; !ok {
				delete(out, k)
			}
		}
	}
	return out
}

func isConsistentSymbolSets(cells []signature.Cell) bool {
	if len(cells) == 0 {
		return false
	}
	first := cells[0].Symbols
	for _, c := range cells[1:] {
		if len(c.Symbols) != len(first) {
			return false
		}
		for k := range first {
			if _, ok := c.Symbols[k]; !ok {
				return false
			}
		}
	}
	return true
}

func caseSummary(cells []signature.Cell) signature.Case {
	if len(cells) == 0 {
		return signature.CaseNone
	}
	first := cells[0].Case
	for _, c := range cells[1:] {
		if c.Case != first {
			return signature.CaseMixed
		}
	}
	return first
}

func lengthSummary(cells []signature.Cell) (min, max, mode int) {
	if len(cells) == 0 {
		return 0, 0, 0
	}
	min, max = cells[0].CharLength, cells[0].CharLength
	counts := map[int]int{}
	for _, c := range cells {
		if c.CharLength < min {
			min = c.CharLength
		}
		if c.CharLength > max {
			max = c.CharLength
		}
		counts[c.CharLength]++
	}
	bestCount := -1
	for length, count := range counts {
		if count > bestCount || (count == bestCount && length < mode) {
			bestCount = count
			mode = length
		}
	}
	return min, max, mode
}

func allNumeric(cells []signature.Cell) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !c.IsNumber {
			return false
		}
	}
	return true
}
