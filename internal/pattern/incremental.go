package pattern

import "github.com/tablescout/tablescout/internal/signature"

// state carries the bookkeeping an incremental Summary needs beyond its
// exported fields so that Extend can update it in O(pattern-length) without
// re-scanning every row of the window.
type state struct {
	sameTrainLen   bool
	commonTrainLen int
	lengthCounts   map[int]int
	initialized    bool
}

// Incremental wraps a Summary together with the private state Extend needs.
// BuildIncremental (or NewIncremental followed by Extend) populates it; Build
// returns a plain Summary, which is sufficient for callers that never extend
// a window.
type Incremental struct {
	Summary
	st state
}

// NewIncremental constructs an empty incremental summary ready for Extend.
func NewIncremental() *Incremental {
	return &Incremental{
		Summary: Summary{
			Symbols:     map[string]struct{}{},
			TokenCounts: map[string]int{},
			ValueCounts: map[string]int{},
		},
		st: state{lengthCounts: map[int]int{}},
	}
}

// BuildIncremental folds a batch of cells (top-to-bottom) into a fresh
// Incremental, one Extend call per cell; the result is identical to Build
// applied to the same cells, by construction.
func BuildIncremental(cells []signature.Cell) *Incremental {
	inc := NewIncremental()
	for _, c := range cells {
		inc.Extend(c)
	}
	return inc
}

// Extend folds one additional row's cell into the summary in O(len(chain)),
// without rebuilding the whole window from scratch (§4.2).
func (inc *Incremental) Extend(c signature.Cell) {
	inc.extendTokenAndValueCounts(c)

	if len(c.Train) == 0 {
		return
	}

	inc.Summary.SummaryStrength++

	if !inc.st.initialized {
		inc.Summary.Chain = append(signature.Train{}, c.Train...)
		inc.Summary.BwChain = append(signature.Train{}, c.BwTrain...)
		inc.Summary.Symbols = cloneSymbols(c.Symbols)
		inc.Summary.Case = c.Case
		inc.Summary.LengthMin = c.CharLength
		inc.Summary.LengthMax = c.CharLength
		inc.Summary.AllNumeric = c.IsNumber
		inc.Summary.ConsistentSymbolSets = true
		inc.st.sameTrainLen = true
		inc.st.commonTrainLen = len(c.Train)
		inc.st.lengthCounts[c.CharLength]++
		inc.Summary.LengthMode = c.CharLength
		inc.st.initialized = true
		inc.Summary.ChainConsistent = true
		return
	}

	inc.Summary.ChainConsistent = inc.Summary.ChainConsistent && trainEqualsChain(c.Train, inc.Summary.Chain)
	inc.Summary.Chain = intersectChain(inc.Summary.Chain, c.Train)
	inc.Summary.BwChain = intersectChain(inc.Summary.BwChain, c.BwTrain)

	if inc.st.commonTrainLen != len(c.Train) {
		inc.st.sameTrainLen = false
	}

	inc.Summary.ConsistentSymbolSets = inc.Summary.ConsistentSymbolSets && sameSymbolSet(inc.Summary.Symbols, c.Symbols)
	for k := range inc.Summary.Symbols {
		if _, ok := c.Symbols[k]; !ok {
			delete(inc.Summary.Symbols, k)
		}
	}

	if c.CharLength < inc.Summary.LengthMin {
		inc.Summary.LengthMin = c.CharLength
	}
	if c.CharLength > inc.Summary.LengthMax {
		inc.Summary.LengthMax = c.CharLength
	}
	inc.st.lengthCounts[c.CharLength]++
	inc.Summary.LengthMode = modeOf(inc.st.lengthCounts)

	if c.Case != inc.Summary.Case {
		inc.Summary.Case = signature.CaseMixed
	}
	inc.Summary.AllNumeric = inc.Summary.AllNumeric && c.IsNumber
}

func (inc *Incremental) extendTokenAndValueCounts(c signature.Cell) {
	for _, tok := range c.Tokens {
		inc.Summary.TokenCounts[tok]++
	}
	if c.Value != "" {
		inc.Summary.ValueCounts[c.Value]++
	}
}

// intersectChain folds one additional train into an existing chain in
// O(len(chain)): it truncates at the first class disagreement and widens
// any disagreeing run length to the wildcard sentinel (-1), exactly
// mirroring what a full batch recompute over the same trains would produce.
func intersectChain(chain signature.Train, t signature.Train) signature.Train {
	limit := len(chain)
	if len(t) < limit {
		limit = len(t)
	}
	out := make(signature.Train, 0, limit)
	for i := 0; i < limit; i++ {
		if chain[i].Class != t[i].Class {
			break
		}
		count := chain[i].Count
		if count != -1 && t[i].Count != count {
			count = -1
		}
		out = append(out, signature.Run{Class: chain[i].Class, Count: count})
	}
	return out
}

func cloneSymbols(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func sameSymbolSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func modeOf(counts map[int]int) int {
	best := -1
	bestCount := -1
	for length, count := range counts {
		if count > bestCount || (count == bestCount && length < best) {
			best = length
			bestCount = count
		}
	}
	return best
}
