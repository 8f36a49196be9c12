package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/internal/signature"
)

func cellsFor(values ...string) []signature.Cell {
	out := make([]signature.Cell, len(values))
	for i, v := range values {
		out[i] = signature.NewCell(i, 0, v, signature.Options{NormalizeDecimals: true})
	}
	return out
}

func TestBuildChainConsistent(t *testing.T) {
	s := Build(cellsFor("100", "200", "300"))
	require.True(t, s.ChainConsistent)
	require.True(t, s.AllNumeric)
	require.Equal(t, 3, s.SummaryStrength)
}

func TestBuildChainWildcardOnDisagreement(t *testing.T) {
	s := Build(cellsFor("100", "20", "3"))
	require.False(t, s.ChainConsistent)
	require.NotEmpty(t, s.Chain)
}

func TestBuildCaseSummaryMixed(t *testing.T) {
	s := Build(cellsFor("ALICE", "bob"))
	require.Equal(t, signature.CaseMixed, s.Case)
}

// Incremental extension over any prefix must match a batch recompute over
// the same prefix (§8, testable property: incremental extension equivalence).
func TestIncrementalMatchesBatch(t *testing.T) {
	values := []string{"100", "200", "3000", "40", "total row"}
	cells := cellsFor(values...)

	inc := NewIncremental()
	for i, c := range cells {
		inc.Extend(c)

		batch := Build(cells[:i+1])
		require.Equal(t, batch.Chain, inc.Summary.Chain, "chain mismatch at prefix %d", i+1)
		require.Equal(t, batch.ChainConsistent, inc.Summary.ChainConsistent, "chain-consistent mismatch at prefix %d", i+1)
		require.Equal(t, batch.SummaryStrength, inc.Summary.SummaryStrength, "strength mismatch at prefix %d", i+1)
		require.Equal(t, batch.LengthMin, inc.Summary.LengthMin, "length min mismatch at prefix %d", i+1)
		require.Equal(t, batch.LengthMax, inc.Summary.LengthMax, "length max mismatch at prefix %d", i+1)
		require.Equal(t, batch.AllNumeric, inc.Summary.AllNumeric, "all-numeric mismatch at prefix %d", i+1)
	}
}
