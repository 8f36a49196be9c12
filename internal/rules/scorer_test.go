package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestMaxScoreIgnoresNullAndBelowThreshold(t *testing.T) {
	cat := map[string]Entry{
		"A": {Weight: nil},
		"B": {Weight: ptr(0.05)},
		"C": {Weight: ptr(0.7)},
	}
	require.Equal(t, 0.7, MaxScore([]string{"A", "B", "C"}, cat, 0.1))
	require.Equal(t, 0.0, MaxScore([]string{"A", "B"}, cat, 0.1))
	require.Equal(t, 0.0, MaxScore(nil, cat, 0.1))
}

// ProbabilisticOR is monotone (§8.5) and permutation-invariant (§8.4).
func TestProbabilisticORMonotoneAndPermutationInvariant(t *testing.T) {
	base := ProbabilisticOR([]float64{0.2, 0.3})
	withMore := ProbabilisticOR([]float64{0.2, 0.3, 0.1})
	require.GreaterOrEqual(t, withMore, base)

	a := ProbabilisticOR([]float64{0.2, 0.5, 0.9})
	b := ProbabilisticOR([]float64{0.9, 0.2, 0.5})
	require.InDelta(t, a, b, 1e-9)
}

func TestProbabilisticOREmptyIsZero(t *testing.T) {
	require.Equal(t, 0.0, ProbabilisticOR(nil))
}

func TestScoreRowsNullImputationLooksBackOnlyWhenPriorIsData(t *testing.T) {
	cat := Default()
	params := Parameters{
		ImputeNulls:             true,
		SummaryPopulationFactor: true,
		WeightInput:             "values_and_lines",
		WeightLowerBound:        0.1,
		NotDataWeightLowerBound: 0.1,
		P:                       0.15,
	}
	evidence := map[int]RowEvidence{
		0: {Cells: map[int]CellAgreement{0: {Agreements: []string{"CONSISTENT_NUMERIC"}, SummaryStrength: 3}}},
		1: {Cells: map[int]CellAgreement{0: {NullEquivalent: true, SummaryStrength: 0}}},
	}
	dataConf, notDataConf := ScoreRows(cat, params, []int{0, 1}, evidence)
	require.True(t, math.IsNaN(dataConf[1]) == false)
	require.GreaterOrEqual(t, dataConf[0], notDataConf[0])
	// Row 0 is data, so the null row 1 imputes row 0's data confidence.
	require.InDelta(t, dataConf[0], dataConf[1], 1e-9)

	// With row 0 leaning not-data, row 1 does not look back.
	evidence[0] = RowEvidence{Cells: map[int]CellAgreement{0: {
		Agreements:                  []string{"CONSISTENT_NUMERIC"},
		SummaryStrength:             3,
		Disagreements:               []string{"BROAD_NUMERIC"},
		DisagreementSummaryStrength: 3,
	}}}
	dataConf2, notDataConf2 := ScoreRows(cat, params, []int{0, 1}, evidence)
	require.Less(t, dataConf2[0], notDataConf2[0])
	require.Equal(t, 0.0, dataConf2[1])
}
