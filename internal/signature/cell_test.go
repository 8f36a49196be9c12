package signature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCellTrain(t *testing.T) {
	c := NewCell(0, 0, "1,234.56", Options{NormalizeDecimals: true})
	require.True(t, c.IsNumber)
	require.Equal(t, CaseNone, c.Case)
}

func TestNewCellCaseClassification(t *testing.T) {
	require.Equal(t, CaseAllCaps, NewCell(0, 0, "TOTAL", Options{}).Case)
	require.Equal(t, CaseAllLower, NewCell(0, 0, "total", Options{}).Case)
	require.Equal(t, CaseTitle, NewCell(0, 0, "Total Sales", Options{}).Case)
	require.Equal(t, CaseMixed, NewCell(0, 0, "ToTal", Options{}).Case)
}

func TestNewCellNullEquivalent(t *testing.T) {
	require.True(t, NewCell(0, 0, "", Options{}).IsNullEquivalent)
	require.True(t, NewCell(0, 0, "N/A", Options{}).IsNullEquivalent)
	require.False(t, NewCell(0, 0, "42", Options{}).IsNullEquivalent)
}

func TestNewCellAggregatePhrase(t *testing.T) {
	c := NewCell(0, 0, "Grand Total", Options{})
	require.True(t, c.IsAggregate)
}

func TestNewCellTokenizeDropsStopwordsAndNumbers(t *testing.T) {
	c := NewCell(0, 0, "the Proj Support of the Region 2019", Options{})
	require.NotContains(t, c.Tokens, "the")
	require.NotContains(t, c.Tokens, "of")
	require.NotContains(t, c.Tokens, "2019")
	require.Contains(t, c.Tokens, "proj")
}

func TestBuildTrainCollapsesRuns(t *testing.T) {
	c := NewCell(0, 0, "abc123", Options{})
	require.Equal(t, Train{{Class: "L", Count: 3}, {Class: "D", Count: 3}}, c.Train)
}

func TestParseNumeric(t *testing.T) {
	v, ok := ParseNumeric("1,234.5")
	require.True(t, ok)
	require.InDelta(t, 1234.5, v, 0.0001)

	_, ok = ParseNumeric("abc")
	require.False(t, ok)
}
