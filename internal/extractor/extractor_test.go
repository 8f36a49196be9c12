package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(rules.Default(), DefaultParams(), signature.Options{NormalizeDecimals: true})
	require.NoError(t, err)
	return e
}

// S1 — a single clean table with no preamble or footnotes.
func TestDiscoverSingleCleanTable(t *testing.T) {
	grid := [][]string{
		{"name", "age", "city"},
		{"alice", "30", "nyc"},
		{"bob", "41", "sf"},
		{"carol", "29", "la"},
	}
	e := newTestExtractor(t)
	result, err := e.Discover(grid)
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)

	got := result.Tables[0]
	require.Equal(t, []int{0}, got.Header)
	require.Equal(t, 1, got.DataStart)
	require.Equal(t, 3, got.DataEnd)
	require.Empty(t, got.Footnotes)
	require.Empty(t, got.SubheaderScope)
}

// S2 — four contiguous preamble metadata rows, one table, a subheader row,
// and trailing footnotes.
func TestDiscoverPreambleTableFootnote(t *testing.T) {
	grid := [][]string{
		{"Election night estimates"},
		{"Dates: Oct 17-20, 2019"},
		{"Method: phone and online panel"},
		{"Sample size: 1,994"},
		{"PARTY", "LEAD_NAME", "PROJ_SUPPORT"},
		{"LIB", "Smith", "34"},
		{"CON", "Jones", "31"},
		{"NDP", "Lee", "18"},
		{"GRN", "Park", "4"},
		{"BQ", "Roy", "7"},
		{"PPC", "Otto", "2"},
		{"NOT PREDICTED TO WIN RIDINGS", "", ""},
		{"OTH", "nd", "1"},
		{"(MOE) margin of error +/- 2.8%"},
		{"* projected support, not seat count"},
		{"Source: ABC News poll"},
	}
	e := newTestExtractor(t)
	result, err := e.Discover(grid)
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)

	got := result.Tables[0]
	require.Equal(t, 0, got.TopBoundary)
	require.Equal(t, []int{4}, got.Header)
	require.Equal(t, 5, got.DataStart)
	require.Equal(t, 12, got.DataEnd)
	require.Contains(t, got.SubheaderScope, 11)
	require.Equal(t, []int{13, 14, 15}, got.Footnotes)
	require.Equal(t, 15, got.BottomBoundary)
}

// S6 — an aggregation row is absorbed into the data body, not the subheader
// set.
func TestDiscoverAggregationRow(t *testing.T) {
	grid := [][]string{
		{"region", "units"},
		{"north", "10"},
		{"south", "20"},
		{"east", "15"},
		{"west", "5"},
		{"Total", "50"},
	}
	e := newTestExtractor(t)
	result, err := e.Discover(grid)
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)
	got := result.Tables[0]
	require.Equal(t, 5, got.DataEnd)
	require.Contains(t, got.AggregationScope, 5)
	require.NotContains(t, got.SubheaderScope, 5)
}

func TestDiscoverRejectsEmptyGrid(t *testing.T) {
	e := newTestExtractor(t)
	_, err := e.Discover(nil)
	require.Error(t, err)
	var extErr *Error
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, InvalidInput, extErr.Kind)
}

func TestNewRejectsIncompleteCatalogue(t *testing.T) {
	_, err := New(&rules.Catalogue{}, DefaultParams(), signature.Options{})
	require.Error(t, err)
}
