package training

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tablescout/tablescout/internal/extractor"
	"github.com/tablescout/tablescout/internal/signature"
)

func TestRunProducesValidCatalogue(t *testing.T) {
	grid := [][]string{
		{"Region", "Sales", "Units"},
		{"North", "1000", "10"},
		{"South", "2000", "20"},
		{"TOTAL", "3000", "30"},
	}
	ann := Annotation{
		Grid: grid,
		Labels: map[int]extractor.RowType{
			0: extractor.RowHeader,
			1: extractor.RowData,
			2: extractor.RowData,
			3: extractor.RowAggregation,
		},
	}

	cat, err := Run([]Annotation{ann}, signature.Options{})
	require.NoError(t, err)
	require.NoError(t, cat.Validate())
	require.NotEmpty(t, cat.CellData)
	require.NotEmpty(t, cat.LineNotData)
}

func TestRunRejectsEmptyAnnotations(t *testing.T) {
	_, err := Run(nil, signature.Options{})
	require.Error(t, err)
}
