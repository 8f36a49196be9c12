package extractor

import (
	"github.com/tablescout/tablescout/internal/pattern"
	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
)

// emptyPayloadBeyondFirstColumn reports whether every cell after column 0 in
// row is null-equivalent: the shape a candidate subheader row has (§4.4 step
// 3, "rows whose payload beyond the first column is null").
func emptyPayloadBeyondFirstColumn(tbl *signature.Table, row int) bool {
	for c := 1; c < tbl.Cols; c++ {
		if !tbl.Cell(row, c).IsNullEquivalent {
			return false
		}
	}
	return true
}

// testSubheaderCandidate re-runs the column-0 cell scoring with row's first
// cell prepended to the data window below it: if the resulting cell-data
// score beats cell-not-data, row stays data; otherwise it is promoted to
// subheader (§4.4 step 4).
func testSubheaderCandidate(tbl *signature.Table, cat *rules.Catalogue, params Params, row, dataEnd int) bool {
	below := row + 1
	bottom := dataEnd
	forward := tbl.ColumnSlice(below, bottom, 0)
	backward := tbl.ReverseColumnSlice(below, bottom, 0)
	candidate := tbl.Cell(row, 0)

	fwd := pattern.Build(forward)
	bwd := pattern.Build(backward)
	ctx := rules.CellContext{Candidate: candidate, Forward: fwd, Backward: bwd}

	dataScore := rules.MaxScore(rules.FireCellRules(ctx, rules.DataPredicates()), cat.CellData, params.WeightLowerBound)
	notDataScore := rules.MaxScore(rules.FireCellRules(ctx, rules.NotDataPredicates()), cat.CellNotData, params.NotDataWeightLowerBound)
	return dataScore > notDataScore
}

// predictSubheadersOld is the pipeline's data-region variant, invoked once the
// LDL walk has returned, over [fdl, dataEnd] (§4.4 step 5): it only ever considers a row a
// subheader candidate when its payload beyond column 0 is already null, then
// confirms with testSubheaderCandidate. This asymmetry with
// predictSubheadersNew is intentional (§9 open question) and preserved
// rather than unified.
func predictSubheadersOld(tbl *signature.Table, cat *rules.Catalogue, params Params, dataStart, dataEnd int) map[int]bool {
	out := make(map[int]bool)
	for r := dataStart; r <= dataEnd; r++ {
		if !emptyPayloadBeyondFirstColumn(tbl, r) {
			continue
		}
		if !testSubheaderCandidate(tbl, cat, params, r, dataEnd) {
			out[r] = true
		}
	}
	return out
}

// predictSubheadersNew is the header-pruning-stage variant (§4.4 step 3): it
// treats every row demoted out of the header by pruneSubheaderCandidates as
// a candidate regardless of payload shape, then confirms the same way. It
// deliberately does not pre-filter on empty payload the way the old variant
// does.
func predictSubheadersNew(tbl *signature.Table, cat *rules.Catalogue, params Params, candidates []int, dataEnd int) map[int]bool {
	out := make(map[int]bool)
	for _, r := range candidates {
		if !testSubheaderCandidate(tbl, cat, params, r, dataEnd) {
			out[r] = true
		}
	}
	return out
}

// aggregationRow describes one row identified as holding an aggregation by
// first-cell token match (§4.4 step 4).
type aggregationRow struct {
	row    int
	label  string
	phrase string
}

// predictAggregations scans [dataStart, dataEnd] for rows whose first cell
// carries an aggregation phrase ("total", "sum", ...) and is not itself a
// subheader row.
func predictAggregations(tbl *signature.Table, dataStart, dataEnd int, subheaders map[int]bool) []aggregationRow {
	var out []aggregationRow
	for r := dataStart; r <= dataEnd; r++ {
		if subheaders[r] {
			continue
		}
		first := tbl.Cell(r, 0)
		phrase, idx := signature.AggregationPhraseMatch(first.Value)
		if idx < 0 {
			continue
		}
		out = append(out, aggregationRow{row: r, label: first.Value, phrase: phrase})
	}
	return out
}

// aggregationScope records, for each aggregation row, its label, matched
// phrase and aggregation function (§4.4 step 4). No range of covered data
// rows is computed or stored.
func aggregationScope(aggregations []aggregationRow, subheaders map[int]bool, dataStart, dataEnd int) map[int]AggregationInfo {
	scope := make(map[int]AggregationInfo, len(aggregations))
	prevBoundary := dataStart
	for _, agg := range aggregations {
		scope[agg.row] = AggregationInfo{
			Label:               agg.label,
			Phrase:              agg.phrase,
			AggregationFunction: aggregationFunctionFor(agg.phrase),
		}
		prevBoundary = agg.row + 1
	}
	_ = prevBoundary
	return scope
}

func aggregationFunctionFor(phrase string) string {
	switch phrase {
	case "total", "subtotal", "grand total", "sum", "aggregate":
		return "sum"
	case "average", "avg", "mean":
		return "average"
	default:
		return "sum"
	}
}

// subheaderScope partitions [dataStart, dataEnd] into ranges covered by each
// subheader row, in ascending row order: a subheader covers every row from
// just below itself up to (but excluding) the next subheader (§4.4 step 6,
// "subheader_scope ... partition the rows between successive subheaders").
func subheaderScope(subheaders map[int]bool, dataStart, dataEnd int) map[int][]int {
	if len(subheaders) == 0 {
		return map[int][]int{}
	}
	var ordered []int
	for r := dataStart; r <= dataEnd; r++ {
		if subheaders[r] {
			ordered = append(ordered, r)
		}
	}
	scope := make(map[int][]int, len(ordered))
	for i, sh := range ordered {
		start := sh + 1
		end := dataEnd
		if i+1 < len(ordered) {
			end = ordered[i+1] - 1
		}
		var rows []int
		for r := start; r <= end; r++ {
			if subheaders[r] {
				continue
			}
			rows = append(rows, r)
		}
		scope[sh] = rows
	}
	return scope
}
