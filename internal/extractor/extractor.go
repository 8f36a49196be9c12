// Package extractor drives the top-down scan that turns row/cell confidences
// into table records: FDL/LDL prediction, header/subheader/aggregation
// discovery, column naming, and iteration across a file's remaining rows
// (§4.4).
package extractor

import (
	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
)

// Extractor holds the immutable inputs every Discover call scans against: a
// rule catalogue and the tuning parameters that govern scoring and the scan
// itself.
type Extractor struct {
	Catalogue *rules.Catalogue
	Params    Params
	Options   signature.Options
}

// New constructs an Extractor, validating the catalogue up front (§7
// InvalidInput: "rule catalogue is missing a required rule id").
func New(cat *rules.Catalogue, params Params, opt signature.Options) (*Extractor, error) {
	if cat == nil {
		cat = rules.Default()
	}
	if err := cat.Validate(); err != nil {
		return nil, invalidInput("%v", err)
	}
	return &Extractor{Catalogue: cat, Params: params, Options: opt}, nil
}

// Discover runs the full scan over one file's grid and returns every table
// found plus the per-file summary counters (§6 Outputs).
func (e *Extractor) Discover(grid [][]string) (*FileResult, error) {
	if len(grid) == 0 {
		return nil, invalidInput("grid has no rows")
	}

	grid = e.Params.capColumns(grid)
	tbl := signature.Build(grid, nil, e.Options)

	result := &FileResult{
		LinesProcessed: tbl.Rows,
		ColumnsInFile:  tbl.Cols,
	}
	for r := 0; r < tbl.Rows; r++ {
		if tbl.IsBlank(r) {
			result.BlankLines = append(result.BlankLines, r)
		}
	}

	var current *Table
	var currentHeaderTop int
	cursor := 0
	seenHeaders := map[string]struct{}{}

	for cursor < tbl.Rows {
		top := nextNonBlank(tbl, cursor)
		if top < 0 {
			break
		}

		windowBottom := e.Params.windowBottom(top, tbl.Rows)
		evidence := buildWindowEvidence(tbl, top, windowBottom)
		fdl, fdlConf, ok := predictFirstDataLine(e.Catalogue, e.Params, evidence, top, windowBottom)
		if !ok {
			break
		}

		header := predictHeader(tbl, top, fdl)
		kept, context := pruneSubheaderCandidates(tbl, header)
		if len(context) > 0 {
			restored := predictSubheadersNew(tbl, e.Catalogue, e.Params, context, windowBottom)
			for _, r := range context {
				if !restored[r] {
					kept = append(kept, r)
				}
			}
		}
		header = sortedInts(kept)

		ldl := predictLastDataLineTopDown(tbl, e.Catalogue, e.Params, fdl, top, tbl.Rows-1)
		subheaders := predictSubheadersOld(tbl, e.Catalogue, e.Params, fdl, ldl.dataEnd)
		aggregations := predictAggregations(tbl, fdl, ldl.dataEnd, subheaders)
		aggScope := aggregationScope(aggregations, subheaders, fdl, ldl.dataEnd)
		subScope := subheaderScope(subheaders, fdl, ldl.dataEnd)
		columns := buildColumns(tbl, header, fdl, ldl.dataEnd, subheaders)

		next := &Table{
			TopBoundary:       top,
			DataStart:         fdl,
			DataEnd:           ldl.dataEnd,
			Header:            header,
			SubheaderScope:    subScope,
			AggregationScope:  aggScope,
			Columns:           columns,
			FDLConfidence:     fdlConf,
			DataEndConfidence: ldl.dataEndConfidence,
		}

		gapStart := next.DataEnd // unused placeholder; the gap is computed from current.DataEnd below
		_ = gapStart

		if current == nil {
			current = next
			currentHeaderTop = top
			_ = currentHeaderTop
			markHeadersSeen(tbl, seenHeaders, next.Header)
		} else if !headerRepeats(tbl, seenHeaders, next.Header) && gapIsMergeable(tbl, current.DataEnd+1, next.TopBoundary-1, current) {
			mergeInto(current, next, tbl)
		} else {
			finalizePrevious(current, next.TopBoundary, tbl)
			result.Tables = append(result.Tables, *current)
			current = next
			markHeadersSeen(tbl, seenHeaders, next.Header)
		}

		if ldl.footnoteStart >= 0 {
			cursor = ldl.footnoteStart
		} else {
			cursor = ldl.dataEnd + 1
		}
	}

	if current != nil {
		finalizePrevious(current, tbl.Rows, tbl)
		result.Tables = append(result.Tables, *current)
	}

	result.ColumnsInFileConsidered = countConsideredColumns(result.Tables)
	return result, nil
}

func nextNonBlank(tbl *signature.Table, from int) int {
	for r := from; r < tbl.Rows; r++ {
		if !tbl.IsBlank(r) {
			return r
		}
	}
	return -1
}

func sortedInts(in []int) []int {
	out := append([]int{}, in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// gapIsMergeable reports whether every row in [from, to] is either blank or
// subheader-shaped (null payload beyond column 0): the condition under which
// two adjacent tables are the same table (§4.4 step 8).
func gapIsMergeable(tbl *signature.Table, from, to int, prev *Table) bool {
	if from > to {
		return true
	}
	for r := from; r <= to; r++ {
		if tbl.IsBlank(r) {
			continue
		}
		if emptyPayloadBeyondFirstColumn(tbl, r) {
			continue
		}
		return false
	}
	return true
}

// mergeInto absorbs next into prev: extends data_end, unions subheader and
// aggregation scopes, and folds any subheader-shaped gap row into the merged
// subheader scope (§4.4 step 8).
func mergeInto(prev, next *Table, tbl *signature.Table) {
	for r := prev.DataEnd + 1; r < next.TopBoundary; r++ {
		if tbl.IsBlank(r) {
			continue
		}
		prev.SubheaderScope[r] = []int{}
	}
	prev.DataEnd = next.DataEnd
	for k, v := range next.SubheaderScope {
		prev.SubheaderScope[k] = v
	}
	for k, v := range next.AggregationScope {
		prev.AggregationScope[k] = v
	}
	for k, v := range next.Columns {
		if _, ok := prev.Columns[k]; !ok {
			prev.Columns[k] = v
		}
	}
	prev.DataEndConfidence = next.DataEndConfidence
}

// finalizePrevious assigns footnote rows and the bottom boundary once the
// next table's top (or the grid's end) is known (§4.4 steps 8-9).
func finalizePrevious(prev *Table, boundary int, tbl *signature.Table) {
	for r := prev.DataEnd + 1; r < boundary; r++ {
		if tbl.IsBlank(r) {
			continue
		}
		prev.Footnotes = append(prev.Footnotes, r)
	}
	prev.BottomBoundary = boundary - 1
	if prev.BottomBoundary < prev.DataEnd {
		prev.BottomBoundary = prev.DataEnd
	}
}

// markHeadersSeen records a table's header rows by joined-string equality so
// a later candidate table that repeats one of them is recognised as a new
// table rather than folded into the one already open (§3 invariants:
// "header rows are unique across the file").
func markHeadersSeen(tbl *signature.Table, seen map[string]struct{}, header []int) {
	for _, r := range header {
		seen[tbl.RowJoined(r)] = struct{}{}
	}
}

// headerRepeats reports whether any row in header was already seen as a
// header earlier in the file, which forces a table boundary even when the
// gap between the two tables would otherwise look mergeable.
func headerRepeats(tbl *signature.Table, seen map[string]struct{}, header []int) bool {
	for _, r := range header {
		if _, ok := seen[tbl.RowJoined(r)]; ok {
			return true
		}
	}
	return false
}

func countConsideredColumns(tables []Table) int {
	seen := map[int]struct{}{}
	for _, t := range tables {
		for c := range t.Columns {
			seen[c] = struct{}{}
		}
	}
	return len(seen)
}
