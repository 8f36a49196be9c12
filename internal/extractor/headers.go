package extractor

import "github.com/tablescout/tablescout/internal/signature"

// predictHeader walks upward from fdl-1 to top and collects the contiguous
// run of non-blank rows immediately above the first data line: the header
// row range (§4.4 step 3). A blank row or the window's top boundary stops
// the walk.
func predictHeader(tbl *signature.Table, top, fdl int) []int {
	var header []int
	for r := fdl - 1; r >= top; r-- {
		if tbl.IsBlank(r) {
			break
		}
		header = append([]int{r}, header...)
	}
	return header
}

// pruneSubheaderCandidates removes header rows that look like the table's
// own context/title rows rather than column-name rows: a row whose payload
// beyond the first column is null is demoted out of the header and treated
// as a context row above the table (§4.4 step 3, "subheader-candidate
// pruning").
func pruneSubheaderCandidates(tbl *signature.Table, header []int) (kept []int, context []int) {
	for _, r := range header {
		if tbl.Cols > 1 && emptyPayloadBeyondFirstColumn(tbl, r) {
			context = append(context, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, context
}
