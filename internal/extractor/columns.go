package extractor

import "github.com/tablescout/tablescout/internal/signature"

// buildColumns synthesises a column name for every surviving column by
// concatenating its non-empty header-row cells top to bottom, then dropping
// columns whose entire data body is null-equivalent (§4.4 step 7, "column
// naming ... and null-column drop").
func buildColumns(tbl *signature.Table, header []int, dataStart, dataEnd int, subheaders map[int]bool) map[int]Column {
	cols := make(map[int]Column)
	tableColumn := 0
	for c := 0; c < tbl.Cols; c++ {
		if columnIsAllNull(tbl, c, dataStart, dataEnd, subheaders) {
			continue
		}
		var cells []ColumnHeaderCell
		for _, r := range header {
			v := tbl.Cell(r, c).Value
			if v == "" {
				continue
			}
			cells = append(cells, ColumnHeaderCell{Row: r, Value: v})
		}
		cols[c] = Column{TableColumn: tableColumn, ColumnHeader: cells}
		tableColumn++
	}
	return cols
}

func columnIsAllNull(tbl *signature.Table, col, dataStart, dataEnd int, subheaders map[int]bool) bool {
	seenData := false
	for r := dataStart; r <= dataEnd; r++ {
		if subheaders[r] {
			continue
		}
		seenData = true
		if !tbl.Cell(r, col).IsNullEquivalent {
			return false
		}
	}
	return seenData
}
