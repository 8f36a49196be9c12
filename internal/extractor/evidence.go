package extractor

import (
	"github.com/tablescout/tablescout/internal/pattern"
	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
)

// buildRowEvidence computes the rules.RowEvidence for one candidate row by
// scanning the vertical window (windowTop..windowBottom, excluding the
// candidate's own row and everything above it) downward in each column: the
// engine always builds a candidate's context from the rows below it (§4.1).
func buildRowEvidence(tbl *signature.Table, row, windowTop, windowBottom int, beforeData bool) rules.RowEvidence {
	ev := rules.RowEvidence{Cells: make(map[int]rules.CellAgreement, tbl.Cols)}

	rowCells := make([]signature.Cell, tbl.Cols)
	hasAggregate := false
	for col := 0; col < tbl.Cols; col++ {
		candidate := tbl.Cell(row, col)
		rowCells[col] = candidate
		if col == 0 && candidate.IsAggregate {
			hasAggregate = true
		}

		below := row + 1
		if below < windowTop {
			below = windowTop
		}
		forwardCells := tbl.ColumnSlice(below, windowBottom, col)
		backwardCells := tbl.ReverseColumnSlice(below, windowBottom, col)

		fwd := pattern.Build(forwardCells)
		bwd := pattern.Build(backwardCells)

		cellCtx := rules.CellContext{Candidate: candidate, Forward: fwd, Backward: bwd}
		agreements := rules.FireCellRules(cellCtx, rules.DataPredicates())
		disagreements := rules.FireCellRules(cellCtx, rules.NotDataPredicates())

		ev.Cells[col] = rules.CellAgreement{
			Agreements:                  agreements,
			Disagreements:               disagreements,
			SummaryStrength:             fwd.SummaryStrength,
			DisagreementSummaryStrength: fwd.SummaryStrength,
			NullEquivalent:              candidate.IsNullEquivalent,
			Aggregate:                   candidate.IsAggregate,
		}
	}

	lineCtx := rules.LineContext{Row: rowCells, BeforeData: beforeData, HasAggregate: hasAggregate}
	ev.LineDataFired = rules.FireLineRules(lineCtx, rules.DataLinePredicates())
	ev.LineNotDataFired = rules.FireLineRules(lineCtx, rules.NotDataLinePredicates())

	return ev
}

// buildWindowEvidence computes evidence for every row in [top, bottom] against
// a shared trailing window that shrinks as the scan descends, used by the FDL
// search; the LDL walk calls buildRowEvidence directly, one row at a time.
func buildWindowEvidence(tbl *signature.Table, top, bottom int) map[int]rules.RowEvidence {
	out := make(map[int]rules.RowEvidence, bottom-top+1)
	beforeData := true
	for row := top; row <= bottom; row++ {
		out[row] = buildRowEvidence(tbl, row, top, bottom, beforeData)
	}
	return out
}
