package extractor

import "github.com/tablescout/tablescout/internal/rules"

// Params bundles every tunable knob the extractor's prediction steps read
// (§6 "Parameters"). It is immutable for the duration of one Discover call.
type Params struct {
	rules.Parameters

	// MaxCandidates bounds how many rows from the top of a window the FDL
	// search considers before giving up on the window (§4.4 step 2).
	MaxCandidates int
	// MaxSummaryStrength sets the bottom of the scan window that the FDL
	// search and the header-subheader test use to this many rows below the
	// window's top row (0 means the grid's last row).
	// It counts rows, blank or not, not non-empty cells; the LDL walk's
	// per-row summaries are not capped by it.
	MaxSummaryStrength int
	// MaxLineDepth bounds the LDL top-down walk to at most this many rows
	// below the FDL (§4.4 step 5); 0 means no bound.
	MaxLineDepth int
	// MaxAttributes caps the number of columns considered per candidate row;
	// 0 means "all columns" (§9, "ignore trailing sparse columns").
	MaxAttributes int
	// IgnoreLeft widens capColumns' column budget by this many columns; no
	// leading columns are skipped when scoring a row.
	IgnoreLeft int

	// MarkovModel optionally reweights the FDL composite score with a
	// learned row-type transition prior (§4.4 step 2, "optional Markov
	// prior"). A nil model disables the prior entirely.
	MarkovModel map[RowType]map[RowType]float64
}

// DefaultParams returns the engine's built-in defaults, mirroring the
// catalogue's hand-set priors (§6).
func DefaultParams() Params {
	return Params{
		Parameters: rules.Parameters{
			ImputeNulls:             true,
			SummaryPopulationFactor: true,
			WeightInput:             "values_and_lines",
			WeightLowerBound:        0.4,
			NotDataWeightLowerBound: 0.6,
			P:                       0.3,
		},
		MaxCandidates:      100,
		MaxSummaryStrength: 6,
		MaxLineDepth:       30,
		MaxAttributes:      20,
		IgnoreLeft:         4,
	}
}

func (p Params) windowBottom(top int, rows int) int {
	bottom := top + p.MaxSummaryStrength
	if p.MaxSummaryStrength <= 0 || bottom >= rows {
		bottom = rows - 1
	}
	return bottom
}

// capColumns implements §6's column-trimming policy: a grid's width is
// pre-capped to min(max_attributes+ignore_left, C) + 1 columns before the
// signature table is built, so a row with far more columns than the trained
// catalogue ever saw doesn't blow up every column-wise scan. MaxAttributes
// <= 0 disables trimming entirely ("all columns").
func (p Params) capColumns(grid [][]string) [][]string {
	if p.MaxAttributes <= 0 {
		return grid
	}
	c := 0
	for _, r := range grid {
		if len(r) > c {
			c = len(r)
		}
	}
	budget := p.MaxAttributes + p.IgnoreLeft
	if budget > c {
		budget = c
	}
	cap := budget + 1
	if cap >= c {
		return grid
	}
	out := make([][]string, len(grid))
	for i, r := range grid {
		if len(r) > cap {
			out[i] = r[:cap]
		} else {
			out[i] = r
		}
	}
	return out
}
