package extractor

import (
	"strings"

	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
)

// ldlResult is the outcome of the top-down walk: the last accepted data row,
// the rows absorbed along the way, and where the walk stopped.
type ldlResult struct {
	dataEnd           int
	dataEndConfidence float64
	footnoteStart     int // first row after dataEnd that is not part of the table; -1 if the walk reached its bottom bound (grid end or MaxLineDepth) first
}

// predictLastDataLineTopDown walks downward from fdl, accepting, rejecting, or
// placing on probation each row in turn (§4.4 step 5). Each row's context is
// rebuilt with pattern.Build (via buildRowEvidence) over the rows below it
// down to the walk's bottom bound; no window summary is carried over and
// extended from one row to the next. top/bottom bound the scan window (the
// remainder of the grid, or the current scan window on a nested call).
func predictLastDataLineTopDown(tbl *signature.Table, cat *rules.Catalogue, params Params, fdl, top, bottom int) ldlResult {
	result := ldlResult{dataEnd: fdl, footnoteStart: -1}

	accumulated := []int{}
	evidence := make(map[int]rules.RowEvidence)

	prevWasBlankOrProbation := true // the row above FDL is never itself data
	pendingProbation := -1
	lastAccepted := fdl - 1
	lastConfidence := 0.0

	maxRow := bottom
	if params.MaxLineDepth > 0 && fdl+params.MaxLineDepth < maxRow {
		maxRow = fdl + params.MaxLineDepth
	}

	for r := fdl; r <= maxRow; r++ {
		if tbl.IsBlank(r) {
			result.footnoteStart = r
			break
		}

		first := strings.ToLower(tbl.Cell(r, 0).Value)
		payloadNull := emptyPayloadBeyondFirstColumn(tbl, r)
		if strings.Contains(first, "=") || (payloadNull && rules.FootnoteMarker(first)) || rules.FootnoteMarker(first) {
			result.footnoteStart = r
			break
		}

		windowBottom := maxRow
		evidence[r] = buildRowEvidence(tbl, r, top, windowBottom, false)
		accumulated = append(accumulated, r)
		dataConf, notDataConf := rules.ScoreRows(cat, params.Parameters, accumulated, evidence)

		isForceAccept := r-fdl < 3 || isAggregationCandidate(tbl, r)

		switch {
		case isForceAccept:
			lastAccepted, lastConfidence = acceptRow(r, dataConf[r], &pendingProbation, lastAccepted, lastConfidence)
			prevWasBlankOrProbation = false

		case dataConf[r] >= notDataConf[r] && notDataConf[r] > 0:
			lastAccepted, lastConfidence = acceptRow(r, dataConf[r], &pendingProbation, lastAccepted, lastConfidence)
			prevWasBlankOrProbation = false

		case !prevWasBlankOrProbation && dataConf[r] < notDataConf[r] && standaloneIsNonData(tbl, cat, params, r):
			pendingProbation = r
			prevWasBlankOrProbation = true

		default:
			if pendingProbation >= 0 {
				result.footnoteStart = pendingProbation
			} else {
				result.footnoteStart = r
			}
			result.dataEnd = lastAccepted
			result.dataEndConfidence = lastConfidence
			return result
		}
	}

	if pendingProbation >= 0 && result.footnoteStart < 0 {
		result.footnoteStart = pendingProbation
	}
	result.dataEnd = lastAccepted
	result.dataEndConfidence = lastConfidence
	return result
}

func acceptRow(row int, conf float64, pendingProbation *int, lastAccepted int, lastConfidence float64) (int, float64) {
	*pendingProbation = -1
	return row, conf
}

func isAggregationCandidate(tbl *signature.Table, row int) bool {
	_, idx := signature.AggregationPhraseMatch(tbl.Cell(row, 0).Value)
	return idx >= 0
}

// standaloneIsNonData reports the row's classification with no window
// context at all (an empty forward/backward summary), used by the probation
// test (§4.4 step 5, "the standalone row prediction is non-data").
func standaloneIsNonData(tbl *signature.Table, cat *rules.Catalogue, params Params, row int) bool {
	ev := buildRowEvidence(tbl, row, row, row, false)
	dataConf, notDataConf := rules.ScoreRows(cat, params.Parameters, []int{row}, map[int]rules.RowEvidence{row: ev})
	return dataConf[row] <= notDataConf[row]
}
