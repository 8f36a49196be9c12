package extractor

import (
	"math"

	"github.com/tablescout/tablescout/internal/rules"
)

// fdlCandidate is one row considered for first-data-line, with the raw
// per-column statistics the composite score and confidence breakdown are
// built from.
type fdlCandidate struct {
	row               int
	dataConf          float64
	notDataConf       float64
	avgMajorityConf   float64
	avgDifference     float64
	avgConfusionIndex float64
	composite         float64
}

// predictFirstDataLine scans up to params.MaxCandidates rows from top and
// picks the row whose composite data/not_data score is highest (§4.4 step 2).
// It returns ok=false when the best-scoring row's data confidence does not
// exceed its not-data confidence, meaning the window holds no table.
func predictFirstDataLine(cat *rules.Catalogue, params Params, evidence map[int]rules.RowEvidence, top, bottom int) (int, FDLConfidence, bool) {
	limit := top + params.MaxCandidates
	if limit > bottom+1 {
		limit = bottom + 1
	}

	var rows []int
	for r := top; r < limit; r++ {
		if _, ok := evidence[r]; ok {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return 0, FDLConfidence{}, false
	}

	dataConf, notDataConf := rules.ScoreRows(cat, params.Parameters, rows, evidence)

	candidates := make([]fdlCandidate, 0, len(rows))
	for _, r := range rows {
		ev := evidence[r]
		var majoritySum, diffSum, confusionSum float64
		n := 0
		for _, cell := range ev.Cells {
			ds := rules.MaxScore(cell.Agreements, cat.CellData, params.WeightLowerBound)
			nds := rules.MaxScore(cell.Disagreements, cat.CellNotData, params.NotDataWeightLowerBound)
			majoritySum += ds
			diffSum += ds - nds
			confusionSum += math.Min(ds, nds)
			n++
		}
		var avgMajority, avgDiff, avgConfusion float64
		if n > 0 {
			avgMajority = majoritySum / float64(n)
			avgDiff = diffSum / float64(n)
			avgConfusion = confusionSum / float64(n)
		}
		composite := dataConf[r] - notDataConf[r]
		if mk := markovAdjustment(params, RowHeader, RowData); mk != 0 {
			composite += mk
		}
		candidates = append(candidates, fdlCandidate{
			row:               r,
			dataConf:          dataConf[r],
			notDataConf:       notDataConf[r],
			avgMajorityConf:   avgMajority,
			avgDifference:     avgDiff,
			avgConfusionIndex: avgConfusion,
			composite:         composite,
		})
	}

	softmax(candidates)

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.composite > best.composite {
			best = c
		}
	}
	if best.dataConf <= best.notDataConf {
		return 0, FDLConfidence{}, false
	}

	return best.row, FDLConfidence{
		AvgMajorityConfidence: best.avgMajorityConf,
		AvgDifference:         best.avgDifference,
		AvgConfusionIndex:     best.avgConfusionIndex,
		Softmax:               best.composite,
	}, true
}

// softmax normalises every candidate's composite score in place over the set
// of candidates in one window (§4.4 step 2).
func softmax(candidates []fdlCandidate) {
	if len(candidates) == 0 {
		return
	}
	max := candidates[0].composite
	for _, c := range candidates[1:] {
		if c.composite > max {
			max = c.composite
		}
	}
	var sum float64
	exps := make([]float64, len(candidates))
	for i, c := range candidates {
		e := math.Exp(c.composite - max)
		exps[i] = e
		sum += e
	}
	if sum == 0 {
		return
	}
	for i := range candidates {
		candidates[i].composite = exps[i] / sum
	}
}

// markovAdjustment returns the learned transition-prior contribution for
// moving from "from" to "to", or 0 when no model was supplied (§4.4 step 2,
// "optional Markov prior").
func markovAdjustment(params Params, from, to RowType) float64 {
	if params.MarkovModel == nil {
		return 0
	}
	row, ok := params.MarkovModel[from]
	if !ok {
		return 0
	}
	return row[to]
}
