package rules

import "math"

// Parameters carries the scoring thresholds and damping constants from §6.
type Parameters struct {
	ImputeNulls             bool
	SummaryPopulationFactor bool
	WeightInput             string // "values_and_lines" | "values"
	WeightLowerBound        float64
	NotDataWeightLowerBound float64
	P                       float64
}

// CellAgreement is the per-cell evidence collected for one row/column: which
// cell/data and cell/not_data rules fired, the strength of the window each
// was evaluated against, and the null/aggregate flags the imputation rule
// inspects (§4.3 "Null-imputation").
type CellAgreement struct {
	Agreements                  []string
	Disagreements               []string
	SummaryStrength             int
	DisagreementSummaryStrength int
	NullEquivalent              bool
	Aggregate                   bool
}

// RowEvidence is the per-row evidence bundle: per-column cell agreements
// plus whichever line/data and line/not_data rules fired for the row.
type RowEvidence struct {
	Cells             map[int]CellAgreement
	LineDataFired     []string
	LineNotDataFired  []string
}

// MaxScore implements §4.3's max_score: the highest weight among fired
// events whose weight is non-null and at least lb, or 0 when none qualify
// (including when events is empty). A fired rule with a null or
// below-threshold weight therefore contributes zero rather than vetoing the
// row — it never disqualifies (§9 open question).
func MaxScore(events []string, catalogue map[string]Entry, lb float64) float64 {
	if len(events) == 0 {
		return 0
	}
	best := -1.0
	found := false
	for _, e := range events {
		entry, ok := catalogue[e]
		if !ok || entry.Weight == nil {
			continue
		}
		if *entry.Weight < lb {
			continue
		}
		if *entry.Weight > best {
			best = *entry.Weight
			found = true
		}
	}
	if !found {
		return 0
	}
	return best
}

// ProbabilisticOR combines independent evidence scores via 1 - prod(1-s):
// the probabilistic OR used for every row confidence (§3 glossary).
// Monotone: adding any positive score never decreases the result (§8.5),
// and invariant under permutation of the input (§8.4).
func ProbabilisticOR(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	product := 1.0
	for _, s := range scores {
		product *= 1 - s
	}
	return 1 - product
}

// ScoreRows computes (data_conf, not_data_conf) for every row in rows, in
// the order given. rows MUST be supplied in ascending row-index order: null
// imputation and the "before data" line-rule gate (§4.3, §9) both look back
// at the immediately preceding row's already-computed confidence.
func ScoreRows(cat *Catalogue, params Parameters, rows []int, evidence map[int]RowEvidence) (dataConf, notDataConf map[int]float64) {
	dataConf = make(map[int]float64, len(rows))
	notDataConf = make(map[int]float64, len(rows))
	beforeData := true

	for _, rowIdx := range rows {
		ev, ok := evidence[rowIdx]
		if !ok {
			dataConf[rowIdx] = 0
			notDataConf[rowIdx] = 0
			continue
		}

		var agreementScores, disagreementScores []float64
		for col, cell := range ev.Cells {
			agreements := cell.Agreements
			strength := cell.SummaryStrength

			if params.ImputeNulls && (cell.NullEquivalent || cell.SummaryStrength == 1) {
				if prevAgreements, prevStrength, ok := lookbackAgreements(evidence, dataConf, notDataConf, rowIdx-1, col); ok {
					agreements = prevAgreements
					strength = prevStrength
				}
			}
			if cell.SummaryStrength == 0 && cell.Aggregate {
				if prevAgreements, prevStrength, ok := lookbackAgreements(evidence, dataConf, notDataConf, rowIdx-2, col); ok {
					agreements = prevAgreements
					strength = prevStrength
				}
			}

			dataScore := MaxScore(agreements, cat.CellData, params.WeightLowerBound)
			dataPop := 1 - math.Pow(1-params.P, 2*float64(strength))
			if params.SummaryPopulationFactor {
				agreementScores = append(agreementScores, dataScore*dataPop)
			} else {
				agreementScores = append(agreementScores, dataScore)
			}

			notDataScore := MaxScore(cell.Disagreements, cat.CellNotData, params.NotDataWeightLowerBound)
			notDataPop := 1 - math.Pow(1-params.P, 2*float64(cell.DisagreementSummaryStrength))
			if params.SummaryPopulationFactor {
				disagreementScores = append(disagreementScores, notDataScore*notDataPop)
			} else {
				disagreementScores = append(disagreementScores, notDataScore)
			}
		}

		lineNotDataEvidence := append([]float64{}, disagreementScores...)
		lineDataEvidence := append([]float64{}, agreementScores...)

		if params.WeightInput == "values_and_lines" {
			if pd, pn, ok := prevConf(dataConf, notDataConf, rowIdx-1); ok && pd > pn {
				beforeData = false
			}
			for _, event := range ev.LineNotDataFired {
				if event == "UP_TO_FIRST_COLUMN_COMPLETE_CONSISTENTLY" && !beforeData {
					continue
				}
				if entry, ok := cat.LineNotData[event]; ok && entry.Weight != nil && *entry.Weight >= params.NotDataWeightLowerBound {
					lineNotDataEvidence = append(lineNotDataEvidence, *entry.Weight)
				}
			}
			for _, event := range ev.LineDataFired {
				if entry, ok := cat.LineData[event]; ok && entry.Weight != nil && *entry.Weight >= params.WeightLowerBound {
					lineDataEvidence = append(lineDataEvidence, *entry.Weight)
				}
			}
		}

		dataConf[rowIdx] = ProbabilisticOR(lineDataEvidence)
		notDataConf[rowIdx] = ProbabilisticOR(lineNotDataEvidence)
	}
	return dataConf, notDataConf
}

func prevConf(dataConf, notDataConf map[int]float64, row int) (float64, float64, bool) {
	d, ok := dataConf[row]
	if !ok {
		return 0, 0, false
	}
	return d, notDataConf[row], true
}

// lookbackAgreements implements the null-imputation substitution: only
// substitute when the looked-back row was itself classified as data.
func lookbackAgreements(evidence map[int]RowEvidence, dataConf, notDataConf map[int]float64, row, col int) ([]string, int, bool) {
	prevRow, ok := evidence[row]
	if !ok {
		return nil, 0, false
	}
	prevCell, ok := prevRow.Cells[col]
	if !ok {
		return nil, 0, false
	}
	pd, ok := dataConf[row]
	if !ok {
		return nil, 0, false
	}
	pn := notDataConf[row]
	if pd <= pn {
		return nil, 0, false
	}
	return prevCell.Agreements, prevCell.SummaryStrength, true
}
