package rules

import (
	"github.com/tablescout/tablescout/internal/pattern"
	"github.com/tablescout/tablescout/internal/signature"
)

// CellContext bundles everything a cell-level predicate needs: the candidate
// cell itself plus the forward and backward window summaries computed over
// the rows below it (the classifier always looks downward from a candidate,
// §4.1).
type CellContext struct {
	Candidate signature.Cell
	Forward   pattern.Summary
	Backward  pattern.Summary
}

// CellPredicate is one named structural rule over a candidate cell and its
// window context. It returns true when the rule fires.
type CellPredicate func(ctx CellContext) bool

// cellDataPredicates fire when the candidate looks consistent with the data
// window (cell/data catalogue, §4.3).
var cellDataPredicates = map[string]CellPredicate{
	"First_FW_Symbol_disagrees": func(ctx CellContext) bool {
		if len(ctx.Forward.Chain) == 0 || len(ctx.Candidate.Train) == 0 {
			return false
		}
		return ctx.Candidate.Train[0].Class != ctx.Forward.Chain[0].Class
	},
	"CONSISTENT_NUMERIC": func(ctx CellContext) bool {
		return exactlySet(ctx.Forward.Symbols, "D") && !ctx.Candidate.IsNumber
	},
	"CONSISTENT_D_STAR": func(ctx CellContext) bool {
		if !startsWithDThenOther(ctx.Forward.Chain) {
			return false
		}
		return !startsWithDThenOther(ctx.Candidate.Train)
	},
	"FW_SUMMARY_D": func(ctx CellContext) bool {
		return len(ctx.Forward.Chain) >= 2 && ctx.Forward.Chain[0].Class == "D"
	},
	"BW_SUMMARY_D": func(ctx CellContext) bool {
		return len(ctx.Forward.BwChain) >= 2 && ctx.Forward.BwChain[0].Class == "D"
	},
	"CONSISTENT_NUMERIC_WIDTH": func(ctx CellContext) bool {
		return ctx.Forward.ChainConsistent && ctx.Forward.AllNumeric &&
			len(ctx.Candidate.Train) > 0 && trainWidth(ctx.Candidate.Train) != trainWidth(ctx.Forward.Chain)
	},
	"CONSISTENT_SC_TWO_OR_MORE": func(ctx CellContext) bool {
		return len(ctx.Forward.Symbols) >= 2 && ctx.Forward.ConsistentSymbolSets
	},
	"FW_D1": func(ctx CellContext) bool {
		return len(ctx.Forward.Chain) == 1 && ctx.Forward.Chain[0].Class == "D"
	},
	"BW_D1": func(ctx CellContext) bool {
		return len(ctx.Forward.BwChain) == 1 && ctx.Forward.BwChain[0].Class == "D"
	},
	"D4": func(ctx CellContext) bool {
		return trainWidth(ctx.Candidate.Train) == 4 && exactlySet(ctx.Candidate.Symbols, "D")
	},
	"D5PLUS": func(ctx CellContext) bool {
		return trainWidth(ctx.Candidate.Train) >= 5 && exactlySet(ctx.Candidate.Symbols, "D")
	},
	"LENGTH_4PLUS": func(ctx CellContext) bool {
		return ctx.Candidate.CharLength >= 4
	},
	"CASE_SUMMARY_CAPS": func(ctx CellContext) bool {
		return ctx.Forward.Case == signature.CaseAllCaps && ctx.Candidate.Case == signature.CaseAllCaps
	},
	"CONSISTENT_CHAR_LENGTH": func(ctx CellContext) bool {
		return ctx.Forward.LengthMin == ctx.Forward.LengthMax && ctx.Candidate.CharLength == ctx.Forward.LengthMin
	},
	"CONSISTENT_SINGLE_WORD_CONSISTENT_CASE": func(ctx CellContext) bool {
		return ctx.Candidate.TokenLength <= 1 && ctx.Forward.Case != signature.CaseMixed && ctx.Candidate.Case == ctx.Forward.Case
	},
	"CHAR_COUNT_OVER_POINT5_MAX": charCountOverFraction(0.5),
	"CHAR_COUNT_OVER_POINT6_MAX": charCountOverFraction(0.6),
	"CHAR_COUNT_OVER_POINT7_MAX": charCountOverFraction(0.7),
	"CHAR_COUNT_OVER_POINT8_MAX": charCountOverFraction(0.8),
	"CHAR_COUNT_OVER_POINT9_MAX": charCountOverFraction(0.9),
	"CHAR_COUNT_UNDER_POINT1_MIN": charCountUnderFraction(0.1),
	"CHAR_COUNT_UNDER_POINT3_MIN": charCountUnderFraction(0.3),
	"VALUE_REPEATS_ONCE_BELOW": func(ctx CellContext) bool {
		return ctx.Forward.ValueCounts[ctx.Candidate.Value] == 1
	},
	"VALUE_REPEATS_TWICE_OR_MORE_BELOW": func(ctx CellContext) bool {
		return ctx.Forward.ValueCounts[ctx.Candidate.Value] >= 2
	},
	"ALPHA_TOKEN_REPEATS_ONCE_BELOW": func(ctx CellContext) bool {
		if ctx.Candidate.TokenLength < 2 {
			return false
		}
		return anyTokenRepeats(ctx.Candidate.Tokens, ctx.Forward.TokenCounts, 1, 1)
	},
	"ALPHA_TOKEN_REPEATS_TWICE_OR_MORE_BELOW": func(ctx CellContext) bool {
		if ctx.Candidate.TokenLength < 2 {
			return false
		}
		return anyTokenRepeats(ctx.Candidate.Tokens, ctx.Forward.TokenCounts, 2, -1)
	},
}

// cellNotDataPredicates fire when the candidate looks like it breaks the
// data window (cell/not_data catalogue, §4.3). They are evaluated against
// the disagreement window (excluding the candidate).
var cellNotDataPredicates = map[string]CellPredicate{
	"First_FW_Symbol_disagrees": cellDataPredicates["First_FW_Symbol_disagrees"],
	"CONSISTENT_NUMERIC":        cellDataPredicates["CONSISTENT_NUMERIC"],
	"CONSISTENT_D_STAR":         cellDataPredicates["CONSISTENT_D_STAR"],
	"BROAD_NUMERIC": func(ctx CellContext) bool {
		return ctx.Forward.AllNumeric && ctx.Forward.SummaryStrength > 0 && !ctx.Candidate.IsNumber
	},
	"CASE_SUMMARY_CAPS":      cellDataPredicates["CASE_SUMMARY_CAPS"],
	"CONSISTENT_CHAR_LENGTH": cellDataPredicates["CONSISTENT_CHAR_LENGTH"],
	"LENGTH_4PLUS":           cellDataPredicates["LENGTH_4PLUS"],
}

func exactlySet(set map[string]struct{}, classes ...string) bool {
	if len(set) != len(classes) {
		return false
	}
	for _, c := range classes {
		if _, ok := set[c]; !ok {
			return false
		}
	}
	return true
}

func startsWithDThenOther(t signature.Train) bool {
	return len(t) >= 2 && t[0].Class == "D" && t[1].Class != "D"
}

func trainWidth(t signature.Train) int {
	width := 0
	for _, r := range t {
		width += r.Count
	}
	return width
}

func charCountOverFraction(frac float64) CellPredicate {
	return func(ctx CellContext) bool {
		if ctx.Forward.LengthMax == 0 {
			return false
		}
		return float64(ctx.Candidate.CharLength) > frac*float64(ctx.Forward.LengthMax)
	}
}

func charCountUnderFraction(frac float64) CellPredicate {
	return func(ctx CellContext) bool {
		if ctx.Forward.LengthMin == 0 {
			return false
		}
		return float64(ctx.Candidate.CharLength) < frac*float64(ctx.Forward.LengthMin)
	}
}

func anyTokenRepeats(tokens []string, counts map[string]int, lo, hi int) bool {
	for _, tok := range tokens {
		n := counts[tok]
		if n < lo {
			continue
		}
		if hi >= 0 && n > hi {
			continue
		}
		return true
	}
	return false
}

// FireCellRules evaluates every predicate in a catalogue map against ctx and
// returns the ids that fired.
func FireCellRules(ctx CellContext, predicates map[string]CellPredicate) []string {
	var fired []string
	for id, pred := range predicates {
		if pred(ctx) {
			fired = append(fired, id)
		}
	}
	return fired
}

// DataPredicates returns the builtin cell/data predicate set.
func DataPredicates() map[string]CellPredicate { return cellDataPredicates }

// NotDataPredicates returns the builtin cell/not_data predicate set.
func NotDataPredicates() map[string]CellPredicate { return cellNotDataPredicates }
