package rules

import (
	"regexp"
	"strings"

	"github.com/tablescout/tablescout/internal/signature"
)

// LineContext bundles the row-level evidence a line predicate inspects: the
// row's own cells, whether the row is scored before any data row has been
// accepted (BeforeData: true in the FDL search, false in the LDL walk), and
// whether the first cell carries an aggregation phrase.
type LineContext struct {
	Row           []signature.Cell
	BeforeData    bool
	HasAggregate  bool
}

// LinePredicate is one named row-level rule (§4.3 "Line-level rules").
type LinePredicate func(ctx LineContext) bool

var slugSnakeRe = regexp.MustCompile(`^[a-z0-9]+([_-][a-z0-9]+)*$`)

var metadataKeywords = []string{"date", "source", "method", "sample size", "prepared by", "report", "survey"}

var footnoteKeywords = []string{"note", "source", "notes", "footnote", "disclaimer"}

var dataTypeHints = []string{"string", "int", "float", "date", "bool", "varchar", "decimal", "number"}

// lineDataPredicates fire when the row's shape looks like data (line/data).
var lineDataPredicates = map[string]LinePredicate{
	"ADJACENT_ARITHMETIC_SEQUENCE_2": adjacentArithmeticSequence(2),
	"ADJACENT_ARITHMETIC_SEQUENCE_3": adjacentArithmeticSequence(3),
	"ADJACENT_ARITHMETIC_SEQUENCE_4": adjacentArithmeticSequence(4),
	"ADJACENT_ARITHMETIC_SEQUENCE_5": adjacentArithmeticSequence(5),
	"ADJACENT_ARITHMETIC_SEQUENCE_6": adjacentArithmeticSequence(6),
	"RANGE_PAIRS_1": func(ctx LineContext) bool {
		return countRangePairs(ctx.Row) == 1
	},
	"RANGE_PAIRS_2_PLUS": func(ctx LineContext) bool {
		return countRangePairs(ctx.Row) >= 2
	},
	"PARTIALLY_REPEATING_VALUES_LENGTH_2_PLUS": func(ctx LineContext) bool {
		return partiallyRepeatingRun(ctx.Row) >= 2
	},
	"AGGREGATION_ON_ROW_W_ARITH_SEQUENCE": func(ctx LineContext) bool {
		return ctx.HasAggregate && adjacentArithmeticSequence(2)(ctx)
	},
	"CONTAINS_DATATYPE_CELL_VALUE": func(ctx LineContext) bool {
		for _, c := range ctx.Row {
			lower := strings.ToLower(c.Value)
			for _, hint := range dataTypeHints {
				if lower == hint {
					return true
				}
			}
		}
		return false
	},
}

// lineNotDataPredicates fire when the row looks headery, metadata-like,
// footnote-like, or otherwise structurally distinct from data (line/not_data).
var lineNotDataPredicates = map[string]LinePredicate{
	"CONSISTENTLY_SLUG_OR_SNAKE": func(ctx LineContext) bool {
		nonEmpty := 0
		slug := 0
		for _, c := range ctx.Row {
			if c.Value == "" {
				continue
			}
			nonEmpty++
			if slugSnakeRe.MatchString(strings.ToLower(c.Value)) {
				slug++
			}
		}
		return nonEmpty > 0 && slug == nonEmpty
	},
	"CONSISTENTLY_UPPER_CASE": func(ctx LineContext) bool {
		nonEmpty := 0
		caps := 0
		for _, c := range ctx.Row {
			if c.Value == "" {
				continue
			}
			nonEmpty++
			if c.Case == signature.CaseAllCaps {
				caps++
			}
		}
		return nonEmpty > 0 && caps == nonEmpty
	},
	"METADATA_LIKE_ROW": func(ctx LineContext) bool {
		nonEmpty := countNonEmpty(ctx.Row)
		return nonEmpty == 1 && len(ctx.Row) > 1
	},
	"METADATA_TABLE_HEADER_KEYWORDS": func(ctx LineContext) bool {
		for _, c := range ctx.Row {
			lower := strings.ToLower(c.Value)
			for _, kw := range metadataKeywords {
				if strings.Contains(lower, kw) {
					return true
				}
			}
		}
		return false
	},
	"AGGREGATION_ON_ROW_WO_NUMERIC": func(ctx LineContext) bool {
		if !ctx.HasAggregate {
			return false
		}
		for _, c := range ctx.Row[1:] {
			if c.IsNumber {
				return false
			}
		}
		return true
	},
	"AGGREGATION_TOKEN_IN_FIRST_VALUE_OF_ROW": func(ctx LineContext) bool {
		return ctx.HasAggregate
	},
	"UP_TO_FIRST_COLUMN_COMPLETE_CONSISTENTLY": func(ctx LineContext) bool {
		if !ctx.BeforeData {
			return false
		}
		return len(ctx.Row) > 0 && ctx.Row[0].Value != ""
	},
	"STARTS_WITH_NULL": func(ctx LineContext) bool {
		return len(ctx.Row) > 0 && ctx.Row[0].IsNullEquivalent
	},
	"NO_SUMMARY_BELOW": func(ctx LineContext) bool {
		return len(ctx.Row) == 0
	},
	"FOOTNOTE": func(ctx LineContext) bool {
		if len(ctx.Row) == 0 {
			return false
		}
		first := strings.ToLower(ctx.Row[0].Value)
		return FootnoteMarker(first)
	},
	"NULL_EQUIVALENT_ON_LINE_2_PLUS": func(ctx LineContext) bool {
		return countNullEquivalent(ctx.Row) >= 2
	},
	"ONE_NULL_EQUIVALENT_ON_LINE": func(ctx LineContext) bool {
		return countNullEquivalent(ctx.Row) == 1
	},
}

func countNonEmpty(row []signature.Cell) int {
	n := 0
	for _, c := range row {
		if c.Value != "" {
			n++
		}
	}
	return n
}

func countNullEquivalent(row []signature.Cell) int {
	n := 0
	for _, c := range row {
		if c.IsNullEquivalent {
			n++
		}
	}
	return n
}

// FootnoteMarker reports whether a (lowercased) first cell value matches the
// footnote heuristics used to terminate the LDL walk (§4.4 step 5):
// a footnote keyword prefix, a leading "1.", "a)", "(1)"-style marker, or a
// literal "=" sign.
func FootnoteMarker(first string) bool {
	for _, kw := range footnoteKeywords {
		if strings.HasPrefix(first, kw) {
			return true
		}
	}
	if strings.Contains(first, "=") {
		return true
	}
	if len(first) > 1 {
		if (first[0] == '1' || first[0] == 'a') && strings.ContainsRune(" ./):]", rune(first[1])) {
			return true
		}
	}
	if len(first) > 2 && first[0] == '(' && (first[1] == '1' || first[1] == 'a') && first[2] == ')' {
		return true
	}
	return false
}

func adjacentArithmeticSequence(minRun int) LinePredicate {
	return func(ctx LineContext) bool {
		run := 1
		best := 1
		var prevDiff float64
		havePrevDiff := false
		var prevVal float64
		haveVal := false
		for _, c := range ctx.Row {
			v, ok := signature.ParseNumeric(c.Value)
			if !ok {
				run = 1
				havePrevDiff = false
				haveVal = false
				continue
			}
			if !haveVal {
				prevVal = v
				haveVal = true
				continue
			}
			diff := v - prevVal
			prevVal = v
			if !havePrevDiff {
				prevDiff = diff
				havePrevDiff = true
				run = 2
				continue
			}
			if diff == prevDiff {
				run++
			} else {
				prevDiff = diff
				run = 2
			}
			if run > best {
				best = run
			}
		}
		return best >= minRun
	}
}

func countRangePairs(row []signature.Cell) int {
	pairs := 0
	for i := 0; i+1 < len(row); i++ {
		a, aok := signature.ParseNumeric(row[i].Value)
		b, bok := signature.ParseNumeric(row[i+1].Value)
		if aok && bok && a < b {
			pairs++
		}
	}
	return pairs
}

func partiallyRepeatingRun(row []signature.Cell) int {
	best := 0
	run := 0
	var prev string
	for _, c := range row {
		if c.Value == "" {
			run = 0
			prev = ""
			continue
		}
		if c.Value == prev {
			run++
		} else {
			run = 1
			prev = c.Value
		}
		if run > best {
			best = run
		}
	}
	return best
}

// FireLineRules evaluates every predicate in a catalogue map against ctx and
// returns the ids that fired.
func FireLineRules(ctx LineContext, predicates map[string]LinePredicate) []string {
	var fired []string
	for id, pred := range predicates {
		if pred(ctx) {
			fired = append(fired, id)
		}
	}
	return fired
}

// DataLinePredicates returns the builtin line/data predicate set.
func DataLinePredicates() map[string]LinePredicate { return lineDataPredicates }

// NotDataLinePredicates returns the builtin line/not_data predicate set.
func NotDataLinePredicates() map[string]LinePredicate { return lineNotDataPredicates }
