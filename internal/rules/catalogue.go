// Package rules holds the fuzzy rule catalogue (§3) and the predicates and
// scorer that turn per-cell and per-row evidence into row confidences (§4.3).
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one named rule: a theme tag plus three learned scalars. Weight and
// Confidence may be absent (untrained); an absent weight is never treated as
// zero or as disqualifying evidence — callers must check Weight != nil.
type Entry struct {
	Name       string   `yaml:"name"`
	Theme      string   `yaml:"theme"`
	Type       string   `yaml:"type,omitempty"`
	Weight     *float64 `yaml:"weight"`
	Confidence *float64 `yaml:"confidence"`
	Coverage   float64  `yaml:"coverage"`
}

// Catalogue is the four named rule maps (§3): cell/data, cell/not_data,
// line/data, line/not_data. It is treated as immutable and passed by
// reference into every scoring call; training writes a new Catalogue rather
// than mutating a live one (§9).
type Catalogue struct {
	CellData     map[string]Entry `yaml:"cell_data"`
	CellNotData  map[string]Entry `yaml:"cell_not_data"`
	LineData     map[string]Entry `yaml:"line_data"`
	LineNotData  map[string]Entry `yaml:"line_not_data"`
}

// requiredCellRules and requiredLineRules name the rule ids a caller-supplied
// catalogue must define (§7 InvalidInput: "rule catalogue is missing a
// required rule id").
var requiredCellRules = []string{
	"First_FW_Symbol_disagrees",
	"CONSISTENT_NUMERIC",
	"BROAD_NUMERIC",
}

var requiredLineRules = []string{
	"CONSISTENTLY_SLUG_OR_SNAKE",
	"AGGREGATION_ON_ROW_WO_NUMERIC",
}

// Validate reports InvalidInput-class errors when a catalogue is missing a
// rule id that the engine always evaluates.
func (c *Catalogue) Validate() error {
	if c == nil {
		return fmt.Errorf("rules: catalogue is nil")
	}
	for _, id := range requiredCellRules {
		if _, ok := c.CellData[id]; !ok {
			if _, ok2 := c.CellNotData[id]; !ok2 {
				return fmt.Errorf("rules: catalogue missing required cell rule %q", id)
			}
		}
	}
	for _, id := range requiredLineRules {
		if _, ok := c.LineData[id]; !ok {
			if _, ok2 := c.LineNotData[id]; !ok2 {
				return fmt.Errorf("rules: catalogue missing required line rule %q", id)
			}
		}
	}
	return nil
}

func weight(w float64) *float64 { return &w }

// Default returns the bundled default catalogue. Weights reflect plausible,
// hand-set priors rather than numbers learned by the training driver (that
// driver is an external collaborator to the core, §1); Confidence/Coverage
// follow the same shape so a loaded, trained catalogue is a drop-in
// replacement.
func Default() *Catalogue {
	return &Catalogue{
		CellData: map[string]Entry{
			"First_FW_Symbol_disagrees":                   {Name: "First_FW_Symbol_disagrees", Theme: "pattern", Weight: weight(0.55), Confidence: weight(0.6), Coverage: 0.3},
			"CONSISTENT_NUMERIC":                          {Name: "CONSISTENT_NUMERIC", Theme: "numeric", Weight: weight(0.7), Confidence: weight(0.65), Coverage: 0.25},
			"CONSISTENT_D_STAR":                           {Name: "CONSISTENT_D_STAR", Theme: "numeric", Weight: weight(0.6), Confidence: weight(0.55), Coverage: 0.2},
			"FW_SUMMARY_D":                                {Name: "FW_SUMMARY_D", Theme: "numeric", Weight: weight(0.5), Confidence: weight(0.5), Coverage: 0.2},
			"BW_SUMMARY_D":                                {Name: "BW_SUMMARY_D", Theme: "numeric", Weight: weight(0.5), Confidence: weight(0.5), Coverage: 0.2},
			"CONSISTENT_NUMERIC_WIDTH":                    {Name: "CONSISTENT_NUMERIC_WIDTH", Theme: "numeric", Weight: weight(0.45), Confidence: weight(0.4), Coverage: 0.15},
			"CONSISTENT_SC_TWO_OR_MORE":                   {Name: "CONSISTENT_SC_TWO_OR_MORE", Theme: "symbols", Weight: weight(0.4), Confidence: weight(0.4), Coverage: 0.15},
			"FW_D1":                                       {Name: "FW_D1", Theme: "pattern", Weight: weight(0.35), Confidence: weight(0.3), Coverage: 0.1},
			"BW_D1":                                       {Name: "BW_D1", Theme: "pattern", Weight: weight(0.35), Confidence: weight(0.3), Coverage: 0.1},
			"D4":                                          {Name: "D4", Theme: "numeric", Weight: weight(0.3), Confidence: nil, Coverage: 0.1},
			"D5PLUS":                                      {Name: "D5PLUS", Theme: "numeric", Weight: weight(0.3), Confidence: nil, Coverage: 0.1},
			"LENGTH_4PLUS":                                {Name: "LENGTH_4PLUS", Theme: "length", Weight: weight(0.2), Confidence: weight(0.2), Coverage: 0.1},
			"CASE_SUMMARY_CAPS":                           {Name: "CASE_SUMMARY_CAPS", Theme: "case", Weight: weight(0.25), Confidence: weight(0.2), Coverage: 0.1},
			"CONSISTENT_CHAR_LENGTH":                      {Name: "CONSISTENT_CHAR_LENGTH", Theme: "length", Weight: weight(0.45), Confidence: weight(0.4), Coverage: 0.2},
			"CONSISTENT_SINGLE_WORD_CONSISTENT_CASE":      {Name: "CONSISTENT_SINGLE_WORD_CONSISTENT_CASE", Theme: "token", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.15},
			"CHAR_COUNT_OVER_POINT5_MAX":                  {Name: "CHAR_COUNT_OVER_POINT5_MAX", Theme: "length", Weight: weight(0.3), Confidence: weight(0.3), Coverage: 0.1},
			"CHAR_COUNT_OVER_POINT6_MAX":                  {Name: "CHAR_COUNT_OVER_POINT6_MAX", Theme: "length", Weight: weight(0.35), Confidence: weight(0.3), Coverage: 0.1},
			"CHAR_COUNT_OVER_POINT7_MAX":                  {Name: "CHAR_COUNT_OVER_POINT7_MAX", Theme: "length", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.1},
			"CHAR_COUNT_OVER_POINT8_MAX":                  {Name: "CHAR_COUNT_OVER_POINT8_MAX", Theme: "length", Weight: weight(0.45), Confidence: weight(0.4), Coverage: 0.1},
			"CHAR_COUNT_OVER_POINT9_MAX":                  {Name: "CHAR_COUNT_OVER_POINT9_MAX", Theme: "length", Weight: weight(0.5), Confidence: weight(0.45), Coverage: 0.1},
			"CHAR_COUNT_UNDER_POINT1_MIN":                 {Name: "CHAR_COUNT_UNDER_POINT1_MIN", Theme: "length", Weight: weight(0.3), Confidence: weight(0.25), Coverage: 0.1},
			"CHAR_COUNT_UNDER_POINT3_MIN":                 {Name: "CHAR_COUNT_UNDER_POINT3_MIN", Theme: "length", Weight: weight(0.25), Confidence: weight(0.2), Coverage: 0.1},
			"VALUE_REPEATS_ONCE_BELOW":                    {Name: "VALUE_REPEATS_ONCE_BELOW", Theme: "repetition", Weight: weight(0.3), Confidence: weight(0.3), Coverage: 0.1},
			"VALUE_REPEATS_TWICE_OR_MORE_BELOW":           {Name: "VALUE_REPEATS_TWICE_OR_MORE_BELOW", Theme: "repetition", Weight: weight(0.45), Confidence: weight(0.4), Coverage: 0.15},
			"ALPHA_TOKEN_REPEATS_ONCE_BELOW":              {Name: "ALPHA_TOKEN_REPEATS_ONCE_BELOW", Theme: "token", Weight: weight(0.3), Confidence: weight(0.3), Coverage: 0.1},
			"ALPHA_TOKEN_REPEATS_TWICE_OR_MORE_BELOW":     {Name: "ALPHA_TOKEN_REPEATS_TWICE_OR_MORE_BELOW", Theme: "token", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.1},
		},
		CellNotData: map[string]Entry{
			"First_FW_Symbol_disagrees": {Name: "First_FW_Symbol_disagrees", Theme: "pattern", Weight: weight(0.5), Confidence: weight(0.5), Coverage: 0.2},
			"CONSISTENT_NUMERIC":        {Name: "CONSISTENT_NUMERIC", Theme: "numeric", Weight: weight(0.75), Confidence: weight(0.7), Coverage: 0.3},
			"CONSISTENT_D_STAR":         {Name: "CONSISTENT_D_STAR", Theme: "numeric", Weight: weight(0.55), Confidence: weight(0.5), Coverage: 0.2},
			"BROAD_NUMERIC":             {Name: "BROAD_NUMERIC", Theme: "numeric", Weight: weight(0.8), Confidence: weight(0.75), Coverage: 0.35},
			"CASE_SUMMARY_CAPS":         {Name: "CASE_SUMMARY_CAPS", Theme: "case", Weight: weight(0.3), Confidence: weight(0.3), Coverage: 0.1},
			"CONSISTENT_CHAR_LENGTH":    {Name: "CONSISTENT_CHAR_LENGTH", Theme: "length", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.15},
			"LENGTH_4PLUS":              {Name: "LENGTH_4PLUS", Theme: "length", Weight: nil, Confidence: nil, Coverage: 0.05},
		},
		LineData: map[string]Entry{
			"ADJACENT_ARITHMETIC_SEQUENCE_2":         {Name: "ADJACENT_ARITHMETIC_SEQUENCE_2", Theme: "sequence", Weight: weight(0.35), Confidence: weight(0.3), Coverage: 0.1},
			"ADJACENT_ARITHMETIC_SEQUENCE_3":         {Name: "ADJACENT_ARITHMETIC_SEQUENCE_3", Theme: "sequence", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.1},
			"ADJACENT_ARITHMETIC_SEQUENCE_4":         {Name: "ADJACENT_ARITHMETIC_SEQUENCE_4", Theme: "sequence", Weight: weight(0.45), Confidence: weight(0.4), Coverage: 0.1},
			"ADJACENT_ARITHMETIC_SEQUENCE_5":         {Name: "ADJACENT_ARITHMETIC_SEQUENCE_5", Theme: "sequence", Weight: weight(0.5), Confidence: weight(0.45), Coverage: 0.1},
			"ADJACENT_ARITHMETIC_SEQUENCE_6":         {Name: "ADJACENT_ARITHMETIC_SEQUENCE_6", Theme: "sequence", Weight: weight(0.55), Confidence: weight(0.5), Coverage: 0.1},
			"RANGE_PAIRS_1":                          {Name: "RANGE_PAIRS_1", Theme: "sequence", Weight: weight(0.3), Confidence: weight(0.3), Coverage: 0.1},
			"RANGE_PAIRS_2_PLUS":                     {Name: "RANGE_PAIRS_2_PLUS", Theme: "sequence", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.1},
			"PARTIALLY_REPEATING_VALUES_LENGTH_2_PLUS": {Name: "PARTIALLY_REPEATING_VALUES_LENGTH_2_PLUS", Theme: "repetition", Weight: weight(0.35), Confidence: weight(0.3), Coverage: 0.1},
			"AGGREGATION_ON_ROW_W_ARITH_SEQUENCE":    {Name: "AGGREGATION_ON_ROW_W_ARITH_SEQUENCE", Theme: "aggregation", Weight: weight(0.3), Confidence: weight(0.3), Coverage: 0.1},
			"CONTAINS_DATATYPE_CELL_VALUE":           {Name: "CONTAINS_DATATYPE_CELL_VALUE", Theme: "type", Weight: weight(0.4), Confidence: weight(0.4), Coverage: 0.15},
		},
		LineNotData: map[string]Entry{
			"CONSISTENTLY_SLUG_OR_SNAKE":              {Name: "CONSISTENTLY_SLUG_OR_SNAKE", Theme: "headery", Weight: weight(0.6), Confidence: weight(0.55), Coverage: 0.2},
			"CONSISTENTLY_UPPER_CASE":                 {Name: "CONSISTENTLY_UPPER_CASE", Theme: "headery", Weight: weight(0.5), Confidence: weight(0.45), Coverage: 0.15},
			"METADATA_LIKE_ROW":                       {Name: "METADATA_LIKE_ROW", Theme: "headery", Weight: weight(0.55), Confidence: weight(0.5), Coverage: 0.2},
			"METADATA_TABLE_HEADER_KEYWORDS":          {Name: "METADATA_TABLE_HEADER_KEYWORDS", Theme: "headery", Weight: weight(0.65), Confidence: weight(0.6), Coverage: 0.2},
			"AGGREGATION_ON_ROW_WO_NUMERIC":           {Name: "AGGREGATION_ON_ROW_WO_NUMERIC", Theme: "aggregation", Weight: weight(0.5), Confidence: weight(0.45), Coverage: 0.15, Type: "aggregation"},
			"AGGREGATION_TOKEN_IN_FIRST_VALUE_OF_ROW": {Name: "AGGREGATION_TOKEN_IN_FIRST_VALUE_OF_ROW", Theme: "aggregation", Weight: weight(0.45), Confidence: weight(0.4), Coverage: 0.15, Type: "aggregation"},
			"UP_TO_FIRST_COLUMN_COMPLETE_CONSISTENTLY": {Name: "UP_TO_FIRST_COLUMN_COMPLETE_CONSISTENTLY", Theme: "positional", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.1},
			"STARTS_WITH_NULL":                        {Name: "STARTS_WITH_NULL", Theme: "null", Weight: weight(0.3), Confidence: weight(0.3), Coverage: 0.1},
			"NO_SUMMARY_BELOW":                        {Name: "NO_SUMMARY_BELOW", Theme: "positional", Weight: weight(0.3), Confidence: nil, Coverage: 0.05},
			"FOOTNOTE":                                {Name: "FOOTNOTE", Theme: "footnote", Weight: weight(0.85), Confidence: weight(0.8), Coverage: 0.2, Type: "header"},
			"NULL_EQUIVALENT_ON_LINE_2_PLUS":          {Name: "NULL_EQUIVALENT_ON_LINE_2_PLUS", Theme: "null", Weight: weight(0.4), Confidence: weight(0.35), Coverage: 0.1},
			"ONE_NULL_EQUIVALENT_ON_LINE":             {Name: "ONE_NULL_EQUIVALENT_ON_LINE", Theme: "null", Weight: weight(0.2), Confidence: weight(0.2), Coverage: 0.1},
		},
	}
}

// Load reads a catalogue persisted in the shape documented by §6, preserving
// the per-rule {weight, confidence, coverage, theme, name, type} fields.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read catalogue: %w", err)
	}
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("rules: parse catalogue: %w", err)
	}
	return &c, nil
}

// Save persists a catalogue as a single structured YAML document (§6).
func Save(path string, c *Catalogue) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("rules: marshal catalogue: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
