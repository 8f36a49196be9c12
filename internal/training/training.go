// Package training aggregates labelled examples into a rules.Catalogue,
// scoring each rule's weight, confidence, and coverage the way pat_rule_worker
// and the precision pass of the original classifier do: per rule, weight is
// true-positive-rate minus false-positive-rate among rows where the rule
// fired, confidence is the true-positive rate alone, and coverage is the
// firing rate over all labelled instances.
package training

import (
	"fmt"

	"github.com/tablescout/tablescout/internal/extractor"
	"github.com/tablescout/tablescout/internal/pattern"
	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
)

// Annotation is one hand-labelled file: its grid plus the ground-truth row
// type for every row index the annotator classified.
type Annotation struct {
	Grid   [][]string
	Labels map[int]extractor.RowType
}

// tally accumulates predicted-positive / true-positive / false-positive
// counts for one rule, from which weight/confidence/coverage are derived.
type tally struct {
	predictedPositive int
	truePositive      int
	falsePositive     int
}

func (t *tally) fired(isData bool) {
	t.predictedPositive++
	if isData {
		t.truePositive++
	} else {
		t.falsePositive++
	}
}

func (t tally) entry(name, theme, typ string, total int) rules.Entry {
	e := rules.Entry{Name: name, Theme: theme, Type: typ}
	if total > 0 {
		e.Coverage = float64(t.predictedPositive) / float64(total)
	}
	if t.predictedPositive > 0 {
		confidence := float64(t.truePositive) / float64(t.predictedPositive)
		weight := confidence - float64(t.falsePositive)/float64(t.predictedPositive)
		e.Confidence = &confidence
		e.Weight = &weight
	}
	return e
}

// themes carries over the hand-set theme/type tags from the bundled default
// catalogue so a trained catalogue documents its rules the same way.
func themes() *rules.Catalogue { return rules.Default() }

// Run aggregates every annotated file into a fresh Catalogue. It reuses the
// same cell/line predicate sets and evidence construction the extractor
// scores with, so a trained catalogue stays wire-compatible with Discover.
func Run(annotations []Annotation, opt signature.Options) (*rules.Catalogue, error) {
	if len(annotations) == 0 {
		return nil, fmt.Errorf("training: no annotations supplied")
	}

	cellData := map[string]*tally{}
	cellNotData := map[string]*tally{}
	lineData := map[string]*tally{}
	lineNotData := map[string]*tally{}
	for name := range rules.DataPredicates() {
		cellData[name] = &tally{}
	}
	for name := range rules.NotDataPredicates() {
		cellNotData[name] = &tally{}
	}
	for name := range rules.DataLinePredicates() {
		lineData[name] = &tally{}
	}
	for name := range rules.NotDataLinePredicates() {
		lineNotData[name] = &tally{}
	}

	totalCells := 0
	totalLines := 0

	for _, ann := range annotations {
		if len(ann.Grid) == 0 {
			continue
		}
		tbl := signature.Build(ann.Grid, nil, opt)
		for row, label := range ann.Labels {
			if row < 0 || row >= tbl.Rows {
				continue
			}
			isData := label == extractor.RowData

			rowCells := make([]signature.Cell, tbl.Cols)
			hasAggregate := false
			below := row + 1
			if below > tbl.Rows {
				below = tbl.Rows
			}
			for col := 0; col < tbl.Cols; col++ {
				candidate := tbl.Cell(row, col)
				rowCells[col] = candidate
				if col == 0 && candidate.IsAggregate {
					hasAggregate = true
				}

				fwd := pattern.Build(tbl.ColumnSlice(below, tbl.Rows-1, col))
				bwd := pattern.Build(tbl.ReverseColumnSlice(below, tbl.Rows-1, col))
				cellCtx := rules.CellContext{Candidate: candidate, Forward: fwd, Backward: bwd}

				totalCells++
				for ruleName, pred := range rules.DataPredicates() {
					if pred(cellCtx) {
						cellData[ruleName].fired(isData)
					}
				}
				for ruleName, pred := range rules.NotDataPredicates() {
					if pred(cellCtx) {
						cellNotData[ruleName].fired(!isData)
					}
				}
			}

			totalLines++
			lineCtx := rules.LineContext{Row: rowCells, BeforeData: label == extractor.RowContext, HasAggregate: hasAggregate}
			for ruleName, pred := range rules.DataLinePredicates() {
				if pred(lineCtx) {
					lineData[ruleName].fired(isData)
				}
			}
			for ruleName, pred := range rules.NotDataLinePredicates() {
				if pred(lineCtx) {
					lineNotData[ruleName].fired(!isData)
				}
			}
		}
	}

	base := themes()
	cat := &rules.Catalogue{
		CellData:    map[string]rules.Entry{},
		CellNotData: map[string]rules.Entry{},
		LineData:    map[string]rules.Entry{},
		LineNotData: map[string]rules.Entry{},
	}
	for name, t := range cellData {
		theme, typ := themeOf(base.CellData, name)
		cat.CellData[name] = t.entry(name, theme, typ, totalCells)
	}
	for name, t := range cellNotData {
		theme, typ := themeOf(base.CellNotData, name)
		cat.CellNotData[name] = t.entry(name, theme, typ, totalCells)
	}
	for name, t := range lineData {
		theme, typ := themeOf(base.LineData, name)
		cat.LineData[name] = t.entry(name, theme, typ, totalLines)
	}
	for name, t := range lineNotData {
		theme, typ := themeOf(base.LineNotData, name)
		cat.LineNotData[name] = t.entry(name, theme, typ, totalLines)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("training: trained catalogue invalid: %w", err)
	}
	return cat, nil
}

func themeOf(entries map[string]rules.Entry, name string) (theme, typ string) {
	if e, ok := entries[name]; ok {
		return e.Theme, e.Type
	}
	return "", ""
}
