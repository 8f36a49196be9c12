package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tablescout/tablescout/internal/extractor"
	"github.com/tablescout/tablescout/internal/gridio"
	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
	"github.com/tablescout/tablescout/internal/training"
)

var trainOutPath string

var trainCmd = &cobra.Command{
	Use:   "train ANNOTATIONS_DIR",
	Short: "Train a rule catalogue from hand-labelled example files.",
	Long:  `Reads every *.labels.yaml file under ANNOTATIONS_DIR, loads the grid each one references, and aggregates rule firing statistics into a trained rule catalogue.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainOutPath, "out", "catalogue.yaml", "Where to write the trained catalogue")
}

// labelFile is the on-disk annotation format: a path to the file being
// labelled, the sheet to read it from (spreadsheets only), and a row index
// to row-type-name map for every row the annotator classified.
type labelFile struct {
	Path   string         `yaml:"path"`
	Sheet  string         `yaml:"sheet,omitempty"`
	Labels map[int]string `yaml:"labels"`
}

var rowTypeByName = map[string]extractor.RowType{
	"OTHER":       extractor.RowOther,
	"BLANK":       extractor.RowBlank,
	"CONTEXT":     extractor.RowContext,
	"HEADER":      extractor.RowHeader,
	"DATA":        extractor.RowData,
	"SUBHEADER":   extractor.RowSubheader,
	"FOOTNOTE":    extractor.RowFootnote,
	"AGGREGATION": extractor.RowAggregation,
}

func runTrain(cmd *cobra.Command, args []string) error {
	dir := args[0]
	var labelPaths []string
	walkErr := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".labels.yaml") {
			labelPaths = append(labelPaths, p)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", dir, walkErr)
	}
	if len(labelPaths) == 0 {
		return fmt.Errorf("no *.labels.yaml files found under %s", dir)
	}

	var annotations []training.Annotation
	for _, lp := range labelPaths {
		data, err := os.ReadFile(lp)
		if err != nil {
			return fmt.Errorf("read %s: %w", lp, err)
		}
		var lf labelFile
		if err := yaml.Unmarshal(data, &lf); err != nil {
			return fmt.Errorf("parse %s: %w", lp, err)
		}
		if lf.Path == "" {
			return fmt.Errorf("%s: missing path", lp)
		}

		refPath := lf.Path
		if !filepath.IsAbs(refPath) {
			refPath = filepath.Join(filepath.Dir(lp), refPath)
		}
		grid, _, err := gridio.LoadGrid(refPath, lf.Sheet)
		if err != nil {
			return fmt.Errorf("%s: load %s: %w", lp, refPath, err)
		}

		labels := make(map[int]extractor.RowType, len(lf.Labels))
		for row, name := range lf.Labels {
			rt, ok := rowTypeByName[strings.ToUpper(name)]
			if !ok {
				return fmt.Errorf("%s: row %d: unknown row type %q", lp, row, name)
			}
			labels[row] = rt
		}

		annotations = append(annotations, training.Annotation{Grid: grid, Labels: labels})
	}

	cat, err := training.Run(annotations, signature.Options{})
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	if err := rules.Save(trainOutPath, cat); err != nil {
		return fmt.Errorf("save catalogue: %w", err)
	}

	fmt.Printf("trained catalogue from %d annotation file(s) written to %s\n", len(annotations), trainOutPath)
	return nil
}
