package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/extractor"
	"github.com/tablescout/tablescout/internal/gridio"
	"github.com/tablescout/tablescout/internal/rules"
	"github.com/tablescout/tablescout/internal/signature"
	"github.com/tablescout/tablescout/internal/worker"
)

var scanCatalogPath string
var scanSheet string
var scanConcurrency int
var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan PATH [PATH...]",
	Short: "Scan files or directories for table structure.",
	Long:  `Loads each given file (or every supported file under a given directory) and reports the rectangular table regions discovery finds within it.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanCatalogPath, "catalog", "", "Path to a trained rule catalogue (YAML); defaults to the bundled catalogue")
	scanCmd.Flags().StringVar(&scanSheet, "sheet", "", "Sheet name for spreadsheet files; defaults to the first sheet")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 4, "Max files scanned in parallel")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Emit one JSON record per file (path plus its FileResult or error) instead of a text summary")
}

type scanRecord struct {
	Path   string               `json:"path"`
	Result *extractor.FileResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	cat := rules.Default()
	if scanCatalogPath != "" {
		loaded, err := rules.Load(scanCatalogPath)
		if err != nil {
			return fmt.Errorf("load catalogue: %w", err)
		}
		cat = loaded
	}

	ext, err := extractor.New(cat, extractor.DefaultParams(), signature.Options{})
	if err != nil {
		return fmt.Errorf("construct extractor: %w", err)
	}

	paths, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported files (.csv, .tsv, .xlsx, .xlsm) found under the given paths")
	}

	jobs := make([]worker.Job, len(paths))
	for i, p := range paths {
		jobs[i] = worker.Job{Path: p, Index: i}
	}

	pool := worker.New(scanConcurrency)
	results := pool.Run(cmd.Context(), jobs, func(ctx context.Context, j worker.Job) (any, error) {
		grid, _, err := gridio.LoadGrid(j.Path, scanSheet)
		if err != nil {
			return nil, err
		}
		return ext.Discover(grid)
	})

	records := make([]scanRecord, 0, len(results))
	exitErr := false
	for _, r := range results {
		rec := scanRecord{Path: r.Path}
		if r.Err != nil {
			rec.Error = r.Err.Error()
			exitErr = true
		} else {
			rec.Result = r.Value.(*extractor.FileResult)
		}
		records = append(records, rec)
	}

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
		}
	} else {
		for _, rec := range records {
			if rec.Error != "" {
				fmt.Printf("%s: error: %s\n", rec.Path, rec.Error)
				continue
			}
			fmt.Printf("%s: %d table(s), %d lines processed\n", rec.Path, len(rec.Result.Tables), rec.Result.LinesProcessed)
			for i, t := range rec.Result.Tables {
				fmt.Printf("  [%d] rows %d-%d data %d-%d confidence=%.2f\n", i, t.TopBoundary, t.BottomBoundary, t.DataStart, t.DataEnd, t.DataEndConfidence)
			}
		}
	}

	if exitErr {
		return fmt.Errorf("one or more files failed discovery")
	}
	return nil
}

var supportedExt = map[string]bool{".csv": true, ".tsv": true, ".xlsx": true, ".xlsm": true}

func collectFiles(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", a, err)
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		walkErr := filepath.WalkDir(a, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if supportedExt[strings.ToLower(filepath.Ext(p))] {
				out = append(out, p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", a, walkErr)
		}
	}
	return out, nil
}
