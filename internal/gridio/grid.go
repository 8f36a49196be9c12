// Package gridio loads delimited text files and spreadsheet sheets into the
// plain [][]string grids the signature and extractor packages operate on,
// and caches opened files behind TTL-bearing handles.
package gridio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadGrid reads path and returns its rows as a grid of strings. CSV/TSV
// files are parsed with encoding/csv (delimiter chosen by extension);
// spreadsheet files are read via excelize, using sheet when non-empty or
// the first sheet otherwise.
func LoadGrid(path, sheet string) ([][]string, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".tsv":
		grid, err := loadDelimited(path, ext)
		return grid, "", err
	case ".xlsx", ".xlsm":
		return loadSpreadsheet(path, sheet)
	default:
		return nil, "", fmt.Errorf("gridio: unsupported extension %q", ext)
	}
}

func loadDelimited(path, ext string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gridio: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows; rows are padded downstream
	if ext == ".tsv" {
		r.Comma = '\t'
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gridio: read %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return padRows(rows), nil
}

func loadSpreadsheet(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("gridio: open %s: %w", path, err)
	}
	defer f.Close()

	if strings.TrimSpace(sheet) == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, "", fmt.Errorf("gridio: %s has no sheets", path)
		}
	}

	rowsIter, err := f.Rows(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("gridio: sheet %q: %w", sheet, err)
	}
	defer rowsIter.Close()

	var rows [][]string
	for rowsIter.Next() {
		cols, err := rowsIter.Columns()
		if err != nil {
			return nil, "", fmt.Errorf("gridio: sheet %q row: %w", sheet, err)
		}
		rows = append(rows, cols)
	}
	return padRows(rows), sheet, nil
}

// SheetNames returns the ordered sheet names of a spreadsheet file, or a
// single synthetic name for delimited files.
func SheetNames(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" || ext == ".tsv" {
		return []string{"(default)"}, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("gridio: open %s: %w", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// padRows right-pads every row to the width of the widest row so downstream
// signature.Build sees a rectangular grid.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		if len(r) == width {
			continue
		}
		padded := make([]string, width)
		copy(padded, r)
		rows[i] = padded
	}
	return rows
}
