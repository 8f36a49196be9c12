package gridio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadGridCSV(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sample.csv", "a,b,c\n1,2\n,,3\n")

	grid, sheet, err := LoadGrid(p, "")
	require.NoError(t, err)
	require.Empty(t, sheet)
	require.Len(t, grid, 3)
	require.Equal(t, []string{"a", "b", "c"}, grid[0])
	// ragged row padded to width 3
	require.Equal(t, []string{"1", "2", ""}, grid[1])
}

func TestLoadGridTSV(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sample.tsv", "a\tb\n1\t2\n")

	grid, _, err := LoadGrid(p, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, grid[0])
	require.Equal(t, []string{"1", "2"}, grid[1])
}

func TestLoadGridUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sample.txt", "a,b\n")

	_, _, err := LoadGrid(p, "")
	require.Error(t, err)
}

func TestSheetNamesDelimited(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sample.csv", "a,b\n")

	names, err := SheetNames(p)
	require.NoError(t, err)
	require.Equal(t, []string{"(default)"}, names)
}
