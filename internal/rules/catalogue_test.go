package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogueValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsMissingRequiredRule(t *testing.T) {
	cat := &Catalogue{CellData: map[string]Entry{}, CellNotData: map[string]Entry{}}
	require.Error(t, cat.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogue.yaml")

	original := Default()
	require.NoError(t, Save(path, original))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	require.Equal(t, len(original.CellData), len(loaded.CellData))
}
