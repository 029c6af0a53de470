package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFileNotFound)
	assert.NotEmpty(t, common.FixSuggestion(err))
}

func TestReaderSheet(t *testing.T) {
	file := excelize.NewFile()
	const sheet = "Sheet1"
	require.NoError(t, file.SetSheetRow(sheet, "A1", &[]any{"a", "b", "c"}))
	require.NoError(t, file.SetSheetRow(sheet, "A2", &[]any{"1"}))
	require.NoError(t, file.SetSheetRow(sheet, "A3", &[]any{"2", "3", "4"}))
	require.NoError(t, file.SetRowVisible(sheet, 3, false))

	path := filepath.Join(t.TempDir(), "grid.xlsx")
	require.NoError(t, file.SaveAs(path))
	require.NoError(t, file.Close())

	reader, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	assert.Equal(t, []string{sheet}, reader.SheetNames())
	assert.True(t, reader.Visible(sheet))

	got, err := reader.Sheet(sheet)
	require.NoError(t, err)
	require.Len(t, got.Grid, 3)

	// Every row padded to the widest row.
	for _, row := range got.Grid {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, []string{"1", "", ""}, got.Grid[1])

	assert.True(t, got.HiddenRows[2], "row 3 was hidden in the source")
	assert.False(t, got.HiddenRows[0])
}

func TestReaderMergedRegions(t *testing.T) {
	file := excelize.NewFile()
	const sheet = "Sheet1"
	require.NoError(t, file.SetSheetRow(sheet, "A1", &[]any{"merged header"}))
	require.NoError(t, file.SetSheetRow(sheet, "A2", &[]any{"x", "y", "z"}))
	require.NoError(t, file.MergeCell(sheet, "A1", "C1"))

	path := filepath.Join(t.TempDir(), "merged.xlsx")
	require.NoError(t, file.SaveAs(path))
	require.NoError(t, file.Close())

	reader, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	got, err := reader.Sheet(sheet)
	require.NoError(t, err)
	require.NotEmpty(t, got.Grid)
	assert.Equal(t, []string{"merged header", "merged header", "merged header"}, got.Grid[0])
}
