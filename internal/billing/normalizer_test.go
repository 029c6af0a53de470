package billing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/workbook"
)

func writeTestWorkbook(t *testing.T, sheets map[string][][]string, order []string) string {
	t.Helper()

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	for _, name := range order {
		_, err := file.NewSheet(name)
		require.NoError(t, err)
		for i, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, file.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, file.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "billing.xlsx")
	require.NoError(t, file.SaveAs(path))
	return path
}

func testConfig() config.Config {
	return config.Config{PriorYear: "2025", CurrentYear: "2026", Tolerance: 0.01}
}

func normalizeFile(t *testing.T, path string) ([]workbookLine, Stats, error) {
	t.Helper()
	reader, err := workbook.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	warnings := &common.Warnings{}
	lines, stats, err := NewNormalizer(testConfig(), warnings).Normalize(reader)
	out := make([]workbookLine, len(lines))
	for i, line := range lines {
		out[i] = workbookLine{line.ItemID, line.Currency, line.Quantity, line.NetValue}
	}
	return out, stats, err
}

type workbookLine struct {
	itemID   string
	currency string
	quantity float64
	netValue float64
}

var exportHeaders = []string{
	"SOrg.", "CreatedOn", "Order#", "Ship-to", "Name 1", "Address",
	"Status", "Sold to", "Material", "Description", "Order quantity",
	"Net Value", "Curr.", "CGp",
}

func TestNormalize(t *testing.T) {
	sheets := map[string][][]string{
		"Cover": {
			{"Quarterly billing report"},
		},
		"Export": {
			exportHeaders,
			{"USS7", "2026-01-05", "1000001", "111111", "Valley Vet", "12 Main St", "A", "222222", "XX-0000001-00", "Widget", "5", "525.00", "USD", "C"},
			{"Total", "", "", "", "", "", "", "", "", "", "", "1000.00", "", ""},
			{"USS7", "2026-01-06", "1000002", "111112", "River Vet", "", "A", "222223", "", "Widget", "1", "99.00", "USD", "C"},
			{"USS7", "2026-01-07", "1000003", "111113", "Coastal Vet", "", "A", "222224", "XX-0000001-00", "Widget", "1", "n/a", "USD", "C"},
			{"USS7", "2026-01-08", "1000004", "111114", "Highland Vet", "", "A", "222225", "XX-0000002-00", "Setup fee", "", "99.00", "USD", "C"},
			{"CAS1", "2026-01-09", "1000005", "111115", "Northern Vet", "", "B", "222226", "XX-0000001-00", "Widget", "2", "210.00", "JPY", "D"},
			{"", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		},
	}

	lines, stats, err := normalizeFile(t, writeTestWorkbook(t, sheets, []string{"Cover", "Export"}))
	require.NoError(t, err)

	assert.Equal(t, "Export", stats.Sheet)
	assert.Equal(t, 6, stats.RawRows)
	assert.Equal(t, 1, stats.SubtotalRows)
	assert.Equal(t, 1, stats.MissingIdentity)
	assert.Equal(t, 1, stats.MissingNetValue)
	assert.Equal(t, 1, stats.ZeroQuantity)
	assert.Equal(t, 3, stats.CleanRows)
	assert.Equal(t, []string{"JPY"}, stats.UnrecognizedCurrencies)

	require.Len(t, lines, 3)
	assert.Equal(t, workbookLine{"XX-0000001-00", "USD", 5, 525}, lines[0])
	assert.Equal(t, workbookLine{"XX-0000002-00", "USD", 0, 99}, lines[1])
	assert.Equal(t, workbookLine{"XX-0000001-00", "JPY", 2, 210}, lines[2])
}

func TestNormalizeContextFields(t *testing.T) {
	sheets := map[string][][]string{
		"Export": {
			exportHeaders,
			{"USS7", "2026-01-05", "1000001", "111111", "Valley Vet", "12 Main St", "A", "222222", "XX-0000001-00", "Widget", "5", "525.00", "USD", "C"},
		},
	}
	path := writeTestWorkbook(t, sheets, []string{"Export"})

	reader, err := workbook.Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	warnings := &common.Warnings{}
	lines, _, err := NewNormalizer(testConfig(), warnings).Normalize(reader)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "USS7", line.SalesOrg)
	assert.Equal(t, "2026-01-05", line.CreatedOn)
	assert.Equal(t, "1000001", line.OrderNumber)
	assert.Equal(t, "111111", line.ShipTo)
	assert.Equal(t, "Valley Vet", line.CustomerName)
	assert.Equal(t, "12 Main St", line.Address)
	assert.Equal(t, "A", line.Status)
	assert.Equal(t, "222222", line.SoldTo)
	assert.Equal(t, "Widget", line.Description)
	assert.Equal(t, "C", line.CostGroup)
}

func TestNormalizeHeaderBelowFirstRow(t *testing.T) {
	sheets := map[string][][]string{
		"Export": {
			{"Report generated 2026-02-01"},
			{},
			exportHeaders,
			{"USS7", "2026-01-05", "1000001", "111111", "Valley Vet", "", "A", "222222", "XX-0000001-00", "Widget", "1", "105.00", "USD", "C"},
		},
	}
	path := writeTestWorkbook(t, sheets, []string{"Export"})

	reader, err := workbook.Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	warnings := &common.Warnings{}
	lines, _, err := NewNormalizer(testConfig(), warnings).Normalize(reader)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	require.NotEmpty(t, warnings.Items())
	assert.Contains(t, warnings.Items()[0], "header found at row 3")
}

func TestNormalizeMissingColumns(t *testing.T) {
	sheets := map[string][][]string{
		"Export": {
			{"Material", "Description", "Curr."},
			{"XX-0000001-00", "Widget", "USD"},
		},
	}
	_, _, err := normalizeFile(t, writeTestWorkbook(t, sheets, []string{"Export"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingColumns)
	assert.Contains(t, err.Error(), "quantity")
	assert.Contains(t, err.Error(), "net value")
}

func TestNormalizeNoHeaderAnywhere(t *testing.T) {
	sheets := map[string][][]string{
		"Export": {
			{"no", "billing", "data"},
		},
	}
	_, _, err := normalizeFile(t, writeTestWorkbook(t, sheets, []string{"Export"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoHeaderRow)
}

func TestNormalizeNoUsableRows(t *testing.T) {
	sheets := map[string][][]string{
		"Export": {
			exportHeaders,
			{"USS7", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		},
	}
	_, _, err := normalizeFile(t, writeTestWorkbook(t, sheets, []string{"Export"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoRowsExtracted)
}

func TestNormalizeEuropeanNetValues(t *testing.T) {
	sheets := map[string][][]string{
		"Export": {
			exportHeaders,
			{"UKS1", "2026-01-05", "1000001", "111111", "Valley Vet", "", "A", "222222", "XX-0000001-00", "Widget", "1", "1.234,56", "GBP", "C"},
			{"UKS1", "2026-01-06", "1000002", "111112", "River Vet", "", "A", "222223", "XX-0000001-00", "Widget", "1", "99,95", "GBP", "C"},
		},
	}

	lines, _, err := normalizeFile(t, writeTestWorkbook(t, sheets, []string{"Export"}))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.InDelta(t, 1234.56, lines[0].netValue, 0.001)
	assert.InDelta(t, 99.95, lines[1].netValue, 0.001)
}
