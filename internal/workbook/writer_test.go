package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

func price(v float64) *float64 { return &v }

func sampleResults() []model.ClassificationResult {
	return []model.ClassificationResult{
		{
			Flag:              model.FlagCorrectCurrent,
			SourceTab:         "Products",
			BandCeilingUsed:   price(10),
			PricePrior:        price(100),
			PriceCurrent:      price(105),
			VarianceVsCurrent: price(0),
			Line: model.BillingLine{
				ItemID: "XX-0000001-00", Currency: "USD", Quantity: 5, NetValue: 105,
				CustomerName: "Valley Vet", OrderNumber: "1000001",
			},
		},
		{
			Flag:      model.FlagNoMatch,
			SourceTab: "Products",
			Line: model.BillingLine{
				ItemID: "XX-0000001-00", Currency: "USD", Quantity: 5, NetValue: 73.99,
			},
		},
		{
			Flag: model.FlagCredit,
			Line: model.BillingLine{
				ItemID: "XX-0000002-00", Currency: "USD", Quantity: 1, NetValue: -20,
			},
		},
	}
}

func TestWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewWriter(path).Write(sampleResults()))

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	assert.ElementsMatch(t,
		[]string{SheetNeedsReview, SheetCorrect, SheetFullData, SheetSummary},
		file.GetSheetList())

	review, err := file.GetRows(SheetNeedsReview)
	require.NoError(t, err)
	require.Len(t, review, 2, "header plus the one NO_MATCH row")
	assert.Equal(t, resultHeaders, review[0][:len(resultHeaders)])
	assert.Equal(t, "NO_MATCH", review[1][18])

	correct, err := file.GetRows(SheetCorrect)
	require.NoError(t, err)
	require.Len(t, correct, 3, "header plus the clean and credit rows")

	full, err := file.GetRows(SheetFullData)
	require.NoError(t, err)
	require.Len(t, full, 4, "header plus every result row")
	assert.Equal(t, "XX-0000001-00", full[1][7])
	assert.Equal(t, "CORRECT_CURRENT", full[1][18])
	assert.Equal(t, "Valley Vet", full[1][8])

	summary, err := file.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 4, "header plus one row per distinct flag")
	assert.Equal(t, []string{"Audit Flag", "Row Count", "% of Rows", "Total Billed", "Avg Billed"},
		summary[0][:5])
}

func TestWriterPartitionPreservesAllRows(t *testing.T) {
	results := sampleResults()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewWriter(path).Write(results))

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	review, err := file.GetRows(SheetNeedsReview)
	require.NoError(t, err)
	correct, err := file.GetRows(SheetCorrect)
	require.NoError(t, err)
	full, err := file.GetRows(SheetFullData)
	require.NoError(t, err)

	assert.Equal(t, len(full)-1, (len(review)-1)+(len(correct)-1),
		"review and correct partitions must cover the full data exactly")
}

func TestWriterActiveSheetIsReview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewWriter(path).Write(sampleResults()))

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	active := file.GetSheetName(file.GetActiveSheetIndex())
	assert.Equal(t, SheetNeedsReview, active)
}

func TestWriterEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewWriter(path).Write(nil))

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	full, err := file.GetRows(SheetFullData)
	require.NoError(t, err)
	require.Len(t, full, 1, "header only")
}
