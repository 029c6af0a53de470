package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

func TestWriteCatalogSnapshot(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Add(model.CatalogEntry{
		ItemID: "A", Currency: "USD", SourceTab: "Products",
		BandCeiling: price(10), PricePrior: price(100), PriceCurrent: price(105),
	})
	catalog.Add(model.CatalogEntry{ItemID: "B", Currency: "USD", SourceTab: "Custom", IsCustom: true})

	dir := filepath.Join(t.TempDir(), "intermediate")
	path, err := WriteCatalogSnapshot(dir, catalog)
	require.NoError(t, err)

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header, one priced entry, one custom entry")
	assert.Equal(t, "item_id", rows[0][0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "USD", rows[1][1])
	assert.Equal(t, "B", rows[2][0])
	assert.Equal(t, "TRUE", rows[2][5])
}

func TestWriteBillingSnapshot(t *testing.T) {
	lines := []model.BillingLine{
		{ItemID: "A", Currency: "USD", Quantity: 5, NetValue: 525, CustomerName: "Valley Vet"},
		{ItemID: "B", Currency: "GBP", Quantity: 1, NetValue: 99},
	}

	path, err := WriteBillingSnapshot(t.TempDir(), lines)
	require.NoError(t, err)

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "Valley Vet", rows[1][11])
	assert.Equal(t, "B", rows[2][0])
}
