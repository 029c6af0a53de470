package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

func testConfig() config.Config {
	return config.Config{
		PriorYear:   "2025",
		CurrentYear: "2026",
		Tolerance:   0.01,
	}
}

func testCatalog() *model.Catalog {
	catalog := model.NewCatalog()

	// Banded item priced in USD.
	catalog.Add(model.CatalogEntry{
		ItemID: "XX-0000001-00", Currency: "USD", SourceTab: "Products",
		BandCeiling: floatPtr(10), PricePrior: floatPtr(100), PriceCurrent: floatPtr(105),
	})
	catalog.Add(model.CatalogEntry{
		ItemID: "XX-0000001-00", Currency: "USD", SourceTab: "Products",
		BandCeiling: floatPtr(9999), PricePrior: floatPtr(80), PriceCurrent: floatPtr(84),
	})

	// Flat-priced item.
	catalog.Add(model.CatalogEntry{
		ItemID: "XX-0000002-00", Currency: "USD", SourceTab: "Products",
		PricePrior: floatPtr(250), PriceCurrent: floatPtr(260),
	})

	// Contract-priced item.
	catalog.Add(model.CatalogEntry{
		ItemID: "XX-0000003-00", Currency: "USD", SourceTab: "Custom",
		IsCustom: true,
	})

	return catalog
}

func line(itemID, currency string, quantity, netValue float64) model.BillingLine {
	return model.BillingLine{ItemID: itemID, Currency: currency, Quantity: quantity, NetValue: netValue}
}

func TestAuditorRun(t *testing.T) {
	auditor := NewAuditor(testConfig(), testCatalog())

	lines := []model.BillingLine{
		line("XX-0000001-00", "USD", 5, 105),      // current price
		line("XX-0000001-00", "USD", 5, 100),      // prior price
		line("XX-0000001-00", "USD", 5, 73.99),    // unexplained
		line("XX-0000001-00", "USD", 20, 84*20),   // scaled current, top band
		line("XX-0000002-00", "USD", 1, 260),      // flat price
		line("XX-0000003-00", "USD", 1, 12345.67), // custom
		line("XX-0000001-00", "GBP", 5, 105),      // currency gap
		line("ZZ-0000000-00", "USD", 1, 42),       // unknown item
		line("XX-0000001-00", "USD", 5, -20),      // credit
		line("XX-0000001-00", "USD", 5, 0),        // billed at zero
	}

	results, summary, err := auditor.Run(lines)
	require.NoError(t, err)
	require.Len(t, results, len(lines))

	wantFlags := []model.AuditFlag{
		model.FlagCorrectCurrent,
		model.FlagOldPrice,
		model.FlagNoMatch,
		model.FlagCorrectCurrent,
		model.FlagCorrectCurrent,
		model.FlagCustomPricing,
		model.FlagNoCatalogCurrency,
		model.FlagNotInCatalog,
		model.FlagCredit,
		model.FlagBilledAtZero,
	}
	for i, want := range wantFlags {
		assert.Equal(t, want, results[i].Flag, "line %d", i)
	}

	assert.Equal(t, len(lines), summary.Total)
	assert.Equal(t, 3, summary.CleanMatches)
	assert.Equal(t, 1, summary.ByFlag[model.FlagNoMatch].Count)
	assert.Equal(t, 1, summary.ByFlag[model.FlagCustomPricing].Count)
}

func TestAuditorRunEmpty(t *testing.T) {
	auditor := NewAuditor(testConfig(), testCatalog())
	_, _, err := auditor.Run(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoRowsExtracted)
}

func TestAuditorCustomWinsOverPriced(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Add(model.CatalogEntry{
		ItemID: "XX-0000009-00", Currency: "USD", SourceTab: "Products",
		PricePrior: floatPtr(100), PriceCurrent: floatPtr(105),
	})
	catalog.Add(model.CatalogEntry{
		ItemID: "XX-0000009-00", Currency: "USD", SourceTab: "Custom",
		IsCustom: true,
	})

	auditor := NewAuditor(testConfig(), catalog)
	results, _, err := auditor.Run([]model.BillingLine{
		line("XX-0000009-00", "USD", 1, 105),
	})
	require.NoError(t, err)
	assert.Equal(t, model.FlagCustomPricing, results[0].Flag)
	assert.Equal(t, "Custom", results[0].SourceTab)
}

func TestAuditorZeroQuantity(t *testing.T) {
	auditor := NewAuditor(testConfig(), testCatalog())

	t.Run("matching flat charge stays correct", func(t *testing.T) {
		results, _, err := auditor.Run([]model.BillingLine{
			line("XX-0000001-00", "USD", 0, 105),
		})
		require.NoError(t, err)
		assert.Equal(t, model.FlagCorrectCurrent, results[0].Flag)
	})

	t.Run("non-matching amount is benign", func(t *testing.T) {
		results, _, err := auditor.Run([]model.BillingLine{
			line("XX-0000001-00", "USD", 0, 543.21),
		})
		require.NoError(t, err)
		assert.Equal(t, model.FlagZeroQtyFlatPrice, results[0].Flag)
	})

	t.Run("credit still wins", func(t *testing.T) {
		results, _, err := auditor.Run([]model.BillingLine{
			line("XX-0000001-00", "USD", 0, -5),
		})
		require.NoError(t, err)
		assert.Equal(t, model.FlagCredit, results[0].Flag)
	})
}

func TestAuditorVariance(t *testing.T) {
	auditor := NewAuditor(testConfig(), testCatalog())

	results, _, err := auditor.Run([]model.BillingLine{
		line("XX-0000001-00", "USD", 5, 110.50),
	})
	require.NoError(t, err)
	require.NotNil(t, results[0].VarianceVsCurrent)
	assert.InDelta(t, 5.50, *results[0].VarianceVsCurrent, 0.001)

	results, _, err = auditor.Run([]model.BillingLine{
		line("ZZ-0000000-00", "USD", 1, 42),
	})
	require.NoError(t, err)
	assert.Nil(t, results[0].VarianceVsCurrent)
}

func TestAuditorBandMetadata(t *testing.T) {
	auditor := NewAuditor(testConfig(), testCatalog())

	results, _, err := auditor.Run([]model.BillingLine{
		line("XX-0000001-00", "USD", 20, 84*20),
	})
	require.NoError(t, err)
	require.NotNil(t, results[0].BandCeilingUsed)
	assert.Equal(t, 9999.0, *results[0].BandCeilingUsed)
	assert.Equal(t, "Products", results[0].SourceTab)
	require.NotNil(t, results[0].PriceCurrent)
	assert.Equal(t, 84.0, *results[0].PriceCurrent)
}

func TestAuditorProgress(t *testing.T) {
	auditor := NewAuditor(testConfig(), testCatalog())

	var calls int
	var lastDone, lastTotal int
	auditor.OnProgress(func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	})

	lines := []model.BillingLine{
		line("XX-0000001-00", "USD", 5, 105),
		line("XX-0000002-00", "USD", 1, 260),
	}
	_, _, err := auditor.Run(lines)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, lastDone)
	assert.Equal(t, 2, lastTotal)
}

func TestSummarize(t *testing.T) {
	results := []model.ClassificationResult{
		{Flag: model.FlagCorrectCurrent, Line: model.BillingLine{NetValue: 100}},
		{Flag: model.FlagCorrectCurrent, Line: model.BillingLine{NetValue: 50}},
		{Flag: model.FlagNoMatch, Line: model.BillingLine{NetValue: 25}},
		{Flag: model.FlagPriceUnchanged, Line: model.BillingLine{NetValue: 10}},
	}

	summary := summarize(results)
	assert.Equal(t, 4, summary.Total)
	assert.InDelta(t, 185, summary.TotalBilled, 0.001)
	assert.Equal(t, 3, summary.CleanMatches)
	assert.Equal(t, 2, summary.ByFlag[model.FlagCorrectCurrent].Count)
	assert.InDelta(t, 150, summary.ByFlag[model.FlagCorrectCurrent].Billed, 0.001)
}
