package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

func bandedEntry(ceiling, prior, current float64) model.CatalogEntry {
	return model.CatalogEntry{
		BandCeiling:  floatPtr(ceiling),
		PricePrior:   floatPtr(prior),
		PriceCurrent: floatPtr(current),
	}
}

func TestResolveBand(t *testing.T) {
	entries := []model.CatalogEntry{
		// Deliberately out of order; resolution must sort by ceiling.
		bandedEntry(9999, 70, 73),
		bandedEntry(10, 100, 105),
		bandedEntry(50, 90, 94),
	}

	tests := []struct {
		name     string
		quantity float64
		ceiling  float64
		current  float64
	}{
		{name: "lowest band", quantity: 1, ceiling: 10, current: 105},
		{name: "exact ceiling", quantity: 10, ceiling: 10, current: 105},
		{name: "middle band", quantity: 11, ceiling: 50, current: 94},
		{name: "top band", quantity: 51, ceiling: 9999, current: 73},
		{name: "beyond every ceiling uses top band", quantity: 20000, ceiling: 9999, current: 73},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			band := ResolveBand(tt.quantity, entries)
			require.NotNil(t, band.Ceiling)
			assert.Equal(t, tt.ceiling, *band.Ceiling)
			require.NotNil(t, band.PriceCurrent)
			assert.Equal(t, tt.current, *band.PriceCurrent)
		})
	}
}

func TestResolveBandFlat(t *testing.T) {
	entries := []model.CatalogEntry{
		{PricePrior: floatPtr(100), PriceCurrent: floatPtr(105)},
	}

	band := ResolveBand(500, entries)
	assert.Nil(t, band.Ceiling)
	require.NotNil(t, band.PriceCurrent)
	assert.Equal(t, 105.0, *band.PriceCurrent)
}

func TestResolveBandPrefersBandedOverFlat(t *testing.T) {
	entries := []model.CatalogEntry{
		{PricePrior: floatPtr(1), PriceCurrent: floatPtr(2)},
		bandedEntry(100, 90, 94),
	}

	band := ResolveBand(5, entries)
	require.NotNil(t, band.Ceiling)
	assert.Equal(t, 100.0, *band.Ceiling)
}

func TestResolveBandEmpty(t *testing.T) {
	band := ResolveBand(5, nil)
	assert.Nil(t, band.Ceiling)
	assert.Nil(t, band.PricePrior)
	assert.Nil(t, band.PriceCurrent)
}
