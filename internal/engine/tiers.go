package engine

import (
	"sort"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

// BandPrices is the outcome of a band lookup: the ceiling that applied and
// the two year prices it carries. All nil when no entry covers the line.
type BandPrices struct {
	Ceiling      *float64
	PricePrior   *float64
	PriceCurrent *float64
}

// ResolveBand picks the applicable band for a billed quantity from the
// entries of one (item, currency) group. Banded entries are searched in
// ascending ceiling order for the first ceiling ≥ quantity; a quantity above
// every ceiling falls back to the top band (billing beyond the declared
// maximum is priced at the top tier). Without banded entries the first flat
// entry applies.
func ResolveBand(quantity float64, entries []model.CatalogEntry) BandPrices {
	var banded, unbanded []model.CatalogEntry
	for _, entry := range entries {
		if entry.BandCeiling != nil {
			banded = append(banded, entry)
		} else {
			unbanded = append(unbanded, entry)
		}
	}

	if len(banded) > 0 {
		sort.SliceStable(banded, func(i, j int) bool {
			return *banded[i].BandCeiling < *banded[j].BandCeiling
		})
		selected := banded[len(banded)-1]
		for _, entry := range banded {
			if *entry.BandCeiling >= quantity {
				selected = entry
				break
			}
		}
		return BandPrices{
			Ceiling:      selected.BandCeiling,
			PricePrior:   selected.PricePrior,
			PriceCurrent: selected.PriceCurrent,
		}
	}

	if len(unbanded) > 0 {
		first := unbanded[0]
		return BandPrices{PricePrior: first.PricePrior, PriceCurrent: first.PriceCurrent}
	}
	return BandPrices{}
}
