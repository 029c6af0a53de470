package engine

import (
	"math"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

// Classify assigns the outcome flag for one billing line against its
// resolved prices, in fixed precedence: credits and zero billing first, then
// missing prices, then tolerance matching of the net value against each year
// price, first as a unit price, then scaled by quantity for per-unit
// billing lines. A quantity-scaled match against the current-year price wins
// outright.
func Classify(netValue float64, pricePrior, priceCurrent *float64, quantity, tolerance float64) model.AuditFlag {
	if netValue < 0 {
		return model.FlagCredit
	}
	if netValue == 0 {
		return model.FlagBilledAtZero
	}
	if pricePrior == nil && priceCurrent == nil {
		return model.FlagNoTierBandFound
	}

	matchPrior := pricePrior != nil && math.Abs(netValue-*pricePrior) <= tolerance
	matchCurrent := priceCurrent != nil && math.Abs(netValue-*priceCurrent) <= tolerance

	if !matchPrior && !matchCurrent && quantity > 0 {
		if priceCurrent != nil && math.Abs(netValue-*priceCurrent*quantity) <= tolerance {
			return model.FlagCorrectCurrent
		}
		if pricePrior != nil && math.Abs(netValue-*pricePrior*quantity) <= tolerance {
			matchPrior = true
		}
	}

	switch {
	case matchPrior && matchCurrent:
		return model.FlagPriceUnchanged
	case matchCurrent:
		return model.FlagCorrectCurrent
	case matchPrior:
		return model.FlagOldPrice
	default:
		return model.FlagNoMatch
	}
}
