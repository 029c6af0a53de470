package model

// AuditFlag identifies the single outcome assigned to a billing line.
type AuditFlag string

// Audit flag constants. Every classified line carries exactly one.
const (
	FlagCorrectCurrent    AuditFlag = "CORRECT_CURRENT"
	FlagPriceUnchanged    AuditFlag = "PRICE_UNCHANGED"
	FlagOldPrice          AuditFlag = "OLD_PRICE"
	FlagNoMatch           AuditFlag = "NO_MATCH"
	FlagCustomPricing     AuditFlag = "CUSTOM_PRICING"
	FlagNotInCatalog      AuditFlag = "NOT_IN_CATALOG"
	FlagNoCatalogCurrency AuditFlag = "NO_CATALOG_CURRENCY"
	FlagNoTierBandFound   AuditFlag = "NO_TIER_BAND_FOUND"
	FlagZeroQtyFlatPrice  AuditFlag = "ZERO_QTY_FLAT_PRICE"
	FlagBilledAtZero      AuditFlag = "BILLED_AT_ZERO"
	FlagCredit            AuditFlag = "CREDIT"
)

// AllFlags lists the closed flag enumeration.
var AllFlags = []AuditFlag{
	FlagCorrectCurrent,
	FlagPriceUnchanged,
	FlagOldPrice,
	FlagNoMatch,
	FlagCustomPricing,
	FlagNotInCatalog,
	FlagNoCatalogCurrency,
	FlagNoTierBandFound,
	FlagZeroQtyFlatPrice,
	FlagBilledAtZero,
	FlagCredit,
}

// Valid reports whether the flag belongs to the closed enumeration.
func (f AuditFlag) Valid() bool {
	for _, known := range AllFlags {
		if f == known {
			return true
		}
	}
	return false
}

// NeedsReview reports whether the flag should land on the review sheet.
// Clean matches, credits, and benign zero-quantity flat fees do not.
func (f AuditFlag) NeedsReview() bool {
	switch f {
	case FlagCorrectCurrent, FlagPriceUnchanged, FlagZeroQtyFlatPrice, FlagCredit:
		return false
	default:
		return true
	}
}

// CleanMatch reports whether the line was billed at a known catalog price.
func (f AuditFlag) CleanMatch() bool {
	return f == FlagCorrectCurrent || f == FlagPriceUnchanged
}

// ClassificationResult is a billing line after reconciliation: the input
// line plus the catalog context it resolved against and its outcome flag.
type ClassificationResult struct {
	BandCeilingUsed   *float64
	PricePrior        *float64
	PriceCurrent      *float64
	VarianceVsCurrent *float64
	SourceTab         string
	Flag              AuditFlag
	Line              BillingLine
}
