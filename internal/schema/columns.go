package schema

import (
	"regexp"
	"strings"
)

// identityPatterns select the item identity column, in priority order: full
// phrase matches before the generic SKU/item fallbacks.
var identityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`part.*number`),
	regexp.MustCompile(`^material$`),
	regexp.MustCompile(`part.*no\b`),
	regexp.MustCompile(`part#`),
	regexp.MustCompile(`sku`),
	regexp.MustCompile(`^item\b`),
}

// maxBandPatterns select the tier ceiling column.
var maxBandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`max.*user.*tier`),
	regexp.MustCompile(`max.*tier`),
	regexp.MustCompile(`max.*seat`),
	regexp.MustCompile(`scale.*quantity`),
	regexp.MustCompile(`number.*of.*seat`),
	regexp.MustCompile(`max.*band`),
	regexp.MustCompile(`upper.*limit`),
}

// minBandPatterns are the fallback when no max column exists. The minimum is
// then read as the ceiling, a quirk inherited from the source workbooks,
// kept for compatibility pending product-owner confirmation.
var minBandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`min.*user.*tier`),
	regexp.MustCompile(`min.*tier`),
	regexp.MustCompile(`min.*seat`),
	regexp.MustCompile(`min.*band`),
	regexp.MustCompile(`lower.*limit`),
}

// FindIdentityColumn returns the index of the identity column, or false.
func FindIdentityColumn(headers []string) (int, bool) {
	return findByPatterns(headers, identityPatterns)
}

// FindMaxBandColumn returns the index of the band ceiling column, or false.
func FindMaxBandColumn(headers []string) (int, bool) {
	return findByPatterns(headers, maxBandPatterns)
}

// FindMinBandColumn returns the index of the band floor column, or false.
func FindMinBandColumn(headers []string) (int, bool) {
	return findByPatterns(headers, minBandPatterns)
}

func findByPatterns(headers []string, patterns []*regexp.Regexp) (int, bool) {
	for _, pattern := range patterns {
		for i, header := range headers {
			if pattern.MatchString(strings.ToLower(strings.TrimSpace(header))) {
				return i, true
			}
		}
	}
	return 0, false
}

// MatchColumn finds the first column whose normalized header contains any of
// the given substring patterns. Headers are upper-cased with periods removed
// and underscores flattened, so "Net value", "NET_VALUE" and "Net Val." all
// match "NET VAL".
func MatchColumn(headers []string, patterns []string) (int, bool) {
	for i, header := range headers {
		normalized := strings.ToUpper(strings.TrimSpace(header))
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.ReplaceAll(normalized, "_", " ")
		for _, pattern := range patterns {
			if strings.Contains(normalized, pattern) {
				return i, true
			}
		}
	}
	return 0, false
}

var yearToken = regexp.MustCompile(`(19|20)\d{2}`)

// YearToken extracts the first 4-digit year appearing in a header, if any.
func YearToken(header string) (string, bool) {
	match := yearToken.FindString(header)
	return match, match != ""
}

// DetectYear resolves which price year a header refers to. Headers carry
// plain years or date ranges; a range spanning both years is read as the
// current year, matching how the source pricebook labels the new-year column.
func DetectYear(header, priorYear, currentYear string) (string, bool) {
	if strings.Contains(header, currentYear) {
		return currentYear, true
	}
	if strings.Contains(header, priorYear) {
		return priorYear, true
	}
	return "", false
}

// PriceColumn is a classified (currency, year) price column on a catalog tab.
type PriceColumn struct {
	Index      int
	Currency   string
	Year       string
	Confidence Confidence
}

// priceHints mark a header as probably price-bearing when it carries a year
// but no detectable currency, surfaced as a possible missed price column.
var priceHints = []string{"price", "rate", "cost", "fee", "list"}

// ClassifyPriceColumns scores every header for currency and year. A column is
// accepted only with both. Low-confidence detections and year-without-currency
// columns that look price-like are returned as advisory warnings.
func ClassifyPriceColumns(headers []string, priorYear, currentYear string) ([]PriceColumn, []string) {
	var columns []PriceColumn
	var warnings []string

	for i, header := range headers {
		currency, confidence := DetectCurrency(header)
		year, hasPriceYear := DetectYear(header, priorYear, currentYear)
		_, hasAnyYear := YearToken(header)

		switch {
		case currency != "" && hasPriceYear:
			if confidence == ConfidenceLow {
				warnings = append(warnings,
					"low-confidence currency detection: '"+header+"' -> "+currency)
			}
			columns = append(columns, PriceColumn{
				Index:      i,
				Currency:   currency,
				Year:       year,
				Confidence: confidence,
			})
		case hasAnyYear && currency == "":
			if containsAny(strings.ToLower(header), priceHints) {
				warnings = append(warnings,
					"possible missed price column: '"+header+"' has year but no currency detected")
			}
		}
	}
	return columns, warnings
}
