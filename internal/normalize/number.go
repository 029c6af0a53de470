// Package normalize converts heterogeneous cell text into typed values.
//
// Source workbooks mix currency symbols, thousands separators, the European
// decimal convention, accounting-style negatives, and sentinel text for
// missing or contract-priced values. Everything here is pure: raw string in,
// typed value or nil out.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols are stripped before numeric parsing. A leading bare "R" is
// handled separately because it is only a Rand marker when followed by a digit.
var currencySymbols = []string{"$", "£", "€"}

// sentinels are cell values that mean "no value" rather than zero.
var sentinels = map[string]bool{
	"nan":  true,
	"none": true,
	"-":    true,
	"n/a":  true,
	"":     true,
}

// Number converts raw cell text to a float, or nil when the cell is empty,
// a sentinel, or unparseable. Zero and negative values are preserved; use
// CatalogPrice for catalog cells where they are impossible.
func Number(raw string, european bool) *float64 {
	cleaned := strings.TrimSpace(raw)

	// Accounting-style negative: (1234.56) means -1234.56.
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") && len(cleaned) > 2 {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	for _, sym := range currencySymbols {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if strings.HasPrefix(cleaned, "R") && len(cleaned) > 1 && isDigit(cleaned[1]) {
		cleaned = cleaned[1:]
	}

	if european {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimSpace(cleaned)

	if sentinels[strings.ToLower(cleaned)] {
		return nil
	}

	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	val := dec.InexactFloat64()
	if negative {
		val = -val
	}
	return &val
}

// CatalogPrice parses a catalog price cell. Catalog prices are never zero or
// negative, so any value ≤ 0 is treated as absent.
func CatalogPrice(raw string, european bool) *float64 {
	val := Number(raw, european)
	if val == nil || *val <= 0 {
		return nil
	}
	return val
}

// conventionSampleLimit caps how many values DetectEuropean inspects per column.
const conventionSampleLimit = 20

// DetectEuropean samples a column's values and reports whether it uses the
// European convention ("." thousands, "," decimal). A value votes European
// when a comma appears after its last period; the convention wins when it
// carries more votes than the standard reading across the sample.
func DetectEuropean(values []string) bool {
	sampled := 0
	european := 0
	standard := 0
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		sampled++
		lastComma := strings.LastIndex(v, ",")
		lastDot := strings.LastIndex(v, ".")
		switch {
		case lastComma >= 0 && lastComma > lastDot:
			european++
		case lastComma >= 0 || lastDot >= 0:
			standard++
		}
		if sampled >= conventionSampleLimit {
			break
		}
	}
	return european > standard
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
