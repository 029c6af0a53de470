package normalize

import "strings"

// customSentinels are exact (trimmed, upper-cased) cell values that mark an
// item as contract-priced rather than missing.
var customSentinels = map[string]bool{
	"CUSTOM":                    true,
	"PRICING BASED ON CONTRACT": true,
	"TBD":                       true,
	"N/A":                       true,
	"-":                         true,
}

// customPrefixes catch the free-text variants of the same sentinel.
var customPrefixes = []string{"PRICING BASED", "CONTRACT"}

// IsCustomValue reports whether a cell contains custom-pricing text.
func IsCustomValue(raw string) bool {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return false
	}
	if customSentinels[cleaned] {
		return true
	}
	for _, prefix := range customPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			return true
		}
	}
	return false
}
