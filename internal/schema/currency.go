// Package schema locates header rows and classifies columns in raw sheet
// grids. Source workbooks drift between exports: renamed, shifted, and
// duplicated headers. Everything here is fuzzy matching driven by
// declarative rule tables rather than fixed positions.
package schema

import (
	"sort"
	"strings"
)

// CurrencySignal holds the tiered match signals for one currency. A strong
// phrase scores 10, a symbol 8, and each weak fragment 3 (cumulative). A hit
// on the exclusion list disqualifies the currency for that header outright.
type CurrencySignal struct {
	Strong  []string
	Weak    []string
	Symbols []string
	Exclude []string
}

// CurrencySignals is the detection rule table, keyed by ISO code.
var CurrencySignals = map[string]CurrencySignal{
	"USD": {
		Strong:  []string{"usd", "us list price", "us$", "united states"},
		Weak:    []string{"us ", " us", "dollar", "american"},
		Symbols: []string{"$"},
		Exclude: []string{"cad", "canada", "au$", "nz$", "aud", "nzd", "aus ", "aus list"},
	},
	"CAD": {
		Strong:  []string{"cad", "canada list price", "canadian", "ca$", "can$"},
		Weak:    []string{"canada", "canadian dollar"},
		Symbols: []string{"ca$", "can$"},
	},
	"GBP": {
		Strong:  []string{"gbp", "uk list price", "united kingdom", "britain"},
		Weak:    []string{"uk ", " uk", "british", "sterling", "pound"},
		Symbols: []string{"£"},
	},
	"AUD": {
		Strong:  []string{"aud", "aus list price", "australia list", "australian", "aus list"},
		Weak:    []string{"aus ", " aus", "australia"},
		Symbols: []string{"a$", "au$"},
		Exclude: []string{"nzd", "nz$", "new zealand"},
	},
	"NZD": {
		Strong:  []string{"nzd", "nz list price", "new zealand"},
		Weak:    []string{"nz ", " nz"},
		Symbols: []string{"nz$"},
	},
	"ZAR": {
		Strong:  []string{"zar", "south africa list", "south african"},
		Weak:    []string{"africa", "rand"},
		Symbols: []string{"r"}, // careful, "R" is ambiguous
	},
	"EUR": {
		Strong:  []string{"eur", "ireland list price", "euro"},
		Weak:    []string{"ireland", "europe", "european"},
		Symbols: []string{"€"},
	},
}

// Signal score weights and the ambiguity margin between the top two
// candidates below which classification is rejected.
const (
	strongScore     = 10
	symbolScore     = 8
	weakScore       = 3
	ambiguityMargin = 3
)

// Confidence grades a currency detection.
type Confidence int

// Confidence levels returned by DetectCurrency.
const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// DetectCurrency scores a column header against the signal table and returns
// the winning currency, or ("", ConfidenceNone) when nothing matches or the
// top two candidates are within the ambiguity margin of each other.
func DetectCurrency(header string) (string, Confidence) {
	lower := strings.ToLower(strings.TrimSpace(header))

	scores := make(map[string]int)
	for code, signals := range CurrencySignals {
		if containsAny(lower, signals.Exclude) {
			continue
		}
		score := 0
		if containsAny(lower, signals.Strong) {
			score += strongScore
		}
		if containsAny(lower, signals.Symbols) {
			score += symbolScore
		}
		for _, weak := range signals.Weak {
			if strings.Contains(lower, weak) {
				score += weakScore
			}
		}
		if score > 0 {
			scores[code] = score
		}
	}
	if len(scores) == 0 {
		return "", ConfidenceNone
	}

	type candidate struct {
		code  string
		score int
	}
	ranked := make([]candidate, 0, len(scores))
	for code, score := range scores {
		ranked = append(ranked, candidate{code, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].code < ranked[j].code
	})

	if len(ranked) > 1 && ranked[0].score-ranked[1].score <= ambiguityMargin {
		return "", ConfidenceNone
	}

	best := ranked[0]
	switch {
	case best.score >= strongScore:
		return best.code, ConfidenceHigh
	case best.score >= 6:
		return best.code, ConfidenceMedium
	default:
		return best.code, ConfidenceLow
	}
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
