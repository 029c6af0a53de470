package normalize

import "strings"

// KnownCurrencies is the set of ISO codes the catalog prices in.
var KnownCurrencies = map[string]bool{
	"USD": true,
	"CAD": true,
	"GBP": true,
	"AUD": true,
	"NZD": true,
	"ZAR": true,
	"EUR": true,
}

// currencyAliases maps symbol and shorthand forms seen in billing exports
// onto ISO codes.
var currencyAliases = map[string]string{
	"$":    "USD",
	"US$":  "USD",
	"CA$":  "CAD",
	"CAN$": "CAD",
	"C$":   "CAD",
	"£":    "GBP",
	"STG":  "GBP",
	"A$":   "AUD",
	"AU$":  "AUD",
	"NZ$":  "NZD",
	"€":    "EUR",
	"EURO": "EUR",
	"R":    "ZAR",
}

// CurrencyCode upper-cases and alias-maps a raw currency cell. Codes outside
// the known set are preserved as-is; recognized reports whether the result is
// one the catalog can match. Unrecognized codes are not an error, they simply
// never match a catalog currency downstream.
func CurrencyCode(raw string) (code string, recognized bool) {
	code = strings.ToUpper(strings.TrimSpace(raw))
	if mapped, ok := currencyAliases[code]; ok {
		code = mapped
	}
	return code, KnownCurrencies[code]
}
