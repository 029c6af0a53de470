package schema

import (
	"fmt"
	"strings"
)

// catalogHeaderKeywords qualify a catalog row as the header when any of them
// appears in the row text.
var catalogHeaderKeywords = []string{
	"MATERIAL", "PART NUMBER", "PART NO", "SKU", "PART#", "ITEM", "PRODUCT",
}

// billing headers need an identity keyword and a currency/value keyword on
// the same row.
var (
	billingIdentityKeywords = []string{"MATERIAL", "PART NUMBER", "SKU", "ITEM"}
	billingValueKeywords    = []string{"CURR", "NET VALUE", "NETVALUE"}
)

// BillingHeaderWindow bounds the header scan on transactional sheets, which
// carry at most a few junk rows above the export proper. Catalog tabs are
// scanned unbounded.
const BillingHeaderWindow = 30

// FindCatalogHeader scans a catalog tab top to bottom for the header row:
// at least 3 populated cells and at least one identity keyword. Returns the
// row index, or false when no row qualifies.
func FindCatalogHeader(grid [][]string) (int, bool) {
	for i, row := range grid {
		populated := 0
		var joined strings.Builder
		for _, cell := range row {
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			populated++
			joined.WriteString(strings.ToUpper(v))
			joined.WriteString(" ")
		}
		if populated < 3 {
			continue
		}
		if keywordInRow(joined.String(), catalogHeaderKeywords) {
			return i, true
		}
	}
	return 0, false
}

// FindBillingHeader scans the first BillingHeaderWindow rows of a billing
// sheet for a row carrying both an identity and a currency/value keyword.
func FindBillingHeader(grid [][]string) (int, bool) {
	limit := len(grid)
	if limit > BillingHeaderWindow {
		limit = BillingHeaderWindow
	}
	for i := 0; i < limit; i++ {
		var joined strings.Builder
		for _, cell := range grid[i] {
			if v := strings.TrimSpace(cell); v != "" {
				joined.WriteString(strings.ToUpper(v))
				joined.WriteString(" ")
			}
		}
		row := joined.String()
		if keywordInRow(row, billingIdentityKeywords) && keywordInRow(row, billingValueKeywords) {
			return i, true
		}
	}
	return 0, false
}

// Headers extracts and dedupes the header row, naming blank headers by
// position and suffixing repeats, which source workbooks produce routinely.
func Headers(row []string) []string {
	seen := make(map[string]int)
	out := make([]string, len(row))
	for i, raw := range row {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("_col_%d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func keywordInRow(row string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(row, kw) {
			return true
		}
	}
	return false
}
