// Package billing normalizes the raw billing export into flat billing lines
// ready for reconciliation.
package billing

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/normalize"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/schema"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/workbook"
)

// Required column patterns, matched against normalized header text.
var (
	identityPatterns = []string{"MATERIAL"}
	quantityPatterns = []string{"ORDER QUANT", "ORDER QTY", "ORDERQUAN", "QUANTITY"}
	netValuePatterns = []string{"NET VALUE", "NETVALUE", "NET VAL"}
	currencyPatterns = []string{"CURR"}
)

// contextColumns are carried through verbatim when found, never required.
var contextColumns = []struct {
	field    string
	patterns []string
	assign   func(*model.BillingLine, string)
}{
	{"sales_org", []string{"SORG", "S ORG", "SALES ORG"}, func(l *model.BillingLine, v string) { l.SalesOrg = v }},
	{"created_on", []string{"CREATED ON", "CREATEDON"}, func(l *model.BillingLine, v string) { l.CreatedOn = v }},
	{"order_number", []string{"ORDER#", "ORDER #", "ORDER NUMBER"}, func(l *model.BillingLine, v string) { l.OrderNumber = v }},
	{"ship_to", []string{"SHIP-TO", "SHIP TO", "SHIPTO"}, func(l *model.BillingLine, v string) { l.ShipTo = v }},
	{"customer_name", []string{"NAME 1", "NAME1", "CUSTOMER NAME"}, func(l *model.BillingLine, v string) { l.CustomerName = v }},
	{"address", []string{"ADDRESS"}, func(l *model.BillingLine, v string) { l.Address = v }},
	{"status", []string{"STATUS"}, func(l *model.BillingLine, v string) { l.Status = v }},
	{"sold_to", []string{"SOLD TO", "SOLDTO", "SOLD-TO"}, func(l *model.BillingLine, v string) { l.SoldTo = v }},
	{"description", []string{"DESCRIPTION", "DESC"}, func(l *model.BillingLine, v string) { l.Description = v }},
	{"cost_group", []string{"CGP", "COST GROUP"}, func(l *model.BillingLine, v string) { l.CostGroup = v }},
}

// subtotalMarker spots aggregate rows the source system injects between
// transactions. Anchored so codes like ACCOUNT don't trip it.
var subtotalMarker = regexp.MustCompile(`^(GRAND\s+)?(SUB\s*)?TOTAL\b|^SUM\b|^COUNT\b`)

var identitySentinels = map[string]bool{"": true, "nan": true, "none": true}

// Stats summarizes a normalization pass for the end-of-run report.
type Stats struct {
	Sheet                  string
	RawRows                int
	SubtotalRows           int
	MissingIdentity        int
	MissingNetValue        int
	ZeroQuantity           int
	CleanRows              int
	UnrecognizedCurrencies []string
}

// Normalizer maps raw billing rows to billing lines.
type Normalizer struct {
	cfg      config.Config
	warnings *common.Warnings
}

// NewNormalizer creates a billing normalizer.
func NewNormalizer(cfg config.Config, warnings *common.Warnings) *Normalizer {
	return &Normalizer{cfg: cfg, warnings: warnings}
}

// Normalize auto-detects the billing sheet, resolves its columns, and maps
// every transaction row. Rows missing identity or net value are dropped and
// counted; a missing quantity defaults to 0 (flat one-time charge).
func (n *Normalizer) Normalize(reader *workbook.Reader) ([]model.BillingLine, Stats, error) {
	var stats Stats

	sheet, headerRow, err := findBillingSheet(reader)
	if err != nil {
		return nil, stats, err
	}
	stats.Sheet = sheet.Name
	if headerRow > 0 {
		slog.Warn("billing header found below first row",
			"sheet", sheet.Name, "row", headerRow+1, "junk_rows_skipped", headerRow)
		n.warnings.Addf("billing sheet %q: header found at row %d", sheet.Name, headerRow+1)
	}

	headers := schema.Headers(sheet.Grid[headerRow])
	columns, err := resolveColumns(headers)
	if err != nil {
		return nil, stats, err
	}

	dataRows := sheet.Grid[headerRow+1:]
	stats.RawRows = len(dataRows)

	netValueEuropean := detectEuropean(dataRows, columns.netValue)
	quantityEuropean := detectEuropean(dataRows, columns.quantity)
	if netValueEuropean {
		slog.Warn("European number format detected in net value column", "sheet", sheet.Name)
		n.warnings.Addf("billing sheet %q: net value column auto-detected as European number format", sheet.Name)
	}

	unrecognized := make(map[string]bool)
	lines := make([]model.BillingLine, 0, len(dataRows))
	for _, row := range dataRows {
		if isEmptyRow(row) {
			stats.RawRows--
			continue
		}
		if isSubtotalRow(row) {
			stats.SubtotalRows++
			continue
		}

		itemID := strings.TrimSpace(cellAt(row, columns.identity))
		if identitySentinels[strings.ToLower(itemID)] {
			stats.MissingIdentity++
			continue
		}
		netValue := normalize.Number(cellAt(row, columns.netValue), netValueEuropean)
		if netValue == nil {
			stats.MissingNetValue++
			continue
		}

		quantity := 0.0
		if q := normalize.Number(cellAt(row, columns.quantity), quantityEuropean); q != nil {
			quantity = *q
		}
		if quantity == 0 {
			stats.ZeroQuantity++
		}

		code, recognized := normalize.CurrencyCode(cellAt(row, columns.currency))
		if !recognized && code != "" {
			unrecognized[code] = true
		}

		line := model.BillingLine{
			ItemID:   itemID,
			Currency: code,
			Quantity: quantity,
			NetValue: *netValue,
		}
		for _, ctx := range contextColumns {
			if col, ok := columns.context[ctx.field]; ok {
				ctx.assign(&line, strings.TrimSpace(cellAt(row, col)))
			}
		}
		lines = append(lines, line)
	}
	stats.CleanRows = len(lines)

	if len(unrecognized) > 0 {
		codes := make([]string, 0, len(unrecognized))
		for code := range unrecognized {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		stats.UnrecognizedCurrencies = codes
		slog.Warn("unrecognized currency codes in billing export", "codes", codes)
		n.warnings.Addf("billing export has unrecognized currency codes %v; these rows will not match any catalog entry", codes)
	}

	if len(lines) == 0 {
		return nil, stats, common.NewUserError(
			"billing export produced no usable rows after normalization",
			"check that the export contains item, quantity, net value, and currency data below the header",
			common.ErrNoRowsExtracted)
	}

	slog.Info("billing export normalized",
		"sheet", sheet.Name,
		"raw_rows", stats.RawRows,
		"clean_rows", stats.CleanRows,
		"subtotal_rows_dropped", stats.SubtotalRows,
		"missing_identity", stats.MissingIdentity,
		"missing_net_value", stats.MissingNetValue,
		"zero_quantity", stats.ZeroQuantity)

	return lines, stats, nil
}

type columnMap struct {
	identity int
	quantity int
	netValue int
	currency int
	context  map[string]int
}

// resolveColumns maps headers to fields, reporting all missing required
// columns at once rather than one at a time.
func resolveColumns(headers []string) (columnMap, error) {
	columns := columnMap{context: make(map[string]int)}
	var missing []string

	var ok bool
	if columns.identity, ok = schema.MatchColumn(headers, identityPatterns); !ok {
		missing = append(missing, "identity")
	}
	if columns.quantity, ok = schema.MatchColumn(headers, quantityPatterns); !ok {
		missing = append(missing, "quantity")
	}
	if columns.netValue, ok = schema.MatchColumn(headers, netValuePatterns); !ok {
		missing = append(missing, "net value")
	}
	if columns.currency, ok = schema.MatchColumn(headers, currencyPatterns); !ok {
		missing = append(missing, "currency")
	}
	if len(missing) > 0 {
		return columns, common.NewUserError(
			fmt.Sprintf("billing export is missing required columns: %s (columns found: %s)",
				strings.Join(missing, ", "), strings.Join(headers, ", ")),
			"check that the export contains Material, Order Quantity, Net Value, and Currency columns",
			common.ErrMissingColumns)
	}

	for _, ctx := range contextColumns {
		if col, found := schema.MatchColumn(headers, ctx.patterns); found {
			columns.context[ctx.field] = col
		}
	}
	return columns, nil
}

// findBillingSheet picks the sheet whose content carries both an identity
// and a currency/value header. Multi-sheet exports routinely bury the data
// behind cover sheets.
func findBillingSheet(reader *workbook.Reader) (*workbook.Sheet, int, error) {
	var names []string
	for _, name := range reader.SheetNames() {
		if !reader.Visible(name) {
			continue
		}
		names = append(names, name)
		sheet, err := reader.Sheet(name)
		if err != nil {
			slog.Warn("failed to read billing sheet", "sheet", name, "error", err)
			continue
		}
		if headerRow, found := schema.FindBillingHeader(sheet.Grid); found {
			return sheet, headerRow, nil
		}
	}
	if len(names) == 0 {
		return nil, 0, common.NewUserError(
			"the billing workbook has no visible sheets",
			"unhide the sheet carrying the export or re-export the data",
			common.ErrNoSheetsFound)
	}
	return nil, 0, common.NewUserError(
		fmt.Sprintf("no billing header row found in any sheet (checked: %s)", strings.Join(names, ", ")),
		"check that the export has a header row with Material and Currency columns within the first 30 rows",
		common.ErrNoHeaderRow)
}

func detectEuropean(rows [][]string, col int) bool {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, cellAt(row, col))
	}
	return normalize.DetectEuropean(values)
}

func isSubtotalRow(row []string) bool {
	for _, cell := range row {
		if subtotalMarker.MatchString(strings.ToUpper(strings.TrimSpace(cell))) {
			return true
		}
	}
	return false
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
