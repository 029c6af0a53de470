// Package catalog builds the flat price catalog from the raw pricebook
// workbook: one entry per (item, band, currency) with both price-year
// values, plus the custom-priced item set.
package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/normalize"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/schema"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/workbook"
)

// leakedHeaderKeywords identify data rows that are really header lines the
// source repeated mid-sheet.
var leakedHeaderKeywords = []string{"PART", "MATERIAL", "PRODUCT"}

// identitySentinels are identity cells that mean the row carries no item.
var identitySentinels = map[string]bool{"": true, "nan": true, "none": true}

// TabResult records what one catalog tab produced, or why it was skipped.
// A skipped tab is never fatal; the run continues over the remaining tabs.
type TabResult struct {
	Tab         string
	SkipReason  string
	Entries     []model.CatalogEntry
	CustomItems []string
	PricedRows  int
}

// Builder extracts catalog entries tab by tab.
type Builder struct {
	cfg      config.Config
	warnings *common.Warnings
}

// NewBuilder creates a catalog builder.
func NewBuilder(cfg config.Config, warnings *common.Warnings) *Builder {
	return &Builder{cfg: cfg, warnings: warnings}
}

// Build processes every visible tab and merges the results into one catalog.
// It fails only when no tab at all yields data.
func (b *Builder) Build(reader *workbook.Reader) (*model.Catalog, []TabResult, error) {
	catalog := model.NewCatalog()
	results := make([]TabResult, 0, len(reader.SheetNames()))

	for _, name := range reader.SheetNames() {
		result := b.buildTab(reader, name)
		results = append(results, result)

		if result.SkipReason != "" {
			if result.SkipReason != "sheet is hidden" {
				slog.Warn("skipping catalog tab", "tab", name, "reason", result.SkipReason)
				b.warnings.Addf("catalog tab %q skipped: %s", name, result.SkipReason)
			}
			continue
		}
		for _, entry := range result.Entries {
			catalog.Add(entry)
		}
		slog.Info("catalog tab extracted",
			"tab", name,
			"priced_rows", result.PricedRows,
			"custom_items", len(result.CustomItems))
	}

	counts := catalog.Counts()
	if counts.PricedEntries == 0 && counts.CustomEntries == 0 {
		return nil, results, common.NewUserError(
			"no data extracted from the price catalog",
			"check the catalog file path and that its tabs contain an item identity column with currency + year price headers",
			common.ErrNoRowsExtracted)
	}
	if counts.PricedEntries < b.cfg.MinCatalogRows {
		b.warnings.Addf(
			"only %d price rows extracted, expected %d+; check whether catalog tabs were renamed or restructured",
			counts.PricedEntries, b.cfg.MinCatalogRows)
	}
	return catalog, results, nil
}

func (b *Builder) buildTab(reader *workbook.Reader, name string) TabResult {
	result := TabResult{Tab: name}

	if !reader.Visible(name) {
		result.SkipReason = "sheet is hidden"
		return result
	}
	sheet, err := reader.Sheet(name)
	if err != nil {
		result.SkipReason = fmt.Sprintf("sheet read failed: %v", err)
		return result
	}
	if len(sheet.Grid) < 2 {
		result.SkipReason = "sheet has fewer than 2 rows"
		return result
	}

	headerRow, found := schema.FindCatalogHeader(sheet.Grid)
	if !found {
		result.SkipReason = "no header row found (no item identity keyword)"
		return result
	}
	if headerRow > 0 {
		slog.Debug("catalog header below first row", "tab", name, "row", headerRow+1)
	}
	headers := schema.Headers(sheet.Grid[headerRow])

	identityCol, found := schema.FindIdentityColumn(headers)
	if !found {
		result.SkipReason = "could not identify the item identity column"
		return result
	}

	maxCol, hasMax := schema.FindMaxBandColumn(headers)
	minCol, hasMin := schema.FindMinBandColumn(headers)

	priceCols, colWarnings := schema.ClassifyPriceColumns(headers, b.cfg.PriorYear, b.cfg.CurrentYear)
	for _, warning := range colWarnings {
		slog.Warn(warning, "tab", name)
		b.warnings.Addf("tab %q: %s", name, warning)
	}
	if len(priceCols) == 0 {
		result.SkipReason = "no price columns detected (looking for currency + year in header)"
		return result
	}

	dataRows := sheet.Grid[headerRow+1:]
	european := b.detectConventions(name, headers, priceCols, dataRows)

	customSeen := make(map[string]bool)
	for offset, row := range dataRows {
		if sheet.HiddenRows[headerRow+1+offset] {
			continue
		}
		entries, custom := b.extractRow(name, row, identityCol, maxCol, hasMax, minCol, hasMin, priceCols, european)
		if custom != "" && !customSeen[custom] {
			customSeen[custom] = true
			result.CustomItems = append(result.CustomItems, custom)
		}
		for _, entry := range entries {
			if !entry.IsCustom {
				result.PricedRows++
			}
		}
		result.Entries = append(result.Entries, entries...)
	}
	sort.Strings(result.CustomItems)

	if len(result.Entries) == 0 {
		result.SkipReason = "tab parsed but zero data rows extracted"
	}
	return result
}

// extractRow turns one data row into catalog entries: one per currency when
// any price parses numeric, or per-currency custom entries when every price
// cell carries custom-pricing text. Returns the item ID when the row was
// custom.
func (b *Builder) extractRow(
	tab string,
	row []string,
	identityCol int,
	maxCol int, hasMax bool,
	minCol int, hasMin bool,
	priceCols []schema.PriceColumn,
	european map[int]bool,
) ([]model.CatalogEntry, string) {
	itemID := strings.TrimSpace(cellAt(row, identityCol))
	if identitySentinels[strings.ToLower(itemID)] {
		return nil, ""
	}
	upper := strings.ToUpper(itemID)
	for _, keyword := range leakedHeaderKeywords {
		if strings.Contains(upper, keyword) {
			return nil, ""
		}
	}

	var band *float64
	if hasMax {
		band = normalize.CatalogPrice(cellAt(row, maxCol), european[maxCol])
	}
	if band == nil && hasMin {
		// Min column read as the ceiling when no max exists. Kept as the
		// source workbooks behave; see DESIGN.md.
		band = normalize.CatalogPrice(cellAt(row, minCol), european[minCol])
	}

	type yearPrices map[string]*float64
	prices := make(map[string]yearPrices)
	hasNumeric := false
	hasCustom := false
	for _, col := range priceCols {
		raw := cellAt(row, col.Index)
		if normalize.IsCustomValue(raw) {
			hasCustom = true
		}
		price := normalize.CatalogPrice(raw, european[col.Index])
		if price == nil {
			continue
		}
		hasNumeric = true
		if prices[col.Currency] == nil {
			prices[col.Currency] = make(yearPrices)
		}
		prices[col.Currency][col.Year] = price
	}

	switch {
	case hasNumeric:
		currencies := make([]string, 0, len(prices))
		for currency := range prices {
			currencies = append(currencies, currency)
		}
		sort.Strings(currencies)
		entries := make([]model.CatalogEntry, 0, len(currencies))
		for _, currency := range currencies {
			entries = append(entries, model.CatalogEntry{
				ItemID:       itemID,
				BandCeiling:  band,
				Currency:     currency,
				PricePrior:   prices[currency][b.cfg.PriorYear],
				PriceCurrent: prices[currency][b.cfg.CurrentYear],
				SourceTab:    tab,
			})
		}
		return entries, ""
	case hasCustom:
		seen := make(map[string]bool)
		var entries []model.CatalogEntry
		for _, col := range priceCols {
			if seen[col.Currency] {
				continue
			}
			seen[col.Currency] = true
			entries = append(entries, model.CatalogEntry{
				ItemID:    itemID,
				Currency:  col.Currency,
				SourceTab: tab,
				IsCustom:  true,
			})
		}
		return entries, itemID
	default:
		return nil, ""
	}
}

// detectConventions samples each numeric column to decide its separator
// convention. Detection is advisory-logged because a misread here silently
// shifts every price in the column.
func (b *Builder) detectConventions(tab string, headers []string, priceCols []schema.PriceColumn, dataRows [][]string) map[int]bool {
	columns := make([]int, 0, len(priceCols))
	for _, col := range priceCols {
		columns = append(columns, col.Index)
	}

	european := make(map[int]bool, len(columns))
	for _, col := range columns {
		values := make([]string, 0, len(dataRows))
		for _, row := range dataRows {
			values = append(values, cellAt(row, col))
		}
		if normalize.DetectEuropean(values) {
			european[col] = true
			slog.Warn("European number format detected",
				"tab", tab, "column", headers[col])
			b.warnings.Addf("tab %q: column %q auto-detected as European number format", tab, headers[col])
		}
	}
	return european
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
