// Package engine reconciles billing lines against the price catalog and
// assigns every line exactly one audit flag.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

// maxGapSamples caps how many currency-gap examples reach the log.
const maxGapSamples = 5

// Summary aggregates a finished audit for reporting and the run history.
type Summary struct {
	ByFlag       map[model.AuditFlag]FlagTotal
	Total        int
	TotalBilled  float64
	CleanMatches int
}

// FlagTotal is the per-flag row count and billed amount.
type FlagTotal struct {
	Count  int
	Billed float64
}

// Auditor classifies billing lines against an immutable catalog. The catalog
// is never mutated; each line maps to exactly one result.
type Auditor struct {
	cfg      config.Config
	catalog  *model.Catalog
	progress func(done, total int)
}

// NewAuditor creates an auditor over a built catalog.
func NewAuditor(cfg config.Config, catalog *model.Catalog) *Auditor {
	return &Auditor{cfg: cfg, catalog: catalog}
}

// OnProgress registers a callback invoked after each classified line.
func (a *Auditor) OnProgress(fn func(done, total int)) {
	a.progress = fn
}

// Run classifies every billing line and returns the result set with its
// summary. Cardinality is asserted, not assumed: the result set must have
// exactly one flagged row per input line or the run fails before anything
// is written.
func (a *Auditor) Run(lines []model.BillingLine) ([]model.ClassificationResult, Summary, error) {
	if len(lines) == 0 {
		return nil, Summary{}, common.NewUserError(
			"no billing lines to audit",
			"run the billing normalization stage first and check its row counts",
			common.ErrNoRowsExtracted)
	}

	results := make([]model.ClassificationResult, 0, len(lines))
	gapSamples := 0
	for i, line := range lines {
		result := a.classifyLine(line, &gapSamples)
		results = append(results, result)
		if a.progress != nil {
			a.progress(i+1, len(lines))
		}
	}

	if err := assertResultSet(lines, results); err != nil {
		return nil, Summary{}, err
	}

	summary := summarize(results)
	slog.Info("audit complete",
		"lines", summary.Total,
		"clean_matches", summary.CleanMatches,
		"total_billed", summary.TotalBilled)
	return results, summary, nil
}

func (a *Auditor) classifyLine(line model.BillingLine, gapSamples *int) model.ClassificationResult {
	result := model.ClassificationResult{Line: line}

	// Custom pricing wins over any numeric entries for the same item:
	// contract-priced lines cannot be judged against list prices.
	if a.catalog.IsCustom(line.ItemID) {
		result.Flag = model.FlagCustomPricing
		result.SourceTab = a.catalog.CustomSourceTab(line.ItemID)
		return result
	}
	if !a.catalog.HasItem(line.ItemID) {
		result.Flag = model.FlagNotInCatalog
		return result
	}

	entries := a.catalog.Entries(line.ItemID, line.Currency)
	if len(entries) == 0 {
		// Known item, wrong currency: a catalog coverage gap rather than a
		// billing error.
		result.Flag = model.FlagNoCatalogCurrency
		result.SourceTab = a.catalog.AnySourceTab(line.ItemID)
		if *gapSamples < maxGapSamples {
			*gapSamples++
			slog.Debug("catalog currency gap",
				"item", line.ItemID,
				"billed_currency", line.Currency,
				"catalog_has", a.catalog.Currencies(line.ItemID))
		}
		return result
	}
	result.SourceTab = entries[0].SourceTab

	if line.Quantity == 0 {
		// Flat one-time charges skip band lookup; judge against the first
		// entry's prices and treat a non-match as benign.
		first := entries[0]
		result.PricePrior = first.PricePrior
		result.PriceCurrent = first.PriceCurrent
		result.Flag = Classify(line.NetValue, first.PricePrior, first.PriceCurrent, 0, a.cfg.Tolerance)
		if result.Flag == model.FlagNoMatch {
			result.Flag = model.FlagZeroQtyFlatPrice
		}
	} else {
		band := ResolveBand(line.Quantity, entries)
		result.BandCeilingUsed = band.Ceiling
		result.PricePrior = band.PricePrior
		result.PriceCurrent = band.PriceCurrent
		result.Flag = Classify(line.NetValue, band.PricePrior, band.PriceCurrent, line.Quantity, a.cfg.Tolerance)
	}

	if result.PriceCurrent != nil {
		variance := decimal.NewFromFloat(line.NetValue).
			Sub(decimal.NewFromFloat(*result.PriceCurrent)).
			Round(2).InexactFloat64()
		result.VarianceVsCurrent = &variance
	}
	return result
}

// assertResultSet enforces the two output invariants: exact cardinality and
// flag totality. Silent row loss or duplication is never tolerated.
func assertResultSet(lines []model.BillingLine, results []model.ClassificationResult) error {
	if len(results) != len(lines) {
		return common.NewUserError(
			fmt.Sprintf("audit produced %d rows for %d billing lines; rows were lost or duplicated",
				len(results), len(lines)),
			"this is a pipeline defect; re-run with --log-level debug and report the output",
			common.ErrRowCountMismatch)
	}
	for i, result := range results {
		if !result.Flag.Valid() {
			return common.NewUserError(
				fmt.Sprintf("result row %d has no valid audit flag (%q)", i+1, result.Flag),
				"this is a pipeline defect; re-run with --log-level debug and report the output",
				common.ErrUnflaggedRows)
		}
	}
	return nil
}

func summarize(results []model.ClassificationResult) Summary {
	summary := Summary{
		ByFlag: make(map[model.AuditFlag]FlagTotal),
		Total:  len(results),
	}
	for _, result := range results {
		total := summary.ByFlag[result.Flag]
		total.Count++
		total.Billed += result.Line.NetValue
		summary.ByFlag[result.Flag] = total
		summary.TotalBilled += result.Line.NetValue
		if result.Flag.CleanMatch() {
			summary.CleanMatches++
		}
	}
	return summary
}
