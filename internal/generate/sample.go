// Package generate produces anonymized synthetic sample workbooks for
// end-to-end testing of the audit pipeline. All item numbers, customers,
// and prices are randomized from a fixed seed; no real data.
package generate

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
)

// Seed keeps sample output reproducible across runs.
const Seed = 42

// Output file names inside the target directory.
const (
	CatalogFileName = "sample_pricebook.xlsx"
	BillingFileName = "sample_billing_export.xlsx"
)

var products = []string{
	"Synthetic Subscription Small",
	"Synthetic Subscription Medium",
	"Synthetic Subscription Large",
	"Synthetic Support Basic",
	"Synthetic Support Premium",
	"Synthetic Implementation Fee",
	"Synthetic Module Add-on A",
	"Synthetic Module Add-on B",
	"Synthetic Trial Subscription",
	"Synthetic Hardware Support",
	"Synthetic SMS Add-on",
	"Synthetic Data Migration Fee",
}

// fxRates are synthetic, not real rates.
var fxRates = map[string]float64{
	"USD": 1.0,
	"CAD": 1.32,
	"GBP": 0.79,
	"AUD": 1.53,
	"NZD": 1.63,
}

var currencyHeaders = map[string][2]string{
	"USD": {
		"US List Price USD (1/1/2025 - 12/31/2025)",
		"US List Price USD (beginning 1/1/2026)",
	},
	"CAD": {
		"Canada List Price CAD (1/1/2025 - 12/31/2025)",
		"Canada List Price CAD (beginning 1/1/2026)",
	},
	"GBP": {
		"UK List Price GBP (1/1/2025 - 12/31/2025)",
		"UK List Price GBP (beginning 1/1/2026)",
	},
	"AUD": {
		"AUS List Price AUD (1/1/2025 - 12/31/2025)",
		"AUS List Price AUD (beginning 1/1/2026)",
	},
	"NZD": {
		"NZ List Price NZD (1/1/2025 - 12/31/2025)",
		"NZ List Price NZD (beginning 1/1/2026)",
	},
}

var basePrices = []float64{49, 99, 149, 199, 299, 499, 999}

type item struct {
	id      string
	product string
	// tier ceiling -> [currency] -> {prior, current}
	tiers  []float64
	prices map[float64]map[string][2]float64
}

// Generator writes the sample catalog and billing workbooks.
type Generator struct {
	rng   *rand.Rand
	items []item
}

// New creates a generator with the fixed sample seed.
func New() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(Seed))}
}

// Write produces both sample workbooks in dir and returns their paths.
func (g *Generator) Write(dir string) (catalogPath, billingPath string, err error) {
	g.buildItems()

	catalogPath = filepath.Join(dir, CatalogFileName)
	if err = g.writeCatalog(catalogPath); err != nil {
		return "", "", err
	}
	billingPath = filepath.Join(dir, BillingFileName)
	if err = g.writeBilling(billingPath); err != nil {
		return "", "", err
	}
	return catalogPath, billingPath, nil
}

func (g *Generator) buildItems() {
	g.items = make([]item, 0, len(products))
	for _, product := range products {
		it := item{
			id:      fmt.Sprintf("XX-%07d-00", 1000000+g.rng.Intn(9000000)),
			product: product,
			prices:  make(map[float64]map[string][2]float64),
		}

		// 4 ascending tiers plus a catch-all ceiling, volume-discount priced.
		base := basePrices[g.rng.Intn(len(basePrices))]
		tierSet := map[int]bool{}
		for len(tierSet) < 4 {
			tierSet[5+g.rng.Intn(495)] = true
		}
		for ceiling := range tierSet {
			it.tiers = append(it.tiers, float64(ceiling))
		}
		sort.Float64s(it.tiers)
		it.tiers = append(it.tiers, 9999)

		for i, ceiling := range it.tiers {
			multiplier := 1 + float64(i)*0.15
			prior := round2(base * multiplier)
			current := round2(prior * (1.03 + g.rng.Float64()*0.05))
			byCurrency := make(map[string][2]float64)
			for code, rate := range fxRates {
				byCurrency[code] = [2]float64{round2(prior * rate), round2(current * rate)}
			}
			it.prices[ceiling] = byCurrency
		}
		g.items = append(g.items, it)
	}
}

func (g *Generator) writeCatalog(path string) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	const sheet = "Sample Products"
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create catalog sheet: %w", err)
	}
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"Part Number", "SAP Description", "Min of Tier", "Max of Tier"}
	codes := sortedCurrencies()
	for _, code := range codes {
		pair := currencyHeaders[code]
		headers = append(headers, pair[0], pair[1])
	}
	for col, header := range headers {
		if err := setCell(file, sheet, col+1, 1, header); err != nil {
			return err
		}
	}

	rowNum := 2
	for _, it := range g.items {
		for i, ceiling := range it.tiers {
			minTier := 1.0
			if i > 0 {
				minTier = it.tiers[i-1] + 1
			}
			cells := []any{it.id, it.product, minTier, ceiling}
			for _, code := range codes {
				pair := it.prices[ceiling][code]
				cells = append(cells, pair[0], pair[1])
			}
			for col, value := range cells {
				if err := setCell(file, sheet, col+1, rowNum, value); err != nil {
					return err
				}
			}
			rowNum++
		}
	}

	if err := file.SaveAs(path); err != nil {
		return common.NewUserError(
			fmt.Sprintf("could not write sample catalog: %s", path),
			"check that the output directory exists and is writable",
			err)
	}
	return nil
}

func (g *Generator) writeBilling(path string) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	const sheet = "Sheet1"
	headers := []string{
		"SOrg.", "CreatedOn", "Order#", "Ship-to", "Name 1", "Address",
		"Status", "Sold to", "Material", "Description", "Order quantity",
		"Net Value", "Curr.", "CGp",
	}
	for col, header := range headers {
		if err := setCell(file, sheet, col+1, 1, header); err != nil {
			return err
		}
	}

	codes := sortedCurrencies()
	quantities := []float64{5, 15, 50, 100, 250}
	orderNum := 1000000
	rowNum := 2
	for _, it := range g.items {
		currency := codes[g.rng.Intn(len(codes))]
		quantity := quantities[g.rng.Intn(len(quantities))]

		ceiling := it.tiers[len(it.tiers)-1]
		for _, c := range it.tiers {
			if c >= quantity {
				ceiling = c
				break
			}
		}
		prices := it.prices[ceiling][currency]
		oldPrice, correctPrice := prices[0], prices[1]

		// Mostly correct lines with a seeded spread of known error scenarios.
		var netValue float64
		switch roll := g.rng.Float64(); {
		case roll < 0.65:
			netValue = correctPrice
		case roll < 0.75:
			netValue = oldPrice
		case roll < 0.85:
			netValue = round2(correctPrice * quantity)
		case roll < 0.90:
			netValue = round2(correctPrice * (0.7 + g.rng.Float64()*0.6))
		case roll < 0.95:
			netValue = 0
		default:
			netValue = round2(-correctPrice * (0.1 + g.rng.Float64()*0.4))
		}

		cells := []any{
			[]string{"USS7", "CAS1", "UKS1", "AUS1", "NZS2"}[g.rng.Intn(5)],
			fmt.Sprintf("2026-01-%02d", 1+g.rng.Intn(28)),
			fmt.Sprintf("%d", orderNum),
			fmt.Sprintf("%d", 100000+g.rng.Intn(900000)),
			g.fakeCustomer(),
			fmt.Sprintf("%d Synthetic St", 1+g.rng.Intn(999)),
			[]string{"A", "B", "C"}[g.rng.Intn(3)],
			fmt.Sprintf("%d", 100000+g.rng.Intn(900000)),
			it.id,
			it.product,
			quantity,
			fmt.Sprintf("%.2f", netValue),
			currency,
			[]string{"C", "D", "E"}[g.rng.Intn(3)],
		}
		for col, value := range cells {
			if err := setCell(file, sheet, col+1, rowNum, value); err != nil {
				return err
			}
		}
		orderNum++
		rowNum++
	}

	// One line for an item the catalog has never heard of.
	unknown := []any{
		"USS7", "2026-01-15", fmt.Sprintf("%d", orderNum), "123456",
		g.fakeCustomer(), "1 Synthetic St", "A", "654321",
		"ZZ-0000000-00", "Unknown Product", 1.0, "42.00", "USD", "C",
	}
	for col, value := range unknown {
		if err := setCell(file, sheet, col+1, rowNum, value); err != nil {
			return err
		}
	}

	if err := file.SaveAs(path); err != nil {
		return common.NewUserError(
			fmt.Sprintf("could not write sample billing export: %s", path),
			"check that the output directory exists and is writable",
			err)
	}
	return nil
}

func (g *Generator) fakeCustomer() string {
	adjectives := []string{"Northern", "Central", "Valley", "Coastal", "Highland", "River"}
	nouns := []string{"Animal Hospital", "Veterinary Clinic", "Pet Care", "Vet Services", "Animal Care"}
	return adjectives[g.rng.Intn(len(adjectives))] + " " + nouns[g.rng.Intn(len(nouns))]
}

func sortedCurrencies() []string {
	codes := make([]string, 0, len(fxRates))
	for code := range fxRates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func setCell(file *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to write sample sheet: %w", err)
	}
	if err := file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write sample sheet: %w", err)
	}
	return nil
}

func round2(value float64) float64 {
	return float64(int64(value*100+0.5)) / 100
}
