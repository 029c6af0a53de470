package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

// Intermediate snapshot file names.
const (
	CatalogSnapshotName = "catalog_clean.xlsx"
	BillingSnapshotName = "billing_clean.xlsx"
)

// WriteCatalogSnapshot dumps the normalized catalog to an unstyled workbook
// so a reviewer can inspect stage output before the audit runs.
func WriteCatalogSnapshot(dir string, catalog *model.Catalog) (string, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	const sheet = "Sheet1"
	headers := []string{
		"item_id", "currency", "band_ceiling", "price_prior", "price_current",
		"is_custom", "source_tab",
	}
	if err := writeSnapshotHeaders(file, sheet, headers); err != nil {
		return "", err
	}

	rowNum := 2
	for _, itemID := range sortedItems(catalog) {
		for _, currency := range catalog.Currencies(itemID) {
			for _, entry := range catalog.Entries(itemID, currency) {
				cells := []any{
					entry.ItemID, entry.Currency,
					optional(entry.BandCeiling), optional(entry.PricePrior), optional(entry.PriceCurrent),
					false, entry.SourceTab,
				}
				if err := writeSnapshotRow(file, sheet, rowNum, cells); err != nil {
					return "", err
				}
				rowNum++
			}
		}
	}
	for _, itemID := range catalog.CustomItems() {
		cells := []any{itemID, "", "", "", "", true, catalog.CustomSourceTab(itemID)}
		if err := writeSnapshotRow(file, sheet, rowNum, cells); err != nil {
			return "", err
		}
		rowNum++
	}

	return saveSnapshot(file, dir, CatalogSnapshotName)
}

// WriteBillingSnapshot dumps the normalized billing lines to an unstyled
// workbook.
func WriteBillingSnapshot(dir string, lines []model.BillingLine) (string, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	const sheet = "Sheet1"
	headers := []string{
		"item_id", "currency", "quantity", "net_value", "status", "address",
		"sales_org", "created_on", "sold_to", "ship_to", "order_number",
		"customer_name", "description", "cost_group",
	}
	if err := writeSnapshotHeaders(file, sheet, headers); err != nil {
		return "", err
	}

	for i, line := range lines {
		cells := []any{
			line.ItemID, line.Currency, line.Quantity, line.NetValue,
			line.Status, line.Address, line.SalesOrg, line.CreatedOn,
			line.SoldTo, line.ShipTo, line.OrderNumber,
			line.CustomerName, line.Description, line.CostGroup,
		}
		if err := writeSnapshotRow(file, sheet, i+2, cells); err != nil {
			return "", err
		}
	}

	return saveSnapshot(file, dir, BillingSnapshotName)
}

func sortedItems(catalog *model.Catalog) []string {
	items := make([]string, 0, catalog.ItemCount())
	seen := make(map[string]bool)
	for _, itemID := range catalog.CustomItems() {
		seen[itemID] = true
	}
	for _, itemID := range catalog.Items() {
		if !seen[itemID] {
			items = append(items, itemID)
		}
	}
	sort.Strings(items)
	return items
}

func optional(value *float64) any {
	if value == nil {
		return ""
	}
	return *value
}

func writeSnapshotHeaders(file *excelize.File, sheet string, headers []string) error {
	cells := make([]any, len(headers))
	for i, header := range headers {
		cells[i] = header
	}
	return writeSnapshotRow(file, sheet, 1, cells)
}

func writeSnapshotRow(file *excelize.File, sheet string, rowNum int, cells []any) error {
	for col, value := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}
	return nil
}

func saveSnapshot(file *excelize.File, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", common.NewUserError(
			fmt.Sprintf("could not create intermediate directory: %s", dir),
			"check the path in output.intermediate_dir and its permissions",
			err)
	}
	path := filepath.Join(dir, name)
	if err := file.SaveAs(path); err != nil {
		return "", common.NewUserError(
			fmt.Sprintf("could not write intermediate file: %s", path),
			"close the file if it is open in Excel and check directory permissions",
			err)
	}
	return path, nil
}
