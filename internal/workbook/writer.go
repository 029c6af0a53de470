package workbook

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

// Report sheet names. Needs_Review is placed first and active so the
// operator lands on the rows that matter.
const (
	SheetNeedsReview = "Needs_Review"
	SheetCorrect     = "Correct"
	SheetFullData    = "Full_Data"
	SheetSummary     = "Summary"
)

// resultHeaders fixes the report column order: context first, then the
// billing facts, then the catalog resolution and outcome.
var resultHeaders = []string{
	"status", "address", "sales_org", "created_on", "sold_to", "ship_to",
	"order_number", "item_id", "customer_name", "description",
	"quantity", "net_value", "currency", "cost_group",
	"band_ceiling", "price_prior", "price_current", "source_tab",
	"audit_flag", "variance_vs_current",
}

const flagColumn = 19 // 1-based position of audit_flag in resultHeaders

// Writer renders classification results into a styled xlsx report.
type Writer struct {
	path   string
	styles map[string]int
}

// NewWriter creates a report writer targeting the given output path.
func NewWriter(path string) *Writer {
	return &Writer{path: path, styles: make(map[string]int)}
}

// Write partitions results into review/correct/full sheets, appends the
// per-flag summary, applies styling, and saves the workbook. The full result
// set is written exactly as received; partitioning never drops rows.
func (w *Writer) Write(results []model.ClassificationResult) error {
	w.styles = make(map[string]int)

	var review, correct []model.ClassificationResult
	for _, result := range results {
		if result.Flag.NeedsReview() {
			review = append(review, result)
		} else {
			correct = append(correct, result)
		}
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	for _, sheet := range []struct {
		name string
		rows []model.ClassificationResult
	}{
		{SheetNeedsReview, review},
		{SheetCorrect, correct},
		{SheetFullData, results},
	} {
		if err := w.writeResultSheet(file, sheet.name, sheet.rows); err != nil {
			return err
		}
	}
	if err := w.writeSummarySheet(file, results); err != nil {
		return err
	}

	if err := file.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	index, err := file.GetSheetIndex(SheetNeedsReview)
	if err != nil {
		return fmt.Errorf("failed to locate review sheet: %w", err)
	}
	file.SetActiveSheet(index)

	if err := file.SaveAs(w.path); err != nil {
		return common.NewUserError(
			fmt.Sprintf("could not write report: %s", w.path),
			"close the file if it is open in Excel and check folder permissions",
			err)
	}
	return nil
}

func (w *Writer) writeResultSheet(file *excelize.File, name string, rows []model.ClassificationResult) error {
	if _, err := file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	widths := make([]int, len(resultHeaders))
	for col, header := range resultHeaders {
		if err := w.setCell(file, name, col+1, 1, header, &widths[col]); err != nil {
			return err
		}
	}

	for i, result := range rows {
		rowNum := i + 2
		for col, value := range resultCells(result) {
			if err := w.setCell(file, name, col+1, rowNum, value, &widths[col]); err != nil {
				return err
			}
		}
		if err := w.styleResultRow(file, name, rowNum, result.Flag); err != nil {
			return err
		}
	}

	return w.finishSheet(file, name, len(resultHeaders), len(rows)+1, widths)
}

func (w *Writer) writeSummarySheet(file *excelize.File, results []model.ClassificationResult) error {
	if _, err := file.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", SheetSummary, err)
	}

	type flagTotal struct {
		flag  model.AuditFlag
		count int
		sum   float64
	}
	byFlag := make(map[model.AuditFlag]*flagTotal)
	for _, result := range results {
		total, ok := byFlag[result.Flag]
		if !ok {
			total = &flagTotal{flag: result.Flag}
			byFlag[result.Flag] = total
		}
		total.count++
		total.sum += result.Line.NetValue
	}
	totals := make([]*flagTotal, 0, len(byFlag))
	for _, total := range byFlag {
		totals = append(totals, total)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].count != totals[j].count {
			return totals[i].count > totals[j].count
		}
		return totals[i].flag < totals[j].flag
	})

	headers := []string{"Audit Flag", "Row Count", "% of Rows", "Total Billed", "Avg Billed"}
	widths := make([]int, len(headers))
	for col, header := range headers {
		if err := w.setCell(file, SheetSummary, col+1, 1, header, &widths[col]); err != nil {
			return err
		}
	}
	for i, total := range totals {
		rowNum := i + 2
		share := fmt.Sprintf("%.1f%%", float64(total.count)/float64(len(results))*100)
		avg := total.sum / float64(total.count)
		cells := []any{string(total.flag), total.count, share, round2(total.sum), round2(avg)}
		for col, value := range cells {
			if err := w.setCell(file, SheetSummary, col+1, rowNum, value, &widths[col]); err != nil {
				return err
			}
		}
		if style, ok := flagPalette[total.flag]; ok {
			id, err := w.rowStyle(file, style, false)
			if err != nil {
				return err
			}
			if err := w.styleRange(file, SheetSummary, 1, len(headers), rowNum, id); err != nil {
				return err
			}
		}
	}

	return w.finishSheet(file, SheetSummary, len(headers), len(totals)+1, widths)
}

// finishSheet applies the header band, freeze pane, auto filter, and column
// widths once a sheet's data is in place.
func (w *Writer) finishSheet(file *excelize.File, name string, cols, rows int, widths []int) error {
	headerID, err := w.headerStyle(file)
	if err != nil {
		return err
	}
	if err := w.styleRange(file, name, 1, cols, 1, headerID); err != nil {
		return err
	}
	if err := file.SetRowHeight(name, 1, 20); err != nil {
		return fmt.Errorf("failed to style sheet %q: %w", name, err)
	}
	if err := file.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header on %q: %w", name, err)
	}

	endCell, err := excelize.CoordinatesToCellName(cols, rows)
	if err != nil {
		return fmt.Errorf("failed to style sheet %q: %w", name, err)
	}
	if err := file.AutoFilter(name, "A1:"+endCell, nil); err != nil {
		return fmt.Errorf("failed to set auto filter on %q: %w", name, err)
	}

	for col, width := range widths {
		colName, nameErr := excelize.ColumnNumberToName(col + 1)
		if nameErr != nil {
			return fmt.Errorf("failed to size columns on %q: %w", name, nameErr)
		}
		adjusted := float64(width + 2)
		if adjusted > 45 {
			adjusted = 45
		}
		if err := file.SetColWidth(name, colName, colName, adjusted); err != nil {
			return fmt.Errorf("failed to size columns on %q: %w", name, err)
		}
	}
	return nil
}

func (w *Writer) styleResultRow(file *excelize.File, name string, rowNum int, flag model.AuditFlag) error {
	style, ok := flagPalette[flag]
	if !ok {
		return nil
	}
	rowID, err := w.rowStyle(file, style, false)
	if err != nil {
		return err
	}
	if err := w.styleRange(file, name, 1, len(resultHeaders), rowNum, rowID); err != nil {
		return err
	}
	flagID, err := w.rowStyle(file, style, true)
	if err != nil {
		return err
	}
	return w.styleRange(file, name, flagColumn, flagColumn, rowNum, flagID)
}

func (w *Writer) styleRange(file *excelize.File, sheet string, startCol, endCol, row, styleID int) error {
	start, err := excelize.CoordinatesToCellName(startCol, row)
	if err != nil {
		return fmt.Errorf("failed to style sheet %q: %w", sheet, err)
	}
	end, err := excelize.CoordinatesToCellName(endCol, row)
	if err != nil {
		return fmt.Errorf("failed to style sheet %q: %w", sheet, err)
	}
	if err := file.SetCellStyle(sheet, start, end, styleID); err != nil {
		return fmt.Errorf("failed to style sheet %q: %w", sheet, err)
	}
	return nil
}

func (w *Writer) headerStyle(file *excelize.File) (int, error) {
	return w.cachedStyle(file, "header", &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: headerFont, Family: reportFont},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerBG}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) rowStyle(file *excelize.File, style flagStyle, bold bool) (int, error) {
	key := fmt.Sprintf("%s/%s/%t", style.BG, style.Font, bold)
	return w.cachedStyle(file, key, &excelize.Style{
		Font: &excelize.Font{Bold: bold, Color: style.Font, Family: reportFont},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{style.BG}},
	})
}

func (w *Writer) cachedStyle(file *excelize.File, key string, style *excelize.Style) (int, error) {
	if id, ok := w.styles[key]; ok {
		return id, nil
	}
	id, err := file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create cell style: %w", err)
	}
	w.styles[key] = id
	return id, nil
}

func (w *Writer) setCell(file *excelize.File, sheet string, col, row int, value any, width *int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to write sheet %q: %w", sheet, err)
	}
	if err := file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write sheet %q: %w", sheet, err)
	}
	if n := len(fmt.Sprint(value)); n > *width {
		*width = n
	}
	return nil
}

func resultCells(result model.ClassificationResult) []any {
	line := result.Line
	return []any{
		line.Status, line.Address, line.SalesOrg, line.CreatedOn, line.SoldTo,
		line.ShipTo, line.OrderNumber, line.ItemID, line.CustomerName,
		line.Description, line.Quantity, line.NetValue, line.Currency,
		line.CostGroup, deref(result.BandCeilingUsed), deref(result.PricePrior),
		deref(result.PriceCurrent), result.SourceTab, string(result.Flag),
		deref(result.VarianceVsCurrent),
	}
}

func deref(value *float64) any {
	if value == nil {
		return ""
	}
	return *value
}

func round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
