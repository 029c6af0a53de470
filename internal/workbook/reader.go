// Package workbook reads raw sheet grids from xlsx files and writes the
// styled audit report. It is the only package that touches excelize; the
// pipeline stages consume plain string grids and result rows.
package workbook

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
)

// Sheet is one worksheet flattened to a rectangular string grid. Merged
// regions are pre-filled with their top-left value so a blank cell inside a
// merge is not misread as a true null during header detection. HiddenRows
// holds 0-based indexes of rows hidden in the source.
type Sheet struct {
	Name       string
	Grid       [][]string
	HiddenRows map[int]bool
}

// Reader wraps an open workbook.
type Reader struct {
	file *excelize.File
	path string
}

// Open opens a workbook for reading.
func Open(path string) (*Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("workbook not found: %s", path),
			"check that the file path is correct and the file has not been moved",
			common.ErrFileNotFound)
	}
	if info.Size() < 1024 {
		common.LogWarn("workbook is very small, may be empty or corrupted",
			common.Fields{"path": path, "bytes": info.Size()})
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("could not open workbook: %s", path),
			"make sure the file is not open in Excel and is a valid .xlsx file",
			err)
	}
	return &Reader{file: file, path: path}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// SheetNames returns all sheet names in workbook order.
func (r *Reader) SheetNames() []string {
	return r.file.GetSheetList()
}

// Visible reports whether a sheet is visible. Hidden tabs are skipped by the
// catalog builder.
func (r *Reader) Visible(name string) bool {
	visible, err := r.file.GetSheetVisible(name)
	if err != nil {
		return false
	}
	return visible
}

// Sheet reads one worksheet into a rectangular grid with merged regions
// filled and hidden rows recorded.
func (r *Reader) Sheet(name string) (*Sheet, error) {
	rows, err := r.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	grid := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		grid[i] = padded
	}

	if err := r.fillMergedRegions(name, grid); err != nil {
		return nil, err
	}

	hidden := make(map[int]bool)
	for i := range grid {
		visible, visErr := r.file.GetRowVisible(name, i+1)
		if visErr == nil && !visible {
			hidden[i] = true
		}
	}

	return &Sheet{Name: name, Grid: grid, HiddenRows: hidden}, nil
}

// fillMergedRegions copies each merged region's top-left value into every
// other cell of the region.
func (r *Reader) fillMergedRegions(name string, grid [][]string) error {
	merges, err := r.file.GetMergeCells(name)
	if err != nil {
		return fmt.Errorf("merged cell handling failed for sheet %q: %w", name, err)
	}
	for _, merge := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(merge.GetStartAxis())
		if err != nil {
			return fmt.Errorf("merged cell handling failed for sheet %q: %w", name, err)
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(merge.GetEndAxis())
		if err != nil {
			return fmt.Errorf("merged cell handling failed for sheet %q: %w", name, err)
		}
		value := merge.GetCellValue()
		for row := startRow; row <= endRow; row++ {
			for col := startCol; col <= endCol; col++ {
				if row == startRow && col == startCol {
					continue
				}
				if row-1 < len(grid) && col-1 < len(grid[row-1]) {
					grid[row-1][col-1] = value
				}
			}
		}
	}
	return nil
}
