// Package export renders logged food entries as an .xlsx workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sakif/calorie-log/internal/model"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Entries"
)

var headers = []string{"Date", "Time", "Food", "Calories"}

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 12},
	{"B", 8},
	{"C", 40},
	{"D", 10},
}

// WriteXLSX writes entries to w as a single-sheet workbook, one row per entry,
// followed by a total row. Timestamps are shown in loc.
func WriteXLSX(w io.Writer, entries []model.FoodEntry, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	// A new file starts with "Sheet1"; rename it rather than adding a second sheet.
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: naming sheet: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("export: header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("export: writing header: %w", err)
		}
	}

	total := 0
	for i, e := range entries {
		row := i + 2
		at := e.CreatedAt.In(loc)
		values := []any{at.Format("2006-01-02"), at.Format("15:04"), e.FoodName, e.Calories}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("export: row %d cell: %w", row, err)
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("export: writing row %d: %w", row, err)
			}
		}
		total += e.Calories
	}

	totalRow := len(entries) + 2
	if err := f.SetCellValue(SheetName, fmt.Sprintf("C%d", totalRow), "Total"); err != nil {
		return fmt.Errorf("export: writing total: %w", err)
	}
	if err := f.SetCellValue(SheetName, fmt.Sprintf("D%d", totalRow), total); err != nil {
		return fmt.Errorf("export: writing total: %w", err)
	}

	for _, cw := range columnWidths {
		if err := f.SetColWidth(SheetName, cw.col, cw.col, cw.width); err != nil {
			return fmt.Errorf("export: setting width of column %s: %w", cw.col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: writing workbook: %w", err)
	}
	return nil
}
