package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"resumetailor/internal/domain"
)

// SheetName is the worksheet holding the span report.
const SheetName = "Spans"

var columnWidths = map[string]float64{
	"A": 10, "B": 12, "C": 8, "D": 10, "E": 70, "F": 8, "G": 36, "H": 70,
}

// WriteXLSX writes the span report as a single-sheet workbook.
func WriteXLSX(out io.Writer, doc *domain.SectionedDocument, rs domain.RewriteSet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range Rows(doc, rs) {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set width of %s: %w", col, err)
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadXLSX parses a filled-in workbook. The Spans sheet is used when
// present, otherwise the first sheet.
func ReadXLSX(r io.Reader) (domain.RewriteSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return ParseRewrites(rows)
}
