package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
)

// WriteExcel streams the selection as a single-sheet workbook. Row 1 is
// bold-styled by convention even though it holds the first data record, not
// a header; the styling is applied uniformly to row index 0.
func (f *Formatter) WriteExcel(w io.Writer, companies []models.EnrichedCompany, base string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := f.sheetName
	index, err := wb.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	wb.SetActiveSheet(index)
	if sheet != "Sheet1" {
		wb.DeleteSheet("Sheet1")
	}

	boldStyle, err := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for rowIdx, row := range f.Rows(companies, base) {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("failed to map cell: %w", err)
			}
			if err := wb.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if rowIdx == 0 {
				wb.SetCellStyle(sheet, cell, cell, boldStyle)
			}
		}
	}

	for i := 0; i < FieldCount; i++ {
		col, _ := excelize.ColumnNumberToName(i + 1)
		wb.SetColWidth(sheet, col, col, 18)
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
