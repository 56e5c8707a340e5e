package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hotel_value/internal/domain"
)

const sheetName = "Hotels"

// WriteXLSX writes the same columns as WriteCSV into a single-sheet workbook.
// Numbers stay numeric so the sheet can be sorted and charted.
func WriteXLSX[T Row](w io.Writer, rows []T) error {
	maps, cols, err := flattenAll(rows)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, c); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}

		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 15.0
		if c == domain.KeyName || c == domain.KeyFeatures || c == domain.KeyImageURL {
			width = 40
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, m := range maps {
		for i, c := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			var v any
			switch t := m[c].(type) {
			case nil:
				continue
			case float64, bool:
				v = t
			default:
				v = cellText(c, t)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if len(cols) > 0 {
		if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
