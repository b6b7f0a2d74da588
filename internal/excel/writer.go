package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"docucontrol/internal/table"
)

const DateFormat = "DD/MM/YYYY"

type Sheet struct {
	Name  string
	Table *table.Table
}

// Write persists sheets in order into a new workbook at path and returns the path.
func Write(path string, sheets ...Sheet) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(DateFormat)})
	if err != nil {
		return "", err
	}

	first := f.GetSheetName(0)
	for i, sh := range sheets {
		if i == 0 {
			if first != sh.Name {
				if err := f.SetSheetName(first, sh.Name); err != nil {
					return "", err
				}
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return "", fmt.Errorf("sheet %s: %w", sh.Name, err)
		}
		if err := writeTable(f, sh.Name, sh.Table, dateStyle); err != nil {
			return "", fmt.Errorf("sheet %s: %w", sh.Name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeTable(f *excelize.File, sheet string, t *table.Table, dateStyle int) error {
	for i, h := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for c, col := range t.Columns {
			v, ok := row[col]
			if !ok || table.IsNull(v) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return err
			}
			if _, isDate := v.(time.Time); isDate {
				if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t
	case *string:
		return *t
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}

func strPtr(s string) *string { return &s }
