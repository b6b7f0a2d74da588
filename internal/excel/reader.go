package excel

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"docucontrol/internal"
	"docucontrol/internal/table"
)

// ReadTable reads the first sheet of the workbook at path. The first row is
// the header; blank cells are null. Numbers come back as their raw text and
// date cells as Excel serials, see util.ToDate.
func ReadTable(path string) (*table.Table, error) {
	return ReadSheet(path, "")
}

// ReadSheet reads a named sheet, or the first one when sheet is "".
func ReadSheet(path, sheet string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, internal.NotFound(path)
		}
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readSheet(f, path, sheet)
}

// ReadBytes is ReadSheet over an in-memory workbook, e.g. a mail attachment.
func ReadBytes(content []byte, sheet string) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSheet(f, "attachment", sheet)
}

func readSheet(f *excelize.File, name, sheet string) (*table.Table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, internal.NotFound(name + " [" + sheet + "]")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s [%s]: %w", name, sheet, err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}
	return table.FromRecords(rows[0], rows[1:]), nil
}
