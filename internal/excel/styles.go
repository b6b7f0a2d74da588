package excel

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"docucontrol/internal/util"
)

const (
	colorHeader = "6678AF"
	colorBody   = "D4DCF4"
	colorWhite  = "FFFFFF"
	colorBlack  = "000000"
	colorRed    = "FF0000"
	colorGrey   = "4D4D4D"
)

// Styler formats a written workbook in place. It never changes cell values.
type Styler interface {
	Apply(path string) error
}

type cellStyle struct {
	fill   string
	font   string
	bold   bool
	date   bool
	header bool
}

type styleCache struct {
	f   *excelize.File
	ids map[cellStyle]int
}

func (c *styleCache) id(s cellStyle) (int, error) {
	if id, ok := c.ids[s]; ok {
		return id, nil
	}
	border := []excelize.Border{
		{Type: "left", Color: colorBlack, Style: 1},
		{Type: "right", Color: colorBlack, Style: 1},
		{Type: "top", Color: colorBlack, Style: 1},
		{Type: "bottom", Color: colorBlack, Style: 1},
	}
	st := &excelize.Style{
		Border: border,
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.fill}},
		Font:   &excelize.Font{Color: s.font, Bold: s.bold},
	}
	if s.date {
		st.CustomNumFmt = strPtr(DateFormat)
	}
	id, err := c.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	c.ids[s] = id
	return id, nil
}

// cellRule adjusts the style of one body cell given its column and raw value.
type cellRule func(col, value string, s *cellStyle)

type sheetOptions struct {
	dateColumns []string
	widthPad    int
	rules       []cellRule
}

func styleSheet(f *excelize.File, cache *styleCache, sheet string, opts sheetOptions) error {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	width := len(header)

	headerID, err := cache.id(cellStyle{fill: colorHeader, font: colorWhite, bold: true, header: true})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(width, 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerID); err != nil {
		return err
	}

	widths := make([]int, width)
	for c, h := range header {
		widths[c] = utf8.RuneCountInString(h)
	}

	for r := 1; r < len(rows); r++ {
		for c := 0; c < width; c++ {
			value := ""
			if c < len(rows[r]) {
				value = rows[r][c]
			}
			s := cellStyle{fill: colorBody, font: colorBlack}
			if value != "" && slices.Contains(opts.dateColumns, header[c]) {
				s.date = true
			}
			for _, rule := range opts.rules {
				rule(header[c], value, &s)
			}
			id, err := cache.id(s)
			if err != nil {
				return err
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return err
			}
			if n := displayWidth(value, s.date); n > widths[c] {
				widths[c] = n
			}
		}
	}

	for c, w := range widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, col, col, float64(w+opts.widthPad)); err != nil {
			return err
		}
	}

	ref := fmt.Sprintf("A1:%s", lastCell(width, len(rows)))
	if err := f.AutoFilter(sheet, ref, nil); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
}

func displayWidth(value string, date bool) int {
	if date {
		return len(DateFormat)
	}
	return utf8.RuneCountInString(value)
}

func lastCell(cols, rows int) string {
	cell, _ := excelize.CoordinatesToCellName(max(cols, 1), max(rows, 1))
	return cell
}

func columnIndex(header []string, name string) int {
	return slices.Index(header, name)
}

func number(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	return util.Number(value)
}

// SummaryStyler formats a plain one-sheet listing: dark header, light body,
// thin borders, auto filter and frozen first row and column.
type SummaryStyler struct {
	DateColumns []string
}

func (s SummaryStyler) Apply(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cache := &styleCache{f: f, ids: map[cellStyle]int{}}
	for _, sheet := range f.GetSheetList() {
		if err := styleSheet(f, cache, sheet, sheetOptions{dateColumns: s.DateColumns, widthPad: 2}); err != nil {
			return fmt.Errorf("style %s: %w", sheet, err)
		}
	}
	return f.Save()
}
