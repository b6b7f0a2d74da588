package htmltable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"docucontrol/internal"
	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

// Parse returns every <table> of the document, nested ones included, in
// document order. The header is the <thead> when there is one, otherwise the
// first row. Cells spanning several columns are repeated.
func Parse(html string) ([]*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	out := []*table.Table{}
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		var rows [][]string
		var header []string
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if !tr.Closest("table").IsSelection(tbl) {
				return
			}
			cells := rowCells(tr)
			if len(cells) == 0 {
				return
			}
			if header == nil && tr.Closest("thead").Length() > 0 && tr.Closest("thead").Closest("table").IsSelection(tbl) {
				header = cells
				return
			}
			rows = append(rows, cells)
		})
		if header == nil {
			if len(rows) == 0 {
				out = append(out, table.New())
				return
			}
			header, rows = rows[0], rows[1:]
		}
		out = append(out, table.FromRecords(header, rows))
	})
	return out, nil
}

func rowCells(tr *goquery.Selection) []string {
	cells := []string{}
	tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
		text := util.NormalizeSpaces(cell.Text())
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			cells = append(cells, text)
		}
	})
	return cells
}

// Select returns the table at index, or an error naming how many were found.
func Select(tables []*table.Table, index int) (*table.Table, error) {
	if index < 0 || index >= len(tables) {
		return nil, &IndexError{Index: index, Found: len(tables)}
	}
	return tables[index], nil
}

type IndexError struct {
	Index int
	Found int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("html table %d not found (%d tables)", e.Index, e.Found)
}

func (e *IndexError) Unwrap() error { return internal.ErrInvalidSchema }
