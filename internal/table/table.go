package table

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"docucontrol/internal/util"
)

// Row maps column label to cell value. A missing key or a nil value is null.
type Row map[string]any

// Table is an ordered set of rows sharing a list of column labels.
type Table struct {
	Columns []string
	Rows    []Row
}

func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// FromRecords builds a table from a header and string records. Blank cells
// are null and fully blank records are skipped. Cells are matched to the
// header by position, so the header goes through UniqueHeader first.
func FromRecords(header []string, records [][]string) *Table {
	trimmed := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
	}
	t := New(UniqueHeader(trimmed)...)
	for _, rec := range records {
		row := Row{}
		for i, col := range t.Columns {
			if i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					row[col] = v
				}
			}
		}
		if len(row) == 0 {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// UniqueHeader suffixes repeated labels with .1, .2, ... and names blank ones
// by position.
func UniqueHeader(header []string) []string {
	seen := map[string]int{}
	out := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func (t *Table) Append(row Row) {
	for col := range row {
		if !t.Has(col) {
			t.Columns = append(t.Columns, col)
		}
	}
	t.Rows = append(t.Rows, row)
}

func (t *Table) ensureColumn(col string) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
}

// Clone copies the column list and every row map.
func (t *Table) Clone() *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, r.clone())
	}
	return out
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Row) Text(col string) string {
	return util.Text(r[col])
}

func (r Row) Null(col string) bool {
	return IsNull(r[col])
}

func IsNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *string:
		return t == nil
	case time.Time:
		return t.IsZero()
	default:
		return false
	}
}

// Set assigns fn(row) to col on every row, adding the column when absent.
func (t *Table) Set(col string, fn func(Row) any) {
	t.ensureColumn(col)
	for _, r := range t.Rows {
		v := fn(r)
		if IsNull(v) {
			delete(r, col)
			continue
		}
		r[col] = v
	}
}

// Map rewrites the values of an existing column; it is a no-op when col is absent.
func (t *Table) Map(col string, fn func(any) any) {
	if !t.Has(col) {
		return
	}
	for _, r := range t.Rows {
		v := fn(r[col])
		if IsNull(v) {
			delete(r, col)
			continue
		}
		r[col] = v
	}
}

// FillNull replaces null cells of col with v, adding the column when absent.
func (t *Table) FillNull(col string, v any) {
	t.Set(col, func(r Row) any {
		if r.Null(col) {
			return v
		}
		return r[col]
	})
}

func (t *Table) Rename(old, new string) {
	if old == new || !t.Has(old) {
		return
	}
	for i, c := range t.Columns {
		if c == old {
			t.Columns[i] = new
		}
	}
	for _, r := range t.Rows {
		if v, ok := r[old]; ok {
			r[new] = v
			delete(r, old)
		}
	}
}

func (t *Table) Drop(cols ...string) {
	drop := map[string]struct{}{}
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for c := range drop {
			delete(r, c)
		}
	}
}

// Filter returns a new table holding copies of the rows keep accepts.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.Columns...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r.clone())
		}
	}
	return out
}

// Reindex keeps exactly cols in that order; absent columns come back null.
func (t *Table) Reindex(cols []string) *Table {
	out := New(cols...)
	for _, r := range t.Rows {
		row := Row{}
		for _, c := range cols {
			if v, ok := r[c]; ok {
				row[c] = v
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Reorder puts the columns of order that exist first, then every other
// column in its current order.
func (t *Table) Reorder(order []string) *Table {
	cols := make([]string, 0, len(t.Columns))
	seen := map[string]struct{}{}
	for _, c := range order {
		if t.Has(c) {
			cols = append(cols, c)
			seen[c] = struct{}{}
		}
	}
	for _, c := range t.Columns {
		if _, ok := seen[c]; !ok {
			cols = append(cols, c)
		}
	}
	out := t.Clone()
	out.Columns = cols
	return out
}

// SortDesc orders rows by col descending with nulls last. Ties keep their order.
func (t *Table) SortDesc(col string) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i][col], t.Rows[j][col]
		if IsNull(a) || IsNull(b) {
			return !IsNull(a) && IsNull(b)
		}
		return Compare(a, b) > 0
	})
}

// Compare orders two non-null values: numbers numerically, dates
// chronologically, anything else by its text.
func Compare(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if _, isStr := a.(string); !isStr {
		if fa, ok := util.Number(a); ok {
			if fb, ok := util.Number(b); ok {
				switch {
				case fa < fb:
					return -1
				case fa > fb:
					return 1
				default:
					return 0
				}
			}
		}
	}
	return strings.Compare(util.Text(a), util.Text(b))
}

func Concat(tables ...*Table) *Table {
	out := New()
	for _, t := range tables {
		for _, c := range t.Columns {
			out.ensureColumn(c)
		}
		for _, r := range t.Rows {
			out.Rows = append(out.Rows, r.clone())
		}
	}
	return out
}

const nullKey = "\x00null"

func keyOf(v any) string {
	if IsNull(v) {
		return nullKey
	}
	return util.Text(v)
}

// DropDuplicates keeps the first row for each combination of the subset
// columns. Nulls compare equal to each other.
func (t *Table) DropDuplicates(subset ...string) *Table {
	out := New(t.Columns...)
	seen := map[string]struct{}{}
	for _, r := range t.Rows {
		parts := make([]string, len(subset))
		for i, c := range subset {
			parts[i] = keyOf(r[c])
		}
		key := strings.Join(parts, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, r.clone())
	}
	return out
}

// Melt unpivots valueVars into (varName, valueName) pairs, one block of rows
// per value column. Every other column is carried as an identifier.
func (t *Table) Melt(valueVars []string, varName, valueName string) *Table {
	isValue := map[string]struct{}{}
	for _, v := range valueVars {
		isValue[v] = struct{}{}
	}
	var idVars []string
	for _, c := range t.Columns {
		if _, ok := isValue[c]; !ok {
			idVars = append(idVars, c)
		}
	}
	out := New(append(append([]string(nil), idVars...), varName, valueName)...)
	for _, v := range valueVars {
		for _, r := range t.Rows {
			row := Row{varName: v}
			for _, id := range idVars {
				if val, ok := r[id]; ok {
					row[id] = val
				}
			}
			if val, ok := r[v]; ok && !IsNull(val) {
				row[valueName] = val
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Column returns the values of col in row order.
func (t *Table) Column(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}
