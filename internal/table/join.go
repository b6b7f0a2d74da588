package table

const (
	SuffixLeft  = "_x"
	SuffixRight = "_y"
)

// LeftJoin keeps every row of left in order, extended with the columns of
// each right row whose rightOn value equals leftOn. Several matches multiply
// the left row; no match leaves the right columns null. Null keys never
// match. Non-key columns present on both sides are suffixed with _x and _y.
func LeftJoin(left, right *Table, leftOn, rightOn string) *Table {
	index := map[string][]Row{}
	for _, r := range right.Rows {
		if r.Null(rightOn) {
			continue
		}
		k := keyOf(r[rightOn])
		index[k] = append(index[k], r)
	}

	sameKey := leftOn == rightOn
	overlap := map[string]struct{}{}
	for _, c := range right.Columns {
		if sameKey && c == rightOn {
			continue
		}
		if left.Has(c) {
			overlap[c] = struct{}{}
		}
	}

	leftName := func(c string) string {
		if _, ok := overlap[c]; ok {
			return c + SuffixLeft
		}
		return c
	}
	rightName := func(c string) string {
		if _, ok := overlap[c]; ok {
			return c + SuffixRight
		}
		return c
	}

	out := New()
	for _, c := range left.Columns {
		out.ensureColumn(leftName(c))
	}
	for _, c := range right.Columns {
		if sameKey && c == rightOn {
			continue
		}
		out.ensureColumn(rightName(c))
	}

	for _, l := range left.Rows {
		base := Row{}
		for c, v := range l {
			base[leftName(c)] = v
		}
		var matches []Row
		if !l.Null(leftOn) {
			matches = index[keyOf(l[leftOn])]
		}
		if len(matches) == 0 {
			out.Rows = append(out.Rows, base)
			continue
		}
		for _, m := range matches {
			row := base.clone()
			for c, v := range m {
				if sameKey && c == rightOn {
					continue
				}
				row[rightName(c)] = v
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
