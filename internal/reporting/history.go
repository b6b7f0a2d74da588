package reporting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

type Direction string

const (
	Sent     Direction = "Env."
	Returned Direction = "Dev."
)

// Event is one dated submittal or return of a revision.
type Event struct {
	Direction Direction
	Revision  int
	Date      time.Time
}

var reHistory = regexp.MustCompile(`(\d{2}[/-]\d{2}[/-]\d{4})\s*([A-Za-zÁÉÍÓÚáéíóúüÜñÑ.\s]+?)\s*Rev\.?\s*(\d+)`)

// ParseHistory reads "date action Rev. n" entries out of a free text
// history. Actions mentioning "Enviado" are submittals, anything else a
// return. Entries with an unreadable date are dropped.
func ParseHistory(text string) []Event {
	var out []Event
	for _, m := range reHistory.FindAllStringSubmatch(text, -1) {
		date, ok := util.ParseDayFirst(m[1])
		if !ok {
			continue
		}
		rev, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		dir := Returned
		if strings.Contains(m[2], "Enviado") {
			dir = Sent
		}
		out = append(out, Event{Direction: dir, Revision: rev, Date: date})
	}
	return out
}

// HistoryColumn names the slot of one direction and revision, e.g. "Env. 1".
func HistoryColumn(dir Direction, rev int) string {
	return fmt.Sprintf("%s %d", dir, rev)
}

// HistoryColumns lists the slots for revisions 0 through maxRev, paired.
func HistoryColumns(maxRev int) []string {
	cols := make([]string, 0, 2*(maxRev+1))
	for i := 0; i <= maxRev; i++ {
		cols = append(cols, HistoryColumn(Sent, i), HistoryColumn(Returned, i))
	}
	return cols
}

// AddHistory spreads the history column of each row over the revision slots
// as dd-mm-yyyy text. Slots without an event hold "". When two events land in
// the same slot the later one wins; revisions above maxRev are ignored.
func AddHistory(t *table.Table, maxRev int) {
	cols := HistoryColumns(maxRev)
	slots := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		slots[c] = struct{}{}
		t.Set(c, func(table.Row) any { return "" })
	}
	for _, r := range t.Rows {
		for _, ev := range ParseHistory(r.Text(ColHistory)) {
			col := HistoryColumn(ev.Direction, ev.Revision)
			if _, ok := slots[col]; ok {
				r[col] = util.FormatDate(ev.Date)
			}
		}
	}
}
