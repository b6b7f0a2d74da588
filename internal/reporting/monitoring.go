package reporting

import (
	"math"
	"sort"
	"strings"
	"time"

	"docucontrol/internal"
	"docucontrol/internal/excel"
	"docucontrol/internal/lookup"
	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

// ERP extract column labels.
const (
	ColOrder       = "Nº Pedido"
	ColResponsible = "Responsable"
	ColOffer       = "Nº Oferta"
	ColPO          = "Nº PO"
	ColStatus      = "Estado"
	ColCritical    = "Crítico"
	ColDocType     = "Tipo Doc."
	ColInternalDoc = "Nº Doc. EIPSA"
	ColClientDoc   = "Nº Doc. Cliente"
	ColTitle       = "Título"
	ColRevision    = "Nº Revisión"
	ColHistory     = "Historial Rev."

	ColDate       = "Fecha"
	ColOrderDate  = "Fecha Pedido"
	ColDueDate    = "Fecha Prevista"
	ColDocDate    = "Fecha Doc."
	ColSentDate   = "Fecha Env. Doc."
	ColReturnDate = "Fecha Dev. Doc."

	ColDays  = "Días Devolución"
	ColNotes = "Notas"
	ColTotal = "Total"
	ColDone  = "% Completado"
)

// NotesPrefix starts the respond-by note of a returned document.
const NotesPrefix = "Enviar antes del "

// RespondWindow is the time allowed to answer a returned document.
const RespondWindow = 15 * 24 * time.Hour

const bisMarker = "-BIS"

var consultaColumns = []string{ColOrder, ColResponsible, ColOffer}

var erpDateColumns = []string{ColDate, ColOrderDate, ColDueDate, "Fecha Fabricación", "Fecha Montaje", "Fecha Envío"}

var returnedStatuses = map[string]struct{}{
	string(internal.StatusMinorComments): {},
	string(internal.StatusMajorComments): {},
	string(internal.StatusRejected):      {},
	string(internal.StatusCommented):     {},
}

var criticalExcluded = map[string]struct{}{
	string(internal.StatusDeleted):  {},
	string(internal.StatusApproved): {},
	string(internal.StatusSent):     {},
}

// SummaryStatuses always get a column in the status summary.
var SummaryStatuses = []string{
	string(internal.StatusApproved),
	string(internal.StatusMajorComments),
	string(internal.StatusMinorComments),
	string(internal.StatusSent),
	string(internal.StatusRejected),
	string(internal.StatusNotSent),
}

// MonitoringColumns is the sheet layout; other columns follow in their own order.
var MonitoringColumns = []string{
	ColOrder, ColResponsible, ColOffer, ColPO, "Cliente", "Material", ColOrderDate, ColDueDate,
	ColClientDoc, ColInternalDoc, ColTitle, ColDocType, "Info/Review", "Repsonsable", "Días Envío",
	ColCritical, ColStatus, ColNotes, ColRevision, ColDocDate, ColSentDate, ColReturnDate, ColDays,
	"Reclamaciones", "Seguimiento", ColHistory,
}

// Bundle is one monitoring snapshot split into report segments.
type Bundle struct {
	Sent          *table.Table
	Returned      *table.Table
	Critical      *table.Table
	CriticalLate  *table.Table
	NotSent       *table.Table
	All           *table.Table
	StatusSummary *table.Table
}

// Sheets lists the segments in workbook order.
func (b Bundle) Sheets() []excel.Sheet {
	return []excel.Sheet{
		{Name: excel.SheetSent, Table: b.Sent},
		{Name: excel.SheetReturned, Table: b.Returned},
		{Name: excel.SheetCritical, Table: b.Critical},
		{Name: excel.SheetCritical15, Table: b.CriticalLate},
		{Name: excel.SheetNotSent, Table: b.NotSent},
		{Name: excel.SheetAll, Table: b.All},
		{Name: excel.SheetStatusGlobal, Table: b.StatusSummary},
	}
}

// BuildMonitoring joins the ERP extract with the order reference extract and
// splits it by status as of ref. The inputs are not modified.
func BuildMonitoring(erp, consulta *table.Table, ref time.Time, lt *lookup.Tables) (Bundle, error) {
	if err := internal.RequireColumns("consulta ERP", consulta.Has, consultaColumns...); err != nil {
		return Bundle{}, err
	}
	if err := internal.RequireColumns("data ERP", erp.Has, ColOrder, ColStatus); err != nil {
		return Bundle{}, err
	}

	ref = midnight(ref)
	data := prepare(erp, consulta.Reindex(consultaColumns), lt)
	all := data.Clone()

	returned := data.Filter(func(r table.Row) bool { return in(returnedStatuses, r.Text(ColStatus)) })
	sent := data.Filter(func(r table.Row) bool { return r.Text(ColStatus) == string(internal.StatusSent) })
	notSent := data.Filter(func(r table.Row) bool { return r.Text(ColStatus) == string(internal.StatusNotSent) })
	critical := data.Filter(func(r table.Row) bool {
		return r.Text(ColCritical) == internal.CriticalYes && !in(criticalExcluded, r.Text(ColStatus))
	})

	elapsed(returned, ref, ColDate)
	elapsed(sent, ref, ColDate)
	elapsed(critical, ref, ColDate)
	elapsed(notSent, ref, ColOrderDate)

	returned.Rename(ColDate, ColReturnDate)
	sent.Rename(ColDate, ColSentDate)
	critical.Rename(ColDate, ColDocDate)
	all.Rename(ColDate, ColDocDate)
	notSent.Rename(ColDate, ColDocDate)

	returned.Set(ColNotes, func(r table.Row) any {
		d, ok := r[ColReturnDate].(time.Time)
		if !ok || d.IsZero() || !in(returnedStatuses, r.Text(ColStatus)) {
			return nil
		}
		return NotesPrefix + util.FormatDate(d.Add(RespondWindow))
	})

	summary := StatusSummary(data)

	segments := []*table.Table{all, sent, returned, critical, notSent}
	for _, t := range segments {
		t.SortDesc(ColOrder)
	}

	critical = critical.Reorder(MonitoringColumns)
	return Bundle{
		Sent:          sent.Reorder(MonitoringColumns),
		Returned:      returned.Reorder(MonitoringColumns),
		Critical:      critical.Filter(func(r table.Row) bool { return !late(r) }),
		CriticalLate:  critical.Filter(late),
		NotSent:       notSent.Reorder(MonitoringColumns),
		All:           all.Reorder(MonitoringColumns),
		StatusSummary: summary,
	}, nil
}

// prepare joins the reference columns, defaults and filters statuses, drops
// -BIS documents and turns the known date columns into dates.
func prepare(erp, consulta *table.Table, lt *lookup.Tables) *table.Table {
	data := table.LeftJoin(erp, consulta, ColOrder, ColOrder)
	data.FillNull(ColStatus, string(internal.StatusNotSent))
	data = data.Filter(func(r table.Row) bool {
		return r.Text(ColStatus) != string(internal.StatusDeleted) && !strings.Contains(r.Text(ColInternalDoc), bisMarker)
	})
	for _, col := range erpDateColumns {
		data.Map(col, asDate)
	}
	if data.Has(ColDocType) {
		data.Set(ColCritical, func(r table.Row) any {
			if !r.Null(ColCritical) {
				return r[ColCritical]
			}
			if c := lt.CriticalForLabel(r.Text(ColDocType)); c != "" {
				return c
			}
			return nil
		})
	}
	return data
}

// elapsed adds the days from the dateCol of each row to ref; rows without a
// date get a null count. Tables without dateCol are left alone.
func elapsed(t *table.Table, ref time.Time, dateCol string) {
	if !t.Has(dateCol) {
		return
	}
	t.Set(ColDays, func(r table.Row) any {
		d, ok := r[dateCol].(time.Time)
		if !ok || d.IsZero() {
			return nil
		}
		return util.ElapsedDays(ref, d)
	})
}

func late(r table.Row) bool {
	n, ok := util.Number(r[ColDays])
	return ok && n > 15
}

// StatusSummary counts documents per order and status. Every status seen gets
// a column, SummaryStatuses always do, and fully approved orders are left out.
func StatusSummary(data *table.Table) *table.Table {
	counts := map[string]map[string]int{}
	var orders []string
	seen := map[string]struct{}{}
	for _, r := range data.Rows {
		if r.Null(ColOrder) {
			continue
		}
		order := r.Text(ColOrder)
		if counts[order] == nil {
			counts[order] = map[string]int{}
			orders = append(orders, order)
		}
		status := r.Text(ColStatus)
		counts[order][status]++
		seen[status] = struct{}{}
	}
	delete(seen, string(internal.StatusDeleted))

	statuses := make([]string, 0, len(seen))
	for s := range seen {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range SummaryStatuses {
		if _, ok := seen[s]; !ok {
			statuses = append(statuses, s)
		}
	}
	sort.Strings(orders)

	out := table.New(append(append([]string{ColOrder}, statuses...), ColTotal, ColDone)...)
	for _, order := range orders {
		row := table.Row{ColOrder: order}
		total := 0
		for _, s := range statuses {
			n := counts[order][s]
			row[s] = n
			total += n
		}
		row[ColTotal] = total
		done := 0.0
		if total > 0 {
			done = math.Round(float64(counts[order][string(internal.StatusApproved)])/float64(total)*100*100) / 100
		}
		if done == 100 {
			continue
		}
		row[ColDone] = done
		out.Rows = append(out.Rows, row)
	}
	return out
}

func asDate(v any) any {
	if t, ok := util.ToDate(v); ok {
		return t
	}
	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func in(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}
