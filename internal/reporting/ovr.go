package reporting

import (
	"strings"

	"docucontrol/internal"
	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

// OVR column labels.
const (
	ColStartDate    = "Fecha INICIAL"
	ColEndDate      = "Fecha FIN"
	ColApprovalDays = "Días Aprobación"

	ColTagCalc    = "Nº Doc. EIPSA Cálculo"
	ColTagDrawing = "Nº Doc. EIPSA Plano"
	ColTagKind    = "Tipo Nº Doc."
	ColTagRef     = "Nº Doc. EIPSA Tag"
)

// Highest revision slot of each OVR flavour.
const (
	SimpleMaxRev = 8
	UnionMaxRev  = 9
)

var ovrLeading = []string{
	ColOrder, "Resp.", ColPO, "Cliente", "Material", ColClientDoc, ColInternalDoc, ColTitle,
	ColDocType, ColCritical, ColStatus, ColRevision, ColStartDate, ColEndDate, ColDocDate,
	ColApprovalDays, "Reclamaciones", "Seguimiento",
}

var ovrDropped = []string{"Seguimiento", "Resp.", "Reclamaciones", "Cliente", "Material", ColCritical}

var ovrRenames = [][2]string{{ColDate, ColDocDate}, {ColDueDate, ColEndDate}, {ColOrderDate, ColStartDate}}

// OVRColumns is the layout an OVR sheet is built from, before the summary
// columns are dropped.
func OVRColumns(maxRev int) []string {
	cols := append([]string(nil), ovrLeading...)
	cols = append(cols, HistoryColumns(maxRev)...)
	return append(cols, ColHistory)
}

// baseOVR drops deleted documents, defaults the status, names the three
// dates by role and counts approval days for approved documents.
func baseOVR(erp *table.Table) (*table.Table, error) {
	if err := internal.RequireColumns("data ERP", erp.Has, ColStatus, ColDate, ColDueDate, ColOrderDate, ColHistory); err != nil {
		return nil, err
	}
	df := erp.Filter(func(r table.Row) bool { return r.Text(ColStatus) != string(internal.StatusDeleted) })
	df.FillNull(ColStatus, string(internal.StatusNotSent))
	for _, rn := range ovrRenames {
		df.Rename(rn[0], rn[1])
	}
	for _, col := range []string{ColDocDate, ColStartDate, ColEndDate} {
		df.Map(col, asDate)
	}
	df.Set(ColApprovalDays, func(r table.Row) any {
		if r.Text(ColStatus) != string(internal.StatusApproved) {
			return nil
		}
		start, ok1 := util.ToDate(r[ColStartDate])
		doc, ok2 := util.ToDate(r[ColDocDate])
		if !ok1 || !ok2 {
			return nil
		}
		return util.ElapsedDays(doc, start)
	})
	return df, nil
}

func ovrTable(erp *table.Table, maxRev int) (*table.Table, error) {
	df, err := baseOVR(erp)
	if err != nil {
		return nil, err
	}
	AddHistory(df, maxRev)
	df = df.Reindex(OVRColumns(maxRev))
	df.Map(ColDocType, func(v any) any {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return v
	})
	df.Drop(ovrDropped...)
	return df, nil
}

// SimpleOVR is the per document history with revision slots 0 to 8.
func SimpleOVR(erp *table.Table) (*table.Table, error) {
	return ovrTable(erp, SimpleMaxRev)
}

// UnionOVR extends the history, slots 0 to 9, with the tag table. Tags are
// matched once by internal and once by client document number; the first
// row of each (internal, client) document pair is kept.
func UnionOVR(erp, tags *table.Table) (*table.Table, error) {
	if err := internal.RequireColumns("data tags", tags.Has, ColTagCalc, ColTagDrawing); err != nil {
		return nil, err
	}
	df, err := ovrTable(erp, UnionMaxRev)
	if err != nil {
		return nil, err
	}
	melted := tags.Melt([]string{ColTagCalc, ColTagDrawing}, ColTagKind, ColTagRef).
		Filter(func(r table.Row) bool { return !r.Null(ColTagRef) })

	byInternal := table.LeftJoin(df, melted, ColInternalDoc, ColTagRef)
	byClient := table.LeftJoin(df, melted, ColClientDoc, ColTagRef)
	return table.Concat(byInternal, byClient).DropDuplicates(ColInternalDoc, ColClientDoc), nil
}
