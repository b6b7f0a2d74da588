package reporting

import (
	"bytes"
	"html/template"
	"math"
	"regexp"
	"sort"

	"docucontrol/internal"
	"docucontrol/internal/htmltable"
	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

// External wording of a reclamation table.
const (
	ColOrderNo     = "Order No."
	ColPONo        = "PO No."
	ColClientDocNo = "Client Doc. No."
	ColEIPSADocNo  = "EIPSA Doc. No."
	ColTitleEN     = "Title"
	ColStatusEN    = "Status"
	ColRevisionNo  = "Revision No."
	ColSentDateEN  = "Doc. Sent Date"
	ColReturnDays  = "Return Days"
)

// NoPO stands in for the PO of a group whose rows carry none.
const NoPO = "N/A"

var reOrderPrefix = regexp.MustCompile(`^(P-\d+/\d+)`)

var reclamationRenames = [][2]string{
	{ColOrder, ColOrderNo},
	{ColPO, ColPONo},
	{ColClientDoc, ColClientDocNo},
	{ColInternalDoc, ColEIPSADocNo},
	{ColTitle, ColTitleEN},
	{ColStatus, ColStatusEN},
	{ColRevision, ColRevisionNo},
	{ColSentDate, ColSentDateEN},
	{ColDays, ColReturnDays},
}

var reclamationDropped = []string{
	ColResponsible, ColOffer, ColOrderDate, "Cliente", ColDueDate, "Info/Review", "Repsonsable",
	"Días Envío", "Material", ColDocType, ColCritical, ColStartDate, ColEndDate, "Reclamaciones",
	"Seguimiento", ColHistory,
}

// Reclamation is the chaser mail for one order.
type Reclamation struct {
	Prefix  string
	PO      string
	Subject string
	Table   *table.Table
	HTML    string
}

var reclamationBody = template.Must(template.New("reclamation").Parse(`<p>Dear All,</p>
<p>- The following documents have been sent pending review and have not yet been returned by the customer:</p>
{{.}}
<p>If you can tell us the resolution of these documents and when they are expected to be returned by the customer, I would appreciate it.</p>
`))

// GroupReclamations takes the sent segment of a monitoring report and builds
// one reclamation per order prefix, ordered by prefix. Only rows with a
// non-negative return day count take part; rows without a P-NN/NNN order
// are left out.
func GroupReclamations(sent *table.Table) ([]Reclamation, error) {
	df := sent.Filter(func(r table.Row) bool {
		n, ok := util.Number(r[ColDays])
		return ok && n >= 0
	})
	df.Drop(reclamationDropped...)
	df.Map(ColRevision, func(v any) any {
		if n, ok := util.Number(v); ok {
			return int(n)
		}
		return v
	})
	df.Map(ColSentDate, func(v any) any {
		if t, ok := util.ToDate(v); ok {
			return util.FormatDate(t)
		}
		return nil
	})
	df.Map(ColDays, func(v any) any {
		if n, ok := util.Number(v); ok && n == math.Trunc(n) {
			return int(n)
		}
		return v
	})
	df.Map(ColStatus, func(v any) any {
		if util.Text(v) == string(internal.StatusSent) {
			return internal.SubmittedLabel
		}
		return v
	})
	for _, rn := range reclamationRenames {
		df.Rename(rn[0], rn[1])
	}

	groups := map[string]*table.Table{}
	var prefixes []string
	for _, r := range df.Rows {
		m := reOrderPrefix.FindStringSubmatch(r.Text(ColOrderNo))
		if m == nil {
			continue
		}
		g, ok := groups[m[1]]
		if !ok {
			g = table.New(df.Columns...)
			groups[m[1]] = g
			prefixes = append(prefixes, m[1])
		}
		g.Rows = append(g.Rows, r)
	}
	sort.Strings(prefixes)

	out := make([]Reclamation, 0, len(prefixes))
	for _, prefix := range prefixes {
		g := groups[prefix]
		g.SortDesc(ColReturnDays)

		po := NoPO
		for _, v := range g.Column(ColPONo) {
			if !table.IsNull(v) {
				po = util.Text(v)
				break
			}
		}

		rendered, err := htmltable.Highlighted(g)
		if err != nil {
			return nil, err
		}
		var body bytes.Buffer
		if err := reclamationBody.Execute(&body, rendered); err != nil {
			return nil, err
		}
		out = append(out, Reclamation{
			Prefix:  prefix,
			PO:      po,
			Subject: "RECLAIMS: " + prefix + " / PO: " + po + " // DOC. UNDER REVIEW",
			Table:   g,
			HTML:    body.String(),
		})
	}
	return out, nil
}
