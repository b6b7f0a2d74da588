package returns

import (
	"bytes"
	"html/template"
	"time"

	"docucontrol/internal"
	"docucontrol/internal/htmltable"
	"docucontrol/internal/lookup"
	"docucontrol/internal/mailer"
	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

// UploadWindow is how long the team has to upload a returned document.
const UploadWindow = 15 * 24 * time.Hour

var bodyTmpl = template.Must(template.New("body").Parse(`<html><body>
<p>Buenos días,</p>
<p>Han devuelto la siguiente documentación:</p>
<div>{{.Info}}<br>{{.Import}}</div>
<p><b>DESCARGADO Y ACTUALIZADO EN ERP.</b></p>
<p><b>HAY QUE SUBIRLO ANTES DEL: {{.Deadline}}</b></p>
</body></html>
`))

// Notification builds the internal mail announcing a vendor return.
func Notification(v Vendor, res Result, subject, summaryPath string, now time.Time) (mailer.Message, error) {
	order := ""
	if len(res.Rows) > 0 {
		order = util.Deref(res.Rows[0].OrderNumber)
	}

	info, err := htmltable.Info(infoTable(res.Rows))
	if err != nil {
		return mailer.Message{}, err
	}
	imported := ToTable(res.Rows, v.ImportColumns())
	imported.Drop(internal.ColOrder, internal.ColSupplier, internal.ColPO, internal.ColDate)
	body, err := htmltable.Import(imported)
	if err != nil {
		return mailer.Message{}, err
	}

	var buf bytes.Buffer
	err = bodyTmpl.Execute(&buf, struct {
		Info, Import template.HTML
		Deadline     string
	}{info, body, util.FormatDate(now.Add(UploadWindow))})
	if err != nil {
		return mailer.Message{}, err
	}

	msg := mailer.Message{
		Subject: "DEV: " + order + " [" + subject + "]",
		HTML:    buf.String(),
		To:      []string{lookup.GroupTo},
		CC:      []string{lookup.GroupCC},
	}
	if len(res.Responsibles) > 0 {
		msg.To = append(msg.To, res.Responsibles[0])
		msg.CC = append(msg.CC, res.Responsibles[1:]...)
	}
	if summaryPath != "" {
		msg.Attachments = []string{summaryPath}
	}
	return msg, nil
}

// infoTable is the two column header block: client and material of the
// first row as titles, then order, supplier, PO and date.
func infoTable(rows []internal.DocumentRow) *table.Table {
	var first internal.DocumentRow
	if len(rows) > 0 {
		first = rows[0]
	}
	left := util.FirstNonEmpty(first.Client, internal.ColClient)
	right := util.FirstNonEmpty(util.Deref(first.Material), internal.ColMaterial)
	if right == left {
		right = internal.ColMaterial
	}

	t := table.New(left, right)
	var date any
	if !first.Date.IsZero() {
		date = first.Date
	}
	for _, kv := range []struct {
		key   string
		value any
	}{
		{internal.ColOrder, ptr(first.OrderNumber)},
		{internal.ColSupplier, str(first.Supplier)},
		{internal.ColPO, ptr(first.PO)},
		{internal.ColDate, date},
	} {
		t.Append(table.Row{left: kv.key, right: kv.value})
	}
	return t
}
