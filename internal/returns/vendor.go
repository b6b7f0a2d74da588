package returns

import (
	"time"

	"docucontrol/internal"
	"docucontrol/internal/htmltable"
	"docucontrol/internal/lookup"
	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

// Input carries the notification side values a vendor table is normalized with.
type Input struct {
	Subject     string
	ReceivedAt  string // day first, e.g. 05-01-2024 13:45:00
	Transmittal *string
}

type Result struct {
	Rows []internal.DocumentRow
	// Responsibles holds the order responsible's address and the support
	// address for the document type; either may be "".
	Responsibles []string
}

// Vendor normalizes the return notifications of one document control platform.
type Vendor interface {
	Name() lookup.Vendor
	ExtractTransmittal(subject string) *string
	ParseTable(html string) (*table.Table, error)
	Transform(raw *table.Table, in Input) (Result, error)
	// Columns is the canonical row schema the vendor fills.
	Columns() []string
	// ImportColumns are the columns echoed back in the notification body.
	ImportColumns() []string
}

var baseColumns = []string{
	internal.ColOrder, internal.ColSupplier, internal.ColResponsible, internal.ColClient,
	internal.ColMaterial, internal.ColPO, internal.ColInternalDoc, internal.ColExternalDoc,
	internal.ColTitle, internal.ColRevision, internal.ColStatus, internal.ColDocType,
	internal.ColCritical, internal.ColTransmittal, internal.ColDate,
}

var baseImportColumns = []string{
	internal.ColOrder, internal.ColSupplier, internal.ColPO, internal.ColExternalDoc,
	internal.ColTitle, internal.ColRevision, internal.ColStatus, internal.ColDate,
}

// parseAt selects the table at index and checks it has the required columns.
func parseAt(html string, index int, vendor lookup.Vendor, required ...string) (*table.Table, error) {
	tables, err := htmltable.Parse(html)
	if err != nil {
		return nil, err
	}
	t, err := htmltable.Select(tables, index)
	if err != nil {
		return nil, err
	}
	if err := internal.RequireColumns(string(vendor)+" return table", t.Has, required...); err != nil {
		return nil, err
	}
	return t.Reindex(required), nil
}

func requireRaw(t *table.Table, vendor lookup.Vendor, required ...string) error {
	return internal.RequireColumns(string(vendor)+" return table", t.Has, required...)
}

// fill resolves the fields every vendor derives the same way once order,
// PO and document-type code are known.
func fill(lt *lookup.Tables, vendor lookup.Vendor, row *internal.DocumentRow, code *string, receivedAt time.Time) {
	if row.Supplier == "" {
		row.Supplier = internal.DefaultSupplier
	}
	row.Client = lt.Client(util.Deref(row.PO))
	if code != nil {
		row.DocType = lt.DocType(vendor, *code)
	}
	row.Critical = lt.Critical(row.DocType)
	if addr, ok := lt.Responsible(util.Deref(row.OrderNumber)); ok {
		if initials, ok := lt.Initials(vendor, addr); ok {
			row.Responsible = &initials
		}
	}
	row.Date = receivedAt
}

// responsibles follows the first row: its order's responsible address and
// the support address of its document type.
func responsibles(lt *lookup.Tables, rows []internal.DocumentRow, firstCode *string) []string {
	if len(rows) == 0 {
		return nil
	}
	addr, _ := lt.Responsible(util.Deref(rows[0].OrderNumber))
	return []string{addr, lt.Support(util.Deref(firstCode))}
}

func receivedDate(in Input) time.Time {
	t, _ := util.ParseDayFirst(in.ReceivedAt)
	return t
}

func cell(r table.Row, col string) *string {
	return util.NonEmpty(r.Text(col))
}

// ToTable lays document rows out in the given column order.
func ToTable(rows []internal.DocumentRow, columns []string) *table.Table {
	out := table.New(columns...)
	for _, d := range rows {
		full := table.Row{
			internal.ColOrder:          ptr(d.OrderNumber),
			internal.ColSupplier:       d.Supplier,
			internal.ColResponsible:    ptr(d.Responsible),
			internal.ColClient:         d.Client,
			internal.ColMaterial:       ptr(d.Material),
			internal.ColPO:             ptr(d.PO),
			internal.ColInternalDoc:    ptr(d.InternalDoc),
			internal.ColExternalDoc:    ptr(d.ExternalDoc),
			internal.ColTitle:          ptr(d.Title),
			internal.ColRevision:       ptr(d.Revision),
			internal.ColClientRevision: ptr(d.ClientRevision),
			internal.ColStatus:         str(string(d.Status)),
			internal.ColDocType:        str(string(d.DocType)),
			internal.ColCritical:       str(d.Critical),
			internal.ColTransmittal:    ptr(d.Transmittal),
		}
		if !d.Date.IsZero() {
			full[internal.ColDate] = d.Date
		}
		row := table.Row{}
		for _, c := range columns {
			if v, ok := full[c]; ok && !table.IsNull(v) {
				row[c] = v
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func ptr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func str(v string) any {
	if v == "" {
		return nil
	}
	return v
}
