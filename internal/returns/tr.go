package returns

import (
	"docucontrol/internal"
	"docucontrol/internal/lookup"
	"docucontrol/internal/table"
)

var trRaw = []string{"Vendor Number", "TR Number", "Title", "Vendor Rev", "TR Rev", "Return Status"}

type TR struct {
	Lookup *lookup.Tables
}

func NewTR(lt *lookup.Tables) *TR { return &TR{Lookup: lt} }

func (v *TR) Name() lookup.Vendor { return lookup.VendorTR }

func (v *TR) ExtractTransmittal(subject string) *string { return TRTransmittal(subject) }

// ParseTable reads the sixth table of a TR notification.
func (v *TR) ParseTable(html string) (*table.Table, error) {
	return parseAt(html, 5, lookup.VendorTR, trRaw...)
}

func (v *TR) Columns() []string {
	cols := make([]string, 0, len(baseColumns)+1)
	for _, c := range baseColumns {
		cols = append(cols, c)
		if c == internal.ColRevision {
			cols = append(cols, internal.ColClientRevision)
		}
	}
	return cols
}

func (v *TR) ImportColumns() []string {
	return []string{
		internal.ColOrder, internal.ColSupplier, internal.ColPO, internal.ColInternalDoc,
		internal.ColExternalDoc, internal.ColTitle, internal.ColRevision, internal.ColClientRevision,
		internal.ColStatus, internal.ColDate,
	}
}

// Transform derives order, supplier and document type from the vendor number
// and takes the PO from the ten digit number of the subject. The PO stands in
// for the transmittal when the subject carries none.
func (v *TR) Transform(raw *table.Table, in Input) (Result, error) {
	if err := requireRaw(raw, lookup.VendorTR, trRaw...); err != nil {
		return Result{}, err
	}
	received := receivedDate(in)
	po := SubjectPO(in.Subject)

	var firstCode *string
	rows := make([]internal.DocumentRow, 0, raw.Len())
	for i, r := range raw.Rows {
		vendorNumber := r.Text("Vendor Number")
		code := TRDocTypeCode(vendorNumber)
		if i == 0 {
			firstCode = code
		}
		row := internal.DocumentRow{
			OrderNumber:    TROrder(vendorNumber),
			Supplier:       SupplierCode(vendorNumber),
			PO:             po,
			InternalDoc:    cell(r, "Vendor Number"),
			ExternalDoc:    cell(r, "TR Number"),
			Title:          cell(r, "Title"),
			Revision:       cell(r, "Vendor Rev"),
			ClientRevision: cell(r, "TR Rev"),
			Status:         v.Lookup.Status(lookup.VendorTR, r.Text("Return Status")),
			Transmittal:    in.Transmittal,
		}
		if row.Transmittal == nil {
			row.Transmittal = po
		}
		if po != nil {
			if suffix := TRMaterialCode(*po); suffix != nil {
				if m, ok := v.Lookup.Material(lookup.VendorTR, *suffix); ok {
					row.Material = &m
				}
			}
		}
		fill(v.Lookup, lookup.VendorTR, &row, code, received)
		rows = append(rows, row)
	}
	return Result{Rows: rows, Responsibles: responsibles(v.Lookup, rows, firstCode)}, nil
}
