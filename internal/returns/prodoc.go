package returns

import (
	"strings"

	"docucontrol/internal"
	"docucontrol/internal/lookup"
	"docucontrol/internal/table"
)

var prodocRaw = []string{"Name", "P.O.", "Title", "Rev", "S.R. Status", "Date"}

type PRODOC struct {
	Lookup *lookup.Tables
}

func NewPRODOC(lt *lookup.Tables) *PRODOC { return &PRODOC{Lookup: lt} }

func (v *PRODOC) Name() lookup.Vendor { return lookup.VendorPRODOC }

func (v *PRODOC) ExtractTransmittal(subject string) *string { return PRODOCTransmittal(subject) }

func (v *PRODOC) ParseTable(html string) (*table.Table, error) {
	return parseAt(html, 0, lookup.VendorPRODOC, prodocRaw...)
}

func (v *PRODOC) Columns() []string { return baseColumns }

func (v *PRODOC) ImportColumns() []string { return baseImportColumns }

// Transform resolves the order number from the P.O. column; POs without a
// known order keep the P.O. itself.
func (v *PRODOC) Transform(raw *table.Table, in Input) (Result, error) {
	if err := requireRaw(raw, lookup.VendorPRODOC, prodocRaw...); err != nil {
		return Result{}, err
	}
	received := receivedDate(in)

	var firstCode *string
	rows := make([]internal.DocumentRow, 0, raw.Len())
	for i, r := range raw.Rows {
		po := cell(r, "P.O.")
		code := PRODOCDocTypeCode(r.Text("Name"))
		if i == 0 {
			firstCode = code
		}
		row := internal.DocumentRow{
			Supplier:    internal.DefaultSupplier,
			PO:          po,
			InternalDoc: cell(r, "Name"),
			ExternalDoc: cell(r, "Name"),
			Title:       cell(r, "Title"),
			Revision:    cell(r, "Rev"),
			Status:      v.Lookup.Status(lookup.VendorPRODOC, r.Text("S.R. Status")),
			Transmittal: in.Transmittal,
		}
		if po != nil {
			order := strings.TrimSpace(*po)
			if o, ok := v.Lookup.OrderForPO(order); ok {
				order = o
			}
			row.OrderNumber = &order
		}
		row.Material = material(v.Lookup, lookup.VendorPRODOC, po)
		fill(v.Lookup, lookup.VendorPRODOC, &row, code, received)
		rows = append(rows, row)
	}
	return Result{Rows: rows, Responsibles: responsibles(v.Lookup, rows, firstCode)}, nil
}
