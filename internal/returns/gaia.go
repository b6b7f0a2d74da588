package returns

import (
	"docucontrol/internal"
	"docucontrol/internal/lookup"
	"docucontrol/internal/table"
)

var gaiaRaw = []string{"Reference", "Doc. Title", "Doc. Rev."}

type GAIA struct {
	Lookup *lookup.Tables
}

func NewGAIA(lt *lookup.Tables) *GAIA { return &GAIA{Lookup: lt} }

func (v *GAIA) Name() lookup.Vendor { return lookup.VendorGAIA }

func (v *GAIA) ExtractTransmittal(subject string) *string { return GAIATransmittal(subject) }

func (v *GAIA) ParseTable(html string) (*table.Table, error) {
	return parseAt(html, 7, lookup.VendorGAIA, gaiaRaw...)
}

func (v *GAIA) Columns() []string { return baseColumns }

func (v *GAIA) ImportColumns() []string { return baseImportColumns }

// Transform reads everything but the status from the document reference;
// the status is the "Code N" of the subject and applies to every row.
func (v *GAIA) Transform(raw *table.Table, in Input) (Result, error) {
	if err := requireRaw(raw, lookup.VendorGAIA, gaiaRaw...); err != nil {
		return Result{}, err
	}
	received := receivedDate(in)
	var status internal.Status
	if code := GAIAStatusCode(in.Subject); code != nil {
		status = v.Lookup.Status(lookup.VendorGAIA, *code)
	}

	var firstCode *string
	rows := make([]internal.DocumentRow, 0, raw.Len())
	for i, r := range raw.Rows {
		reference := r.Text("Reference")
		code := GAIADocTypeCode(reference)
		if i == 0 {
			firstCode = code
		}
		row := internal.DocumentRow{
			OrderNumber: GAIAOrder(reference),
			Supplier:    internal.DefaultSupplier,
			PO:          GAIAPO(reference),
			InternalDoc: cell(r, "Reference"),
			ExternalDoc: cell(r, "Reference"),
			Title:       cell(r, "Doc. Title"),
			Revision:    cell(r, "Doc. Rev."),
			Status:      status,
			Transmittal: in.Transmittal,
		}
		row.Material = material(v.Lookup, lookup.VendorGAIA, row.PO)
		fill(v.Lookup, lookup.VendorGAIA, &row, code, received)
		rows = append(rows, row)
	}
	return Result{Rows: rows, Responsibles: responsibles(v.Lookup, rows, firstCode)}, nil
}

// material maps a PO to its category, keeping the PO itself when unmapped.
func material(lt *lookup.Tables, vendor lookup.Vendor, po *string) *string {
	if po == nil {
		return nil
	}
	if m, ok := lt.Material(vendor, *po); ok {
		return &m
	}
	m := *po
	return &m
}
