package reporting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"docucontrol/internal/table"
)

func sentFixture() *table.Table {
	t := table.New(ColOrder, ColResponsible, ColPO, ColInternalDoc, ColClientDoc, ColTitle, ColStatus, ColRevision, ColSentDate, ColDays, ColHistory)
	t.Append(table.Row{ColOrder: "P-24/001-A", ColInternalDoc: "EIP-1", ColStatus: "Enviado", ColRevision: "1", ColSentDate: day(2024, 2, 25), ColDays: 5})
	t.Append(table.Row{ColOrder: "P-24/001-B", ColPO: "4500001", ColInternalDoc: "EIP-2", ColStatus: "Enviado", ColRevision: "0", ColSentDate: "45331", ColDays: "20"})
	t.Append(table.Row{ColOrder: "P-24/001-C", ColInternalDoc: "EIP-3", ColStatus: "Enviado", ColDays: -1})
	t.Append(table.Row{ColOrder: "P-24/002", ColInternalDoc: "EIP-4", ColStatus: "Enviado"})
	t.Append(table.Row{ColOrder: "ORDER-X", ColInternalDoc: "EIP-5", ColStatus: "Enviado", ColDays: 40})
	t.Append(table.Row{ColOrder: "P-23/010", ColInternalDoc: "EIP-6", ColStatus: "Enviado", ColDays: 16})
	return t
}

func TestGroupReclamations(t *testing.T) {
	groups, err := GroupReclamations(sentFixture())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	first := groups[0]
	require.Equal(t, "P-23/010", first.Prefix)
	require.Equal(t, NoPO, first.PO)
	require.Equal(t, "RECLAIMS: P-23/010 / PO: N/A // DOC. UNDER REVIEW", first.Subject)

	g := groups[1]
	require.Equal(t, "P-24/001", g.Prefix)
	require.Equal(t, "4500001", g.PO)
	require.Equal(t, "RECLAIMS: P-24/001 / PO: 4500001 // DOC. UNDER REVIEW", g.Subject)
	require.Equal(t, []any{20, 5}, g.Table.Column(ColReturnDays))
	require.Equal(t, []any{"P-24/001-B", "P-24/001-A"}, g.Table.Column(ColOrderNo))
	require.Equal(t, []any{"09-02-2024", "25-02-2024"}, g.Table.Column(ColSentDateEN))
	require.Equal(t, []any{0, 1}, g.Table.Column(ColRevisionNo))
	require.Equal(t, []any{"Submitted", "Submitted"}, g.Table.Column(ColStatusEN))

	require.False(t, g.Table.Has(ColResponsible))
	require.False(t, g.Table.Has(ColHistory))
	require.False(t, g.Table.Has(ColOrder))

	require.Contains(t, g.HTML, "<p>Dear All,</p>")
	require.Contains(t, g.HTML, "EIP-2")
	require.Contains(t, g.HTML, "Submitted")
	require.NotContains(t, g.HTML, "EIP-3")
}

func TestGroupReclamationsEmpty(t *testing.T) {
	groups, err := GroupReclamations(table.New(ColOrder, ColDays))
	require.NoError(t, err)
	require.Empty(t, groups)
}
