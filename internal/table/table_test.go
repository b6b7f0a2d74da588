package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLeftJoinMultipliesAndSuffixes(t *testing.T) {
	left := New("Nº Pedido", "Estado", "Fecha")
	left.Append(Row{"Nº Pedido": "P-24/001", "Estado": "Enviado"})
	left.Append(Row{"Nº Pedido": "P-24/002", "Estado": "Aprobado"})
	left.Append(Row{"Estado": "Sin Enviar"})

	right := New("Nº Pedido", "Responsable", "Fecha")
	right.Append(Row{"Nº Pedido": "P-24/001", "Responsable": "LB", "Fecha": "x"})
	right.Append(Row{"Nº Pedido": "P-24/001", "Responsable": "AC"})
	right.Append(Row{"Responsable": "SS"})

	out := LeftJoin(left, right, "Nº Pedido", "Nº Pedido")

	require.Equal(t, []string{"Nº Pedido", "Estado", "Fecha_x", "Responsable", "Fecha_y"}, out.Columns)
	require.Equal(t, 4, out.Len())
	require.Equal(t, "LB", out.Rows[0]["Responsable"])
	require.Equal(t, "x", out.Rows[0]["Fecha_y"])
	require.Equal(t, "AC", out.Rows[1]["Responsable"])
	require.True(t, out.Rows[2].Null("Responsable"))
	require.True(t, out.Rows[3].Null("Responsable"), "null keys never match")
}

func TestLeftJoinDifferentKeys(t *testing.T) {
	left := New("Nº Doc. EIPSA", "Título")
	left.Append(Row{"Nº Doc. EIPSA": "D-1", "Título": "A"})
	right := New("Nº Doc. EIPSA Tag", "TAG")
	right.Append(Row{"Nº Doc. EIPSA Tag": "D-1", "TAG": "FT-100"})

	out := LeftJoin(left, right, "Nº Doc. EIPSA", "Nº Doc. EIPSA Tag")
	require.Equal(t, []string{"Nº Doc. EIPSA", "Título", "Nº Doc. EIPSA Tag", "TAG"}, out.Columns)
	require.Equal(t, "FT-100", out.Rows[0]["TAG"])
}

func TestSortDescNullsLastStable(t *testing.T) {
	tbl := New("k", "i")
	tbl.Append(Row{"k": "P-24/001", "i": 1})
	tbl.Append(Row{"i": 2})
	tbl.Append(Row{"k": "P-24/010", "i": 3})
	tbl.Append(Row{"k": "P-24/001", "i": 4})

	tbl.SortDesc("k")

	require.Equal(t, []any{3, 1, 4, 2}, tbl.Column("i"))
}

func TestCompareNumbersAndDates(t *testing.T) {
	require.Equal(t, 1, Compare(10, 9))
	require.Equal(t, -1, Compare(2.5, 3))
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, -1, Compare(a, a.AddDate(0, 0, 1)))
}

func TestDropDuplicatesTreatsNullsAsEqual(t *testing.T) {
	tbl := New("a", "b", "n")
	tbl.Append(Row{"a": "1", "n": 1})
	tbl.Append(Row{"a": "1", "n": 2})
	tbl.Append(Row{"a": "1", "b": "x", "n": 3})

	out := tbl.DropDuplicates("a", "b")
	require.Equal(t, []any{1, 3}, out.Column("n"))
}

func TestMelt(t *testing.T) {
	tbl := New("TAG", "Calc", "Plano")
	tbl.Append(Row{"TAG": "T1", "Calc": "C1", "Plano": "P1"})
	tbl.Append(Row{"TAG": "T2", "Plano": "P2"})

	out := tbl.Melt([]string{"Calc", "Plano"}, "Tipo", "Doc")

	require.Equal(t, []string{"TAG", "Tipo", "Doc"}, out.Columns)
	require.Equal(t, 4, out.Len())
	require.Equal(t, []any{"C1", nil, "P1", "P2"}, out.Column("Doc"))
	require.Equal(t, []any{"Calc", "Calc", "Plano", "Plano"}, out.Column("Tipo"))
}

func TestReorderAppendsUnknownColumns(t *testing.T) {
	tbl := New("z", "b", "a")
	out := tbl.Reorder([]string{"a", "missing", "b"})
	require.Equal(t, []string{"a", "b", "z"}, out.Columns)
	require.Equal(t, []string{"z", "b", "a"}, tbl.Columns)
}

func TestReindexAndDrop(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append(Row{"a": 1, "b": 2})

	out := tbl.Reindex([]string{"b", "c"})
	require.Equal(t, []string{"b", "c"}, out.Columns)
	require.True(t, out.Rows[0].Null("c"))

	tbl.Drop("a", "nope")
	require.Equal(t, []string{"b"}, tbl.Columns)
	_, ok := tbl.Rows[0]["a"]
	require.False(t, ok)
}

func TestFilterCopiesRows(t *testing.T) {
	tbl := New("a")
	tbl.Append(Row{"a": "1"})
	out := tbl.Filter(func(Row) bool { return true })
	out.Rows[0]["a"] = "2"
	require.Equal(t, "1", tbl.Rows[0]["a"])
}

func TestRenameAndFillNull(t *testing.T) {
	tbl := New("Fecha", "Estado")
	tbl.Append(Row{"Fecha": "01-01-2024"})
	tbl.Rename("Fecha", "Fecha Doc.")
	tbl.FillNull("Estado", "Sin Enviar")

	require.Equal(t, []string{"Fecha Doc.", "Estado"}, tbl.Columns)
	require.Equal(t, "01-01-2024", tbl.Rows[0]["Fecha Doc."])
	require.Equal(t, "Sin Enviar", tbl.Rows[0]["Estado"])
}

func TestFromRecordsBlankIsNull(t *testing.T) {
	tbl := FromRecords([]string{" A ", "B"}, [][]string{{"1", " "}, {"2"}})
	require.Equal(t, []string{"A", "B"}, tbl.Columns)
	require.True(t, tbl.Rows[0].Null("B"))
	require.True(t, tbl.Rows[1].Null("B"))
	require.Equal(t, "2", tbl.Rows[1]["A"])
}

func TestFromRecordsKeepsCellsUnderTheirHeader(t *testing.T) {
	out := FromRecords(
		[]string{"Nº Pedido", "", "Título", " Título ", "", "Estado"},
		[][]string{{"P-24/001", "x", "t1", "t2", "y", "Enviado"}},
	)
	require.Equal(t, []string{"Nº Pedido", "Unnamed: 1", "Título", "Título.1", "Unnamed: 4", "Estado"}, out.Columns)
	require.Equal(t, "Enviado", out.Rows[0]["Estado"])
	require.Equal(t, "t2", out.Rows[0]["Título.1"])
	require.Equal(t, "y", out.Rows[0]["Unnamed: 4"])
}
