package htmltable

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docucontrol/internal"
	"docucontrol/internal/table"
)

func TestParseNestedTablesInDocumentOrder(t *testing.T) {
	html := `<html><body>
<table><tr><td>outer</td><td>
  <table><tr><th>Vendor Number</th><th>Title</th></tr>
  <tr><td>PLG-S01-24-001</td><td>GA drawing&nbsp; rev</td></tr></table>
</td></tr></table>
<table><thead><tr><th colspan="2">Code</th></tr></thead><tbody><tr><td>a</td><td>b</td></tr></tbody></table>
</body></html>`

	tables, err := Parse(html)
	require.NoError(t, err)
	require.Len(t, tables, 3)

	outer := tables[0]
	require.Equal(t, 0, outer.Len(), "nested rows belong to the inner table")

	inner := tables[1]
	require.Equal(t, []string{"Vendor Number", "Title"}, inner.Columns)
	require.Equal(t, 1, inner.Len())
	require.Equal(t, "GA drawing rev", inner.Rows[0]["Title"])

	spanned := tables[2]
	require.Equal(t, []string{"Code", "Code.1"}, spanned.Columns)
	require.Equal(t, "b", spanned.Rows[0]["Code.1"])
}

func TestSelectOutOfRange(t *testing.T) {
	_, err := Select([]*table.Table{table.New()}, 5)
	require.Error(t, err)
	require.True(t, errors.Is(err, internal.ErrInvalidSchema))
}

func TestHighlighted(t *testing.T) {
	tbl := table.New("Order No.", "Status", "Doc. Sent Date", "Return Days")
	tbl.Append(table.Row{"Order No.": "P-24/001 <x>", "Status": "Submitted", "Doc. Sent Date": "01-01-2025", "Return Days": 20})

	out, err := Highlighted(tbl)
	require.NoError(t, err)
	html := string(out)
	require.Contains(t, html, `<b><span style="color:red">20</span></b>`)
	require.Contains(t, html, "#B1E1B9")
	require.Contains(t, html, "P-24/001 &lt;x&gt;")
	require.Contains(t, html, "#6678AF")
	require.False(t, strings.Contains(html, "ZgotmplZ"))
}

func TestImportColorsStatuses(t *testing.T) {
	tbl := table.New("Doc. Cliente", "Estado")
	tbl.Append(table.Row{"Doc. Cliente": "D-1", "Estado": "Rechazado"})

	out, err := Import(tbl)
	require.NoError(t, err)
	require.Contains(t, string(out), "font-weight: bold; background-color: #FFA19A;")
}
