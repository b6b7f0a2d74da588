package htmltable

import (
	"bytes"
	"html/template"
	"strings"

	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

const (
	headerCSS = "background-color: #6678AF; color: #FFFFFF; text-align: center; font-size: 14px; font-weight: bold;"
	cellCSS   = "background-color: #D4DCF4; color: #000000; text-align: left; font-size: 14px;"
)

type cell struct {
	Style   template.CSS
	Content template.HTML
}

type view struct {
	HeaderStyle template.CSS
	Header      []string
	Rows        [][]cell
}

var tmpl = template.Must(template.New("table").Parse(`<table border="1" style="border-collapse: collapse;">
<thead><tr>{{range .Header}}<th style="{{$.HeaderStyle}}">{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td style="{{.Style}}">{{.Content}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
`))

// styler decides the css and inner html of one cell.
type styler func(col string, v any) (string, template.HTML)

func render(t *table.Table, headerStyle string, style styler) (template.HTML, error) {
	v := view{HeaderStyle: template.CSS(headerStyle), Header: t.Columns}
	for _, r := range t.Rows {
		row := make([]cell, 0, len(t.Columns))
		for _, c := range t.Columns {
			css, content := style(c, r[c])
			row = append(row, cell{Style: template.CSS(css), Content: content})
		}
		v.Rows = append(v.Rows, row)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func escaped(v any) template.HTML {
	return template.HTML(template.HTMLEscapeString(util.Text(v)))
}

var reclaimStatusCSS = []struct {
	key string
	css string
}{
	{"rechazado", "background-color:#F8B4B4; color:#000;"},
	{"comentado", "background-color:#FFE599; color:#000;"},
	{"aprobado", "background-color:#00D25F; color:#000;"},
	{"submitted", "background-color:#B1E1B9; color:#000;"},
}

// Highlighted renders a reclamation table: Return Days in bold red on
// yellow, the sent date on yellow and the status colored by outcome.
func Highlighted(t *table.Table) (template.HTML, error) {
	statusCol := ""
	if t.Has("Status") {
		statusCol = "Status"
	} else if t.Has("Estado") {
		statusCol = "Estado"
	}
	return render(t, headerCSS, func(col string, v any) (string, template.HTML) {
		content := escaped(v)
		switch col {
		case "Return Days":
			content = `<span style="background-color: yellow"><b><span style="color:red">` + content + `</span></b></span>`
		case "Doc. Sent Date":
			content = `<span style="background-color: yellow">` + content + `</span>`
		case statusCol:
			lower := strings.ToLower(util.Text(v))
			for _, s := range reclaimStatusCSS {
				if strings.Contains(lower, s.key) {
					return s.css, content
				}
			}
			return "background-color:#D4DCF4; color:#000;", content
		}
		return cellCSS, content
	})
}

var importStatusCSS = map[string]string{
	"Rechazado":    "background-color: #FFA19A;",
	"Com. Menores": "background-color: #FFE5AD;",
	"Com. Mayores": "background-color: #DBB054;",
	"Comentado":    "background-color: #F79646;",
	"Aprobado":     "background-color: #00D25F;",
	"Eliminado":    "background-color: #FF0000;",
}

// Import renders the rows of a vendor return with review statuses in bold on
// their status color.
func Import(t *table.Table) (template.HTML, error) {
	return render(t, headerCSS, func(_ string, v any) (string, template.HTML) {
		if css, ok := importStatusCSS[util.Text(v)]; ok {
			return "color: #000000; font-weight: bold; " + css + " font-size: 14px;", escaped(v)
		}
		return cellCSS, escaped(v)
	})
}

// Info renders the small key/value header table of a return notification.
func Info(t *table.Table) (template.HTML, error) {
	header := strings.Replace(headerCSS, "font-size: 14px", "font-size: 15px", 1)
	return render(t, header, func(_ string, v any) (string, template.HTML) {
		return cellCSS, escaped(v)
	})
}
