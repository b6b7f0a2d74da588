package excel

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"
)

// Sheet names of a monitoring report, in write order.
const (
	SheetSent         = "ENVIADOS"
	SheetReturned     = "DEVOLUCIONES"
	SheetCritical     = "CRÍTICOS"
	SheetCritical15   = "CRÍTICOS +15d"
	SheetNotSent      = "SIN ENVIAR"
	SheetAll          = "ALL DOC."
	SheetStatusGlobal = "STATUS GLOBAL"
)

var monitoringTabColors = map[string]string{
	SheetAll:          "6678AF",
	SheetSent:         "00D25F",
	SheetReturned:     "FFA19A",
	SheetCritical:     "DBB054",
	SheetCritical15:   "FF7F50",
	SheetNotSent:      "FFFF66",
	SheetStatusGlobal: "B1E1B9",
}

var statusFills = map[string]string{
	"Rechazado":    "FFA19A",
	"Com. Menores": "FFE5AD",
	"Com. Mayores": "DBB054",
	"Comentado":    "F79646",
	"Enviado":      "B1E1B9",
	"Sin Enviar":   "FFFFAB",
	"Información":  "FFFF46",
	"HOLD":         "FF0909",
	"Aprobado":     "00D25F",
}

var responsibleFonts = map[string]string{
	"SS":    "262626",
	"CCH":   "1F1F1F",
	"JM":    "2C8A6A",
	"JV":    "006B95",
	"EC":    "B31274",
	"ES":    "5A0DA0",
	"JP":    "00458F",
	"AC":    "3F0075",
	"LB":    "176DD1",
	"RM":    "228B22",
	"RP":    "1B365D",
	"EC/SS": "1F7A1F",
}

var chartStatuses = []struct {
	name  string
	color string
}{
	{"Aprobado", "00B350"},
	{"Com. Mayores", "C59B3F"},
	{"Com. Menores", "FFCF7F"},
	{"Enviado", "5566A0"},
	{"Rechazado", "FF8273"},
	{"Sin Enviar", "FFEF7F"},
}

// MonitoringStyler formats every sheet of a monitoring report, colors the
// tabs and adds the per-order status chart to STATUS GLOBAL.
type MonitoringStyler struct{}

var monitoringDateColumns = []string{"Fecha", "Fecha Pedido", "Fecha Prevista", "Fecha Dev. Doc.", "Fecha Env. Doc.", "Fecha Doc."}

func monitoringRules() []cellRule {
	return []cellRule{
		func(col, value string, s *cellStyle) {
			if col != "Estado" {
				return
			}
			if fill, ok := statusFills[value]; ok {
				s.fill = fill
				switch value {
				case "HOLD":
					s.font, s.bold = colorRed, true
				case "Aprobado":
					s.font, s.bold = colorBlack, true
				}
			}
		},
		func(col, value string, s *cellStyle) {
			if col != "Responsable" && col != "Repsonsable" {
				return
			}
			if font, ok := responsibleFonts[value]; ok {
				s.font, s.bold = font, true
			}
		},
		func(col, value string, s *cellStyle) {
			switch col {
			case "Crítico":
				if value == "Sí" {
					s.font, s.bold = colorRed, true
				}
			case "Info/Review":
				if value == "R" {
					s.font, s.bold = colorRed, true
				} else if value == "I" {
					s.font, s.bold = colorGrey, true
				}
			case "Días Envío":
				if n, ok := number(value); ok && n == 15 {
					s.font, s.bold = colorGrey, true
				}
			case "Días Devolución":
				if n, ok := number(value); ok && n > 15 {
					s.font, s.bold = colorRed, true
				}
			}
		},
	}
}

func (MonitoringStyler) Apply(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cache := &styleCache{f: f, ids: map[cellStyle]int{}}
	opts := sheetOptions{dateColumns: monitoringDateColumns, widthPad: 5, rules: monitoringRules()}
	for _, sheet := range f.GetSheetList() {
		if err := styleSheet(f, cache, sheet, opts); err != nil {
			return fmt.Errorf("style %s: %w", sheet, err)
		}
		if color, ok := monitoringTabColors[sheet]; ok {
			if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{TabColorRGB: strPtr(color)}); err != nil {
				return err
			}
		}
		if sheet == SheetReturned {
			if err := highlightOverdue(f, sheet); err != nil {
				return err
			}
		}
	}
	if slices.Contains(f.GetSheetList(), SheetStatusGlobal) {
		if err := addStatusChart(f, SheetStatusGlobal); err != nil {
			return err
		}
	}
	return f.Save()
}

// highlightOverdue fills whole rows whose Días Devolución exceeds 15 days.
func highlightOverdue(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return err
	}
	idx := columnIndex(rows[0], "Días Devolución")
	if idx < 0 {
		return nil
	}
	col, _ := excelize.ColumnNumberToName(idx + 1)
	format, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return err
	}
	ref := "A2:" + lastCell(len(rows[0]), len(rows))
	return f.SetConditionalFormat(sheet, ref, []excelize.ConditionalFormatOptions{
		{Type: "formula", Criteria: fmt.Sprintf("$%s2>15", col), Format: &format},
	})
}

func addStatusChart(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return err
	}
	header := rows[0]
	last := len(rows)
	quoted := "'" + sheet + "'"

	var series []excelize.ChartSeries
	for _, st := range chartStatuses {
		idx := columnIndex(header, st.name)
		if idx < 0 {
			continue
		}
		col, _ := excelize.ColumnNumberToName(idx + 1)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", quoted, col),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", quoted, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", quoted, col, col, last),
			Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{st.color}},
		})
	}
	if len(series) == 0 {
		return nil
	}
	return f.AddChart(sheet, "J3", &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Estado por Pedido"}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Nº Pedido"}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Nº Documentos"}}},
		Legend: excelize.ChartLegend{Position: "right"},
		Dimension: excelize.ChartDimension{
			Width:  870,
			Height: 480,
		},
	})
}

// OVRStyler formats an OVR workbook: base styling plus status fills.
type OVRStyler struct{}

func (OVRStyler) Apply(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cache := &styleCache{f: f, ids: map[cellStyle]int{}}
	opts := sheetOptions{
		dateColumns: []string{"Fecha INICIAL", "Fecha FIN", "Fecha Doc."},
		widthPad:    3,
		rules:       monitoringRules()[:1],
	}
	for _, sheet := range f.GetSheetList() {
		if err := styleSheet(f, cache, sheet, opts); err != nil {
			return fmt.Errorf("style %s: %w", sheet, err)
		}
	}
	return f.Save()
}
