package reporting

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"docucontrol/internal"
	"docucontrol/internal/config"
	"docucontrol/internal/excel"
	"docucontrol/internal/logger"
	"docucontrol/internal/lookup"
	"docucontrol/internal/mailer"
	"docucontrol/internal/storage"
	"docucontrol/internal/table"
	"docucontrol/internal/util"
)

// Run log kinds.
const (
	KindMonitoring   = "monitoring"
	KindReclamations = "reclamations"
	KindOVRSimple    = "ovr_simple"
	KindOVRUnion     = "ovr_union"
)

// SheetOVR is the only sheet of an OVR workbook.
const SheetOVR = "OVR"

// MonitoringFile is the report name for ref, from a template holding {date}.
func MonitoringFile(name string, ref time.Time) string {
	return strings.ReplaceAll(name, "{date}", util.FormatDate(ref))
}

type MonitoringService struct {
	db     *storage.DB
	cfg    config.Config
	lookup *lookup.Tables
}

func NewMonitoringService(db *storage.DB, cfg config.Config, lt *lookup.Tables) *MonitoringService {
	return &MonitoringService{db: db, cfg: cfg, lookup: lt}
}

// Run builds the monitoring workbook for ref and returns its path.
func (s *MonitoringService) Run(ctx context.Context, ref time.Time) (string, error) {
	erp, err := excel.ReadTable(filepath.Join(s.cfg.DataDir, s.cfg.ERPFile))
	if err != nil {
		return "", err
	}
	consulta, err := excel.ReadTable(filepath.Join(s.cfg.DataDir, s.cfg.ConsultaFile))
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bundle, err := BuildMonitoring(erp, consulta, ref, s.lookup)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.cfg.OutputDir, MonitoringFile(s.cfg.MonitoringName, ref))
	if _, err := excel.Write(path, bundle.Sheets()...); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := (excel.MonitoringStyler{}).Apply(path); err != nil {
		return "", &internal.ReportError{Path: path, Err: err}
	}

	if err := record(s.db, KindMonitoring, ref, path, bundle.All.Len()); err != nil {
		return "", err
	}
	logger.Log.WithFields(logrus.Fields{
		"report":   KindMonitoring,
		"sent":     bundle.Sent.Len(),
		"returned": bundle.Returned.Len(),
		"critical": bundle.Critical.Len() + bundle.CriticalLate.Len(),
		"not_sent": bundle.NotSent.Len(),
		"path":     path,
	}).Info("monitoring report written")
	return path, nil
}

type ReclamationService struct {
	db     *storage.DB
	cfg    config.Config
	lookup *lookup.Tables
	mailer mailer.Mailer
}

func NewReclamationService(db *storage.DB, cfg config.Config, lt *lookup.Tables, m mailer.Mailer) *ReclamationService {
	return &ReclamationService{db: db, cfg: cfg, lookup: lt, mailer: m}
}

// Generate reads the sent segment of the monitoring report for date and
// groups it. With send set every group is handed to the mailer.
func (s *ReclamationService) Generate(ctx context.Context, date time.Time, send bool) ([]Reclamation, error) {
	path := filepath.Join(s.cfg.OutputDir, MonitoringFile(s.cfg.MonitoringName, date))
	sent, err := excel.ReadSheet(path, excel.SheetSent)
	if err != nil {
		return nil, err
	}
	groups, err := GroupReclamations(sent)
	if err != nil {
		return nil, err
	}

	if send {
		for _, g := range groups {
			if err := s.mailer.Compose(ctx, s.message(g)); err != nil {
				return nil, fmt.Errorf("compose %s: %w", g.Prefix, err)
			}
		}
	}

	rows := 0
	for _, g := range groups {
		rows += g.Table.Len()
	}
	if err := record(s.db, KindReclamations, date, path, rows); err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{"report": KindReclamations, "groups": len(groups), "rows": rows, "sent": send}).Info("reclamations generated")
	return groups, nil
}

// message addresses a reclamation to the responsible of its order, or to the
// documentation group when the order has none.
func (s *ReclamationService) message(g Reclamation) mailer.Message {
	to := lookup.GroupTo
	if addr, ok := s.lookup.Responsible(g.Prefix); ok {
		to = addr
	}
	return mailer.Message{
		Subject: g.Subject,
		HTML:    g.HTML,
		To:      []string{to},
		CC:      []string{lookup.GroupCC},
	}
}

type OVRService struct {
	db  *storage.DB
	cfg config.Config
	Now func() time.Time
}

func NewOVRService(db *storage.DB, cfg config.Config) *OVRService {
	return &OVRService{db: db, cfg: cfg, Now: time.Now}
}

// Simple writes OVR_Simple_{date}.xlsx from the ERP extract.
func (s *OVRService) Simple(ctx context.Context) (string, error) {
	erp, err := excel.ReadTable(filepath.Join(s.cfg.DataDir, s.cfg.ERPFile))
	if err != nil {
		return "", err
	}
	out, err := SimpleOVR(erp)
	if err != nil {
		return "", err
	}
	return s.write(ctx, KindOVRSimple, "OVR_Simple_", out)
}

// Union writes OVR_Report_Union_{date}.xlsx from the ERP and tag extracts.
func (s *OVRService) Union(ctx context.Context) (string, error) {
	erp, err := excel.ReadTable(filepath.Join(s.cfg.DataDir, s.cfg.ERPFile))
	if err != nil {
		return "", err
	}
	tags, err := excel.ReadTable(filepath.Join(s.cfg.DataDir, s.cfg.TagsFile))
	if err != nil {
		return "", err
	}
	out, err := UnionOVR(erp, tags)
	if err != nil {
		return "", err
	}
	return s.write(ctx, KindOVRUnion, "OVR_Report_Union_", out)
}

func (s *OVRService) write(ctx context.Context, kind, prefix string, t *table.Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := s.Now()
	path := filepath.Join(s.cfg.OutputDir, prefix+util.FormatDate(now)+".xlsx")
	if _, err := excel.Write(path, excel.Sheet{Name: SheetOVR, Table: t}); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := (excel.OVRStyler{}).Apply(path); err != nil {
		return "", &internal.ReportError{Path: path, Err: err}
	}
	if err := record(s.db, kind, now, path, t.Len()); err != nil {
		return "", err
	}
	logger.Log.WithFields(logrus.Fields{"report": kind, "rows": t.Len(), "path": path}).Info("ovr report written")
	return path, nil
}

func record(db *storage.DB, kind string, ref time.Time, path string, rows int) error {
	if db == nil {
		return nil
	}
	return db.InsertReportRun(internal.ReportRun{
		ID:            uuid.NewString(),
		Kind:          kind,
		ReferenceDate: ref,
		OutputPath:    path,
		Rows:          rows,
	})
}
