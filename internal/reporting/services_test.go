package reporting

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docucontrol/internal"
	"docucontrol/internal/config"
	"docucontrol/internal/excel"
	"docucontrol/internal/lookup"
	"docucontrol/internal/mailer"
	"docucontrol/internal/storage"
	"docucontrol/internal/table"
)

type recordingMailer struct {
	sent []mailer.Message
}

func (m *recordingMailer) Compose(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func testEnv(t *testing.T) (config.Config, *storage.DB) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return config.Config{
		DataDir:        filepath.Join(dir, "input"),
		OutputDir:      filepath.Join(dir, "output"),
		MonitoringName: "monitoring_report_{date}.xlsx",
		ERPFile:        "data_erp.xlsx",
		ConsultaFile:   "consulta_erp.xlsx",
		TagsFile:       "data_tags.xlsx",
	}, db
}

func mkXLSX(t *testing.T, path string, tb *table.Table) {
	t.Helper()
	_, err := excel.Write(path, excel.Sheet{Name: "Sheet1", Table: tb})
	require.NoError(t, err)
}

func TestMonitoringAndReclamationServices(t *testing.T) {
	cfg, db := testEnv(t)
	mkXLSX(t, filepath.Join(cfg.DataDir, cfg.ERPFile), erpFixture())
	mkXLSX(t, filepath.Join(cfg.DataDir, cfg.ConsultaFile), consultaFixture())

	path, err := NewMonitoringService(db, cfg, lookup.Default()).Run(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.OutputDir, "monitoring_report_01-03-2024.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{
		excel.SheetSent, excel.SheetReturned, excel.SheetCritical, excel.SheetCritical15,
		excel.SheetNotSent, excel.SheetAll, excel.SheetStatusGlobal,
	}, f.GetSheetList())
	_ = f.Close()

	runs, err := db.ListReportRuns(KindMonitoring, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, 6, runs[0].Rows)
	require.Equal(t, path, runs[0].OutputPath)

	m := &recordingMailer{}
	groups, err := NewReclamationService(db, cfg, lookup.Default(), m).Generate(context.Background(), ref, true)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, "P-24/001", groups[0].Prefix)
	require.Equal(t, []any{20, 5}, groups[0].Table.Column(ColReturnDays))
	require.Equal(t, "4500001", groups[0].PO)

	require.Len(t, m.sent, 1)
	require.Equal(t, groups[0].Subject, m.sent[0].Subject)
	require.Equal(t, []string{lookup.GroupTo}, m.sent[0].To)
	require.Equal(t, []string{lookup.GroupCC}, m.sent[0].CC)
}

func TestReclamationsWithoutSending(t *testing.T) {
	cfg, db := testEnv(t)
	mkXLSX(t, filepath.Join(cfg.DataDir, cfg.ERPFile), erpFixture())
	mkXLSX(t, filepath.Join(cfg.DataDir, cfg.ConsultaFile), consultaFixture())
	_, err := NewMonitoringService(db, cfg, lookup.Default()).Run(context.Background(), ref)
	require.NoError(t, err)

	m := &recordingMailer{}
	groups, err := NewReclamationService(db, cfg, lookup.Default(), m).Generate(context.Background(), ref, false)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Empty(t, m.sent)
}

func TestServicesReportMissingInputs(t *testing.T) {
	cfg, db := testEnv(t)

	_, err := NewMonitoringService(db, cfg, lookup.Default()).Run(context.Background(), ref)
	require.True(t, errors.Is(err, internal.ErrInputNotFound))

	_, err = NewReclamationService(db, cfg, lookup.Default(), &recordingMailer{}).Generate(context.Background(), ref, false)
	require.True(t, errors.Is(err, internal.ErrInputNotFound))

	_, err = NewOVRService(db, cfg).Union(context.Background())
	require.True(t, errors.Is(err, internal.ErrInputNotFound))
}

func TestOVRService(t *testing.T) {
	cfg, db := testEnv(t)
	mkXLSX(t, filepath.Join(cfg.DataDir, cfg.ERPFile), ovrFixture())
	tags := table.New("TAG", ColTagCalc, ColTagDrawing)
	tags.Append(table.Row{"TAG": "FT-001", ColTagCalc: "EIP-1"})
	mkXLSX(t, filepath.Join(cfg.DataDir, cfg.TagsFile), tags)

	svc := NewOVRService(db, cfg)
	svc.Now = func() time.Time { return ref }

	simple, err := svc.Simple(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.OutputDir, "OVR_Simple_01-03-2024.xlsx"), simple)

	union, err := svc.Union(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.OutputDir, "OVR_Report_Union_01-03-2024.xlsx"), union)

	back, err := excel.ReadSheet(union, SheetOVR)
	require.NoError(t, err)
	require.Equal(t, 2, back.Len())
	require.Equal(t, "FT-001", back.Rows[0]["TAG"])

	runs, err := db.ListReportRuns(KindOVRUnion, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
