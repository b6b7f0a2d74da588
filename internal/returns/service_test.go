package returns

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docucontrol/internal"
	"docucontrol/internal/config"
	"docucontrol/internal/lookup"
	"docucontrol/internal/mailer"
	"docucontrol/internal/storage"
	"docucontrol/internal/util"
)

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Compose(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	db     *storage.DB
	svc    *Service
	mail   *recordingMailer
	dir    string
	rawDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		ReturnsDir:   filepath.Join(dir, "returns"),
		TRSender:     "egesdoc@grupotr.es",
		GAIASender:   "gaia-tpplm-prod@ten.com",
		PRODOCSender: "Prodoc.postmaster@woodplc.com",
	}
	m := &recordingMailer{}
	svc := NewService(db, cfg, lookup.Default(), m)
	svc.Now = func() time.Time { return time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC) }
	return &fixture{db: db, svc: svc, mail: m, dir: dir, rawDir: filepath.Join(dir, "raw")}
}

// store builds a message and records it in the ledger the way the fetch
// service does.
func (f *fixture) store(t *testing.T, id, from, subject, html string) internal.EmailRow {
	t.Helper()
	part, err := enmime.Builder().
		From("", from).
		To("", "docs@eipsa.es").
		Subject(subject).
		HTML([]byte(html)).
		Build()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, part.Encode(&buf))

	sum := sha256.Sum256(buf.Bytes())
	hash := hex.EncodeToString(sum[:])
	require.NoError(t, os.MkdirAll(f.rawDir, 0o755))
	path := filepath.Join(f.rawDir, hash+".eml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	row, err := f.db.UpsertEmail("imap", id, subject, from, "2024-01-05T13:45:00Z", hash, path, storage.EmailFetched)
	require.NoError(t, err)
	return row
}

func trNotification() string {
	return notification(5, []string{"Vendor Number", "TR Number", "Title", "Vendor Rev", "TR Rev", "Return Status"},
		[]string{"CER-22-003-S09", "TR-0001", "Material cert", "0", "A", "A - REJECTED"},
		[]string{"PLG-22-003", "TR-0002", "GA drawing", "1", "B", "C - REVIEWED WITH MINOR COMMENTS"},
	)
}

func TestProcessPendingTR(t *testing.T) {
	f := newFixture(t)
	subject := "TR Return 12345-ABC-001 PO 1015012910"
	email := f.store(t, "<tr-1>", "egesdoc@grupotr.es", subject, trNotification())

	res, err := f.svc.ProcessPending(context.Background(), 10, "")
	require.NoError(t, err)
	require.Equal(t, BatchResult{Processed: 1, Rows: 2}, res)

	summary := filepath.Join(f.dir, "returns", "TR", "06-01-2024", "RESUMEN - "+subject+".xlsx")
	xf, err := excelize.OpenFile(summary)
	require.NoError(t, err)
	rows, err := xf.GetRows("RESUMEN")
	require.NoError(t, err)
	_ = xf.Close()
	require.Len(t, rows, 3)
	require.Equal(t, NewTR(lookup.Default()).Columns(), rows[0])

	combined := filepath.Join(f.dir, "returns", "TR", CombinedLogName)
	_, err = os.Stat(combined)
	require.NoError(t, err)

	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	require.Equal(t, "DEV: P-22/003 ["+subject+"]", msg.Subject)
	require.Equal(t, []string{lookup.GroupTo, lookup.AddrAnaCalvo}, msg.To)
	require.Equal(t, []string{lookup.GroupCC, lookup.AddrJorgeValtierra}, msg.CC)
	require.Equal(t, []string{summary}, msg.Attachments)
	require.Contains(t, msg.HTML, "HAY QUE SUBIRLO ANTES DEL: 21-01-2024")
	require.Contains(t, msg.HTML, "BAPCO")
	require.Contains(t, msg.HTML, "Rechazado")

	logged, err := f.db.ListReturns("TR")
	require.NoError(t, err)
	require.Len(t, logged, 2)
	require.Equal(t, "12345-ABC-001", util.Deref(logged[0].Row.Transmittal))

	got, err := f.db.GetEmailByID(email.ID)
	require.NoError(t, err)
	require.Equal(t, storage.EmailProcessed, got.Status)
	require.Equal(t, "TR", got.Vendor)

	again, err := f.svc.ProcessPending(context.Background(), 10, "")
	require.NoError(t, err)
	require.Equal(t, BatchResult{}, again)
}

func TestProcessPendingSkipsAndIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	stranger := f.store(t, "<x>", "someone@example.com", "Hello", "<p>hi</p>")
	broken := f.store(t, "<gaia-bad>", "gaia-tpplm-prod@ten.com", "GAIA-T-1 Code 1", "<p>no tables</p>")
	good := f.store(t, "<gaia-ok>", "GAIA <gaia-tpplm-prod@ten.com>", "Transmittal GAIA-T-0001 Code 2 returned",
		notification(7, []string{"Reference", "Doc. Title", "Doc. Rev."}, []string{"214726C-24-091-DWG-0001", "P&amp;ID", "2"}))

	res, err := f.svc.ProcessPending(context.Background(), 10, "")
	require.NoError(t, err)
	require.Equal(t, BatchResult{Processed: 1, Skipped: 1, Failed: 1, Rows: 1}, res)

	for id, status := range map[int]string{stranger.ID: storage.EmailSkipped, broken.ID: storage.EmailFailed, good.ID: storage.EmailProcessed} {
		row, err := f.db.GetEmailByID(id)
		require.NoError(t, err)
		require.Equal(t, status, row.Status)
	}
	require.Len(t, f.mail.sent, 1)
	require.Equal(t, []string{lookup.GroupTo, ""}, f.mail.sent[0].To)
}

func TestProcessPendingVendorFilter(t *testing.T) {
	f := newFixture(t)
	f.store(t, "<tr-1>", "egesdoc@grupotr.es", "TR Return 12345-ABC-001 PO 1015012910", trNotification())

	res, err := f.svc.ProcessPending(context.Background(), 10, lookup.VendorPRODOC)
	require.NoError(t, err)
	require.Equal(t, BatchResult{}, res)

	pending, err := f.db.ListEmailsByStatus(storage.EmailFetched, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestMailerFailureMarksMessageFailed(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("smtp down")
	email := f.store(t, "<tr-1>", "egesdoc@grupotr.es", "TR Return 12345-ABC-001 PO 1015012910", trNotification())

	res, err := f.svc.ProcessPending(context.Background(), 10, "")
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)

	row, err := f.db.GetEmailByID(email.ID)
	require.NoError(t, err)
	require.Equal(t, storage.EmailFailed, row.Status)
}

func TestVendorLookupByName(t *testing.T) {
	f := newFixture(t)
	v, ok := f.svc.Vendor("prodoc")
	require.True(t, ok)
	require.Equal(t, lookup.VendorPRODOC, v.Name())
	_, ok = f.svc.Vendor("acme")
	require.False(t, ok)
}

func TestTransmittalFromAttachmentsSkipsUnreadable(t *testing.T) {
	v := NewPRODOC(lookup.Default())
	parts := []*enmime.Part{
		{FileName: "notes.txt", Content: []byte("TL-2401AB-VDC-0012")},
		{FileName: "cover.PDF", Content: []byte("not a pdf")},
	}
	require.Nil(t, transmittalFromAttachments(v, parts))
}
