package returns

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
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

// CombinedLogName is the per vendor workbook holding every logged return.
const CombinedLogName = "all_tr_combine.xlsx"

const receivedLayout = "02-01-2006 15:04:05"

// Service turns stored vendor notifications into summaries, internal mails
// and the combined returns log.
type Service struct {
	db      *storage.DB
	vendors []Vendor
	senders map[lookup.Vendor]string
	mailer  mailer.Mailer
	dir     string
	Now     func() time.Time
}

func NewService(db *storage.DB, cfg config.Config, lt *lookup.Tables, m mailer.Mailer) *Service {
	vendors := []Vendor{NewTR(lt), NewGAIA(lt), NewPRODOC(lt)}
	senders := map[lookup.Vendor]string{}
	for _, v := range vendors {
		senders[v.Name()] = cfg.SenderFor(string(v.Name()))
	}
	return &Service{db: db, vendors: vendors, senders: senders, mailer: m, dir: cfg.ReturnsDir, Now: time.Now}
}

type Outcome struct {
	EmailID     int
	Vendor      lookup.Vendor
	Rows        int
	SummaryPath string
	Skipped     bool
}

type BatchResult struct {
	Processed int
	Skipped   int
	Failed    int
	Rows      int
}

// ProcessPending handles fetched messages in arrival order. only limits the
// batch to one vendor when non-empty. A failing message is marked failed and
// the batch goes on.
func (s *Service) ProcessPending(ctx context.Context, limit int, only lookup.Vendor) (BatchResult, error) {
	pending, err := s.db.ListEmailsByStatus(storage.EmailFetched, limit)
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	for _, email := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if only != "" {
			if v := s.vendorFor(email.Sender); v == nil || v.Name() != only {
				continue
			}
		}
		out, err := s.ProcessEmail(ctx, email)
		if err != nil {
			res.Failed++
			logger.Log.WithFields(logrus.Fields{"email": email.ID, "subject": email.Subject}).Errorf("return processing failed: %v", err)
			if uerr := s.db.UpdateEmailStatus(email.ID, storage.EmailFailed, email.Vendor); uerr != nil {
				return res, uerr
			}
			continue
		}
		if out.Skipped {
			res.Skipped++
			continue
		}
		res.Processed++
		res.Rows += out.Rows
	}
	return res, nil
}

func (s *Service) ProcessEmail(ctx context.Context, email internal.EmailRow) (Outcome, error) {
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return Outcome{}, err
	}
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Outcome{}, fmt.Errorf("parse message: %w", err)
	}

	sender := util.FirstNonEmpty(env.GetHeader("From"), email.Sender)
	v := s.vendorFor(sender)
	if v == nil {
		logger.Log.WithField("sender", sender).Debug("not a vendor notification")
		return Outcome{EmailID: email.ID, Skipped: true}, s.db.UpdateEmailStatus(email.ID, storage.EmailSkipped, "")
	}
	vendor := string(v.Name())

	subject := util.NormalizeSpaces(util.FirstNonEmpty(env.GetHeader("Subject"), email.Subject))
	in := Input{
		Subject:     subject,
		ReceivedAt:  s.received(email.ReceivedAt, env.GetHeader("Date")).Format(receivedLayout),
		Transmittal: v.ExtractTransmittal(subject),
	}
	if in.Transmittal == nil {
		in.Transmittal = transmittalFromAttachments(v, env.Attachments)
	}

	rawTable, err := v.ParseTable(env.HTML)
	if err != nil {
		return Outcome{}, err
	}
	result, err := v.Transform(rawTable, in)
	if err != nil {
		return Outcome{}, err
	}

	now := s.Now()
	summary := filepath.Join(s.dir, vendor, util.FormatDate(now), "RESUMEN - "+util.SanitizeSubject(subject)+".xlsx")
	if err := writeListing(summary, "RESUMEN", ToTable(result.Rows, v.Columns())); err != nil {
		return Outcome{}, err
	}

	msg, err := Notification(v, result, subject, summary, now)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.mailer.Compose(ctx, msg); err != nil {
		return Outcome{}, fmt.Errorf("compose notification: %w", err)
	}

	if err := s.db.ReplaceReturns(email.ID, vendor, result.Rows); err != nil {
		return Outcome{}, err
	}
	if _, err := s.ExportLog(v); err != nil {
		return Outcome{}, err
	}
	if err := s.db.UpdateEmailStatus(email.ID, storage.EmailProcessed, vendor); err != nil {
		return Outcome{}, err
	}

	logger.Log.WithFields(logrus.Fields{"vendor": vendor, "rows": len(result.Rows), "summary": summary}).Info("return processed")
	return Outcome{EmailID: email.ID, Vendor: v.Name(), Rows: len(result.Rows), SummaryPath: summary}, nil
}

// ExportLog rewrites the combined workbook of v from the returns log.
func (s *Service) ExportLog(v Vendor) (string, error) {
	logged, err := s.db.ListReturns(string(v.Name()))
	if err != nil {
		return "", err
	}
	rows := make([]internal.DocumentRow, 0, len(logged))
	for _, lr := range logged {
		rows = append(rows, lr.Row)
	}
	path := filepath.Join(s.dir, string(v.Name()), CombinedLogName)
	return path, writeListing(path, "LOG", ToTable(rows, v.Columns()))
}

// Vendor returns the normalizer registered under name, case-insensitively.
func (s *Service) Vendor(name string) (Vendor, bool) {
	for _, v := range s.vendors {
		if strings.EqualFold(string(v.Name()), name) {
			return v, true
		}
	}
	return nil, false
}

func (s *Service) vendorFor(sender string) Vendor {
	sender = strings.ToLower(sender)
	for _, v := range s.vendors {
		addr := strings.ToLower(s.senders[v.Name()])
		if addr != "" && strings.Contains(sender, addr) {
			return v
		}
	}
	return nil
}

// received prefers the ledger timestamp, then the Date header, then now.
func (s *Service) received(ledger, header string) time.Time {
	if t, err := time.Parse(time.RFC3339, ledger); err == nil {
		return t
	}
	if t, err := mail.ParseDate(header); err == nil {
		return t
	}
	return s.Now()
}

func writeListing(path, sheet string, t *table.Table) error {
	if _, err := excel.Write(path, excel.Sheet{Name: sheet, Table: t}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := (excel.SummaryStyler{DateColumns: []string{internal.ColDate}}).Apply(path); err != nil {
		return &internal.ReportError{Path: path, Err: err}
	}
	return nil
}
