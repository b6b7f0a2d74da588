package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"docucontrol/internal"
)

// Email ledger statuses.
const (
	EmailFetched   = "fetched"
	EmailProcessed = "processed"
	EmailSkipped   = "skipped"
	EmailFailed    = "failed"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  vendor TEXT NOT NULL DEFAULT '',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);
CREATE INDEX IF NOT EXISTS idx_emails_status ON emails(status);

CREATE TABLE IF NOT EXISTS returns_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER NOT NULL,
  vendor TEXT NOT NULL,
  orderNumber TEXT,
  supplier TEXT NOT NULL,
  responsible TEXT,
  client TEXT NOT NULL,
  material TEXT,
  po TEXT,
  internalDoc TEXT,
  externalDoc TEXT,
  title TEXT,
  revision TEXT,
  clientRevision TEXT,
  status TEXT NOT NULL,
  docType TEXT NOT NULL,
  critical TEXT NOT NULL,
  transmittal TEXT,
  eventDate TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id)
);
CREATE INDEX IF NOT EXISTS idx_returns_vendor ON returns_log(vendor);

CREATE TABLE IF NOT EXISTS report_runs (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  referenceDate TEXT NOT NULL,
  outputPath TEXT NOT NULL,
  rows INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertEmail records a fetched message. A message seen before keeps its
// ledger status so processed mails are not picked up again.
func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

const emailColumns = `id, provider, messageId, subject, sender, receivedAt, hash, status, vendor, rawRef`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmail(s scanner) (internal.EmailRow, error) {
	var row internal.EmailRow
	err := s.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.Vendor, &row.RawRef)
	return row, err
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	row, err := scanEmail(d.conn.QueryRow(`SELECT `+emailColumns+` FROM emails WHERE provider = ? AND messageId = ?`, provider, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetEmailByID(id int) (*internal.EmailRow, error) {
	row, err := scanEmail(d.conn.QueryRow(`SELECT `+emailColumns+` FROM emails WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustEmailByProviderMessageID(provider, messageID string) (internal.EmailRow, error) {
	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, fmt.Errorf("email not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`SELECT `+emailColumns+` FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		row, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status, vendor string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, vendor = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, vendor, emailID)
	return err
}

// ReplaceReturns swaps the logged rows of one message for rows, so a
// reprocessed message never duplicates its documents.
func (d *DB) ReplaceReturns(emailID int, vendor string, rows []internal.DocumentRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM returns_log WHERE emailId = ?`, emailID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO returns_log (
  emailId, vendor, orderNumber, supplier, responsible, client, material, po,
  internalDoc, externalDoc, title, revision, clientRevision, status, docType,
  critical, transmittal, eventDate
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		var eventDate *string
		if !r.Date.IsZero() {
			s := r.Date.Format(time.RFC3339)
			eventDate = &s
		}
		if _, err := stmt.Exec(
			emailID, vendor, r.OrderNumber, r.Supplier, r.Responsible, r.Client, r.Material, r.PO,
			r.InternalDoc, r.ExternalDoc, r.Title, r.Revision, r.ClientRevision, string(r.Status), string(r.DocType),
			r.Critical, r.Transmittal, eventDate,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListReturns returns the logged rows of vendor in insertion order.
func (d *DB) ListReturns(vendor string) ([]internal.ReturnLogRow, error) {
	rows, err := d.conn.Query(`
SELECT emailId, vendor, orderNumber, supplier, responsible, client, material, po,
       internalDoc, externalDoc, title, revision, clientRevision, status, docType,
       critical, transmittal, eventDate
FROM returns_log WHERE vendor = ? ORDER BY id ASC
`, vendor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReturnLogRow
	for rows.Next() {
		var lr internal.ReturnLogRow
		var status, docType string
		var eventDate *string
		r := &lr.Row
		if err := rows.Scan(
			&lr.EmailID, &lr.Vendor, &r.OrderNumber, &r.Supplier, &r.Responsible, &r.Client, &r.Material, &r.PO,
			&r.InternalDoc, &r.ExternalDoc, &r.Title, &r.Revision, &r.ClientRevision, &status, &docType,
			&r.Critical, &r.Transmittal, &eventDate,
		); err != nil {
			return nil, err
		}
		r.Status = internal.Status(status)
		r.DocType = internal.DocType(docType)
		if eventDate != nil {
			if t, err := time.Parse(time.RFC3339, *eventDate); err == nil {
				r.Date = t
			}
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

func (d *DB) InsertReportRun(run internal.ReportRun) error {
	_, err := d.conn.Exec(`INSERT INTO report_runs (id, kind, referenceDate, outputPath, rows) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.ReferenceDate.Format(time.DateOnly), run.OutputPath, run.Rows)
	return err
}

// ListReportRuns returns the most recent runs of kind, newest first.
func (d *DB) ListReportRuns(kind string, limit int) ([]internal.ReportRun, error) {
	rows, err := d.conn.Query(`
SELECT id, kind, referenceDate, outputPath, rows FROM report_runs
WHERE kind = ? ORDER BY createdAt DESC, rowid DESC LIMIT ?
`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReportRun
	for rows.Next() {
		var run internal.ReportRun
		var ref string
		if err := rows.Scan(&run.ID, &run.Kind, &ref, &run.OutputPath, &run.Rows); err != nil {
			return nil, err
		}
		run.ReferenceDate, _ = time.Parse(time.DateOnly, ref)
		out = append(out, run)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
