package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docucontrol/internal"
	"docucontrol/internal/storage"
)

// MailStoreService keeps every fetched message as a content addressed .eml
// file, one folder per month received, and records it in the mail ledger.
type MailStoreService struct {
	db         *storage.DB
	rawMailDir string
}

func NewMailStoreService(db *storage.DB, rawMailDir string) *MailStoreService {
	return &MailStoreService{db: db, rawMailDir: rawMailDir}
}

// Store writes msg unless the same content is already on disk and upserts
// its ledger row. A message seen before keeps its processing status.
func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.EmailRow, error) {
	if len(msg.Raw) == 0 {
		return internal.EmailRow{}, fmt.Errorf("message %s has no content", msg.MessageID)
	}
	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])

	dir := filepath.Join(s.rawMailDir, monthDir(msg.ReceivedAt))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return internal.EmailRow{}, err
	}
	rawPath := filepath.Join(dir, hash+".eml")
	if _, err := os.Stat(rawPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.EmailRow{}, err
		}
	}

	return s.db.UpsertEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, storage.EmailFetched)
}

func monthDir(receivedAt string) string {
	if t, err := time.Parse(time.RFC3339, receivedAt); err == nil {
		return t.UTC().Format("2006-01")
	}
	return "undated"
}
