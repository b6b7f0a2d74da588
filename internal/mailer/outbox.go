package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docucontrol/internal/logger"
	"docucontrol/internal/util"
)

// Outbox writes each message as an .eml file, ready to be opened and sent
// from a desktop mail client.
type Outbox struct {
	Dir  string
	From string
	Now  func() time.Time
}

func NewOutbox(dir, from string) *Outbox {
	return &Outbox{Dir: dir, From: from, Now: time.Now}
}

func (o *Outbox) Compose(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := o.Now()
	raw, err := Build(o.From, msg, now)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s %s.eml", now.Format("20060102-150405.000"), util.SanitizeSubject(msg.Subject))
	path := filepath.Join(o.Dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return err
	}
	logger.Log.WithField("path", path).Info("message written to outbox")
	return nil
}
