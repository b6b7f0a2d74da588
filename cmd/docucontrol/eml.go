package main

import (
	"bytes"
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"github.com/jhillyerd/enmime"

	"docucontrol/internal"
)

// fileMessage reads the headers of a saved message so it can go through the
// ledger. The file name stands in for the provider message id.
func fileMessage(path string, raw []byte) (internal.FetchedMailMessage, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return internal.FetchedMailMessage{}, fmt.Errorf("parse %s: %w", path, err)
	}
	msg := internal.FetchedMailMessage{
		Provider:  "file",
		MessageID: filepath.Base(path),
		Subject:   env.GetHeader("Subject"),
		From:      env.GetHeader("From"),
		Raw:       raw,
	}
	if id := env.GetHeader("Message-Id"); id != "" {
		msg.MessageID = id
	}
	if d, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
		msg.ReceivedAt = d.UTC().Format(time.RFC3339)
	}
	return msg, nil
}
