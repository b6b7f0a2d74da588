package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"docucontrol/internal/config"
)

// Message is an outgoing notification. To and CC hold ';'-separated
// address groups as they come from the lookup tables.
type Message struct {
	Subject     string
	HTML        string
	To          []string
	CC          []string
	Attachments []string
}

// Mailer hands a message to whatever delivers it. Delivery is not confirmed.
type Mailer interface {
	Compose(ctx context.Context, msg Message) error
}

// New picks the mailer named by MAILER: "outbox" (default) or "gmail".
func New(cfg config.Config) (Mailer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mailer)) {
	case "", "outbox":
		return NewOutbox(cfg.MailOutboxDir, cfg.MailFrom), nil
	case "gmail":
		return NewGmailDrafts(cfg)
	default:
		return nil, fmt.Errorf("unsupported mailer: %s", cfg.Mailer)
	}
}

// Addresses flattens ';'-separated groups into unique addresses, keeping
// first appearance order.
func Addresses(groups ...string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range groups {
		for _, addr := range strings.Split(g, ";") {
			addr = strings.TrimSpace(addr)
			if addr == "" {
				continue
			}
			key := strings.ToLower(addr)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}

// Build encodes msg as a MIME message sent from from.
func Build(from string, msg Message, now time.Time) ([]byte, error) {
	b := enmime.Builder().
		From("", from).
		Subject(msg.Subject).
		Date(now).
		HTML([]byte(msg.HTML))
	for _, addr := range Addresses(msg.To...) {
		b = b.To("", addr)
	}
	for _, addr := range Addresses(msg.CC...) {
		b = b.CC("", addr)
	}
	for _, path := range msg.Attachments {
		b = b.AddFileAttachment(path)
	}

	part, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build message %q: %w", msg.Subject, err)
	}
	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode message %q: %w", msg.Subject, err)
	}
	return buf.Bytes(), nil
}
