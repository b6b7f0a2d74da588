package mailer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/require"

	"docucontrol/internal/config"
)

func TestAddresses(t *testing.T) {
	out := Addresses(";santos@eipsa.es;", "", ";jesus@eipsa.es;Santos@eipsa.es; ana@eipsa.es ;")
	require.Equal(t, []string{"santos@eipsa.es", "jesus@eipsa.es", "ana@eipsa.es"}, out)
}

func TestOutboxWritesParsableMessage(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "RESUMEN.xlsx")
	require.NoError(t, os.WriteFile(attachment, []byte("xlsx"), 0o644))

	box := NewOutbox(filepath.Join(dir, "outbox"), "docs@eipsa.es")
	box.Now = func() time.Time { return time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC) }
	err := box.Compose(context.Background(), Message{
		Subject:     "DEV: P-24/001 [TR: return]",
		HTML:        "<p>Buenos días</p>",
		To:          []string{";to@eipsa.es;", ";ana@eipsa.es;"},
		CC:          []string{";cc@eipsa.es;"},
		Attachments: []string{attachment},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "outbox"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Name(), "DEV P-24001 [TR return]")

	raw, err := os.ReadFile(filepath.Join(dir, "outbox", entries[0].Name()))
	require.NoError(t, err)
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, "DEV: P-24/001 [TR: return]", env.GetHeader("Subject"))
	require.Contains(t, env.GetHeader("To"), "ana@eipsa.es")
	require.Contains(t, env.GetHeader("Cc"), "cc@eipsa.es")
	require.Contains(t, env.HTML, "Buenos días")
	require.Len(t, env.Attachments, 1)
	require.Equal(t, "RESUMEN.xlsx", env.Attachments[0].FileName)
}

func TestOutboxHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewOutbox(t.TempDir(), "docs@eipsa.es").Compose(ctx, Message{Subject: "x", To: []string{"a@b.c"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewPicksMailer(t *testing.T) {
	m, err := New(config.Config{MailOutboxDir: t.TempDir(), MailFrom: "docs@eipsa.es"})
	require.NoError(t, err)
	require.IsType(t, &Outbox{}, m)

	_, err = New(config.Config{Mailer: "pigeon"})
	require.Error(t, err)
}
