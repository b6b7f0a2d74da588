package mailer

import (
	"context"
	"encoding/base64"
	"time"

	"google.golang.org/api/gmail/v1"

	"docucontrol/internal/config"
	gmailconnector "docucontrol/internal/connectors/gmail"
	"docucontrol/internal/logger"
)

// GmailDrafts stores each message as a draft in the authorised mailbox.
type GmailDrafts struct {
	service *gmail.Service
	from    string
}

func NewGmailDrafts(cfg config.Config) (*GmailDrafts, error) {
	svc, err := gmailconnector.NewService(cfg, gmail.GmailComposeScope)
	if err != nil {
		return nil, err
	}
	return &GmailDrafts{service: svc, from: cfg.MailFrom}, nil
}

func (g *GmailDrafts) Compose(ctx context.Context, msg Message) error {
	raw, err := Build(g.from, msg, time.Now())
	if err != nil {
		return err
	}
	draft := &gmail.Draft{Message: &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}}
	created, err := g.service.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return err
	}
	logger.Log.WithField("draft", created.Id).Info("gmail draft created")
	return nil
}
