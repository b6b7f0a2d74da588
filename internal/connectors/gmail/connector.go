package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"docucontrol/internal"
	"docucontrol/internal/config"
	"docucontrol/internal/util"
)

type Connector struct {
	service *gmail.Service
	query   string
}

func NewConnector(cfg config.Config) (*Connector, error) {
	svc, err := NewService(cfg, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, err
	}
	return &Connector{service: svc, query: senderQuery(cfg.TRSender, cfg.GAIASender, cfg.PRODOCSender)}, nil
}

// NewService builds a Gmail client from the refresh token in cfg.
func NewService(cfg config.Config, scopes ...string) (*gmail.Service, error) {
	if err := cfg.Require("GMAIL_CLIENT_ID", cfg.GmailClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_CLIENT_SECRET", cfg.GmailClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       scopes,
	}

	tokenSource := oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	return gmail.NewService(context.Background(), option.WithTokenSource(tokenSource))
}

// senderQuery restricts a listing to mail from the document platforms.
func senderQuery(senders ...string) string {
	var parts []string
	for _, s := range senders {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "from:(" + strings.Join(parts, " OR ") + ")"
}

// FetchInbox lists up to max vendor messages under label and downloads each
// one in raw form.
func (c *Connector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	listCall := c.service.Users.Messages.List("me").LabelIds(label).MaxResults(int64(max))
	if c.query != "" {
		listCall = listCall.Q(c.query)
	}
	listResp, err := listCall.Do()
	if err != nil {
		return nil, err
	}

	out := make([]internal.FetchedMailMessage, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		if ref.Id == "" {
			continue
		}
		resp, err := c.service.Users.Messages.Get("me", ref.Id).Format("raw").Do()
		if err != nil {
			return nil, err
		}
		if resp.Raw == "" {
			continue
		}
		raw, err := decodeBase64URL(resp.Raw)
		if err != nil {
			return nil, err
		}
		msg, err := fromRaw(ref.Id, raw, resp.InternalDate)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// fromRaw reads the ledger fields from the message headers. The Gmail id
// stands in for a missing Message-ID; internalDate, in epoch milliseconds,
// for an unreadable Date.
func fromRaw(id string, raw []byte, internalDate int64) (internal.FetchedMailMessage, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return internal.FetchedMailMessage{}, fmt.Errorf("parse gmail message %s: %w", id, err)
	}
	received := time.UnixMilli(internalDate)
	if t, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
		received = t
	} else if internalDate == 0 {
		received = time.Now()
	}
	return internal.FetchedMailMessage{
		Provider:   "gmail",
		MessageID:  util.FirstNonEmpty(env.GetHeader("Message-Id"), id),
		Subject:    env.GetHeader("Subject"),
		From:       env.GetHeader("From"),
		ReceivedAt: received.UTC().Format(time.RFC3339),
		Raw:        raw,
	}, nil
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}
