package gmail

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/inboxpilot/inboxpilot/internal/mailbox"
)

// Credentials carries a user's decrypted OAuth tokens.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// ClientConfig holds the OAuth app identity shared by all users.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Client implements mailbox.Mailbox against the Gmail REST API. One client
// is built per user per sync run; the token source refreshes the access
// token transparently when it has expired.
type Client struct {
	svc    *gmailapi.Service
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg ClientConfig, creds Credentials, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	})

	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("build gmail service: %w", err)
	}
	return &Client{svc: svc, logger: logger}, nil
}

func (c *Client) ListMessageIDs(ctx context.Context, labelID string, max int) ([]string, error) {
	res, err := c.svc.Users.Messages.List("me").
		LabelIds(labelID).
		MaxResults(int64(max)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages for label %s: %w", labelID, err)
	}
	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (*mailbox.Message, error) {
	msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	out := &mailbox.Message{ID: msg.Id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			out.Headers = append(out.Headers, mailbox.Header{Name: h.Name, Value: h.Value})
		}
		out.Payload = toPart(msg.Payload)
	}
	return out, nil
}

func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) (string, error) {
	att, err := c.svc.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get attachment for message %s: %w", messageID, err)
	}
	return att.Data, nil
}

func (c *Client) ListLabels(ctx context.Context) ([]mailbox.Label, error) {
	res, err := c.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	labels := make([]mailbox.Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, mailbox.Label{ID: l.Id, Name: l.Name})
	}
	return labels, nil
}

func toPart(p *gmailapi.MessagePart) *mailbox.Part {
	if p == nil {
		return nil
	}
	part := &mailbox.Part{
		Filename: p.Filename,
		MimeType: p.MimeType,
	}
	if p.Body != nil {
		part.AttachmentID = p.Body.AttachmentId
	}
	for _, child := range p.Parts {
		part.Parts = append(part.Parts, toPart(child))
	}
	return part
}
