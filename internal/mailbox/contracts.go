package mailbox

import (
	"context"
	"strings"
)

// Label is a mailbox label/folder.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Header is one message header, name match is case-insensitive.
type Header struct {
	Name  string
	Value string
}

// Part is one node of a message's MIME part tree. Leaf attachment parts
// carry an AttachmentID that must be fetched separately.
type Part struct {
	Filename     string
	MimeType     string
	AttachmentID string
	Parts        []*Part
}

// Message is a fetched message: headers plus the MIME part tree.
type Message struct {
	ID      string
	Headers []Header
	Payload *Part
}

// Mailbox is the narrow mail-provider surface the sync pipeline depends on.
// GetAttachment returns the provider's URL-safe base64 attachment payload;
// decoding is the locator's job.
type Mailbox interface {
	ListMessageIDs(ctx context.Context, labelID string, max int) ([]string, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	GetAttachment(ctx context.Context, messageID, attachmentID string) (string, error)
	ListLabels(ctx context.Context) ([]Label, error)
}

// HeaderValue returns the first header with the given name,
// case-insensitively, or "".
func (m *Message) HeaderValue(name string) string {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
