package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inboxpilot/inboxpilot/constants"
)

// maxParts bounds the part-tree walk. A well-formed message has a handful of
// parts; anything near this limit is malformed or hostile.
const maxParts = 1000

// Attachment is one decoded PDF attachment.
type Attachment struct {
	Filename string
	Content  []byte
}

// Locator finds and fetches PDF attachments in a message's MIME part tree.
type Locator struct {
	mailbox Mailbox
	logger  *slog.Logger
}

func NewLocator(mb Mailbox, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{mailbox: mb, logger: logger}
}

// LocatePDFs walks the part tree depth-first and returns every part that is
// a PDF by filename extension or declared media type, fetched and decoded.
// Parts without an attachment reference are skipped. Two same-named
// attachments both yield entries; there is no within-message dedup.
//
// The walk uses an explicit work list so a maliciously deep (or cyclic)
// tree cannot exhaust the stack.
func (l *Locator) LocatePDFs(ctx context.Context, msg *Message) ([]Attachment, error) {
	var attachments []Attachment
	if msg == nil || msg.Payload == nil {
		return attachments, nil
	}

	// Seed with the payload's children: the top-level container itself is
	// never an attachment.
	stack := make([]*Part, 0, len(msg.Payload.Parts))
	for i := len(msg.Payload.Parts) - 1; i >= 0; i-- {
		stack = append(stack, msg.Payload.Parts[i])
	}

	visited := 0
	for len(stack) > 0 {
		part := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if part == nil {
			continue
		}
		visited++
		if visited > maxParts {
			l.logger.Warn("part tree too large, truncating walk", "message_id", msg.ID, "max_parts", maxParts)
			break
		}

		if isPDFPart(part) && part.AttachmentID != "" {
			data, err := l.mailbox.GetAttachment(ctx, msg.ID, part.AttachmentID)
			if err != nil {
				return nil, fmt.Errorf("fetch attachment %q: %w", part.Filename, err)
			}
			content, err := decodeAttachment(data)
			if err != nil {
				return nil, fmt.Errorf("decode attachment %q: %w", part.Filename, err)
			}
			filename := part.Filename
			if filename == "" {
				filename = constants.DefaultAttachmentName
			}
			attachments = append(attachments, Attachment{Filename: filename, Content: content})
		}

		// push children in reverse so traversal stays depth-first,
		// left-to-right
		for i := len(part.Parts) - 1; i >= 0; i-- {
			stack = append(stack, part.Parts[i])
		}
	}

	return attachments, nil
}

func isPDFPart(part *Part) bool {
	if strings.HasSuffix(strings.ToLower(part.Filename), ".pdf") {
		return true
	}
	return part.MimeType == "application/pdf"
}

// decodeAttachment handles URL-safe base64 with or without padding; both
// show up in the wild.
func decodeAttachment(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
