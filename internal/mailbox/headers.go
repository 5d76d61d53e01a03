package mailbox

import (
	"net/mail"
	"time"
)

// ParseMessageDate parses an RFC 5322 Date header value. A malformed date
// yields nil rather than an error; callers persist the record without a
// timestamp in that case.
func ParseMessageDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := mail.ParseDate(value)
	if err != nil {
		return nil
	}
	return &t
}
