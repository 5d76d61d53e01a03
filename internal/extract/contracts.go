package extract

import "context"

// ExtractedInvoice is the transient result of running a strategy over one
// PDF attachment. Nil pointers mean the field was not found; Currency always
// carries a value (default "USD").
type ExtractedInvoice struct {
	VendorName    *string  `json:"vendor_name"`
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	TotalAmount   *float64 `json:"total_amount"`
	Currency      string   `json:"currency"`
	DueDate       *string  `json:"due_date"`
	RawText       string   `json:"raw_text"`
}

// TextSource converts raw PDF bytes into a plain-text blob. Implementations
// are fail-soft: bad input yields partial or empty text, never an error.
type TextSource interface {
	Extract(pdfContent []byte) string
}

// Strategy converts raw PDF bytes into structured invoice fields.
//
// Implementations are fail-soft: they never return an error. Internal
// failures degrade to nil fields (and, where text extraction succeeded,
// RawText still carries whatever was read), so one bad attachment cannot
// abort a sync batch. A strategy is selected once per sync run, never
// re-dispatched per attachment.
type Strategy interface {
	Extract(ctx context.Context, pdfContent []byte) ExtractedInvoice
	Name() string
}
