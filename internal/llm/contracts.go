package llm

import "context"

// CompletionClient is the narrow completion surface the model strategy
// depends on. Implementations pin temperature 0 and a small max_tokens so
// extraction stays deterministic and cheap.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// InvoiceFields is the JSON shape we ask the model for. Every field may be
// null; total_amount arrives as a number or a formatted string depending on
// how literally the model read the document.
type InvoiceFields struct {
	VendorName    *string `json:"vendor_name"`
	InvoiceNumber *string `json:"invoice_number"`
	InvoiceDate   *string `json:"invoice_date"`
	TotalAmount   any     `json:"total_amount"`
	Currency      *string `json:"currency"`
	DueDate       *string `json:"due_date"`
}
