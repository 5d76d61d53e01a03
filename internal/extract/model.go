package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/inboxpilot/inboxpilot/constants"
	"github.com/inboxpilot/inboxpilot/internal/llm"
)

// ModelStrategy extracts invoice fields with one LLM completion per
// attachment. Same fail-soft contract as PatternStrategy: transport errors
// and unparsable responses degrade to a record carrying only the raw text.
type ModelStrategy struct {
	text   TextSource
	client llm.CompletionClient
	logger *slog.Logger
}

func NewModelStrategy(text TextSource, client llm.CompletionClient, logger *slog.Logger) *ModelStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	if text == nil {
		text = NewTextExtractor(logger)
	}
	return &ModelStrategy{text: text, client: client, logger: logger}
}

func (s *ModelStrategy) Name() string { return "openai" }

func (s *ModelStrategy) Extract(ctx context.Context, pdfContent []byte) ExtractedInvoice {
	text := s.text.Extract(pdfContent)

	if strings.TrimSpace(text) == "" {
		return ExtractedInvoice{Currency: constants.DefaultCurrency, RawText: ""}
	}

	prompt := text
	if len(prompt) > constants.MaxPromptText {
		prompt = prompt[:constants.MaxPromptText]
	}

	completion, err := s.client.Complete(ctx, llm.SystemPrompt, llm.BuildUserPrompt(prompt))
	if err != nil {
		s.logger.Error("model extraction error", "error", err)
		return ExtractedInvoice{Currency: constants.DefaultCurrency, RawText: text}
	}

	fields, rawJSON, err := llm.ParseResponse(completion)
	if err != nil {
		s.logger.Error("model response json parse error", "error", err)
		return ExtractedInvoice{Currency: constants.DefaultCurrency, RawText: text}
	}

	// Shape check is advisory: a response that parsed but carries an odd
	// type still contributes whatever fields it can.
	if err := llm.ValidateJSONAgainstSchema(llm.BuildInvoiceJSONSchema(), rawJSON); err != nil {
		s.logger.Warn("model response failed schema check", "error", err)
	}

	currency := constants.DefaultCurrency
	if fields.Currency != nil && *fields.Currency != "" {
		currency = *fields.Currency
	}

	return ExtractedInvoice{
		VendorName:    fields.VendorName,
		InvoiceNumber: fields.InvoiceNumber,
		InvoiceDate:   fields.InvoiceDate,
		TotalAmount:   llm.NormalizeAmount(fields.TotalAmount),
		Currency:      currency,
		DueDate:       fields.DueDate,
		RawText:       text,
	}
}
