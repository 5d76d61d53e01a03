package extract

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor converts raw PDF bytes into a linear text blob, page order
// preserved, pages joined by newline.
//
// It is fail-soft: a malformed document yields whatever text was accumulated
// before the failure (possibly empty) and is logged, never returned as an
// error. The pdf reader is known to panic on some corrupt inputs, so both
// the open and the per-page reads run behind a recover.
type TextExtractor struct {
	logger *slog.Logger
}

func NewTextExtractor(logger *slog.Logger) *TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextExtractor{logger: logger}
}

// Extract returns the document's plain text, one page per line group.
func (e *TextExtractor) Extract(pdfContent []byte) string {
	var b strings.Builder

	err := e.readAll(pdfContent, &b)
	if err != nil {
		e.logger.Error("pdf text extraction error", "error", err, "bytes", len(pdfContent))
	}
	return b.String()
}

func (e *TextExtractor) readAll(pdfContent []byte, b *strings.Builder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfContent), int64(len(pdfContent)))
	if err != nil {
		return err
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// keep what we have; remaining pages may still decode
			e.logger.Warn("pdf page text error", "page", i, "error", err)
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}
	return nil
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	if err, ok := e.value.(error); ok {
		return "pdf reader panic: " + err.Error()
	}
	return "pdf reader panic"
}
