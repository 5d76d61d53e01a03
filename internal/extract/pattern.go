package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// PatternStrategy extracts invoice fields with ordered regex rule sets. It
// needs no network and is the fallback whenever the model strategy is not
// available.
//
// Every "first match wins" field is tie-broken by pattern list order, not by
// position in the text. That ordering is load-bearing: the bare fallback
// patterns (a date with no label, a "#" followed by alphanumerics) can latch
// onto unrelated numbers such as page numbers when no labeled pattern
// matches. This imprecision is a known property of the rule set and is kept
// as-is for compatibility with previously extracted records.
type PatternStrategy struct {
	text   TextSource
	logger *slog.Logger
}

func NewPatternStrategy(text TextSource, logger *slog.Logger) *PatternStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	if text == nil {
		text = NewTextExtractor(logger)
	}
	return &PatternStrategy{text: text, logger: logger}
}

func (s *PatternStrategy) Name() string { return "pattern" }

// Extract never fails; fields that match nothing stay nil.
func (s *PatternStrategy) Extract(_ context.Context, pdfContent []byte) ExtractedInvoice {
	text := s.text.Extract(pdfContent)

	return ExtractedInvoice{
		VendorName:    extractVendor(text),
		InvoiceNumber: extractInvoiceNumber(text),
		InvoiceDate:   extractDate(text, dateKindInvoice),
		TotalAmount:   extractAmount(text),
		Currency:      extractCurrency(text),
		DueDate:       extractDate(text, dateKindDue),
		RawText:       text,
	}
}

// vendorStoplist holds header words that are never a vendor name on their own.
var vendorStoplist = map[string]struct{}{
	"invoice":     {},
	"tax invoice": {},
	"bill":        {},
}

var reNonContent = regexp.MustCompile(`^[\d\s\-/]+$`)

// extractVendor scans the first 5 non-blank lines for something that looks
// like a company name: not a stoplisted header word, longer than 2 bytes,
// not just digits and separators.
func extractVendor(text string) *string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		if _, stop := vendorStoplist[strings.ToLower(line)]; stop {
			continue
		}
		if len(line) > 2 && !reNonContent.MatchString(line) {
			return &line
		}
	}
	return nil
}

var invoiceNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)invoice\s*#?\s*:?\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)inv\s*#?\s*:?\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)invoice\s+number\s*:?\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)invoice\s+no\.?\s*:?\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)#\s*([A-Z0-9\-]{4,})`),
}

func extractInvoiceNumber(text string) *string {
	for _, pattern := range invoiceNumberPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			num := strings.TrimSpace(m[1])
			return &num
		}
	}
	return nil
}

type dateKind int

const (
	dateKindInvoice dateKind = iota
	dateKindDue
)

var dueDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)due\s+date\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?i)due\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?i)payment\s+due\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
}

var invoiceDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)invoice\s+date\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?i)date\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?i)dated?\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	// bare fallback, invoice-date only
	regexp.MustCompile(`(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
}

// extractDate returns the raw matched substring; no calendar parsing or
// validation, source ambiguity is preserved.
func extractDate(text string, kind dateKind) *string {
	patterns := invoiceDatePatterns
	if kind == dateKindDue {
		patterns = dueDatePatterns
	}
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			date := strings.TrimSpace(m[1])
			return &date
		}
	}
	return nil
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)total\s+(?:amount|due)?\s*:?\s*\$?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)grand\s+total\s*:?\s*\$?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)amount\s+due\s*:?\s*\$?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)balance\s+due\s*:?\s*\$?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)total\s*:?\s*\$?\s*([\d,]+\.?\d*)`),
}

// extractAmount collects every match from every amount pattern and returns
// the largest positive candidate. Taking the maximum biases toward the grand
// total over subtotals and line items.
func extractAmount(text string) *float64 {
	var amounts []float64
	for _, pattern := range amountPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil || val <= 0 {
				continue
			}
			amounts = append(amounts, val)
		}
	}
	if len(amounts) == 0 {
		return nil
	}
	max := amounts[0]
	for _, v := range amounts[1:] {
		if v > max {
			max = v
		}
	}
	return &max
}

// currencyMarkers is scanned in order; the first marker found anywhere in
// the text wins.
var currencyMarkers = []struct {
	marker string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"USD", "USD"},
	{"EUR", "EUR"},
	{"GBP", "GBP"},
	{"INR", "INR"},
}

func extractCurrency(text string) string {
	for _, c := range currencyMarkers {
		if strings.Contains(text, c.marker) {
			return c.code
		}
	}
	return "USD"
}
