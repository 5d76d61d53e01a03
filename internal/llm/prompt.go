package llm

import "strings"

// SystemPrompt frames the model as an extraction assistant. Kept short;
// the field list lives in the user prompt next to the text it refers to.
const SystemPrompt = "You are an invoice data extraction assistant. Extract structured data from invoice text."

const promptHeader = `Extract the following information from this invoice text.
Return a JSON object with these fields:
- vendor_name: The company/vendor name who issued the invoice
- invoice_number: The invoice number/ID
- invoice_date: The invoice date (format: MM/DD/YYYY or as shown)
- total_amount: The total amount as a number (no currency symbol)
- currency: The currency code (USD, EUR, GBP, etc.)
- due_date: The payment due date if mentioned

If a field cannot be found, use null.

Invoice text:
`

const promptFooter = `

Return ONLY valid JSON, no other text.`

// BuildUserPrompt embeds the (already truncated) invoice text into the
// extraction instruction.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(text) + len(promptFooter))
	b.WriteString(promptHeader)
	b.WriteString(text)
	b.WriteString(promptFooter)
	return b.String()
}
