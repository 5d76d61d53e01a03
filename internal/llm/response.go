package llm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseResponse decodes a model completion into InvoiceFields. The model is
// told to return bare JSON but will sometimes wrap it in a markdown code
// fence anyway, so an optional surrounding fence is stripped first.
func ParseResponse(completion string) (InvoiceFields, []byte, error) {
	content := StripCodeFence(completion)
	var fields InvoiceFields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return InvoiceFields{}, []byte(content), err
	}
	return fields, []byte(content), nil
}

// StripCodeFence removes a surrounding ``` or ```json fence, if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return s
	}
	body := parts[1]
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

// NormalizeAmount coerces the model's total_amount into a float. Numbers
// pass through; strings are parsed after dropping thousands separators and
// common currency symbols. Anything unparsable is nil, not an error.
func NormalizeAmount(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		cleaned := strings.NewReplacer(",", "", "$", "", "€", "", "£", "").Replace(v)
		cleaned = strings.TrimSpace(cleaned)
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}
