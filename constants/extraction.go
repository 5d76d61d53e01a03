package constants

import "strings"

// ExtractionMode selects which field-extraction strategy a sync run uses.
type ExtractionMode string

// Stable values (store these exact strings in DB).
const (
	ModePattern ExtractionMode = "pattern" // regex rule sets, no network
	ModeOpenAI  ExtractionMode = "openai"  // LLM-backed extraction
)

// NormalizeMode maps free-form user input onto a known mode,
// defaulting to the pattern strategy.
func NormalizeMode(s string) ExtractionMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeOpenAI)) {
		return ModeOpenAI
	}
	return ModePattern
}

const (
	// MaxSyncMessages is the hard cap on candidate messages per sync run.
	// The mailbox listing is not paginated past this.
	MaxSyncMessages = 50

	// MaxSyncErrors caps SyncResult.Errors; later errors are dropped.
	MaxSyncErrors = 10

	// MaxPromptText is how much extracted text is sent to the model.
	MaxPromptText = 4000

	// MaxStoredRawText is how much raw text is persisted per invoice.
	MaxStoredRawText = 2000

	// DefaultCurrency is used when no currency marker is detected.
	DefaultCurrency = "USD"

	// DefaultAttachmentName is used for PDF parts with no filename.
	DefaultAttachmentName = "attachment.pdf"
)
