package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inboxpilot/inboxpilot/constants"
	"github.com/inboxpilot/inboxpilot/internal/entity"
	"github.com/inboxpilot/inboxpilot/internal/extract"
	"github.com/inboxpilot/inboxpilot/internal/mailbox"
	"github.com/inboxpilot/inboxpilot/internal/repository"
)

// Result aggregates one sync run. EmailsProcessed counts messages whose body
// was fetched (dedup-skipped ones do not count); InvoicesExtracted counts
// attachments that made it into the store. Errors carries at most
// constants.MaxSyncErrors entries in occurrence order.
type Result struct {
	EmailsProcessed   int      `json:"emails_processed"`
	InvoicesExtracted int      `json:"invoices_extracted"`
	Errors            []string `json:"errors"`
}

// Service runs the extraction pipeline for one user: list candidates, skip
// already-processed messages, locate PDF attachments, run the selected
// strategy, persist records, and aggregate partial failures.
//
// Processing is strictly sequential. Every per-message and per-attachment
// failure is converted into an error string; nothing escapes Sync as an
// error. Concurrent syncs for the same user can both pass the dedup check
// before either persists; that race is accepted.
type Service struct {
	user     *entity.User
	mailbox  mailbox.Mailbox
	locator  *mailbox.Locator
	invoices repository.InvoiceRepository
	pattern  extract.Strategy
	model    extract.Strategy // nil when the model strategy is not configured
	logger   *slog.Logger
}

func NewService(
	user *entity.User,
	mb mailbox.Mailbox,
	invoices repository.InvoiceRepository,
	pattern extract.Strategy,
	model extract.Strategy,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		user:     user,
		mailbox:  mb,
		locator:  mailbox.NewLocator(mb, logger),
		invoices: invoices,
		pattern:  pattern,
		model:    model,
		logger:   logger,
	}
}

// GetLabels passes through the mailbox's label listing.
func (s *Service) GetLabels(ctx context.Context) ([]mailbox.Label, error) {
	labels, err := s.mailbox.ListLabels(ctx)
	if err != nil {
		s.logger.Error("sync.labels.list_failed", "user_id", s.user.ID, "error", err)
		return nil, err
	}
	return labels, nil
}

// selectStrategy picks the strategy for a whole run. The model strategy is
// used only when the user asked for it and a client is configured; anything
// else falls back to patterns. The choice is made once, never re-evaluated
// mid-batch.
func (s *Service) selectStrategy() extract.Strategy {
	if constants.NormalizeMode(s.user.ExtractionMode) == constants.ModeOpenAI && s.model != nil {
		return s.model
	}
	return s.pattern
}

// Sync processes up to constants.MaxSyncMessages candidates under labelID.
func (s *Service) Sync(ctx context.Context, labelID string) Result {
	start := time.Now()
	var res Result
	strategy := s.selectStrategy()

	s.logger.Info("sync.start",
		"user_id", s.user.ID,
		"label_id", labelID,
		"strategy", strategy.Name(),
	)

	ids, err := s.mailbox.ListMessageIDs(ctx, labelID, constants.MaxSyncMessages)
	if err != nil {
		s.logger.Error("sync.list_failed", "user_id", s.user.ID, "label_id", labelID, "error", err)
		res.Errors = append(res.Errors, fmt.Sprintf("Error syncing emails: %v", err))
		return s.finish(res, labelID, start)
	}

	for _, msgID := range ids {
		exists, err := s.invoices.ExistsByEmailID(ctx, msgID, s.user.ID, "")
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error processing message %s: %v", msgID, err))
			s.logger.Error("sync.dedup_check_failed", "message_id", msgID, "error", err)
			continue
		}
		if exists {
			continue
		}

		msg, err := s.mailbox.GetMessage(ctx, msgID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error processing message %s: %v", msgID, err))
			s.logger.Error("sync.message.fetch_failed", "message_id", msgID, "error", err)
			continue
		}
		res.EmailsProcessed++

		if err := s.processMessage(ctx, msg, strategy, &res); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error processing message %s: %v", msgID, err))
			s.logger.Error("sync.message.process_failed", "message_id", msgID, "error", err)
		}
	}

	return s.finish(res, labelID, start)
}

// processMessage handles everything after a successful fetch. A returned
// error is message-scoped; attachment failures are recorded inside and do
// not propagate.
func (s *Service) processMessage(ctx context.Context, msg *mailbox.Message, strategy extract.Strategy, res *Result) error {
	subject := msg.HeaderValue("Subject")
	emailDate := mailbox.ParseMessageDate(msg.HeaderValue("Date"))

	attachments, err := s.locator.LocatePDFs(ctx, msg)
	if err != nil {
		return err
	}

	for _, att := range attachments {
		if err := s.processAttachment(ctx, msg.ID, subject, emailDate, att, strategy); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error extracting %s: %v", att.Filename, err))
			s.logger.Error("sync.attachment.failed",
				"message_id", msg.ID, "file_name", att.Filename, "error", err)
			continue
		}
		res.InvoicesExtracted++
	}
	return nil
}

func (s *Service) processAttachment(ctx context.Context, msgID, subject string, emailDate *time.Time, att mailbox.Attachment, strategy extract.Strategy) error {
	extracted := strategy.Extract(ctx, att.Content)

	inv := &entity.Invoice{
		UserID:         s.user.ID,
		EmailID:        msgID,
		EmailDate:      emailDate,
		VendorName:     extracted.VendorName,
		InvoiceNumber:  extracted.InvoiceNumber,
		InvoiceDate:    extracted.InvoiceDate,
		TotalAmount:    extracted.TotalAmount,
		Currency:       extracted.Currency,
		DueDate:        extracted.DueDate,
		ExtractionMode: strategy.Name(),
		FileName:       att.Filename,
	}
	if subject != "" {
		inv.EmailSubject = &subject
	}
	if extracted.RawText != "" {
		raw := extracted.RawText
		if len(raw) > constants.MaxStoredRawText {
			raw = raw[:constants.MaxStoredRawText]
		}
		inv.RawText = &raw
	}

	if _, err := s.invoices.Create(ctx, inv); err != nil {
		return err
	}
	s.logger.Info("sync.attachment.extracted",
		"message_id", msgID, "file_name", att.Filename, "strategy", strategy.Name())
	return nil
}

func (s *Service) finish(res Result, labelID string, start time.Time) Result {
	if len(res.Errors) > constants.MaxSyncErrors {
		res.Errors = res.Errors[:constants.MaxSyncErrors]
	}
	s.logger.Info("sync.done",
		"user_id", s.user.ID,
		"label_id", labelID,
		"emails_processed", res.EmailsProcessed,
		"invoices_extracted", res.InvoicesExtracted,
		"errors", len(res.Errors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}
