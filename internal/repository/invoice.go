package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inboxpilot/inboxpilot/internal/entity"
)

// InvoiceRepository persists extracted invoice records. ExistsByEmailID is
// the dedup lookup: filename == "" checks at message granularity, a non-empty
// filename narrows the key to one attachment.
type InvoiceRepository interface {
	ExistsByEmailID(ctx context.Context, emailID string, userID uuid.UUID, filename string) (bool, error)
	Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) (*entity.InvoicePage, error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]*entity.Invoice, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type invoiceRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewInvoiceRepository(pool *pgxpool.Pool, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{pool: pool, logger: logger}
}

const invoiceColumns = `id, user_id, email_id, email_subject, email_date,
	vendor_name, invoice_number, invoice_date, total_amount, currency,
	due_date, raw_text, extraction_mode, file_name, created_at`

func (r *invoiceRepository) ExistsByEmailID(ctx context.Context, emailID string, userID uuid.UUID, filename string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM invoices WHERE email_id = $1 AND user_id = $2)`
	args := []any{emailID, userID}
	if filename != "" {
		query = `SELECT EXISTS (SELECT 1 FROM invoices WHERE email_id = $1 AND user_id = $2 AND file_name = $3)`
		args = append(args, filename)
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		r.logger.Error("invoice exists check failed", "email_id", emailID, "user_id", userID, "error", err)
		return false, err
	}
	return exists, nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (
			user_id, email_id, email_subject, email_date, vendor_name,
			invoice_number, invoice_date, total_amount, currency, due_date,
			raw_text, extraction_mode, file_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+invoiceColumns,
		inv.UserID, inv.EmailID, inv.EmailSubject, inv.EmailDate,
		inv.VendorName, inv.InvoiceNumber, inv.InvoiceDate, inv.TotalAmount,
		inv.Currency, inv.DueDate, inv.RawText, inv.ExtractionMode,
		inv.FileName,
	)
	created, err := scanInvoice(row)
	if err != nil {
		r.logger.Error("failed to create invoice", "user_id", inv.UserID, "email_id", inv.EmailID, "error", err)
		return nil, err
	}
	r.logger.Info("created invoice", "invoice_id", created.ID, "user_id", created.UserID, "file_name", created.FileName)
	return created, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*entity.Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to get invoice", "invoice_id", id, "error", err)
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, userID uuid.UUID, page, limit int) (*entity.InvoicePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		r.logger.Error("failed to count invoices", "user_id", userID, "error", err)
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit,
	)
	if err != nil {
		r.logger.Error("failed to list invoices", "user_id", userID, "error", err)
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &entity.InvoicePage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (r *invoiceRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]*entity.Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		r.logger.Error("failed to list invoices for export", "user_id", userID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var items []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

func (r *invoiceRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("failed to delete invoice", "invoice_id", id, "error", err)
		return false, err
	}
	deleted := tag.RowsAffected() > 0
	if deleted {
		r.logger.Info("deleted invoice", "invoice_id", id, "user_id", userID)
	}
	return deleted, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.EmailID, &inv.EmailSubject, &inv.EmailDate,
		&inv.VendorName, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.TotalAmount,
		&inv.Currency, &inv.DueDate, &inv.RawText, &inv.ExtractionMode,
		&inv.FileName, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
