package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/inboxpilot/inboxpilot/internal/entity"
	"github.com/inboxpilot/inboxpilot/internal/repository"
)

// Service is a tiny façade over the invoice repository that renders a
// user's invoices as CSV or XLSX bytes.
type Service struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

var exportHeaders = []string{
	"ID", "Vendor Name", "Invoice Number", "Invoice Date",
	"Total Amount", "Currency", "Due Date", "Email Subject",
	"Email Date", "Extraction Mode", "File Name", "Created At",
}

// ExportCSV renders every invoice for the user, newest first.
func (s *Service) ExportCSV(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	invoices, err := s.invoices.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if err := w.Write(rowFor(inv)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("exported invoices csv", "user_id", userID, "rows", len(invoices))
	return buf.Bytes(), nil
}

// ExportXLSX renders the same rows as a workbook.
func (s *Service) ExportXLSX(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	start := time.Now()

	invoices, err := s.invoices.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for rowIdx, inv := range invoices {
		for colIdx, val := range rowFor(inv) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	// drop the default sheet excelize creates
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("exported invoices xlsx",
		"user_id", userID, "rows", len(invoices),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func rowFor(inv *entity.Invoice) []string {
	return []string{
		inv.ID.String(),
		strOrEmpty(inv.VendorName),
		strOrEmpty(inv.InvoiceNumber),
		strOrEmpty(inv.InvoiceDate),
		floatOrEmpty(inv.TotalAmount),
		inv.Currency,
		strOrEmpty(inv.DueDate),
		strOrEmpty(inv.EmailSubject),
		timeOrEmpty(inv.EmailDate),
		inv.ExtractionMode,
		inv.FileName,
		inv.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatOrEmpty(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func timeOrEmpty(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.UTC().Format(time.RFC3339)
}
