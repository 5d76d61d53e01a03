package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/inboxpilot/inboxpilot/internal/entity"
)

type fakeInvoiceRepo struct {
	invoices []*entity.Invoice
	err      error
}

func (f *fakeInvoiceRepo) ExistsByEmailID(context.Context, string, uuid.UUID, string) (bool, error) {
	return false, nil
}

func (f *fakeInvoiceRepo) Create(context.Context, *entity.Invoice) (*entity.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*entity.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) List(context.Context, uuid.UUID, int, int) (*entity.InvoicePage, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) ListAll(context.Context, uuid.UUID) ([]*entity.Invoice, error) {
	return f.invoices, f.err
}

func (f *fakeInvoiceRepo) Delete(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func sampleInvoices() []*entity.Invoice {
	vendor := "Acme Corp"
	number := "INV-2024-001"
	amount := 150.0
	subject := "Your April invoice"
	emailDate := time.Date(2024, 4, 15, 17, 30, 0, 0, time.UTC)
	return []*entity.Invoice{
		{
			ID:             uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			VendorName:     &vendor,
			InvoiceNumber:  &number,
			TotalAmount:    &amount,
			Currency:       "USD",
			EmailSubject:   &subject,
			EmailDate:      &emailDate,
			ExtractionMode: "pattern",
			FileName:       "a.pdf",
			CreatedAt:      time.Date(2024, 4, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:             uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8"),
			Currency:       "USD",
			ExtractionMode: "openai",
			FileName:       "attachment.pdf",
			CreatedAt:      time.Date(2024, 4, 16, 9, 1, 0, 0, time.UTC),
		},
	}
}

func TestExportCSV(t *testing.T) {
	s := NewService(&fakeInvoiceRepo{invoices: sampleInvoices()}, nil)

	data, err := s.ExportCSV(context.Background(), uuid.New())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"Acme Corp", "INV-2024-001", "",
		"150", "USD", "", "Your April invoice",
		"2024-04-15T17:30:00Z", "pattern", "a.pdf", "2024-04-16T09:00:00Z",
	}, rows[1])
	// missing fields render as empty cells
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "", rows[2][4])
	assert.Equal(t, "openai", rows[2][9])
}

func TestExportCSV_RepoError(t *testing.T) {
	s := NewService(&fakeInvoiceRepo{err: errors.New("db down")}, nil)

	_, err := s.ExportCSV(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestExportXLSX(t *testing.T) {
	s := NewService(&fakeInvoiceRepo{invoices: sampleInvoices()}, nil)

	data, err := s.ExportXLSX(context.Background(), uuid.New())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), "Sheet1")
	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Acme Corp", rows[1][1])
	assert.Equal(t, "150", rows[1][4])
}

func TestExportXLSX_Empty(t *testing.T) {
	s := NewService(&fakeInvoiceRepo{}, nil)

	data, err := s.ExportXLSX(context.Background(), uuid.New())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
