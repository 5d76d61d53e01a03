package entity

import (
	"time"

	"github.com/google/uuid"
)

// Invoice represents an extracted invoice record for data transfer between layers.
type Invoice struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	EmailID        string     `json:"email_id"`
	EmailSubject   *string    `json:"email_subject,omitempty"`
	EmailDate      *time.Time `json:"email_date,omitempty"`
	VendorName     *string    `json:"vendor_name,omitempty"`
	InvoiceNumber  *string    `json:"invoice_number,omitempty"`
	InvoiceDate    *string    `json:"invoice_date,omitempty"`
	TotalAmount    *float64   `json:"total_amount,omitempty"`
	Currency       string     `json:"currency"`
	DueDate        *string    `json:"due_date,omitempty"`
	RawText        *string    `json:"raw_text,omitempty"`
	ExtractionMode string     `json:"extraction_mode"`
	FileName       string     `json:"file_name"`
	CreatedAt      time.Time  `json:"created_at"`
}

// InvoicePage is one page of a user's invoice listing.
type InvoicePage struct {
	Items []*Invoice `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}
