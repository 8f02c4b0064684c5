// Package vision defines the contract with the external vision capability:
// the prompt pair sent alongside a conditioned page, the field shape expected
// back, response parsing with a regex fallback, and the JSON schema used to
// keep the capability honest.
package vision

import (
	"context"

	"github.com/shopspring/decimal"
)

// Request is the full instruction contract for one extraction attempt.
// It is stateless and rebuilt for every attempt.
type Request struct {
	System       string
	User         string
	ImageDataURL string
	MediaType    string
}

// Capability is the single entry point to the external vision model:
// submit an image plus instructions, get raw text back. Everything behind
// it is non-deterministic and network-bound; everything in front of it is
// testable with canned responses.
type Capability interface {
	Describe(ctx context.Context, req Request) (string, error)
}

// LineItem is one detail row of an invoice.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Amount      *decimal.Decimal `json:"amount"`
}

// InvoiceFields is the extracted-but-candidate field set. Absent values stay
// nil or empty; the extractor is told to never invent one.
type InvoiceFields struct {
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	NetAmount     *decimal.Decimal `json:"net_amount,omitempty"`
	TaxAmount     *decimal.Decimal `json:"tax_amount,omitempty"`
	Currency      string           `json:"currency"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	InvoiceDate   string           `json:"invoice_date"` // DD/MM/YYYY
	VendorName    string           `json:"vendor_name"`
	VendorAddress string           `json:"vendor_address,omitempty"`
	Category      string           `json:"category"`
	LineItems     []LineItem       `json:"line_items"`
	Confidence    float32          `json:"confidence"`
	NeedsReview   bool             `json:"needs_review"`
	Description   string           `json:"description,omitempty"`

	// set by the pipeline, not the extractor
	FileType  string   `json:"file_type,omitempty"`
	PageCount int      `json:"page_count,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
