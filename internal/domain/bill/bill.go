package bill

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Format identifies a document output format for a rendered bill.
type Format string

const (
	// FormatDocx renders the bill by substituting fields into the clinic's
	// Word template. This is the default format for freshly generated bills.
	FormatDocx Format = "docx"
	// FormatPDF renders the bill procedurally without a template asset.
	FormatPDF Format = "pdf"
)

// ParseFormat maps a request-supplied format string to a Format.
// An empty string selects the default docx format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatDocx):
		return FormatDocx, nil
	case string(FormatPDF):
		return FormatPDF, nil
	default:
		return "", &ValidationError{Reason: fmt.Sprintf("unsupported file format %q", s)}
	}
}

// ContentType returns the MIME type for documents in this format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Ext returns the file extension (without dot) for this format.
func (f Format) Ext() string {
	return string(f)
}

// LineItem is one billable entry with its computed tax breakdown.
// BaseTotal, GSTAmount, and FinalAmount are frozen at generation time,
// rounded to 2 decimal places.
type LineItem struct {
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	GSTRate     decimal.Decimal `json:"gstRate"`
	BaseTotal   decimal.Decimal `json:"baseTotal"`
	GSTAmount   decimal.Decimal `json:"gstAmount"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
}

// Bill is a fully computed, immutable billing record. Once persisted it is
// only ever read, re-rendered, or deleted; totals are never recomputed.
type Bill struct {
	// BillID is the caller-supplied business identifier. The store does not
	// enforce its uniqueness and keys records internally.
	BillID    string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Treatment string          `json:"treatmentOrMedicine"`
	Date      string          `json:"date"`
	Items     []LineItem      `json:"items"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TotalGST  decimal.Decimal `json:"totalGST"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Filename returns the suggested download filename for this bill in the
// given format.
func (b *Bill) Filename(f Format) string {
	return fmt.Sprintf("generated-bill-%s.%s", b.BillID, f.Ext())
}

// Repository defines persistence operations for bills. Records are
// independent; implementations guarantee per-record write atomicity only.
type Repository interface {
	// Create persists a new bill record. It does not enforce uniqueness of
	// the business id: two creates with the same id yield two records.
	Create(ctx context.Context, b *Bill) error
	// FindAll returns all bill records in a stable order.
	FindAll(ctx context.Context) ([]Bill, error)
	// FindByBillID returns the most recently created record with the given
	// business id, or ErrNotFound.
	FindByBillID(ctx context.Context, billID string) (*Bill, error)
	// DeleteByBillID removes all records with the given business id.
	// Returns ErrNotFound when no record matches.
	DeleteByBillID(ctx context.Context, billID string) error
}

// Renderer produces a distributable document from a computed bill.
// Implementations must not share mutable rendering state across calls:
// every call gets its own document instance.
type Renderer interface {
	Render(b *Bill) ([]byte, error)
}
