package quotations

import "time"

type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "DRAFT"
	QuotationStatusSent     QuotationStatus = "SENT"
	QuotationStatusApproved QuotationStatus = "APPROVED"
	QuotationStatusRejected QuotationStatus = "REJECTED"
	QuotationStatusExpired  QuotationStatus = "EXPIRED"
)

type Quotation struct {
	ID              int64           `json:"id" db:"id"`
	DocNumber       string          `json:"doc_number" db:"doc_number"`
	ClientID        int64           `json:"client_id" db:"client_id"`
	QuoteDate       time.Time       `json:"quote_date" db:"quote_date"`
	ValidUntil      time.Time       `json:"valid_until" db:"valid_until"`
	Status          QuotationStatus `json:"status" db:"status"`
	Currency        string          `json:"currency" db:"currency"`
	Subtotal        float64         `json:"subtotal" db:"subtotal"`
	TaxAmount       float64         `json:"tax_amount" db:"tax_amount"`
	TotalAmount     float64         `json:"total_amount" db:"total_amount"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy       int64           `json:"created_by" db:"created_by"`
	DecidedBy       *int64          `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt       *time.Time      `json:"decided_at,omitempty" db:"decided_at"`
	RejectionReason *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Lines           []QuotationLine `json:"lines,omitempty" db:"-"`
}

type QuotationLine struct {
	ID              int64   `json:"id" db:"id"`
	QuotationID     int64   `json:"quotation_id" db:"quotation_id"`
	Description     string  `json:"description" db:"description"`
	Quantity        float64 `json:"quantity" db:"quantity"`
	UOM             string  `json:"uom" db:"uom"`
	UnitPrice       float64 `json:"unit_price" db:"unit_price"`
	DiscountPercent float64 `json:"discount_percent" db:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount" db:"discount_amount"`
	TaxPercent      float64 `json:"tax_percent" db:"tax_percent"`
	TaxAmount       float64 `json:"tax_amount" db:"tax_amount"`
	LineTotal       float64 `json:"line_total" db:"line_total"`
	LineOrder       int     `json:"line_order" db:"line_order"`
}

// QuotationWithClient decorates a quotation header with display names for
// list views.
type QuotationWithClient struct {
	Quotation
	ClientName    string `json:"client_name" db:"client_name"`
	CreatedByName string `json:"created_by_name" db:"created_by_name"`
}

// CalculateLineTotals applies the discount-then-tax rule used across all
// commercial documents.
func CalculateLineTotals(quantity, unitPrice, discountPercent, taxPercent float64) (discountAmount, taxAmount, lineTotal float64) {
	grossAmount := quantity * unitPrice
	discountAmount = grossAmount * (discountPercent / 100)
	netAmount := grossAmount - discountAmount
	taxAmount = netAmount * (taxPercent / 100)
	lineTotal = netAmount + taxAmount
	return
}
