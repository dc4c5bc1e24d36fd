package entities

import (
	"fmt"
	"time"
)

// QuoteStatus represents the lifecycle of a quote.
//
// Domain notes:
//   - pending is the only state a payment may be created from.
//   - paid is reached exclusively through a settled payment (never set by callers).
//   - expired is derived at read time from expires_at; it is not persisted eagerly.

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusPaid      QuoteStatus = "paid"
	QuoteStatusCancelled QuoteStatus = "cancelled"
	QuoteStatusExpired   QuoteStatus = "expired"
)

// ParseQuoteStatus rejects values outside the closed status set.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	switch QuoteStatus(s) {
	case QuoteStatusPending, QuoteStatusPaid, QuoteStatusCancelled, QuoteStatusExpired:
		return QuoteStatus(s), nil
	}
	return "", fmt.Errorf("unknown quote status %q", s)
}

// Customer identifies who the quote is addressed to. Only the name is required.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// QuoteItem is a product snapshot line owned by its parent quote.
//
// UnitPrice and Subtotal are integer cents; Subtotal is always
// UnitPrice * Quantity and is derived, never accepted from callers.
type QuoteItem struct {
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

// Quote is the customer-facing proposal persisted in DynamoDB.
//
// Storage model (DynamoDB):
//   - PK: id
//
// Monetary representation: all amounts are integer cents. The invariant
// Total == (Subtotal - DiscountAmount) + TaxAmount holds at all times; the
// four derived fields are recomputed together whenever items or percentages
// change and are never hand-edited.

type Quote struct {
	ID       string      `json:"id"`
	Customer Customer    `json:"customer"`
	Items    []QuoteItem `json:"items"`

	DiscountPct float64 `json:"discount_pct"`
	TaxPct      float64 `json:"tax_pct"`

	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	Total          int64 `json:"total"`

	Status    QuoteStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// EffectiveStatus reports the observed status at a point in time: a pending
// quote past its validity window reads as expired without a write.
func (q Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.Status == QuoteStatusPending && !now.Before(q.ExpiresAt) {
		return QuoteStatusExpired
	}
	return q.Status
}
