package entities

import (
	"fmt"
	"time"
)

// PaymentStatus represents the gateway-tracked settlement outcome.
//
// approved, rejected and cancelled are terminal: once reached, no transition
// out of them is defined and refreshes must not resurrect pending.

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// ParsePaymentStatus rejects values outside the closed status set.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// IsTerminal reports whether the status is a sink of the state machine.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled:
		return true
	}
	return false
}

// Payment is a settlement order against exactly one quote's total.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (quote_id-index): quote_id
//
// Gateway payload:
//   - ProviderID, QRCode, QRCodeData and InitPoint are opaque blobs copied from
//     the gateway response; this service never parses them.

type Payment struct {
	ID      string        `json:"id"`
	QuoteID string        `json:"quote_id"`
	Amount  int64         `json:"amount"`
	Status  PaymentStatus `json:"status"`

	ProviderID string `json:"provider_id,omitempty"`
	QRCode     string `json:"qr_code,omitempty"`
	QRCodeData string `json:"qr_code_data,omitempty"`
	InitPoint  string `json:"init_point,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// ApplyGatewayStatus transitions the payment to a gateway-reported status.
// Terminal states are sticky: an attempted transition out of one fails with
// TerminalMismatchError and leaves the payment untouched. Applying the current
// status again is a no-op.
func (p *Payment) ApplyGatewayStatus(status PaymentStatus, now time.Time) error {
	if p.Status == status {
		return nil
	}
	if p.Status.IsTerminal() {
		return &TerminalMismatchError{PaymentID: p.ID, Current: p.Status, Reported: status}
	}
	p.Status = status
	p.UpdatedAt = now
	if status == PaymentStatusApproved {
		settled := now
		p.SettledAt = &settled
	}
	return nil
}

// IsActive reports whether the payment still gates new payment creation for
// its quote: non-terminal and not past its own expiry.
func (p Payment) IsActive(now time.Time) bool {
	if p.Status.IsTerminal() {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}
	return true
}

// IsExpired reports whether the payment's own validity window has passed.
// Expiry is observed, not a hard transition; it is surfaced alongside status.
func (p Payment) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}
