package response

import (
	"time"

	"cotizapay/internal/domain/entities"
	"cotizapay/internal/domain/expiry"
)

type PaymentResponse struct {
	ID         string     `json:"id"`
	QuoteID    string     `json:"quote_id"`
	Amount     int64      `json:"amount"`
	Status     string     `json:"status"`
	ProviderID string     `json:"provider_id,omitempty"`
	QRCode     string     `json:"qr_code,omitempty"`
	QRCodeData string     `json:"qr_code_data,omitempty"`
	InitPoint  string     `json:"init_point,omitempty"`
	Expired    bool       `json:"expired"`
	TimeLeft   int64      `json:"time_left_seconds"`
	Urgency    string     `json:"urgency"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`
}

func FromPayment(p entities.Payment, now time.Time) PaymentResponse {
	resp := PaymentResponse{
		ID:         p.ID,
		QuoteID:    p.QuoteID,
		Amount:     p.Amount,
		Status:     string(p.Status),
		ProviderID: p.ProviderID,
		QRCode:     p.QRCode,
		QRCodeData: p.QRCodeData,
		InitPoint:  p.InitPoint,
		Urgency:    string(expiry.UrgencyLow),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		ExpiresAt:  p.ExpiresAt,
		SettledAt:  p.SettledAt,
	}
	if p.ExpiresAt != nil {
		cd := expiry.TimeUntil(now, *p.ExpiresAt, expiry.PaymentThresholds)
		resp.Expired = cd.Expired
		resp.TimeLeft = int64(cd.TimeLeft.Seconds())
		resp.Urgency = string(cd.Urgency)
	}
	return resp
}

// PaymentStatusResponse is the combined status view. Stale marks a response
// served from the last persisted state because the provider could not be
// reached.
type PaymentStatusResponse struct {
	Payment PaymentResponse `json:"payment"`
	Quote   QuoteResponse   `json:"quote"`
	Stale   bool            `json:"stale,omitempty"`
}

func NewPaymentStatusResponse(p entities.Payment, q entities.Quote, stale bool, now time.Time) PaymentStatusResponse {
	return PaymentStatusResponse{
		Payment: FromPayment(p, now),
		Quote:   FromQuote(q, now),
		Stale:   stale,
	}
}
