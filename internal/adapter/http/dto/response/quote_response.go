package response

import (
	"time"

	"cotizapay/internal/domain/entities"
	"cotizapay/internal/domain/expiry"
)

type CustomerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type QuoteItemResponse struct {
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

// QuoteResponse reports the derived status: a pending quote past its
// deadline reads as expired without a storage write. All amounts are
// integer cents; time_left_seconds truncates toward zero.
type QuoteResponse struct {
	ID             string              `json:"id"`
	Customer       CustomerResponse    `json:"customer"`
	Items          []QuoteItemResponse `json:"items"`
	DiscountPct    float64             `json:"discount_pct"`
	TaxPct         float64             `json:"tax_pct"`
	Subtotal       int64               `json:"subtotal"`
	DiscountAmount int64               `json:"discount_amount"`
	TaxAmount      int64               `json:"tax_amount"`
	Total          int64               `json:"total"`
	Status         string              `json:"status"`
	Expired        bool                `json:"expired"`
	TimeLeft       int64               `json:"time_left_seconds"`
	Urgency        string              `json:"urgency"`
	CreatedAt      time.Time           `json:"created_at"`
	ExpiresAt      time.Time           `json:"expires_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func FromQuote(q entities.Quote, now time.Time) QuoteResponse {
	cd := expiry.TimeUntil(now, q.ExpiresAt, expiry.QuoteThresholds)

	items := make([]QuoteItemResponse, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, QuoteItemResponse{
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}

	return QuoteResponse{
		ID: q.ID,
		Customer: CustomerResponse{
			Name:    q.Customer.Name,
			Email:   q.Customer.Email,
			Phone:   q.Customer.Phone,
			Address: q.Customer.Address,
		},
		Items:          items,
		DiscountPct:    q.DiscountPct,
		TaxPct:         q.TaxPct,
		Subtotal:       q.Subtotal,
		DiscountAmount: q.DiscountAmount,
		TaxAmount:      q.TaxAmount,
		Total:          q.Total,
		Status:         string(q.EffectiveStatus(now)),
		Expired:        cd.Expired,
		TimeLeft:       int64(cd.TimeLeft.Seconds()),
		Urgency:        string(cd.Urgency),
		CreatedAt:      q.CreatedAt,
		ExpiresAt:      q.ExpiresAt,
		UpdatedAt:      q.UpdatedAt,
	}
}
