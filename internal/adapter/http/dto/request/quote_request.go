package request

import (
	"strings"

	"cotizapay/internal/domain/entities"
	"cotizapay/internal/usecase"
)

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type QuoteItemRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

// CreateQuoteRequest carries amounts as integer cents. Percentages are
// plain numbers (10 means 10%).
type CreateQuoteRequest struct {
	Customer    CustomerRequest    `json:"customer" binding:"required"`
	Items       []QuoteItemRequest `json:"items" binding:"required"`
	DiscountPct float64            `json:"discount_pct"`
	TaxPct      float64            `json:"tax_pct"`
}

func (r CreateQuoteRequest) ToInput() usecase.CreateQuoteInput {
	return usecase.CreateQuoteInput{
		Customer: entities.Customer{
			Name:    strings.TrimSpace(r.Customer.Name),
			Email:   strings.TrimSpace(r.Customer.Email),
			Phone:   strings.TrimSpace(r.Customer.Phone),
			Address: strings.TrimSpace(r.Customer.Address),
		},
		Items:       toItemInputs(r.Items),
		DiscountPct: r.DiscountPct,
		TaxPct:      r.TaxPct,
	}
}

// RepriceQuoteRequest replaces the quote's lines and percentages wholesale;
// partial updates are not supported.
type RepriceQuoteRequest struct {
	Items       []QuoteItemRequest `json:"items" binding:"required"`
	DiscountPct float64            `json:"discount_pct"`
	TaxPct      float64            `json:"tax_pct"`
}

func (r RepriceQuoteRequest) ToItemInputs() []usecase.QuoteItemInput {
	return toItemInputs(r.Items)
}

func toItemInputs(items []QuoteItemRequest) []usecase.QuoteItemInput {
	out := make([]usecase.QuoteItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, usecase.QuoteItemInput{
			ProductName: strings.TrimSpace(it.ProductName),
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return out
}
