package request

// CreatePaymentRequest starts the settlement flow for an existing quote.
type CreatePaymentRequest struct {
	QuoteID string `json:"quote_id" binding:"required"`
}
