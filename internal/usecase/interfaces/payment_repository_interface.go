package interfaces

import (
	"context"
	"cotizapay/internal/domain/entities"
	"time"
)

// IPaymentRepository abstracts DynamoDB persistence for Payment.
//
// UpdateStatus applies a status transition out of pending only; the storage
// layer backs up the domain's sticky-terminal rule with a conditional write.

type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	ListByQuoteID(ctx context.Context, quoteID string) ([]entities.Payment, error)
	UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, settledAt *time.Time) (entities.Payment, error)
}
