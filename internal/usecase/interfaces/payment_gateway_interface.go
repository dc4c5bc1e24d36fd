package interfaces

import (
	"context"
	"cotizapay/internal/domain/entities"
	"time"
)

// GatewayOrder is the provider's answer to a create call. QRCode, QRCodeData
// and InitPoint are opaque blobs passed through to clients unparsed.
type GatewayOrder struct {
	ProviderID string
	Status     entities.PaymentStatus
	QRCode     string
	QRCodeData string
	InitPoint  string
	ExpiresAt  *time.Time
}

// GatewayStatus is the provider's answer to a status fetch.
type GatewayStatus struct {
	Status entities.PaymentStatus
}

// IPaymentGateway abstracts the external payment provider (Mercado Pago).
//
// Implementations own the transport retry policy: transient network failures
// are retried internally and surface as entities.TransientError once
// exhausted. CancelOrder is best-effort; its failure never blocks a local
// cancellation.
type IPaymentGateway interface {
	CreateOrder(ctx context.Context, quoteID string, description string, amount int64, payerEmail string) (GatewayOrder, error)
	GetOrderStatus(ctx context.Context, providerID string) (GatewayStatus, error)
	CancelOrder(ctx context.Context, providerID string) error
}
