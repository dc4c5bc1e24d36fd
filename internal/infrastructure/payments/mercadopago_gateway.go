package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"cotizapay/internal/domain/entities"
	appconfig "cotizapay/internal/infrastructure/config"
	"cotizapay/internal/usecase/interfaces"

	"github.com/facebookgo/clock"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

// MercadoPagoGateway adapts the Mercado Pago payments API to the
// IPaymentGateway port. Every call goes through the shared retry policy and a
// bounded per-attempt timeout; QR and init-point payloads from the provider
// are passed through as opaque strings.

type MercadoPagoGateway struct {
	client    payment.Client
	clk       clock.Clock
	timeout   time.Duration
	orderTTL  time.Duration
	attempts  int
	baseDelay time.Duration
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(cfg appconfig.MercadoPago, retry appconfig.Settlement, clk clock.Clock) (*MercadoPagoGateway, error) {
	if cfg.AccessToken == "" {
		log.Printf("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	sdkCfg, err := mpconfig.New(cfg.AccessToken)
	if err != nil {
		log.Printf("[payment][gateway] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[payment][gateway] Mercado Pago client initialized")

	return &MercadoPagoGateway{
		client:    payment.NewClient(sdkCfg),
		clk:       clk,
		timeout:   cfg.RequestTimeout,
		orderTTL:  cfg.OrderTTL,
		attempts:  retry.RetryAttempts,
		baseDelay: retry.RetryBaseDelay,
	}, nil
}

func (g *MercadoPagoGateway) CreateOrder(ctx context.Context, quoteID, description string, amount int64, payerEmail string) (interfaces.GatewayOrder, error) {
	log.Printf("[payment][gateway] create start quote_id=%s amount=%d", quoteID, amount)

	expiration := time.Now().UTC().Add(g.orderTTL)
	req := payment.Request{
		TransactionAmount: centsToAmount(amount),
		Description:       description,
		ExternalReference: quoteID,
		PaymentMethodID:   "pix",
		DateOfExpiration:  &expiration,
	}
	if payerEmail != "" {
		req.Payer = &payment.PayerRequest{Email: payerEmail}
	}

	var resp *payment.Response
	err := withRetry(ctx, g.clk, g.attempts, g.baseDelay, "mercadopago.create", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		var err error
		resp, err = g.client.Create(callCtx, req)
		return err
	})
	if err != nil {
		log.Printf("[payment][gateway] create failed quote_id=%s err=%v", quoteID, err)
		return interfaces.GatewayOrder{}, err
	}

	status, err := mapProviderStatus(resp.Status)
	if err != nil {
		return interfaces.GatewayOrder{}, err
	}

	order := interfaces.GatewayOrder{
		ProviderID: strconv.Itoa(resp.ID),
		Status:     status,
		QRCode:     resp.PointOfInteraction.TransactionData.QRCode,
		QRCodeData: resp.PointOfInteraction.TransactionData.QRCodeBase64,
		InitPoint:  resp.PointOfInteraction.TransactionData.TicketURL,
	}
	if !resp.DateOfExpiration.IsZero() {
		exp := resp.DateOfExpiration.UTC()
		order.ExpiresAt = &exp
	}
	log.Printf("[payment][gateway] create success quote_id=%s provider_id=%s provider_status=%s", quoteID, order.ProviderID, resp.Status)
	return order, nil
}

func (g *MercadoPagoGateway) GetOrderStatus(ctx context.Context, providerID string) (interfaces.GatewayStatus, error) {
	id, err := strconv.Atoi(providerID)
	if err != nil {
		return interfaces.GatewayStatus{}, fmt.Errorf("invalid provider id %q: %w", providerID, err)
	}

	var resp *payment.Response
	err = withRetry(ctx, g.clk, g.attempts, g.baseDelay, "mercadopago.get", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		var err error
		resp, err = g.client.Get(callCtx, id)
		return err
	})
	if err != nil {
		return interfaces.GatewayStatus{}, err
	}

	status, err := mapProviderStatus(resp.Status)
	if err != nil {
		return interfaces.GatewayStatus{}, err
	}
	return interfaces.GatewayStatus{Status: status}, nil
}

func (g *MercadoPagoGateway) CancelOrder(ctx context.Context, providerID string) error {
	id, err := strconv.Atoi(providerID)
	if err != nil {
		return fmt.Errorf("invalid provider id %q: %w", providerID, err)
	}

	err = withRetry(ctx, g.clk, g.attempts, g.baseDelay, "mercadopago.cancel", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		_, err := g.client.Cancel(callCtx, id)
		return err
	})
	if err != nil {
		log.Printf("[payment][gateway] cancel failed provider_id=%s err=%v", providerID, err)
	}
	return err
}

// mapProviderStatus folds Mercado Pago's status vocabulary into the closed
// domain enum. in_process and authorized are still settling, so they stay
// pending; anything not in the table is rejected rather than defaulted.
func mapProviderStatus(s string) (entities.PaymentStatus, error) {
	switch s {
	case "pending", "in_process", "authorized":
		return entities.PaymentStatusPending, nil
	case "approved":
		return entities.PaymentStatusApproved, nil
	case "rejected":
		return entities.PaymentStatusRejected, nil
	case "cancelled":
		return entities.PaymentStatusCancelled, nil
	}
	return "", fmt.Errorf("unknown provider status %q", s)
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100
}
