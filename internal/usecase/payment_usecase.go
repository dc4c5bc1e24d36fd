package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cotizapay/internal/domain/entities"
	"cotizapay/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidPaymentID = errors.New("invalid payment id")
)

// IPaymentUseCase is the payment orchestrator: the authoritative owner of one
// payment's lifecycle and the only component that transitions its state.
//
// The gateway response is the sole source of truth for remote transitions:
// state is written through after the gateway confirms, never optimistically
// before. The exception is Cancel, which is a local decision: local cancel
// wins and a later gateway-reported status never resurrects the payment.

type IPaymentUseCase interface {
	CreateForQuote(ctx context.Context, quoteID string) (entities.Payment, error)
	Refresh(ctx context.Context, paymentID string) (entities.Payment, error)
	Cancel(ctx context.Context, paymentID string) (entities.Payment, error)
	GetByID(ctx context.Context, paymentID string) (entities.Payment, error)
}

type PaymentUseCase struct {
	repo      interfaces.IPaymentRepository
	quoteRepo interfaces.IQuoteRepository
	gateway   interfaces.IPaymentGateway
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository, quoteRepo interfaces.IQuoteRepository, gateway interfaces.IPaymentGateway) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, quoteRepo: quoteRepo, gateway: gateway}
}

// CreateForQuote opens a settlement order for a pending, non-expired quote.
// The order amount is the quote's total at this moment; a quote with an active
// (non-terminal, non-expired) payment cannot get a second one.
func (u *PaymentUseCase) CreateForQuote(ctx context.Context, quoteID string) (entities.Payment, error) {
	quoteID = strings.TrimSpace(quoteID)
	if quoteID == "" {
		return entities.Payment{}, ErrInvalidQuoteID
	}
	log.Printf("[payment][usecase] create start quote_id=%s", quoteID)

	q, err := u.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Payment{}, err
	}
	if q.ID == "" {
		return entities.Payment{}, ErrQuoteNotFound
	}

	now := time.Now().UTC()
	if st := q.EffectiveStatus(now); st != entities.QuoteStatusPending {
		log.Printf("[payment][usecase] quote not payable quote_id=%s status=%s", quoteID, st)
		return entities.Payment{}, &entities.PreconditionError{Reason: "quote is " + string(st)}
	}

	existing, err := u.repo.ListByQuoteID(ctx, quoteID)
	if err != nil {
		return entities.Payment{}, err
	}
	for _, p := range existing {
		if p.IsActive(now) {
			log.Printf("[payment][usecase] active payment exists quote_id=%s payment_id=%s status=%s", quoteID, p.ID, p.Status)
			return entities.Payment{}, &entities.PreconditionError{Reason: "quote already has an active payment"}
		}
	}

	order, err := u.gateway.CreateOrder(ctx, q.ID, fmt.Sprintf("Quote %s", q.ID), q.Total, q.Customer.Email)
	if err != nil {
		log.Printf("[payment][usecase] gateway create failed quote_id=%s err=%v", quoteID, err)
		return entities.Payment{}, err
	}

	p := entities.Payment{
		ID:         uuid.NewString(),
		QuoteID:    q.ID,
		Amount:     q.Total,
		Status:     order.Status,
		ProviderID: order.ProviderID,
		QRCode:     order.QRCode,
		QRCodeData: order.QRCodeData,
		InitPoint:  order.InitPoint,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  order.ExpiresAt,
	}

	created, err := u.repo.Create(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] repository create failed quote_id=%s payment_id=%s err=%v", quoteID, p.ID, err)
		return entities.Payment{}, err
	}
	log.Printf("[payment][usecase] create success quote_id=%s payment_id=%s provider_id=%s status=%s", quoteID, created.ID, created.ProviderID, created.Status)
	return created, nil
}

// Refresh fetches the payment's current status from the gateway and applies
// the transition when it differs from the locally held one.
//
// A transient gateway failure returns the last-known payment unchanged
// together with a TransientError; the caller (the poller) owns the decision to
// try again on the next tick. Terminal states are never fetched against:
// approved, rejected and cancelled payments are returned as-is, so a refresh
// after a local cancel cannot resurrect a remotely pending status.
func (u *PaymentUseCase) Refresh(ctx context.Context, paymentID string) (entities.Payment, error) {
	p, err := u.GetByID(ctx, paymentID)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.Status.IsTerminal() {
		return p, nil
	}

	st, err := u.gateway.GetOrderStatus(ctx, p.ProviderID)
	if err != nil {
		var transient *entities.TransientError
		if errors.As(err, &transient) {
			log.Printf("[payment][usecase] refresh transient payment_id=%s attempts=%d err=%v", p.ID, transient.Attempts, err)
		} else {
			log.Printf("[payment][usecase] refresh failed payment_id=%s err=%v", p.ID, err)
		}
		return p, err
	}
	// A refresh raced a teardown: the fetched result is discarded unapplied.
	if err := ctx.Err(); err != nil {
		return p, err
	}
	if st.Status == p.Status {
		return p, nil
	}

	now := time.Now().UTC()
	next := p
	if err := next.ApplyGatewayStatus(st.Status, now); err != nil {
		var mismatch *entities.TerminalMismatchError
		if errors.As(err, &mismatch) {
			log.Printf("[payment][usecase] ignoring terminal mismatch payment_id=%s current=%s reported=%s", p.ID, mismatch.Current, mismatch.Reported)
			return p, nil
		}
		return p, err
	}

	updated, err := u.repo.UpdateStatus(ctx, p.ID, next.Status, next.SettledAt)
	if err != nil {
		return p, err
	}
	if updated.ID == "" {
		// Conditional write lost: the stored payment already left pending.
		return u.GetByID(ctx, paymentID)
	}
	log.Printf("[payment][usecase] refresh applied payment_id=%s status=%s", updated.ID, updated.Status)

	if updated.Status == entities.PaymentStatusApproved {
		if _, err := u.quoteRepo.UpdateStatus(ctx, updated.QuoteID, entities.QuoteStatusPaid); err != nil {
			log.Printf("[payment][usecase] quote paid flip failed quote_id=%s payment_id=%s err=%v", updated.QuoteID, updated.ID, err)
		} else {
			log.Printf("[payment][usecase] quote settled quote_id=%s payment_id=%s", updated.QuoteID, updated.ID)
		}
	}
	return updated, nil
}

// Cancel marks the payment cancelled locally and notifies the gateway on a
// best-effort basis. It is idempotent on an already-cancelled payment and a
// precondition failure on approved/rejected ones.
func (u *PaymentUseCase) Cancel(ctx context.Context, paymentID string) (entities.Payment, error) {
	p, err := u.GetByID(ctx, paymentID)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.Status == entities.PaymentStatusCancelled {
		return p, nil
	}
	if p.Status.IsTerminal() {
		return entities.Payment{}, &entities.PreconditionError{Reason: "payment is already " + string(p.Status)}
	}

	updated, err := u.repo.UpdateStatus(ctx, p.ID, entities.PaymentStatusCancelled, nil)
	if err != nil {
		return entities.Payment{}, err
	}
	if updated.ID == "" {
		// Conditional write lost: a concurrent refresh made the payment terminal.
		current, err := u.GetByID(ctx, paymentID)
		if err != nil {
			return entities.Payment{}, err
		}
		if current.Status == entities.PaymentStatusCancelled {
			return current, nil
		}
		return entities.Payment{}, &entities.PreconditionError{Reason: "payment is already " + string(current.Status)}
	}
	log.Printf("[payment][usecase] cancelled locally payment_id=%s", updated.ID)

	if err := u.gateway.CancelOrder(ctx, p.ProviderID); err != nil {
		// Best effort only; the local cancel stands regardless.
		log.Printf("[payment][usecase] remote cancel failed payment_id=%s provider_id=%s err=%v", p.ID, p.ProviderID, err)
	}
	return updated, nil
}

func (u *PaymentUseCase) GetByID(ctx context.Context, paymentID string) (entities.Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return entities.Payment{}, ErrInvalidPaymentID
	}

	p, err := u.repo.GetByID(ctx, paymentID)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}
