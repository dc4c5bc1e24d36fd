package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"cotizapay/internal/domain/entities"
	"cotizapay/internal/domain/pricing"
	"cotizapay/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrInvalidQuoteID = errors.New("invalid quote id")
)

// QuoteItemInput is one line of caller-provided quote content. Subtotals and
// totals are always derived server-side.
type QuoteItemInput struct {
	ProductName string
	UnitPrice   int64
	Quantity    int
}

// CreateQuoteInput is the domain command for quote creation.
type CreateQuoteInput struct {
	Customer    entities.Customer
	Items       []QuoteItemInput
	DiscountPct float64
	TaxPct      float64
}

// IQuoteUseCase exposes quote operations.
//
// Totals are recomputed through pricing.ComputeTotals on every create and
// reprice; a validation failure leaves previously persisted totals untouched.

type IQuoteUseCase interface {
	CreateQuote(ctx context.Context, in CreateQuoteInput) (entities.Quote, error)
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	Reprice(ctx context.Context, id string, items []QuoteItemInput, discountPct, taxPct float64) (entities.Quote, error)
	CancelQuote(ctx context.Context, id string) (entities.Quote, error)
}

type QuoteUseCase struct {
	repo     interfaces.IQuoteRepository
	validity time.Duration
}

var _ IQuoteUseCase = (*QuoteUseCase)(nil)

func NewQuoteUseCase(repo interfaces.IQuoteRepository, validity time.Duration) *QuoteUseCase {
	return &QuoteUseCase{repo: repo, validity: validity}
}

func (u *QuoteUseCase) CreateQuote(ctx context.Context, in CreateQuoteInput) (entities.Quote, error) {
	if strings.TrimSpace(in.Customer.Name) == "" {
		return entities.Quote{}, &entities.ValidationError{Field: "customer.name", Reason: "is required"}
	}
	if len(in.Items) == 0 {
		return entities.Quote{}, &entities.ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	items, totals, err := buildQuoteItems(in.Items, in.DiscountPct, in.TaxPct)
	if err != nil {
		return entities.Quote{}, err
	}

	now := time.Now().UTC()
	q := entities.Quote{
		ID:             uuid.NewString(),
		Customer:       in.Customer,
		Items:          items,
		DiscountPct:    in.DiscountPct,
		TaxPct:         in.TaxPct,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
		Status:         entities.QuoteStatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(u.validity),
		UpdatedAt:      now,
	}
	log.Printf("[quote][usecase] create quote_id=%s total=%d expires_at=%s", q.ID, q.Total, q.ExpiresAt.Format(time.RFC3339))
	return u.repo.Create(ctx, q)
}

func (u *QuoteUseCase) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quote{}, ErrInvalidQuoteID
	}

	q, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, err
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

// Reprice replaces the quote's items and percentages and recomputes the four
// derived amounts in one write. Any input violation fails before anything is
// persisted, so the previous valid totals stay in place.
func (u *QuoteUseCase) Reprice(ctx context.Context, id string, items []QuoteItemInput, discountPct, taxPct float64) (entities.Quote, error) {
	q, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, err
	}

	now := time.Now().UTC()
	if st := q.EffectiveStatus(now); st != entities.QuoteStatusPending {
		return entities.Quote{}, &entities.PreconditionError{Reason: "quote is " + string(st) + " and can no longer be repriced"}
	}
	if len(items) == 0 {
		return entities.Quote{}, &entities.ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	newItems, totals, err := buildQuoteItems(items, discountPct, taxPct)
	if err != nil {
		return entities.Quote{}, err
	}

	q.Items = newItems
	q.DiscountPct = discountPct
	q.TaxPct = taxPct
	q.Subtotal = totals.Subtotal
	q.DiscountAmount = totals.DiscountAmount
	q.TaxAmount = totals.TaxAmount
	q.Total = totals.Total
	q.UpdatedAt = now

	log.Printf("[quote][usecase] reprice quote_id=%s total=%d", q.ID, q.Total)
	updated, err := u.repo.Update(ctx, q)
	if err != nil {
		return entities.Quote{}, err
	}
	if updated.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return updated, nil
}

func (u *QuoteUseCase) CancelQuote(ctx context.Context, id string) (entities.Quote, error) {
	q, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, err
	}
	if q.Status == entities.QuoteStatusCancelled {
		return q, nil
	}
	if q.Status == entities.QuoteStatusPaid {
		return entities.Quote{}, &entities.PreconditionError{Reason: "quote is already paid"}
	}

	log.Printf("[quote][usecase] cancel quote_id=%s", q.ID)
	updated, err := u.repo.UpdateStatus(ctx, q.ID, entities.QuoteStatusCancelled)
	if err != nil {
		return entities.Quote{}, err
	}
	if updated.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return updated, nil
}

func buildQuoteItems(in []QuoteItemInput, discountPct, taxPct float64) ([]entities.QuoteItem, pricing.Totals, error) {
	lines := make([]pricing.Line, 0, len(in))
	for _, it := range in {
		if strings.TrimSpace(it.ProductName) == "" {
			return nil, pricing.Totals{}, &entities.ValidationError{Field: "product_name", Reason: "is required"}
		}
		lines = append(lines, pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}

	totals, err := pricing.ComputeTotals(lines, discountPct, taxPct)
	if err != nil {
		return nil, pricing.Totals{}, err
	}

	items := make([]entities.QuoteItem, 0, len(in))
	for _, it := range in {
		items = append(items, entities.QuoteItem{
			ProductName: strings.TrimSpace(it.ProductName),
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.UnitPrice * int64(it.Quantity),
		})
	}
	return items, totals, nil
}
