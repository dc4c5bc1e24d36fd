// Package pricing computes quote totals.
//
// All amounts are integer cents. Discount and tax amounts are rounded half-up
// to the cent before summation, so recomputing with identical inputs always
// reproduces the same totals.
package pricing

import (
	"cotizapay/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// Line is one quote item as far as totals are concerned.
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Totals are the four derived amounts, in cents.
// Invariant: Total == (Subtotal - DiscountAmount) + TaxAmount.
type Totals struct {
	Subtotal       int64
	DiscountAmount int64
	TaxAmount      int64
	Total          int64
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals derives subtotal, discount, tax and total from item lines and
// two percentages. It validates instead of clamping: quantity must be >= 1,
// unit price >= 0 and both percentages within [0,100]; violations fail with a
// ValidationError naming the offending field and no partial result.
func ComputeTotals(lines []Line, discountPct, taxPct float64) (Totals, error) {
	if discountPct < 0 || discountPct > 100 {
		return Totals{}, &entities.ValidationError{Field: "discount_pct", Reason: "must be within [0,100]"}
	}
	if taxPct < 0 || taxPct > 100 {
		return Totals{}, &entities.ValidationError{Field: "tax_pct", Reason: "must be within [0,100]"}
	}

	var subtotal int64
	for _, l := range lines {
		if l.Quantity < 1 {
			return Totals{}, &entities.ValidationError{Field: "quantity", Reason: "must be >= 1"}
		}
		if l.UnitPrice < 0 {
			return Totals{}, &entities.ValidationError{Field: "unit_price", Reason: "must be >= 0"}
		}
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	discountAmount := percentOf(subtotal, discountPct)
	afterDiscount := subtotal - discountAmount
	taxAmount := percentOf(afterDiscount, taxPct)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          afterDiscount + taxAmount,
	}, nil
}

// percentOf returns pct% of an amount in cents, rounded half-up.
// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts allowed here.
func percentOf(amount int64, pct float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(oneHundred).
		Round(0).
		IntPart()
}
