package entities

import (
	"errors"
	"testing"
	"time"
)

func TestParsePaymentStatus(t *testing.T) {
	for _, valid := range []string{"pending", "approved", "rejected", "cancelled"} {
		if _, err := ParsePaymentStatus(valid); err != nil {
			t.Fatalf("expected %q to parse, got %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "refunded", "in_process", "PENDING"} {
		if _, err := ParsePaymentStatus(invalid); err == nil {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}

func TestParseQuoteStatus(t *testing.T) {
	for _, valid := range []string{"pending", "paid", "cancelled", "expired"} {
		if _, err := ParseQuoteStatus(valid); err != nil {
			t.Fatalf("expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseQuoteStatus("draft"); err == nil {
		t.Fatal("expected draft to be rejected")
	}
}

func TestPayment_ApplyGatewayStatus_TerminalSticky(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, terminal := range []PaymentStatus{PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled} {
		p := Payment{ID: "pay-1", Status: PaymentStatusPending}
		if err := p.ApplyGatewayStatus(terminal, now); err != nil {
			t.Fatalf("unexpected error reaching %s: %v", terminal, err)
		}

		// No sequence of refreshes moves the payment out again.
		for _, next := range []PaymentStatus{PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled} {
			if next == terminal {
				continue
			}
			err := p.ApplyGatewayStatus(next, now.Add(time.Minute))
			var mismatch *TerminalMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("expected TerminalMismatchError for %s -> %s, got %v", terminal, next, err)
			}
			if p.Status != terminal {
				t.Fatalf("payment left terminal state: %s", p.Status)
			}
		}
	}
}

func TestPayment_ApplyGatewayStatus_SameStatusNoop(t *testing.T) {
	now := time.Now().UTC()
	p := Payment{ID: "pay-1", Status: PaymentStatusPending}
	if err := p.ApplyGatewayStatus(PaymentStatusPending, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.UpdatedAt.IsZero() {
		t.Fatal("no-op transition must not touch the payment")
	}
}

func TestPayment_ApplyGatewayStatus_ApprovedSetsSettledAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	p := Payment{ID: "pay-1", Status: PaymentStatusPending}
	if err := p.ApplyGatewayStatus(PaymentStatusApproved, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SettledAt == nil || !p.SettledAt.Equal(now) {
		t.Fatalf("expected settled_at %v, got %v", now, p.SettledAt)
	}
}

func TestPayment_IsActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		p    Payment
		want bool
	}{
		{name: "pending without expiry", p: Payment{Status: PaymentStatusPending}, want: true},
		{name: "pending before expiry", p: Payment{Status: PaymentStatusPending, ExpiresAt: &future}, want: true},
		{name: "pending past expiry", p: Payment{Status: PaymentStatusPending, ExpiresAt: &past}, want: false},
		{name: "approved", p: Payment{Status: PaymentStatusApproved}, want: false},
		{name: "cancelled", p: Payment{Status: PaymentStatusCancelled}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p.IsActive(now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestQuote_EffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	q := Quote{Status: QuoteStatusPending, ExpiresAt: now.Add(time.Hour)}
	if got := q.EffectiveStatus(now); got != QuoteStatusPending {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := q.EffectiveStatus(now.Add(time.Hour)); got != QuoteStatusExpired {
		t.Fatalf("expected expired at the boundary, got %s", got)
	}

	paid := Quote{Status: QuoteStatusPaid, ExpiresAt: now.Add(-time.Hour)}
	if got := paid.EffectiveStatus(now); got != QuoteStatusPaid {
		t.Fatalf("paid must not decay to expired, got %s", got)
	}
}
