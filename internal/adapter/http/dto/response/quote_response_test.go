package response

import (
	"testing"
	"time"

	"cotizapay/internal/domain/entities"
)

func TestFromQuoteDerivesExpiredStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := entities.Quote{
		ID:        "q-1",
		Customer:  entities.Customer{Name: "Ana"},
		Status:    entities.QuoteStatusPending,
		ExpiresAt: now.Add(-time.Minute),
	}

	got := FromQuote(q, now)
	if got.Status != string(entities.QuoteStatusExpired) {
		t.Fatalf("expected derived expired status, got %s", got.Status)
	}
	if !got.Expired || got.TimeLeft != 0 || got.Urgency != "high" {
		t.Fatalf("unexpected countdown: expired=%v time_left=%d urgency=%s", got.Expired, got.TimeLeft, got.Urgency)
	}
}

func TestFromQuoteCountdownTiers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	q := entities.Quote{ID: "q-1", Status: entities.QuoteStatusPending, ExpiresAt: now.Add(48 * time.Hour)}
	got := FromQuote(q, now)
	if got.Urgency != "medium" || got.Expired {
		t.Fatalf("expected medium urgency, got %s expired=%v", got.Urgency, got.Expired)
	}
	if got.TimeLeft != int64((48 * time.Hour).Seconds()) {
		t.Fatalf("unexpected time_left_seconds: %d", got.TimeLeft)
	}
	if got.Status != string(entities.QuoteStatusPending) {
		t.Fatalf("expected pending status, got %s", got.Status)
	}
}
