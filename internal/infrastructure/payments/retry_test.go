package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"cotizapay/internal/domain/entities"

	"github.com/facebookgo/clock"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), clock.New(), 3, time.Millisecond, "test.op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return context.DeadlineExceeded
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetryExhaustionWrapsTransientError(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), clock.New(), 3, time.Millisecond, "test.op", func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}

	var transient *entities.TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientError, got %v", err)
	}
	if transient.Op != "test.op" || transient.Attempts != 3 {
		t.Fatalf("unexpected wrap: op=%s attempts=%d", transient.Op, transient.Attempts)
	}
}

func TestWithRetryPermanentErrorReturnsImmediately(t *testing.T) {
	calls := 0
	permanent := errors.New(`{"status":400,"message":"invalid payer"}`)
	err := withRetry(context.Background(), clock.New(), 3, time.Millisecond, "test.op", func(ctx context.Context) error {
		calls++
		return permanent
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error passthrough, got %v", err)
	}
}

func TestWithRetryLinearBackoffDelays(t *testing.T) {
	clk := clock.NewMock()
	calls := 0
	done := make(chan error, 1)

	go func() {
		done <- withRetry(context.Background(), clk, 3, time.Second, "test.op", func(ctx context.Context) error {
			calls++
			return context.DeadlineExceeded
		})
	}()

	// First attempt runs immediately, then waits 1s, then 2s.
	time.Sleep(50 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("expected 1 call before first delay, got %d", calls)
	}
	clk.Add(time.Second)
	time.Sleep(50 * time.Millisecond)
	if calls != 2 {
		t.Fatalf("expected 2 calls after 1s, got %d", calls)
	}
	clk.Add(time.Second)
	time.Sleep(50 * time.Millisecond)
	if calls != 2 {
		t.Fatalf("second delay should be 2s, got %d calls after 1s more", calls)
	}
	clk.Add(time.Second)

	select {
	case err := <-done:
		var transient *entities.TransientError
		if !errors.As(err, &transient) {
			t.Fatalf("expected TransientError, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("withRetry did not return")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clk := clock.NewMock()
	done := make(chan error, 1)

	go func() {
		done <- withRetry(ctx, clk, 3, time.Second, "test.op", func(ctx context.Context) error {
			return context.DeadlineExceeded
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		var transient *entities.TransientError
		if !errors.As(err, &transient) {
			t.Fatalf("expected TransientError, got %v", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected wrapped context.Canceled, got %v", transient.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("withRetry did not return after cancel")
	}
}

func TestIsTransientClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"provider 5xx body", errors.New(`{"status":502,"message":"bad gateway"}`), true},
		{"provider 4xx body", errors.New(`{"status":404,"message":"not found"}`), false},
		{"auth failure", errors.New("invalid access token"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTransient(tc.err); got != tc.want {
				t.Fatalf("isTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
