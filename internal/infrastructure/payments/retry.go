package payments

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"cotizapay/internal/domain/entities"

	"github.com/facebookgo/clock"
)

// withRetry runs fn up to attempts times with a linearly increasing delay
// (attempt * baseDelay) between tries, the shared policy for every gateway
// call. Only transient failures are retried; a permanent error returns
// immediately. Exhaustion wraps the last failure in a TransientError so
// callers can keep polling instead of aborting.
func withRetry(ctx context.Context, clk clock.Clock, attempts int, baseDelay time.Duration, op string, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		last = err
		log.Printf("[payment][gateway] %s transient attempt=%d/%d err=%v", op, attempt, attempts, err)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return &entities.TransientError{Op: op, Attempts: attempt, Err: ctx.Err()}
		case <-clk.After(time.Duration(attempt) * baseDelay):
		}
	}
	return &entities.TransientError{Op: op, Attempts: attempts, Err: last}
}

// isTransient classifies an error as retryable: timeouts, connection-level
// failures and provider 5xx responses. Everything else (4xx, auth, malformed
// payloads) is permanent.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "unexpected eof") ||
		strings.Contains(msg, "\"status\":5") ||
		strings.Contains(msg, "status 5")
}
