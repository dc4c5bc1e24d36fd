package entities

import "fmt"

// Error taxonomy for the settlement workflow.
//
//   - ValidationError: bad input (quantities, prices, percentage bounds);
//     never retried, surfaced immediately.
//   - PreconditionError: operation against a quote/payment in the wrong state;
//     surfaced immediately, not retried.
//   - TransientError: network/timeout talking to the gateway; retried by the
//     shared retry policy and, if exhausted, surfaced as a recoverable warning.
//   - TerminalMismatchError: gateway reported a transition out of a terminal
//     status; logged and ignored, terminal states are sticky.

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

type TransientError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

type TerminalMismatchError struct {
	PaymentID string
	Current   PaymentStatus
	Reported  PaymentStatus
}

func (e *TerminalMismatchError) Error() string {
	return fmt.Sprintf("payment %s: gateway reported %s out of terminal %s", e.PaymentID, e.Reported, e.Current)
}
