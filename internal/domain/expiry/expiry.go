// Package expiry classifies how close an entity is to its validity deadline.
//
// Quotes and payments share the same three-tier urgency shape with different
// absolute thresholds, so the computation is a single parametrized function.
package expiry

import "time"

// Urgency is the three-tier closeness classification.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Thresholds are the remaining-time cutoffs for high and medium urgency.
type Thresholds struct {
	High   time.Duration
	Medium time.Duration
}

// Canonical threshold sets for the two entity kinds.
var (
	QuoteThresholds   = Thresholds{High: 24 * time.Hour, Medium: 72 * time.Hour}
	PaymentThresholds = Thresholds{High: time.Hour, Medium: 3 * time.Hour}
)

// Countdown is the result of a single expiry observation.
type Countdown struct {
	Expired  bool          `json:"expired"`
	TimeLeft time.Duration `json:"time_left"`
	Urgency  Urgency       `json:"urgency"`
}

// TimeUntil computes the remaining validity window at a point in time.
// now == expiresAt already counts as expired. Pure; safe to call on every
// render or poll tick.
func TimeUntil(now, expiresAt time.Time, th Thresholds) Countdown {
	if !now.Before(expiresAt) {
		return Countdown{Expired: true, TimeLeft: 0, Urgency: UrgencyHigh}
	}

	left := expiresAt.Sub(now)
	urgency := UrgencyLow
	switch {
	case left <= th.High:
		urgency = UrgencyHigh
	case left <= th.Medium:
		urgency = UrgencyMedium
	}
	return Countdown{Expired: false, TimeLeft: left, Urgency: urgency}
}
