package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"cotizapay/internal/domain/entities"

	"github.com/facebookgo/clock"
)

// ErrNoLivePoller is returned by RefreshNow when no poller is tracking the
// payment (for instance after a process restart); callers fall back to a
// direct orchestrator refresh.
var ErrNoLivePoller = errors.New("no live poller for payment")

// IPaymentRefresher is the slice of the orchestrator the poller drives.
type IPaymentRefresher interface {
	Refresh(ctx context.Context, paymentID string) (entities.Payment, error)
}

var _ IPaymentRefresher = (*PaymentUseCase)(nil)

// ReconciliationPoller drives the orchestrator's refresh on a fixed interval
// for every tracked payment until it reaches a terminal state.
//
// One logical timer per payment, no shared mutable state across payments.
// The clock is injectable so tests run against clock.NewMock().

type ReconciliationPoller struct {
	refresher IPaymentRefresher
	clock     clock.Clock
	interval  time.Duration

	mu      sync.Mutex
	handles map[string]*PollerHandle
}

func NewReconciliationPoller(refresher IPaymentRefresher, clk clock.Clock, interval time.Duration) *ReconciliationPoller {
	return &ReconciliationPoller{
		refresher: refresher,
		clock:     clk,
		interval:  interval,
		handles:   make(map[string]*PollerHandle),
	}
}

// Start begins polling a payment. Callbacks: onUpdate fires after every
// applied refresh, terminal or not; onTerminal fires exactly once, with the
// handle already stopped. Starting an already-tracked payment returns the
// live handle instead of a second timer.
func (r *ReconciliationPoller) Start(paymentID string, onUpdate, onTerminal func(entities.Payment)) *PollerHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[paymentID]; ok && !h.isStopped() {
		return h
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &PollerHandle{
		paymentID:  paymentID,
		poller:     r,
		onUpdate:   onUpdate,
		onTerminal: onTerminal,
		ctx:        ctx,
		cancel:     cancel,
	}
	r.handles[paymentID] = h
	go h.loop()
	log.Printf("[poller] started payment_id=%s interval=%s", paymentID, r.interval)
	return h
}

// RefreshNow triggers a manual refresh through the payment's live poller,
// sharing the timer's single-flight guard: if a refresh is already in flight
// the request is coalesced into a no-op (refreshed=false, nil error) instead
// of firing a duplicate concurrent call.
func (r *ReconciliationPoller) RefreshNow(paymentID string) (entities.Payment, bool, error) {
	r.mu.Lock()
	h, ok := r.handles[paymentID]
	r.mu.Unlock()
	if !ok || h.isStopped() {
		return entities.Payment{}, false, ErrNoLivePoller
	}
	return h.refreshOnce()
}

// Stop tears down the poller for one payment, if any.
func (r *ReconciliationPoller) Stop(paymentID string) {
	r.mu.Lock()
	h, ok := r.handles[paymentID]
	r.mu.Unlock()
	if ok {
		h.Stop()
	}
}

// StopAll tears down every live poller; used on shutdown.
func (r *ReconciliationPoller) StopAll() {
	r.mu.Lock()
	handles := make([]*PollerHandle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}

func (r *ReconciliationPoller) remove(paymentID string, h *PollerHandle) {
	r.mu.Lock()
	if r.handles[paymentID] == h {
		delete(r.handles, paymentID)
	}
	r.mu.Unlock()
}

// PollerHandle is one payment's timer loop.
//
// Ordering guarantee: at most one outstanding refresh per payment, so results
// are applied in the order their calls were issued. Stop cancels the handle's
// context, so an in-flight gateway call is aborted and its result discarded
// before any state is applied. It also bumps the generation counter so a
// result that does come back late is dropped instead of acted on.
type PollerHandle struct {
	paymentID  string
	poller     *ReconciliationPoller
	onUpdate   func(entities.Payment)
	onTerminal func(entities.Payment)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	stopped  bool
	inFlight bool
	gen      uint64
}

// Stop is idempotent and safe after natural termination. Once it returns, no
// further payment state is mutated on behalf of this handle.
func (h *PollerHandle) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.gen++
	h.mu.Unlock()

	h.cancel()
	h.poller.remove(h.paymentID, h)
	log.Printf("[poller] stopped payment_id=%s", h.paymentID)
}

func (h *PollerHandle) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

func (h *PollerHandle) loop() {
	ticker := h.poller.clock.Ticker(h.poller.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.refreshOnce()
		}
	}
}

// refreshOnce runs a single guarded refresh. A tick that finds a refresh
// already in flight is skipped, never queued. It reports whether a refresh
// actually executed, the resulting payment and the refresh error, if any.
func (h *PollerHandle) refreshOnce() (entities.Payment, bool, error) {
	h.mu.Lock()
	if h.stopped || h.inFlight {
		h.mu.Unlock()
		return entities.Payment{}, false, nil
	}
	h.inFlight = true
	gen := h.gen
	h.mu.Unlock()

	p, err := h.poller.refresher.Refresh(h.ctx, h.paymentID)

	h.mu.Lock()
	h.inFlight = false
	if h.stopped || gen != h.gen {
		h.mu.Unlock()
		return entities.Payment{}, false, nil
	}
	terminal := err == nil && p.Status.IsTerminal()
	if terminal {
		h.stopped = true
		h.gen++
	}
	h.mu.Unlock()

	if err != nil {
		var transient *entities.TransientError
		switch {
		case errors.As(err, &transient):
			// Recoverable: the payment is unchanged and the next tick retries.
			log.Printf("[poller] transient refresh payment_id=%s err=%v", h.paymentID, err)
		case errors.Is(err, context.Canceled):
		default:
			log.Printf("[poller] refresh error payment_id=%s err=%v", h.paymentID, err)
		}
		return p, true, err
	}

	if h.onUpdate != nil {
		h.onUpdate(p)
	}
	if terminal {
		h.cancel()
		h.poller.remove(h.paymentID, h)
		log.Printf("[poller] terminal payment_id=%s status=%s", h.paymentID, p.Status)
		if h.onTerminal != nil {
			h.onTerminal(p)
		}
	}
	return p, true, nil
}
