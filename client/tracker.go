package client

import (
	"context"
	"errors"
	"event-ticket/common/constant"
	"event-ticket/model"
	"log/slog"
	"sync"
	"time"
)

const DefaultFailureBudget = 3

// Tracker keeps the registrant's last known registrations. Fetch failures keep the previous list
// and are only surfaced once FailureBudget consecutive attempts have failed.
type Tracker struct {
	Client        *Client
	FailureBudget int

	mu            sync.RWMutex
	registrations []model.Registration
	failures      int
	err           error
	refreshedAt   time.Time
}

// Refresh fetches the list once. It returns nil while failures stay within the budget.
func (t *Tracker) Refresh(ctx context.Context) error {
	regs, err := t.Client.registrations(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		t.registrations = regs
		t.failures = 0
		t.err = nil
		t.refreshedAt = time.Now()
		return nil
	}

	if errors.Is(err, ErrUnauthorized) {
		t.err = ErrUnauthorized
		return t.err
	}

	t.failures++
	slog.WarnContext(ctx, "failed to refresh registrations", slog.Int("failures", t.failures), slog.Any(constant.LogFieldErr, err))

	if t.failures >= t.budget() {
		t.err = &TransientFetchError{Failures: t.failures, Err: err}
	}

	return t.err
}

// Run polls until ctx is done or the session expires.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := t.Refresh(ctx); errors.Is(err, ErrUnauthorized) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *Tracker) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Registrations returns a copy of the last known list, newest first.
func (t *Tracker) Registrations() []model.Registration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Registration, len(t.registrations))
	copy(out, t.registrations)
	return out
}

func (t *Tracker) RefreshedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.refreshedAt
}

// HasActive reports whether the cached list holds a non-failed registration for the event.
func (t *Tracker) HasActive(eventId int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, reg := range t.registrations {
		if reg.EventId == eventId && reg.Active() {
			return true
		}
	}
	return false
}

// Record puts a freshly confirmed registration in front, replacing the pending order it settles.
func (t *Tracker) Record(reg model.Registration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := make([]model.Registration, 0, len(t.registrations)+1)
	kept = append(kept, reg)
	for _, existing := range t.registrations {
		if existing.Id == reg.Id || (reg.OrderId != "" && existing.OrderId == reg.OrderId) {
			continue
		}
		kept = append(kept, existing)
	}
	t.registrations = kept
}

// ForgetOrder drops the pending entry of an abandoned order.
func (t *Tracker) ForgetOrder(orderId string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.registrations[:0:0]
	for _, existing := range t.registrations {
		if existing.OrderId == orderId && existing.PaymentState == constant.PaymentStatePending {
			continue
		}
		kept = append(kept, existing)
	}
	t.registrations = kept
}

func (t *Tracker) budget() int {
	if t.FailureBudget <= 0 {
		return DefaultFailureBudget
	}
	return t.FailureBudget
}
