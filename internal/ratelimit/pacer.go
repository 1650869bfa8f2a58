// Package ratelimit paces outbound classifier calls: a minimum spacing
// between successive calls and an independent bound on concurrently
// in-flight calls.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer coordinates worker access to the remote provider. Acquire blocks
// until both constraints are satisfied; Release must be called when the
// call completes, regardless of outcome. Waiters are served by the shared
// limiter in arrival order, so no worker starves.
type Pacer struct {
	limiter *rate.Limiter
	permits chan struct{}
}

// NewPacer creates a pacer enforcing the given minimum spacing between
// calls and at most maxInFlight concurrent calls. A non-positive spacing
// disables spacing; maxInFlight below 1 is treated as 1.
func NewPacer(spacing time.Duration, maxInFlight int) *Pacer {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	limit := rate.Inf
	if spacing > 0 {
		limit = rate.Every(spacing)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		permits: make(chan struct{}, maxInFlight),
	}
}

// Acquire blocks until an in-flight permit is free and the spacing
// constraint allows another call. Returns the context's error if it is
// cancelled while waiting; no permit is held in that case.
func (p *Pacer) Acquire(ctx context.Context) error {
	select {
	case p.permits <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := p.limiter.Wait(ctx); err != nil {
		<-p.permits
		return err
	}
	return nil
}

// Release frees the in-flight permit taken by a successful Acquire.
func (p *Pacer) Release() {
	select {
	case <-p.permits:
	default:
		// Release without Acquire is a programming error; ignore rather
		// than block the worker.
	}
}

// InFlight returns the number of currently held permits.
func (p *Pacer) InFlight() int {
	return len(p.permits)
}
