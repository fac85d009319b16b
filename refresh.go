package goDrive

import (
	"context"
	"log/slog"
	"sync"
)

// refreshOutcome is what every ticket of one refresh cycle settles with:
// either the new token or the cycle's single error.
type refreshOutcome struct {
	token string
	err   error
}

// refreshCoordinator guarantees at most one outstanding refresh call. The
// first awaitRefresh in the Idle state flips to Refreshing and starts the
// refresh; every awaitRefresh during Refreshing enqueues a ticket instead.
// When the refresh settles, all tickets are settled in FIFO enqueue order,
// the queue is cleared, and the coordinator returns to Idle — atomically
// with respect to new arrivals, so a ticket can never straddle two cycles.
//
// It is an owned object, not module state: independent clients (and tests)
// each get their own coordinator.
type refreshCoordinator struct {
	// run performs the actual refresh call and, on success, installs the
	// new session before returning the token.
	run func(ctx context.Context) (string, error)
	// onExpired fires exactly once per failed cycle, after all tickets are
	// rejected.
	onExpired func(err error)
	// onCoalesced fires when a caller joins an in-flight cycle, for metrics.
	onCoalesced func()

	logger *slog.Logger

	mu         sync.Mutex
	refreshing bool
	queue      []chan refreshOutcome
}

func newRefreshCoordinator(run func(ctx context.Context) (string, error)) *refreshCoordinator {
	return &refreshCoordinator{
		run:    run,
		logger: slog.New(slog.DiscardHandler),
	}
}

// AwaitRefresh registers the caller for the current refresh cycle, starting
// one if none is in flight, and blocks until the cycle settles. The
// check-and-transition below is a single critical section: goroutines run in
// parallel, so the Idle check and the enqueue/kick-off decision must not be
// separable.
func (rc *refreshCoordinator) AwaitRefresh(ctx context.Context) (string, error) {
	ticket := make(chan refreshOutcome, 1)

	rc.mu.Lock()
	rc.queue = append(rc.queue, ticket)
	start := !rc.refreshing
	if start {
		rc.refreshing = true
	}
	rc.mu.Unlock()

	if start {
		// The refresh outcome is shared by every queued caller, so it must
		// not die with whichever caller happened to arrive first.
		go rc.runCycle(context.WithoutCancel(ctx))
	} else if rc.onCoalesced != nil {
		rc.onCoalesced()
	}

	select {
	case out := <-ticket:
		return out.token, out.err
	case <-ctx.Done():
		// The ticket stays in the queue and is settled with the cycle; the
		// buffered channel keeps settlement from blocking on an abandoned
		// caller.
		return "", ctx.Err()
	}
}

func (rc *refreshCoordinator) runCycle(ctx context.Context) {
	token, err := rc.run(ctx)

	rc.mu.Lock()
	queue := rc.queue
	rc.queue = nil
	rc.refreshing = false
	rc.mu.Unlock()

	// Tickets settle in FIFO enqueue order. Arrivals after the swap above
	// belong to a fresh cycle.
	out := refreshOutcome{token: token, err: err}
	for _, ticket := range queue {
		ticket <- out
	}

	if err != nil {
		rc.logger.Debug("refresh cycle failed", "waiters", len(queue), "err", err)
		if rc.onExpired != nil {
			rc.onExpired(err)
		}
	}
}

// inFlight reports whether a refresh cycle is currently outstanding.
func (rc *refreshCoordinator) inFlight() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.refreshing
}
