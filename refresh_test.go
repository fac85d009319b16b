package goDrive

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRefreshCoordinatorCoalescesWaiters(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})

	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "T2", nil
	})

	var coalesced atomic.Int64
	rc.onCoalesced = func() { coalesced.Add(1) }

	const n = 8
	var wg sync.WaitGroup
	tokens := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = rc.AwaitRefresh(context.Background())
		}(i)
	}

	// Wait until every caller is queued, then settle the cycle.
	deadline := time.Now().Add(2 * time.Second)
	for {
		rc.mu.Lock()
		queued := len(rc.queue)
		rc.mu.Unlock()
		if queued == n {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d callers queued", queued, n)
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one refresh run, got %d", got)
	}
	if got := coalesced.Load(); got != n-1 {
		t.Fatalf("expected %d coalesced waiters, got %d", n-1, got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("waiter %d failed: %v", i, errs[i])
		}
		if tokens[i] != "T2" {
			t.Fatalf("waiter %d got token %q, want T2", i, tokens[i])
		}
	}
	if rc.inFlight() {
		t.Fatal("coordinator must return to idle after the cycle")
	}
}

func TestRefreshCoordinatorFailureFansOut(t *testing.T) {
	cause := errors.New("refresh rejected")
	release := make(chan struct{})

	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		<-release
		return "", cause
	})

	var expired atomic.Int64
	rc.onExpired = func(err error) {
		if !errors.Is(err, cause) {
			t.Errorf("onExpired got %v, want %v", err, cause)
		}
		expired.Add(1)
	}

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rc.AwaitRefresh(context.Background())
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rc.mu.Lock()
		queued := len(rc.queue)
		rc.mu.Unlock()
		if queued == n {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d callers queued", queued, n)
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	for i := 0; i < n; i++ {
		if !errors.Is(errs[i], cause) {
			t.Fatalf("waiter %d got %v, want %v", i, errs[i], cause)
		}
	}
	if got := expired.Load(); got != 1 {
		t.Fatalf("onExpired must fire exactly once per failed cycle, got %d", got)
	}
}

// Settlement order is checked with unbuffered tickets placed in the queue by
// hand: runCycle must send to them in enqueue order, so receiving them in
// that order succeeds while any other send order would block.
func TestRefreshCoordinatorSettlesTicketsFIFO(t *testing.T) {
	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		return "T2", nil
	})

	first := make(chan refreshOutcome)
	second := make(chan refreshOutcome)
	third := make(chan refreshOutcome)
	rc.mu.Lock()
	rc.queue = append(rc.queue, first, second, third)
	rc.refreshing = true
	rc.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		rc.runCycle(context.Background())
	}()

	for i, ticket := range []chan refreshOutcome{first, second, third} {
		select {
		case out := <-ticket:
			if out.token != "T2" {
				t.Fatalf("ticket %d got token %q, want T2", i, out.token)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("ticket %d not settled in enqueue order", i)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runCycle did not finish")
	}
	if rc.inFlight() {
		t.Fatal("coordinator must be idle after settlement")
	}
}

func TestRefreshCoordinatorCanceledCallerDoesNotStallCycle(t *testing.T) {
	release := make(chan struct{})
	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		<-release
		return "T2", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := rc.AwaitRefresh(ctx)
		errCh <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		rc.mu.Lock()
		queued := len(rc.queue)
		rc.mu.Unlock()
		if queued == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("caller never queued")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The cycle still settles on its own despite the abandoned caller.
	close(release)
	deadline = time.Now().Add(2 * time.Second)
	for rc.inFlight() {
		if time.Now().After(deadline) {
			t.Fatal("cycle did not settle after caller cancellation")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRefreshCoordinatorSequentialCyclesRunIndependently(t *testing.T) {
	var calls atomic.Int64
	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "T2", nil
	})

	for i := 0; i < 3; i++ {
		if _, err := rc.AwaitRefresh(context.Background()); err != nil {
			t.Fatalf("cycle %d failed: %v", i, err)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 independent cycles, got %d", got)
	}
}
