// Package probe runs a background reachability check against a remote
// dependency. It uses failure/success thresholds (inspired by Kubernetes
// probe configuration) to avoid flapping: the target must fail consecutively
// failureThreshold times before being reported offline, and succeed
// successThreshold times before being reported online again.
package probe

import (
	"context"
	"sync/atomic"
	"time"
)

// CheckFunc performs a single reachability check. It should return nil when
// the target is reachable, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// Monitor periodically runs a single CheckFunc and exposes the smoothed
// result.
//
// Concurrency model: run() executes on exactly one goroutine (the ticker), so
// the consecutive counters need no synchronization. The online flag and
// lastErr are read from arbitrary goroutines and use atomics.
type Monitor struct {
	check            CheckFunc
	interval         time.Duration
	timeout          time.Duration
	failureThreshold int
	successThreshold int

	online  atomic.Bool
	lastErr atomic.Pointer[error]
	cancel  context.CancelFunc
	done    chan struct{}

	consecutiveFails int
	consecutiveOK    int
}

// New creates a Monitor for the given check. The target is assumed online
// until proven otherwise so the UI does not flash "offline" at startup.
func New(check CheckFunc, interval, timeout time.Duration) *Monitor {
	m := &Monitor{
		check:            check,
		interval:         interval,
		timeout:          timeout,
		failureThreshold: 3,
		successThreshold: 1,
		done:             make(chan struct{}),
	}
	m.online.Store(true)
	return m
}

// Start launches the background check loop. The first check runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go func() {
		defer close(m.done)
		m.run(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.run(ctx)
			}
		}
	}()
}

// Stop cancels the check loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
}

// Online reports whether the target is currently considered reachable.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// LastError returns the most recent check error, or nil.
func (m *Monitor) LastError() error {
	if p := m.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// run executes the check once and updates thresholds accordingly.
// Must be called from a single goroutine.
func (m *Monitor) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.check(checkCtx)
	m.lastErr.Store(&err)

	if err != nil {
		m.consecutiveOK = 0
		m.consecutiveFails++
		if m.consecutiveFails >= m.failureThreshold {
			m.online.Store(false)
		}
	} else {
		m.consecutiveFails = 0
		m.consecutiveOK++
		if m.consecutiveOK >= m.successThreshold {
			m.online.Store(true)
		}
	}
}
