// Package daemon – retry.go tracks per-notification retry backoff.
// State is an explicit map keyed by notification id, owned by the daemon
// process and in-memory only: a restart resets every counter, which is
// safe because the durable delivered flag drives correctness, not the
// backoff timer.
package daemon

import (
	"sync"
	"time"
)

// retrySchedule is the delay before the n-th retry. The last entry is
// the cap: every retry past the fifth failure waits 16s.
var retrySchedule = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
}

// retryEntry is the backoff state for one failing notification.
type retryEntry struct {
	failures    int
	nextAttempt time.Time
}

// retryTracker holds backoff state for all failing notifications.
// One stuck recipient never stalls delivery to others: delays are
// per-notification, not global.
type retryTracker struct {
	mu      sync.Mutex
	entries map[string]*retryEntry
	now     func() time.Time
}

// newRetryTracker creates a tracker using the given clock (nil means
// time.Now; tests inject their own).
func newRetryTracker(now func() time.Time) *retryTracker {
	if now == nil {
		now = time.Now
	}
	return &retryTracker{
		entries: make(map[string]*retryEntry),
		now:     now,
	}
}

// Ready reports whether the notification is eligible for an attempt:
// either it has never failed or its backoff delay has elapsed.
func (t *retryTracker) Ready(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return true
	}
	return !t.now().Before(e.nextAttempt)
}

// RecordFailure bumps the failure count and schedules the next attempt.
// Returns the applied delay. Delays are non-decreasing up to the cap.
func (t *retryTracker) RecordFailure(id string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		e = &retryEntry{}
		t.entries[id] = e
	}

	idx := e.failures
	if idx >= len(retrySchedule) {
		idx = len(retrySchedule) - 1
	}
	delay := retrySchedule[idx]

	e.failures++
	e.nextAttempt = t.now().Add(delay)
	return delay
}

// PruneExcept drops every entry whose id is not in live. The daemon
// calls this after a complete cycle with the set of undelivered ids it
// saw, so rows marked delivered by another process, or whose agent left
// the roster, do not pin backoff state for the life of the process.
func (t *retryTracker) PruneExcept(live map[string]bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.entries {
		if !live[id] {
			delete(t.entries, id)
		}
	}
}

// Retire drops the notification's backoff state after a confirmed
// delivery.
func (t *retryTracker) Retire(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// Len returns the number of tracked failing notifications.
func (t *retryTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
