// Package daemon – retry_test.go tests backoff progression.
package daemon

import (
	"testing"
	"time"
)

func TestRetryTracker_BackoffProgression(t *testing.T) {
	now := time.Unix(1000, 0)
	tracker := newRetryTracker(func() time.Time { return now })

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		16 * time.Second, // capped
		16 * time.Second,
	}

	for i, exp := range want {
		got := tracker.RecordFailure("n1")
		if got != exp {
			t.Errorf("failure %d: expected delay %v, got %v", i+1, exp, got)
		}
		// Not ready until the delay elapses.
		if tracker.Ready("n1") {
			t.Errorf("failure %d: expected not ready immediately after failure", i+1)
		}
		now = now.Add(exp)
		if !tracker.Ready("n1") {
			t.Errorf("failure %d: expected ready after %v elapsed", i+1, exp)
		}
	}
}

func TestRetryTracker_UnknownIDIsReady(t *testing.T) {
	tracker := newRetryTracker(nil)
	if !tracker.Ready("never-failed") {
		t.Error("Expected unknown notification to be ready")
	}
}

func TestRetryTracker_RetireResets(t *testing.T) {
	now := time.Unix(1000, 0)
	tracker := newRetryTracker(func() time.Time { return now })

	tracker.RecordFailure("n1")
	tracker.RecordFailure("n1")
	if tracker.Len() != 1 {
		t.Fatalf("Expected 1 tracked entry, got %d", tracker.Len())
	}

	tracker.Retire("n1")
	if tracker.Len() != 0 {
		t.Errorf("Expected tracker empty after retire, got %d", tracker.Len())
	}

	// A fresh failure starts the schedule over.
	if got := tracker.RecordFailure("n1"); got != 1*time.Second {
		t.Errorf("Expected schedule reset to 1s after retire, got %v", got)
	}
}

func TestRetryTracker_PruneExceptDropsStaleEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	tracker := newRetryTracker(func() time.Time { return now })

	tracker.RecordFailure("still-pending")
	tracker.RecordFailure("delivered-elsewhere")
	tracker.RecordFailure("agent-left-roster")
	if tracker.Len() != 3 {
		t.Fatalf("Expected 3 tracked entries, got %d", tracker.Len())
	}

	tracker.PruneExcept(map[string]bool{"still-pending": true})
	if tracker.Len() != 1 {
		t.Errorf("Expected 1 entry after prune, got %d", tracker.Len())
	}

	// The surviving entry keeps its backoff position.
	if got := tracker.RecordFailure("still-pending"); got != 2*time.Second {
		t.Errorf("Expected surviving entry to continue its schedule, got %v", got)
	}
	// Pruned entries start over.
	if got := tracker.RecordFailure("delivered-elsewhere"); got != 1*time.Second {
		t.Errorf("Expected pruned entry to restart its schedule, got %v", got)
	}
}

func TestRetryTracker_IndependentPerNotification(t *testing.T) {
	now := time.Unix(1000, 0)
	tracker := newRetryTracker(func() time.Time { return now })

	tracker.RecordFailure("slow")
	tracker.RecordFailure("slow")
	tracker.RecordFailure("slow")

	if got := tracker.RecordFailure("fresh"); got != 1*time.Second {
		t.Errorf("Expected independent schedule for second notification, got %v", got)
	}
}
