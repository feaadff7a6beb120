// Package daemon – attemptlog.go appends one line per delivery attempt
// to a durable log file for operational visibility. The log is advisory
// only: retry eligibility rests solely on the delivered flag plus the
// in-memory backoff state, never on this file.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Attempt outcomes recorded in the log.
const (
	OutcomeDelivered  = "DELIVERED"
	OutcomeFailed     = "FAILED"
	OutcomeMarkFailed = "MARK_FAILED" // Sent, but marking delivered failed.
)

// AttemptLog is an append-only delivery attempt log.
type AttemptLog struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// OpenAttemptLog opens (or creates) the log file in append mode.
func OpenAttemptLog(path string) (*AttemptLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create attempt log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open attempt log %q: %w", path, err)
	}
	return &AttemptLog{file: f, now: time.Now}, nil
}

// Append records one attempt. Write failures are swallowed: losing a log
// line must never affect delivery.
func (l *AttemptLog) Append(outcome, notificationID, agentID string, attemptErr error) {
	if l == nil || l.file == nil {
		return
	}

	line := fmt.Sprintf("[%s] [%s] notification=%s agent=%s",
		l.now().UTC().Format(time.RFC3339), outcome, notificationID, agentID)
	if attemptErr != nil {
		line += fmt.Sprintf(" error=%q", attemptErr.Error())
	}
	line += "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.file.WriteString(line)
}

// Close closes the underlying file.
func (l *AttemptLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
