// Package daemon – attemptlog_test.go tests the advisory attempt log.
package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAttemptLog_AppendAndNilSafety(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempts.log")

	l, err := OpenAttemptLog(path)
	if err != nil {
		t.Fatalf("OpenAttemptLog failed: %v", err)
	}

	l.Append(OutcomeDelivered, "n1", "designer", nil)
	l.Append(OutcomeFailed, "n2", "developer", errors.New("session unreachable"))

	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[DELIVERED] notification=n1 agent=designer") {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], `error="session unreachable"`) {
		t.Errorf("Expected error detail in second line: %q", lines[1])
	}

	// A nil log must be a silent no-op so tests and disabled configs
	// can pass nil.
	var nilLog *AttemptLog
	nilLog.Append(OutcomeDelivered, "n3", "designer", nil)
	if err := nilLog.Close(); err != nil {
		t.Errorf("nil Close should return nil, got %v", err)
	}
}
