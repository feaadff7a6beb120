// Package daemon – standup_test.go tests standup report generation.
package daemon

import (
	"context"
	"strings"
	"testing"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
	"github.com/openclaw/missionctl/pkg/missionctl/store/sqlite"
)

func TestStandup_GenerateAndRecord(t *testing.T) {
	st, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	seedAgent(t, st, "jarvis", "Jarvis")
	seedAgent(t, st, "developer", "Developer")

	if _, err := st.CreateTask(ctx, store.Task{
		Title:     "Fix login outage",
		Priority:  store.TaskPriorityUrgent,
		CreatedBy: "jarvis",
	}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := st.CreateTask(ctx, store.Task{
		Title:     "Write release notes",
		Status:    store.TaskStatusDone,
		CreatedBy: "jarvis",
	}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	s := NewStandup(st, testLogger())

	report, err := s.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, want := range []string{"Fix login outage", "Done (24h):** 1", "Jarvis", "Developer"} {
		if !strings.Contains(report, want) {
			t.Errorf("Expected report to mention %q\nreport:\n%s", want, report)
		}
	}

	if err := s.Record(ctx); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	acts, err := st.RecentActivities(ctx, 50)
	if err != nil {
		t.Fatalf("RecentActivities failed: %v", err)
	}
	found := false
	for _, a := range acts {
		if a.Type == store.ActivityStandup && a.AgentID == "system" {
			found = true
		}
	}
	if !found {
		t.Error("Expected a recorded standup activity")
	}
}
