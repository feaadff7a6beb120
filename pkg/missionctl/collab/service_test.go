// Package collab – service_test.go tests message posting side effects
// against an in-memory store.
package collab

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
	"github.com/openclaw/missionctl/pkg/missionctl/store/sqlite"
)

func testService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewService(st, logger), st
}

func TestPostMessage_FanOutToMentionsAndSubscribers(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	taskID, err := svc.CreateTask(ctx, store.Task{
		Title:       "Launch prep",
		CreatedBy:   "jarvis",
		AssigneeIDs: []string{"designer"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	_, err = svc.PostMessage(ctx, MessageInput{
		TaskID:      taskID,
		FromAgentID: "developer",
		Content:     "please review @seo-analyst",
		Mentions:    []string{"seo-analyst"},
	})
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	// Mentioned agent and the subscribed assignee each get one row.
	for _, agent := range []string{"seo-analyst", "designer"} {
		pending, err := st.UndeliveredNotifications(ctx, agent)
		if err != nil {
			t.Fatalf("UndeliveredNotifications(%s) failed: %v", agent, err)
		}
		if len(pending) != 1 {
			t.Errorf("Expected 1 notification for %s, got %d", agent, len(pending))
		}
	}

	// The sender gets nothing.
	pending, err := st.UndeliveredNotifications(ctx, "developer")
	if err != nil {
		t.Fatalf("UndeliveredNotifications(developer) failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected no self-notification, got %d", len(pending))
	}
}

func TestPostMessage_MentionedSubscriberNotifiedOnce(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	taskID, err := svc.CreateTask(ctx, store.Task{
		Title:       "Launch prep",
		CreatedBy:   "jarvis",
		AssigneeIDs: []string{"designer"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	_, err = svc.PostMessage(ctx, MessageInput{
		TaskID:      taskID,
		FromAgentID: "developer",
		Content:     "ping @designer",
		Mentions:    []string{"designer"},
	})
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	pending, err := st.UndeliveredNotifications(ctx, "designer")
	if err != nil {
		t.Fatalf("UndeliveredNotifications failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("Expected exactly 1 notification for mentioned subscriber, got %d", len(pending))
	}
}

func TestPostMessage_AutoSubscribesPoster(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	taskID, err := svc.CreateTask(ctx, store.Task{
		Title:     "Launch prep",
		CreatedBy: "jarvis",
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	_, err = svc.PostMessage(ctx, MessageInput{
		TaskID:      taskID,
		FromAgentID: "developer",
		Content:     "starting on this",
	})
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	task, err := st.GetTask(ctx, taskID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	found := false
	for _, id := range task.SubscriberIDs {
		if id == "developer" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected poster subscribed after posting, got %v", task.SubscriberIDs)
	}

	// A later post by another agent now notifies the earlier poster.
	_, err = svc.PostMessage(ctx, MessageInput{
		TaskID:      taskID,
		FromAgentID: "jarvis",
		Content:     "thanks for the update",
	})
	if err != nil {
		t.Fatalf("second PostMessage failed: %v", err)
	}

	pending, err := st.UndeliveredNotifications(ctx, "developer")
	if err != nil {
		t.Fatalf("UndeliveredNotifications failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("Expected 1 notification for subscribed poster, got %d", len(pending))
	}
}

func TestPostMessage_MissingTaskStillNotifiesMentions(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	msgID, err := svc.PostMessage(ctx, MessageInput{
		TaskID:      "deleted-task",
		FromAgentID: "developer",
		Content:     "hello @designer",
		Mentions:    []string{"designer"},
	})
	if err != nil {
		t.Fatalf("PostMessage on missing task failed: %v", err)
	}
	if msgID == "" {
		t.Fatal("Expected a message id")
	}

	pending, err := st.UndeliveredNotifications(ctx, "designer")
	if err != nil {
		t.Fatalf("UndeliveredNotifications failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("Expected mention to fire despite missing task, got %d", len(pending))
	}
}

func TestPostMessage_SingleActivityEntry(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	taskID, err := svc.CreateTask(ctx, store.Task{
		Title:       "Launch prep",
		CreatedBy:   "jarvis",
		AssigneeIDs: []string{"designer", "seo-analyst"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	_, err = svc.PostMessage(ctx, MessageInput{
		TaskID:      taskID,
		FromAgentID: "developer",
		Content:     "multi-recipient post",
		Mentions:    []string{"jarvis"},
	})
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	acts, err := st.RecentActivities(ctx, 50)
	if err != nil {
		t.Fatalf("RecentActivities failed: %v", err)
	}
	sent := 0
	for _, a := range acts {
		if a.Type == store.ActivityMessageSent {
			sent++
		}
	}
	if sent != 1 {
		t.Errorf("Expected exactly 1 message_sent activity regardless of recipient count, got %d", sent)
	}
}

func TestPostMessage_Validation(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.PostMessage(ctx, MessageInput{Content: "no sender"}); err == nil {
		t.Error("Expected error for missing sender")
	}
	if _, err := svc.PostMessage(ctx, MessageInput{FromAgentID: "developer"}); err == nil {
		t.Error("Expected error for missing content")
	}
}

func TestUpdateTask_StatusChangeActivity(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	taskID, err := svc.CreateTask(ctx, store.Task{Title: "t", CreatedBy: "jarvis"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	status := store.TaskStatusProgress
	if err := svc.UpdateTask(ctx, taskID, "developer", store.TaskUpdate{Status: &status}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	// Repeating the same status must not log another change.
	if err := svc.UpdateTask(ctx, taskID, "developer", store.TaskUpdate{Status: &status}); err != nil {
		t.Fatalf("second UpdateTask failed: %v", err)
	}

	acts, err := st.RecentActivities(ctx, 50)
	if err != nil {
		t.Fatalf("RecentActivities failed: %v", err)
	}
	changes := 0
	for _, a := range acts {
		if a.Type == store.ActivityStatusChanged {
			changes++
		}
	}
	if changes != 1 {
		t.Errorf("Expected 1 status_changed activity, got %d", changes)
	}
}
