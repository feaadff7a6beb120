// Package sqlite – store_test.go tests the SQLite store against the
// contract consumed by the collaboration layer and the delivery daemon.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterAgent_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := store.Agent{
		AgentID:    "developer",
		Name:       "Developer",
		Role:       "Development",
		Level:      store.AgentLevelSpecialist,
		Status:     store.AgentStatusIdle,
		SessionKey: "agent:developer:main",
	}

	if err := s.RegisterAgent(ctx, a); err != nil {
		t.Fatalf("RegisterAgent failed: %v", err)
	}

	// Re-registering with a different name must not overwrite.
	a.Name = "Someone Else"
	if err := s.RegisterAgent(ctx, a); err != nil {
		t.Fatalf("second RegisterAgent failed: %v", err)
	}

	got, err := s.GetAgent(ctx, "developer")
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got.Name != "Developer" {
		t.Errorf("Expected original name to survive re-register, got %q", got.Name)
	}
}

func TestGetAgent_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetAgent(context.Background(), "ghost")
	if !errors.Is(err, store.ErrAgentNotFound) {
		t.Errorf("Expected ErrAgentNotFound, got %v", err)
	}
}

func TestUpdateAgentStatus(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustRegister(t, s, "developer")

	if err := s.UpdateAgentStatus(ctx, "developer", store.AgentStatusWorking); err != nil {
		t.Fatalf("UpdateAgentStatus failed: %v", err)
	}

	got, err := s.GetAgent(ctx, "developer")
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got.Status != store.AgentStatusWorking {
		t.Errorf("Expected status working, got %s", got.Status)
	}

	err = s.UpdateAgentStatus(ctx, "ghost", store.AgentStatusIdle)
	if !errors.Is(err, store.ErrAgentNotFound) {
		t.Errorf("Expected ErrAgentNotFound for unknown agent, got %v", err)
	}
}

func TestCreateTask_SeedsSubscribersFromAssignees(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, store.Task{
		Title:       "Ship landing page",
		CreatedBy:   "jarvis",
		AssigneeIDs: []string{"designer", "developer", "designer"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if len(got.SubscriberIDs) != 2 {
		t.Fatalf("Expected 2 deduped subscribers, got %v", got.SubscriberIDs)
	}
	if got.Status != store.TaskStatusInbox {
		t.Errorf("Expected default status inbox, got %s", got.Status)
	}
	if got.Priority != store.TaskPriorityMedium {
		t.Errorf("Expected default priority medium, got %s", got.Priority)
	}
}

func TestAddSubscribers_NeverShrinks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, store.Task{
		Title:       "Test task",
		CreatedBy:   "jarvis",
		AssigneeIDs: []string{"developer"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := s.AddSubscribers(ctx, id, "designer", "developer"); err != nil {
		t.Fatalf("AddSubscribers failed: %v", err)
	}
	// Adding already-present ids is a no-op.
	if err := s.AddSubscribers(ctx, id, "developer"); err != nil {
		t.Fatalf("repeat AddSubscribers failed: %v", err)
	}

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if len(got.SubscriberIDs) != 2 {
		t.Errorf("Expected 2 subscribers, got %v", got.SubscriberIDs)
	}

	err = s.AddSubscribers(ctx, "missing-task", "developer")
	if !errors.Is(err, store.ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateTask_MergesAssigneesIntoSubscribers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.CreateTask(ctx, store.Task{
		Title:       "Test task",
		CreatedBy:   "jarvis",
		AssigneeIDs: []string{"developer"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	status := store.TaskStatusReview
	err = s.UpdateTask(ctx, id, store.TaskUpdate{
		Status:      &status,
		AssigneeIDs: []string{"designer"},
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != store.TaskStatusReview {
		t.Errorf("Expected status review, got %s", got.Status)
	}
	if len(got.SubscriberIDs) != 2 {
		t.Errorf("Expected new assignee merged into subscribers, got %v", got.SubscriberIDs)
	}
}

func TestCreateNotifications_BulkOrderAndReadYourWrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ns := []store.Notification{
		{MentionedAgentID: "designer", FromAgentID: "developer", Content: "one"},
		{MentionedAgentID: "jarvis", FromAgentID: "developer", Content: "one"},
		{MentionedAgentID: "designer", FromAgentID: "developer", Content: "two"},
	}

	ids, err := s.CreateNotifications(ctx, ns)
	if err != nil {
		t.Fatalf("CreateNotifications failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("Expected 3 ids, got %d", len(ids))
	}

	// Immediately visible to the recipient, in creation order.
	pending, err := s.UndeliveredNotifications(ctx, "designer")
	if err != nil {
		t.Fatalf("UndeliveredNotifications failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 undelivered for designer, got %d", len(pending))
	}
	if pending[0].Content != "one" || pending[1].Content != "two" {
		t.Errorf("Expected creation order preserved, got %q then %q",
			pending[0].Content, pending[1].Content)
	}

	other, err := s.UndeliveredNotifications(ctx, "jarvis")
	if err != nil {
		t.Fatalf("UndeliveredNotifications failed: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("Expected 1 undelivered for jarvis, got %d", len(other))
	}
}

func TestCreateNotifications_EmptyInput(t *testing.T) {
	s := testStore(t)

	ids, err := s.CreateNotifications(context.Background(), nil)
	if err != nil {
		t.Fatalf("CreateNotifications with empty input failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no ids, got %v", ids)
	}
}

func TestMarkDelivered_IdempotentAndMonotonic(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.CreateNotification(ctx, store.Notification{
		MentionedAgentID: "designer",
		FromAgentID:      "developer",
		Content:          "hello",
	})
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	if err := s.MarkDelivered(ctx, id); err != nil {
		t.Fatalf("MarkDelivered failed: %v", err)
	}
	// Second mark is a no-op, not an error.
	if err := s.MarkDelivered(ctx, id); err != nil {
		t.Fatalf("repeat MarkDelivered failed: %v", err)
	}

	pending, err := s.UndeliveredNotifications(ctx, "designer")
	if err != nil {
		t.Fatalf("UndeliveredNotifications failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected delivered row to stay out of the undelivered set, got %d", len(pending))
	}

	err = s.MarkDelivered(ctx, "no-such-id")
	if !errors.Is(err, store.ErrNotificationNotFound) {
		t.Errorf("Expected ErrNotificationNotFound, got %v", err)
	}
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.CreateNotification(ctx, store.Notification{
		MentionedAgentID: "designer",
		FromAgentID:      "developer",
		Content:          "seed",
	}); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	// The delivery daemon hits the store from one goroutine per agent;
	// an in-memory database must survive that, not just serial access.
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateNotifications(ctx, []store.Notification{
				{MentionedAgentID: "designer", FromAgentID: "developer", Content: fmt.Sprintf("msg-%d", i)},
			})
			if err != nil {
				errs <- err
				return
			}
			if _, err := s.UndeliveredNotifications(ctx, "designer"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent store access failed: %v", err)
	}

	pending, err := s.UndeliveredNotifications(ctx, "designer")
	if err != nil {
		t.Fatalf("UndeliveredNotifications failed: %v", err)
	}
	if len(pending) != 17 {
		t.Errorf("Expected all 17 rows visible, got %d", len(pending))
	}
}

func TestMessagesByTask(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	taskID, err := s.CreateTask(ctx, store.Task{Title: "t", CreatedBy: "jarvis"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	for _, content := range []string{"first", "second"} {
		_, err := s.CreateMessage(ctx, store.Message{
			TaskID:      taskID,
			FromAgentID: "developer",
			Content:     content,
			Mentions:    []string{"designer"},
		})
		if err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	msgs, err := s.ListMessagesByTask(ctx, taskID)
	if err != nil {
		t.Fatalf("ListMessagesByTask failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "first" {
		t.Errorf("Expected chronological order, got %q first", msgs[0].Content)
	}
	if len(msgs[0].Mentions) != 1 || msgs[0].Mentions[0] != "designer" {
		t.Errorf("Expected mentions round-tripped, got %v", msgs[0].Mentions)
	}
}

func TestActivities(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.LogActivity(ctx, store.Activity{
			Type:    store.ActivityMessageSent,
			AgentID: "developer",
			Message: "Commented on task",
		})
		if err != nil {
			t.Fatalf("LogActivity failed: %v", err)
		}
	}

	acts, err := s.RecentActivities(ctx, 2)
	if err != nil {
		t.Fatalf("RecentActivities failed: %v", err)
	}
	if len(acts) != 2 {
		t.Errorf("Expected limit of 2 applied, got %d", len(acts))
	}
}

func TestDocuments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.CreateDocument(ctx, store.Document{
		Title:     "Launch plan",
		Content:   "# Plan",
		CreatedBy: "jarvis",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	got, err := s.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.Title != "Launch plan" {
		t.Errorf("Expected title round-tripped, got %q", got.Title)
	}

	_, err = s.GetDocument(ctx, "missing")
	if !errors.Is(err, store.ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound, got %v", err)
	}
}

func mustRegister(t *testing.T, s *Store, agentID string) {
	t.Helper()
	err := s.RegisterAgent(context.Background(), store.Agent{
		AgentID:    agentID,
		Name:       agentID,
		Role:       "Test",
		Level:      store.AgentLevelSpecialist,
		Status:     store.AgentStatusIdle,
		SessionKey: "agent:" + agentID + ":main",
	})
	if err != nil {
		t.Fatalf("RegisterAgent failed: %v", err)
	}
}
