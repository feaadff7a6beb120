// Package collab – service.go owns message creation and its side
// effects: auto-subscribing the poster, writing the activity entry, and
// running notification fan-out. It sits between the web/CLI surface and
// the store; the delivery daemon never goes through it.
package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// Service implements the message/task collaboration layer.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService creates a collaboration service over the given store.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		logger: logger.With("component", "collab"),
	}
}

// MessageInput is a request to post a message on a task.
type MessageInput struct {
	TaskID        string
	FromAgentID   string
	Content       string
	Mentions      []string
	AttachmentIDs []string
}

// PostMessage persists the message and applies its side effects in order:
//
//  1. auto-subscribe the poster to the task (if the task exists),
//  2. write exactly one activity entry,
//  3. fan out notifications to mentions and subscribers.
//
// A missing task skips the subscribe step and subscriber notifications,
// but explicit mentions still fire. A store failure while creating the
// notification rows fails the whole post: a saved message whose
// notifications were silently lost is worse than a retryable error.
func (s *Service) PostMessage(ctx context.Context, in MessageInput) (string, error) {
	if in.FromAgentID == "" {
		return "", errors.New("post message: sender required")
	}
	if in.Content == "" {
		return "", errors.New("post message: content required")
	}

	messageID, err := s.store.CreateMessage(ctx, store.Message{
		TaskID:        in.TaskID,
		FromAgentID:   in.FromAgentID,
		Content:       in.Content,
		Mentions:      in.Mentions,
		AttachmentIDs: in.AttachmentIDs,
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	// Auto-subscribe the poster, then read the subscriber list back so
	// fan-out sees the post-subscribe state.
	var subscribers []string
	taskFound := false
	if in.TaskID != "" {
		err := s.store.AddSubscribers(ctx, in.TaskID, in.FromAgentID)
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			// Task deleted under us; mentions still fire below.
			s.logger.Warn("task missing at fan-out, skipping subscribers",
				"task", in.TaskID, "message", messageID)
		case err != nil:
			return "", fmt.Errorf("subscribe poster: %w", err)
		default:
			task, err := s.store.GetTask(ctx, in.TaskID)
			if err != nil {
				return "", fmt.Errorf("read task for fan-out: %w", err)
			}
			subscribers = task.SubscriberIDs
			taskFound = true
		}
	}

	if _, err := s.store.LogActivity(ctx, store.Activity{
		Type:    store.ActivityMessageSent,
		AgentID: in.FromAgentID,
		Message: "Commented on task",
		TaskID:  in.TaskID,
	}); err != nil {
		return "", fmt.Errorf("log message activity: %w", err)
	}

	recipients := Recipients(in.FromAgentID, in.Mentions, subscribers)
	if len(recipients) == 0 {
		// Valid state: nobody to notify.
		return messageID, nil
	}

	ids, err := s.store.CreateNotifications(ctx,
		buildNotifications(recipients, in.FromAgentID, in.Content, in.TaskID))
	if err != nil {
		return "", fmt.Errorf("create notifications: %w", err)
	}

	s.logger.Debug("message fan-out complete",
		"message", messageID,
		"task", in.TaskID,
		"task_found", taskFound,
		"recipients", len(ids),
	)
	return messageID, nil
}

// CreateTask creates a task with subscribers seeded from the assignees
// and records the creation activity.
func (s *Service) CreateTask(ctx context.Context, t store.Task) (string, error) {
	if t.CreatedBy == "" {
		return "", errors.New("create task: creator required")
	}

	taskID, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return "", err
	}

	if _, err := s.store.LogActivity(ctx, store.Activity{
		Type:    store.ActivityTaskCreated,
		AgentID: t.CreatedBy,
		Message: fmt.Sprintf("Created task: %s", t.Title),
		TaskID:  taskID,
	}); err != nil {
		return "", fmt.Errorf("log task activity: %w", err)
	}
	return taskID, nil
}

// UpdateTask applies a task update and records a status-change activity
// when the status actually changed.
func (s *Service) UpdateTask(ctx context.Context, taskID, agentID string, upd store.TaskUpdate) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	statusChanged := upd.Status != nil && *upd.Status != task.Status
	if err := s.store.UpdateTask(ctx, taskID, upd); err != nil {
		return err
	}

	if statusChanged {
		if _, err := s.store.LogActivity(ctx, store.Activity{
			Type:    store.ActivityStatusChanged,
			AgentID: agentID,
			Message: fmt.Sprintf("Changed status from %s to %s", task.Status, *upd.Status),
			TaskID:  taskID,
		}); err != nil {
			return fmt.Errorf("log status activity: %w", err)
		}
	}
	return nil
}
