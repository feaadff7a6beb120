// Package sqlite – tasks.go implements task persistence. Subscriber
// handling is the part that matters for notification fan-out: subscribers
// are seeded from assignees at creation and only ever grow.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// CreateTask inserts a task. Subscribers are seeded from the assignees.
// Returns the store-assigned id.
func (s *Store) CreateTask(ctx context.Context, t store.Task) (string, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.Status == "" {
		t.Status = store.TaskStatusInbox
	}
	if t.Priority == "" {
		t.Priority = store.TaskPriorityMedium
	}
	now := nowMillis()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt

	subscribers := dedupIDs(append(append([]string{}, t.SubscriberIDs...), t.AssigneeIDs...))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
		encodeIDs(t.AssigneeIDs), encodeIDs(subscribers), t.CreatedBy,
		encodeIDs(t.Tags), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return t.ID, nil
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(ctx context.Context, id string) (store.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at
		FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Task{}, store.ErrTaskNotFound
	}
	if err != nil {
		return store.Task{}, fmt.Errorf("get task %q: %w", id, err)
	}
	return t, nil
}

// ListTasks returns all tasks ordered by last update, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]store.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at
		FROM tasks ORDER BY updated_at DESC`)
}

// ListTasksByStatus returns tasks in the given status.
func (s *Store) ListTasksByStatus(ctx context.Context, status store.TaskStatus) ([]store.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at
		FROM tasks WHERE status = ? ORDER BY updated_at DESC`, string(status))
}

// UpdateTask applies the non-nil fields of upd. New assignees are merged
// into the subscriber set.
func (s *Store) UpdateTask(ctx context.Context, id string, upd store.TaskUpdate) error {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.AssigneeIDs != nil {
		t.AssigneeIDs = upd.AssigneeIDs
		t.SubscriberIDs = dedupIDs(append(t.SubscriberIDs, upd.AssigneeIDs...))
	}
	t.UpdatedAt = nowMillis()

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, priority = ?, assignee_ids = ?, subscriber_ids = ?, updated_at = ?
		WHERE id = ?`,
		string(t.Status), string(t.Priority), encodeIDs(t.AssigneeIDs),
		encodeIDs(t.SubscriberIDs), t.UpdatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update task %q: %w", id, err)
	}
	return nil
}

// AddSubscribers merges agent ids into the task's subscriber set.
func (s *Store) AddSubscribers(ctx context.Context, taskID string, agentIDs ...string) error {
	t, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	merged := dedupIDs(append(t.SubscriberIDs, agentIDs...))
	if len(merged) == len(t.SubscriberIDs) {
		return nil // Nothing new.
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET subscriber_ids = ?, updated_at = ? WHERE id = ?`,
		encodeIDs(merged), nowMillis(), taskID,
	)
	if err != nil {
		return fmt.Errorf("add subscribers to task %q: %w", taskID, err)
	}
	return nil
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]store.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []store.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(sc scanner) (store.Task, error) {
	var t store.Task
	var status, priority, assignees, subscribers, tags string
	err := sc.Scan(&t.ID, &t.Title, &t.Description, &status, &priority,
		&assignees, &subscribers, &t.CreatedBy, &tags, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return store.Task{}, err
	}
	t.Status = store.TaskStatus(status)
	t.Priority = store.TaskPriority(priority)
	t.AssigneeIDs = decodeIDs(assignees)
	t.SubscriberIDs = decodeIDs(subscribers)
	t.Tags = decodeIDs(tags)
	return t, nil
}

// dedupIDs removes duplicates preserving first-seen order.
func dedupIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
