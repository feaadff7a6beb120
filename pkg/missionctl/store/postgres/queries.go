// Package postgres – queries.go implements the store.Store operations.
// Semantics mirror the SQLite implementation; see the interface docs for
// the contract (idempotent MarkDelivered, order-preserving bulk create,
// monotonic subscriber sets).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// ─── Agents ───

func (s *Store) RegisterAgent(ctx context.Context, a store.Agent) error {
	if a.Status == "" {
		a.Status = store.AgentStatusIdle
	}
	if a.Level == "" {
		a.Level = store.AgentLevelSpecialist
	}
	if a.LastHeartbeat == 0 {
		a.LastHeartbeat = nowMillis()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO agents (agent_id, name, role, level, status, current_task_id, session_key, emoji, last_heartbeat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (agent_id) DO NOTHING`,
		a.AgentID, a.Name, a.Role, string(a.Level), string(a.Status),
		a.CurrentTaskID, a.SessionKey, a.Emoji, a.LastHeartbeat,
	)
	if err != nil {
		return fmt.Errorf("register agent %q: %w", a.AgentID, err)
	}
	return nil
}

func (s *Store) GetAgent(ctx context.Context, agentID string) (store.Agent, error) {
	var a store.Agent
	var level, status string
	err := s.pool.QueryRow(ctx, `
		SELECT agent_id, name, role, level, status, current_task_id, session_key, emoji, last_heartbeat
		FROM agents WHERE agent_id = $1`, agentID).
		Scan(&a.AgentID, &a.Name, &a.Role, &level, &status,
			&a.CurrentTaskID, &a.SessionKey, &a.Emoji, &a.LastHeartbeat)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Agent{}, store.ErrAgentNotFound
	}
	if err != nil {
		return store.Agent{}, fmt.Errorf("get agent %q: %w", agentID, err)
	}
	a.Level = store.AgentLevel(level)
	a.Status = store.AgentStatus(status)
	return a, nil
}

func (s *Store) ListAgents(ctx context.Context) ([]store.Agent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT agent_id, name, role, level, status, current_task_id, session_key, emoji, last_heartbeat
		FROM agents ORDER BY agent_id`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []store.Agent
	for rows.Next() {
		var a store.Agent
		var level, status string
		if err := rows.Scan(&a.AgentID, &a.Name, &a.Role, &level, &status,
			&a.CurrentTaskID, &a.SessionKey, &a.Emoji, &a.LastHeartbeat); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		a.Level = store.AgentLevel(level)
		a.Status = store.AgentStatus(status)
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (s *Store) UpdateAgentStatus(ctx context.Context, agentID string, status store.AgentStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE agents SET status = $1, last_heartbeat = $2 WHERE agent_id = $3`,
		string(status), nowMillis(), agentID,
	)
	if err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAgentNotFound
	}
	return nil
}

// ─── Tasks ───

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
	if t.CreatedAt == 0 {
		t.CreatedAt = nowMillis()
	}
	t.UpdatedAt = t.CreatedAt

	subscribers := dedupIDs(append(append([]string{}, t.SubscriberIDs...), t.AssigneeIDs...))

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
		orEmpty(t.AssigneeIDs), orEmpty(subscribers), t.CreatedBy,
		orEmpty(t.Tags), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return t.ID, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (store.Task, error) {
	var t store.Task
	var status, priority string
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at
		FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Description, &status, &priority,
			&t.AssigneeIDs, &t.SubscriberIDs, &t.CreatedBy, &t.Tags,
			&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Task{}, store.ErrTaskNotFound
	}
	if err != nil {
		return store.Task{}, fmt.Errorf("get task %q: %w", id, err)
	}
	t.Status = store.TaskStatus(status)
	t.Priority = store.TaskPriority(priority)
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]store.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at
		FROM tasks ORDER BY updated_at DESC`)
}

func (s *Store) ListTasksByStatus(ctx context.Context, status store.TaskStatus) ([]store.Task, error) {
	return s.queryTasks(ctx, `
		SELECT id, title, description, status, priority, assignee_ids, subscriber_ids, created_by, tags, created_at, updated_at
		FROM tasks WHERE status = $1 ORDER BY updated_at DESC`, string(status))
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]store.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []store.Task
	for rows.Next() {
		var t store.Task
		var status, priority string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &priority,
			&t.AssigneeIDs, &t.SubscriberIDs, &t.CreatedBy, &t.Tags,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Status = store.TaskStatus(status)
		t.Priority = store.TaskPriority(priority)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

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

	_, err = s.pool.Exec(ctx, `
		UPDATE tasks SET status = $1, priority = $2, assignee_ids = $3, subscriber_ids = $4, updated_at = $5
		WHERE id = $6`,
		string(t.Status), string(t.Priority), orEmpty(t.AssigneeIDs),
		orEmpty(t.SubscriberIDs), nowMillis(), id,
	)
	if err != nil {
		return fmt.Errorf("update task %q: %w", id, err)
	}
	return nil
}

func (s *Store) AddSubscribers(ctx context.Context, taskID string, agentIDs ...string) error {
	t, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	merged := dedupIDs(append(t.SubscriberIDs, agentIDs...))
	if len(merged) == len(t.SubscriberIDs) {
		return nil
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE tasks SET subscriber_ids = $1, updated_at = $2 WHERE id = $3`,
		orEmpty(merged), nowMillis(), taskID,
	)
	if err != nil {
		return fmt.Errorf("add subscribers to task %q: %w", taskID, err)
	}
	return nil
}

// ─── Messages ───

func (s *Store) CreateMessage(ctx context.Context, m store.Message) (string, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = nowMillis()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, task_id, from_agent_id, content, mentions, attachment_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.TaskID, m.FromAgentID, m.Content,
		orEmpty(m.Mentions), orEmpty(m.AttachmentIDs), m.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return m.ID, nil
}

func (s *Store) ListMessagesByTask(ctx context.Context, taskID string) ([]store.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, from_agent_id, content, mentions, attachment_ids, created_at
		FROM messages WHERE task_id = $1 ORDER BY created_at, seq`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query messages for task %q: %w", taskID, err)
	}
	defer rows.Close()

	var msgs []store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.TaskID, &m.FromAgentID, &m.Content,
			&m.Mentions, &m.AttachmentIDs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ─── Notifications ───

func (s *Store) CreateNotification(ctx context.Context, n store.Notification) (string, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = nowMillis()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, mentioned_agent_id, from_agent_id, content, task_id, delivered, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
		n.ID, n.MentionedAgentID, n.FromAgentID, n.Content, n.TaskID, n.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create notification: %w", err)
	}
	return n.ID, nil
}

func (s *Store) CreateNotifications(ctx context.Context, ns []store.Notification) ([]string, error) {
	if len(ns) == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin notification batch: %w", err)
	}
	defer tx.Rollback(ctx)

	now := nowMillis()
	ids := make([]string, 0, len(ns))
	for _, n := range ns {
		if n.ID == "" {
			n.ID = newID()
		}
		if n.CreatedAt == 0 {
			n.CreatedAt = now
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO notifications (id, mentioned_agent_id, from_agent_id, content, task_id, delivered, created_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
			n.ID, n.MentionedAgentID, n.FromAgentID, n.Content, n.TaskID, n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("create notification for %q: %w", n.MentionedAgentID, err)
		}
		ids = append(ids, n.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit notification batch: %w", err)
	}
	return ids, nil
}

func (s *Store) UndeliveredNotifications(ctx context.Context, agentID string) ([]store.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, mentioned_agent_id, from_agent_id, content, task_id, delivered, created_at
		FROM notifications
		WHERE mentioned_agent_id = $1 AND delivered = FALSE
		ORDER BY created_at, seq`, agentID)
	if err != nil {
		return nil, fmt.Errorf("query undelivered notifications: %w", err)
	}
	defer rows.Close()

	var ns []store.Notification
	for rows.Next() {
		var n store.Notification
		if err := rows.Scan(&n.ID, &n.MentionedAgentID, &n.FromAgentID,
			&n.Content, &n.TaskID, &n.Delivered, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	// The WHERE clause makes the second call a no-op; checking existence
	// separately distinguishes "already delivered" from "unknown id".
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET delivered = TRUE WHERE id = $1 AND delivered = FALSE`, id)
	if err != nil {
		return fmt.Errorf("mark notification %q delivered: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("mark notification %q delivered: %w", id, err)
		}
		if !exists {
			return store.ErrNotificationNotFound
		}
	}
	return nil
}

// ─── Activities ───

func (s *Store) LogActivity(ctx context.Context, a store.Activity) (string, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = nowMillis()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO activities (id, type, agent_id, message, task_id, document_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Type, a.AgentID, a.Message, a.TaskID, a.DocumentID, a.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("log activity: %w", err)
	}
	return a.ID, nil
}

func (s *Store) RecentActivities(ctx context.Context, limit int) ([]store.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, type, agent_id, message, task_id, document_id, created_at
		FROM activities ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var acts []store.Activity
	for rows.Next() {
		var a store.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.AgentID, &a.Message,
			&a.TaskID, &a.DocumentID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}

// ─── Documents ───

func (s *Store) CreateDocument(ctx context.Context, d store.Document) (string, error) {
	if d.ID == "" {
		d.ID = newID()
	}
	if d.CreatedAt == 0 {
		d.CreatedAt = nowMillis()
	}
	d.UpdatedAt = d.CreatedAt

	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, title, content, task_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.Title, d.Content, d.TaskID, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return d.ID, nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (store.Document, error) {
	var d store.Document
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, content, task_id, created_by, created_at, updated_at
		FROM documents WHERE id = $1`, id).
		Scan(&d.ID, &d.Title, &d.Content, &d.TaskID, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Document{}, store.ErrDocumentNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get document %q: %w", id, err)
	}
	return d, nil
}

// orEmpty maps nil to an empty slice so array columns never store NULL.
func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
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
