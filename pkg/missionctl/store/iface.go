// Package store – iface.go defines the persistence contract consumed by
// the collaboration layer and the delivery daemon.
// Implementations: *sqlite.Store (SQLite) and *postgres.Store (PostgreSQL).
package store

import (
	"context"
	"errors"
)

// Sentinel errors returned by lookups.
var (
	ErrAgentNotFound        = errors.New("agent not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDocumentNotFound     = errors.New("document not found")
)

// Store is the persistence interface for agents, tasks, messages,
// notifications, activities, and documents.
type Store interface {
	// Agents
	RegisterAgent(ctx context.Context, a Agent) error
	GetAgent(ctx context.Context, agentID string) (Agent, error)
	ListAgents(ctx context.Context) ([]Agent, error)
	UpdateAgentStatus(ctx context.Context, agentID string, status AgentStatus) error

	// Tasks
	CreateTask(ctx context.Context, t Task) (string, error)
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	ListTasksByStatus(ctx context.Context, status TaskStatus) ([]Task, error)
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) error
	// AddSubscribers merges agent ids into the task's subscriber set.
	// Already-present ids are ignored; the set never shrinks.
	AddSubscribers(ctx context.Context, taskID string, agentIDs ...string) error

	// Messages
	CreateMessage(ctx context.Context, m Message) (string, error)
	ListMessagesByTask(ctx context.Context, taskID string) ([]Message, error)

	// Notifications. CreateNotifications preserves input order in the
	// returned ids. MarkDelivered is idempotent and never un-delivers;
	// a marked row never reappears in UndeliveredNotifications.
	CreateNotification(ctx context.Context, n Notification) (string, error)
	CreateNotifications(ctx context.Context, ns []Notification) ([]string, error)
	UndeliveredNotifications(ctx context.Context, agentID string) ([]Notification, error)
	MarkDelivered(ctx context.Context, id string) error

	// Activities
	LogActivity(ctx context.Context, a Activity) (string, error)
	RecentActivities(ctx context.Context, limit int) ([]Activity, error)

	// Documents
	CreateDocument(ctx context.Context, d Document) (string, error)
	GetDocument(ctx context.Context, id string) (Document, error)

	Close() error
}

// TaskUpdate carries the optional fields of a task update. Nil fields are
// left untouched. Assignees merge into the subscriber set, matching the
// subscribers-never-shrink invariant.
type TaskUpdate struct {
	Status      *TaskStatus
	Priority    *TaskPriority
	AssigneeIDs []string
}
