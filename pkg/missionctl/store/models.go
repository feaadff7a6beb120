// Package store – models.go defines the persistent record types for
// Mission Control: agents, tasks, messages, notifications, activities,
// and documents. Timestamps are epoch milliseconds throughout.
package store

// ─── Agents ───

// AgentStatus represents the current state of a registered agent.
type AgentStatus string

const (
	AgentStatusIdle    AgentStatus = "idle"
	AgentStatusWorking AgentStatus = "working"
	AgentStatusBlocked AgentStatus = "blocked"
)

// AgentLevel defines the seniority of an agent within the roster.
type AgentLevel string

const (
	AgentLevelLead       AgentLevel = "lead"
	AgentLevelSpecialist AgentLevel = "specialist"
	AgentLevelIntern     AgentLevel = "intern"
)

// Agent is a participant (human or automated) identified by a stable
// AgentID, with a session key used for external message delivery.
type Agent struct {
	// AgentID is the stable identifier used in mentions and subscriptions.
	AgentID string `json:"agent_id"`

	// Name is the human-readable agent name.
	Name string `json:"name"`

	// Role describes what this agent does (e.g. "Developer", "Designer").
	Role string `json:"role"`

	// Level is the agent's seniority (lead, specialist, intern).
	Level AgentLevel `json:"level"`

	// Status is the current agent state.
	Status AgentStatus `json:"status"`

	// CurrentTaskID is the task the agent is working on, if any.
	CurrentTaskID string `json:"current_task_id,omitempty"`

	// SessionKey is the opaque key the delivery gateway uses to reach
	// this agent's session (e.g. "agent:developer:main").
	SessionKey string `json:"session_key"`

	// Emoji is the display emoji for dashboards.
	Emoji string `json:"emoji,omitempty"`

	// LastHeartbeat is the last time the agent reported in (epoch ms).
	LastHeartbeat int64 `json:"last_heartbeat"`
}

// ─── Tasks ───

// TaskStatus represents the kanban column a task sits in.
type TaskStatus string

const (
	TaskStatusInbox    TaskStatus = "inbox"
	TaskStatusAssigned TaskStatus = "assigned"
	TaskStatusProgress TaskStatus = "in_progress"
	TaskStatusReview   TaskStatus = "review"
	TaskStatusDone     TaskStatus = "done"
	TaskStatusBlocked  TaskStatus = "blocked"
)

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is a unit of work agents collaborate on. SubscriberIDs is seeded
// from AssigneeIDs at creation and only ever grows: commenting on a task
// or being assigned to it subscribes an agent, nothing unsubscribes.
type Task struct {
	// ID is the store-assigned unique identifier.
	ID string `json:"id"`

	// Title is the short task description.
	Title string `json:"title"`

	// Description is the detailed task description.
	Description string `json:"description,omitempty"`

	// Status is the current task state.
	Status TaskStatus `json:"status"`

	// Priority is the task urgency.
	Priority TaskPriority `json:"priority"`

	// AssigneeIDs are the agents assigned to this task.
	AssigneeIDs []string `json:"assignee_ids"`

	// SubscriberIDs are the agents entitled to notifications for this
	// task. Uniqueness is enforced, order is irrelevant.
	SubscriberIDs []string `json:"subscriber_ids"`

	// CreatedBy is the agent that created the task.
	CreatedBy string `json:"created_by"`

	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty"`

	// CreatedAt is the creation time (epoch ms).
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the last modification time (epoch ms).
	UpdatedAt int64 `json:"updated_at"`
}

// ─── Messages ───

// Message is a comment posted on a task. Messages are immutable once
// created; posting one triggers notification fan-out as a side effect.
type Message struct {
	// ID is the store-assigned unique identifier.
	ID string `json:"id"`

	// TaskID is the task this message belongs to.
	TaskID string `json:"task_id"`

	// FromAgentID is the author.
	FromAgentID string `json:"from_agent_id"`

	// Content is the raw message text, mention markup included.
	Content string `json:"content"`

	// Mentions are the explicitly tagged recipient agent ids.
	Mentions []string `json:"mentions,omitempty"`

	// AttachmentIDs reference attached documents.
	AttachmentIDs []string `json:"attachment_ids,omitempty"`

	// CreatedAt is the creation time (epoch ms).
	CreatedAt int64 `json:"created_at"`
}

// ─── Notifications ───

// Notification is a durable record that an agent should be told about a
// message. Rows are append-only except for the Delivered flag, which is
// set exactly once by the delivery daemon after confirmed delivery.
type Notification struct {
	// ID is the store-assigned unique identifier.
	ID string `json:"id"`

	// MentionedAgentID is the recipient.
	MentionedAgentID string `json:"mentioned_agent_id"`

	// FromAgentID is the sender. Never equal to the recipient for a
	// valid row; the fan-out engine enforces this, not the store.
	FromAgentID string `json:"from_agent_id"`

	// Content is a denormalized copy of the triggering message text.
	Content string `json:"content"`

	// TaskID is the originating task, if any.
	TaskID string `json:"task_id,omitempty"`

	// Delivered starts false and monotonically transitions to true.
	Delivered bool `json:"delivered"`

	// CreatedAt is the creation time (epoch ms).
	CreatedAt int64 `json:"created_at"`
}

// ─── Activities ───

// Activity is one entry in the shared activity feed.
type Activity struct {
	// ID is the store-assigned unique identifier.
	ID string `json:"id"`

	// Type is the activity kind (task_created, message_sent, ...).
	Type string `json:"type"`

	// AgentID is the acting agent.
	AgentID string `json:"agent_id"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// TaskID is the related task, if any.
	TaskID string `json:"task_id,omitempty"`

	// DocumentID is the related document, if any.
	DocumentID string `json:"document_id,omitempty"`

	// CreatedAt is the creation time (epoch ms).
	CreatedAt int64 `json:"created_at"`
}

// Activity types written by the collaboration layer.
const (
	ActivityTaskCreated   = "task_created"
	ActivityStatusChanged = "status_changed"
	ActivityMessageSent   = "message_sent"
	ActivityStandup       = "standup"
)

// ─── Documents ───

// Document is a deliverable attached to messages or tasks.
type Document struct {
	// ID is the store-assigned unique identifier.
	ID string `json:"id"`

	// Title is the document title.
	Title string `json:"title"`

	// Content is the document body (markdown).
	Content string `json:"content"`

	// TaskID is the related task, if any.
	TaskID string `json:"task_id,omitempty"`

	// CreatedBy is the authoring agent.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the creation time (epoch ms).
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the last modification time (epoch ms).
	UpdatedAt int64 `json:"updated_at"`
}
