// Package sqlite – store.go provides the SQLite implementation of
// store.Store. A single mission.db file holds the agent roster, tasks,
// messages, notifications, activities, and documents. WAL mode is
// enabled for concurrent reads from the web path and the daemon.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver.

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// schema is the DDL executed on every startup (idempotent via IF NOT EXISTS).
const schema = `
-- Agent roster (stable agentId -> session key mapping for the daemon)
CREATE TABLE IF NOT EXISTS agents (
    agent_id        TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    role            TEXT NOT NULL,
    level           TEXT NOT NULL DEFAULT 'specialist',
    status          TEXT NOT NULL DEFAULT 'idle',
    current_task_id TEXT DEFAULT '',
    session_key     TEXT NOT NULL,
    emoji           TEXT DEFAULT '',
    last_heartbeat  INTEGER NOT NULL
);

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'inbox',
    priority       TEXT NOT NULL DEFAULT 'medium',
    assignee_ids   TEXT NOT NULL DEFAULT '[]',
    subscriber_ids TEXT NOT NULL DEFAULT '[]',
    created_by     TEXT NOT NULL,
    tags           TEXT NOT NULL DEFAULT '[]',
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_updated ON tasks(updated_at);

-- Messages (immutable task comments)
CREATE TABLE IF NOT EXISTS messages (
    id             TEXT PRIMARY KEY,
    task_id        TEXT NOT NULL,
    from_agent_id  TEXT NOT NULL,
    content        TEXT NOT NULL,
    mentions       TEXT NOT NULL DEFAULT '[]',
    attachment_ids TEXT NOT NULL DEFAULT '[]',
    created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_task ON messages(task_id);

-- Notifications (append-only except the delivered flag)
CREATE TABLE IF NOT EXISTS notifications (
    id                 TEXT PRIMARY KEY,
    mentioned_agent_id TEXT NOT NULL,
    from_agent_id      TEXT NOT NULL,
    content            TEXT NOT NULL,
    task_id            TEXT DEFAULT '',
    delivered          INTEGER NOT NULL DEFAULT 0,
    created_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_agent_undelivered
    ON notifications(mentioned_agent_id, delivered);

-- Activity feed
CREATE TABLE IF NOT EXISTS activities (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL,
    agent_id    TEXT NOT NULL,
    message     TEXT NOT NULL,
    task_id     TEXT DEFAULT '',
    document_id TEXT DEFAULT '',
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_created ON activities(created_at);

-- Documents (deliverables linked to tasks)
CREATE TABLE IF NOT EXISTS documents (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    content    TEXT NOT NULL,
    task_id    TEXT DEFAULT '',
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_task ON documents(task_id);
`

// Store is the SQLite implementation of store.Store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database at the given path and creates all
// tables. ":memory:" is accepted for tests.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "./data/mission.db"
	}

	dsn := path
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %q: %w", dir, err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise open its own empty
		// in-memory database, leaving the schema on the first
		// connection only.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// newID returns a short store-assigned identifier.
func newID() string {
	return uuid.New().String()[:8]
}

// nowMillis is the store clock, epoch milliseconds.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// encodeIDs serializes a string slice as a JSON array column value.
func encodeIDs(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

// decodeIDs parses a JSON array column value. Invalid or empty values
// decode to an empty slice rather than an error.
func decodeIDs(raw string) []string {
	var ids []string
	if raw == "" {
		return []string{}
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		return []string{}
	}
	return ids
}
