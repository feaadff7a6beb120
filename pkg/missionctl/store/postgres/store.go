// Package postgres – store.go provides the PostgreSQL implementation of
// store.Store, backed by a pgx connection pool. Intended for deployments
// where the dashboard and the delivery daemon run on separate hosts.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS agents (
    agent_id        TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    role            TEXT NOT NULL,
    level           TEXT NOT NULL DEFAULT 'specialist',
    status          TEXT NOT NULL DEFAULT 'idle',
    current_task_id TEXT NOT NULL DEFAULT '',
    session_key     TEXT NOT NULL,
    emoji           TEXT NOT NULL DEFAULT '',
    last_heartbeat  BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'inbox',
    priority       TEXT NOT NULL DEFAULT 'medium',
    assignee_ids   TEXT[] NOT NULL DEFAULT '{}',
    subscriber_ids TEXT[] NOT NULL DEFAULT '{}',
    created_by     TEXT NOT NULL,
    tags           TEXT[] NOT NULL DEFAULT '{}',
    created_at     BIGINT NOT NULL,
    updated_at     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS messages (
    id             TEXT PRIMARY KEY,
    seq            BIGSERIAL,
    task_id        TEXT NOT NULL,
    from_agent_id  TEXT NOT NULL,
    content        TEXT NOT NULL,
    mentions       TEXT[] NOT NULL DEFAULT '{}',
    attachment_ids TEXT[] NOT NULL DEFAULT '{}',
    created_at     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_task ON messages(task_id);

CREATE TABLE IF NOT EXISTS notifications (
    id                 TEXT PRIMARY KEY,
    seq                BIGSERIAL,
    mentioned_agent_id TEXT NOT NULL,
    from_agent_id      TEXT NOT NULL,
    content            TEXT NOT NULL,
    task_id            TEXT NOT NULL DEFAULT '',
    delivered          BOOLEAN NOT NULL DEFAULT FALSE,
    created_at         BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_agent_undelivered
    ON notifications(mentioned_agent_id, delivered);

CREATE TABLE IF NOT EXISTS activities (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL,
    agent_id    TEXT NOT NULL,
    message     TEXT NOT NULL,
    task_id     TEXT NOT NULL DEFAULT '',
    document_id TEXT NOT NULL DEFAULT '',
    created_at  BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_created ON activities(created_at);

CREATE TABLE IF NOT EXISTS documents (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    content    TEXT NOT NULL,
    task_id    TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);
`

// Store is the PostgreSQL implementation of store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open opens a connection pool and creates the schema. dsn may be empty
// to use DATABASE_URL.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, errors.New("postgres DSN or DATABASE_URL required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(context.Background(), schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

func newID() string {
	return uuid.New().String()[:8]
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
