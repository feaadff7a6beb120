// Package sqlite – messages.go implements message persistence.
package sqlite

import (
	"context"
	"fmt"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// CreateMessage inserts a message. Messages are immutable once created.
func (s *Store) CreateMessage(ctx context.Context, m store.Message) (string, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = nowMillis()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, task_id, from_agent_id, content, mentions, attachment_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.TaskID, m.FromAgentID, m.Content,
		encodeIDs(m.Mentions), encodeIDs(m.AttachmentIDs), m.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return m.ID, nil
}

// ListMessagesByTask returns the task's messages in creation order.
func (s *Store) ListMessagesByTask(ctx context.Context, taskID string) ([]store.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, from_agent_id, content, mentions, attachment_ids, created_at
		FROM messages WHERE task_id = ? ORDER BY created_at, rowid`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query messages for task %q: %w", taskID, err)
	}
	defer rows.Close()

	var msgs []store.Message
	for rows.Next() {
		var m store.Message
		var mentions, attachments string
		if err := rows.Scan(&m.ID, &m.TaskID, &m.FromAgentID, &m.Content,
			&mentions, &attachments, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Mentions = decodeIDs(mentions)
		m.AttachmentIDs = decodeIDs(attachments)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
