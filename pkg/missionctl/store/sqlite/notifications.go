// Package sqlite – notifications.go implements the notification store
// contract. Rows are append-only except for the delivered flag, which
// transitions false -> true exactly once and never reverts.
package sqlite

import (
	"context"
	"fmt"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// CreateNotification inserts a single row with delivered=false. Duplicate
// content is a caller concern, not a store concern.
func (s *Store) CreateNotification(ctx context.Context, n store.Notification) (string, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = nowMillis()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, mentioned_agent_id, from_agent_id, content, task_id, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		n.ID, n.MentionedAgentID, n.FromAgentID, n.Content, n.TaskID, n.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create notification: %w", err)
	}
	return n.ID, nil
}

// CreateNotifications inserts the rows in a single transaction, returning
// the assigned ids in input order. All rows share one creation timestamp.
func (s *Store) CreateNotifications(ctx context.Context, ns []store.Notification) ([]string, error) {
	if len(ns) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin notification batch: %w", err)
	}
	defer tx.Rollback()

	now := nowMillis()
	ids := make([]string, 0, len(ns))
	for _, n := range ns {
		if n.ID == "" {
			n.ID = newID()
		}
		if n.CreatedAt == 0 {
			n.CreatedAt = now
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, mentioned_agent_id, from_agent_id, content, task_id, delivered, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?)`,
			n.ID, n.MentionedAgentID, n.FromAgentID, n.Content, n.TaskID, n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("create notification for %q: %w", n.MentionedAgentID, err)
		}
		ids = append(ids, n.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit notification batch: %w", err)
	}
	return ids, nil
}

// UndeliveredNotifications returns all undelivered rows for the agent in
// creation order.
func (s *Store) UndeliveredNotifications(ctx context.Context, agentID string) ([]store.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mentioned_agent_id, from_agent_id, content, task_id, delivered, created_at
		FROM notifications
		WHERE mentioned_agent_id = ? AND delivered = 0
		ORDER BY created_at, rowid`, agentID)
	if err != nil {
		return nil, fmt.Errorf("query undelivered notifications: %w", err)
	}
	defer rows.Close()

	var ns []store.Notification
	for rows.Next() {
		var n store.Notification
		var delivered int
		if err := rows.Scan(&n.ID, &n.MentionedAgentID, &n.FromAgentID,
			&n.Content, &n.TaskID, &delivered, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Delivered = delivered != 0
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

// MarkDelivered sets the delivered flag. Idempotent: marking an already
// delivered row is a no-op. Unknown ids return ErrNotificationNotFound.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET delivered = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification %q delivered: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either unknown or already delivered; distinguish for the caller.
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM notifications WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("mark notification %q delivered: %w", id, err)
		}
		if exists == 0 {
			return store.ErrNotificationNotFound
		}
	}
	return nil
}
