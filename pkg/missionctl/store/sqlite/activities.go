// Package sqlite – activities.go implements the activity feed and the
// document table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// LogActivity appends one entry to the activity feed.
func (s *Store) LogActivity(ctx context.Context, a store.Activity) (string, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = nowMillis()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, type, agent_id, message, task_id, document_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Type, a.AgentID, a.Message, a.TaskID, a.DocumentID, a.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("log activity: %w", err)
	}
	return a.ID, nil
}

// RecentActivities returns the newest entries, most recent first.
func (s *Store) RecentActivities(ctx context.Context, limit int) ([]store.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, agent_id, message, task_id, document_id, created_at
		FROM activities ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
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

// CreateDocument inserts a document.
func (s *Store) CreateDocument(ctx context.Context, d store.Document) (string, error) {
	if d.ID == "" {
		d.ID = newID()
	}
	now := nowMillis()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	d.UpdatedAt = d.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, task_id, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Content, d.TaskID, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return d.ID, nil
}

// GetDocument returns the document with the given id.
func (s *Store) GetDocument(ctx context.Context, id string) (store.Document, error) {
	var d store.Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, task_id, created_by, created_at, updated_at
		FROM documents WHERE id = ?`, id).
		Scan(&d.ID, &d.Title, &d.Content, &d.TaskID, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, store.ErrDocumentNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get document %q: %w", id, err)
	}
	return d, nil
}
