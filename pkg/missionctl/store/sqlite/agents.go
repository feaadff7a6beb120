// Package sqlite – agents.go implements the agent roster operations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// RegisterAgent inserts the agent if it is not yet known. Registration is
// idempotent by agent id: re-registering an existing agent is a no-op.
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (agent_id, name, role, level, status, current_task_id, session_key, emoji, last_heartbeat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO NOTHING`,
		a.AgentID, a.Name, a.Role, string(a.Level), string(a.Status),
		a.CurrentTaskID, a.SessionKey, a.Emoji, a.LastHeartbeat,
	)
	if err != nil {
		return fmt.Errorf("register agent %q: %w", a.AgentID, err)
	}
	return nil
}

// GetAgent returns the agent with the given id.
func (s *Store) GetAgent(ctx context.Context, agentID string) (store.Agent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT agent_id, name, role, level, status, current_task_id, session_key, emoji, last_heartbeat
		FROM agents WHERE agent_id = ?`, agentID)

	a, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Agent{}, store.ErrAgentNotFound
	}
	if err != nil {
		return store.Agent{}, fmt.Errorf("get agent %q: %w", agentID, err)
	}
	return a, nil
}

// ListAgents returns the full roster, ordered by agent id so polling
// cycles see a stable order.
func (s *Store) ListAgents(ctx context.Context) ([]store.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_id, name, role, level, status, current_task_id, session_key, emoji, last_heartbeat
		FROM agents ORDER BY agent_id`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []store.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// UpdateAgentStatus sets the agent status and refreshes the heartbeat.
func (s *Store) UpdateAgentStatus(ctx context.Context, agentID string, status store.AgentStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agents SET status = ?, last_heartbeat = ? WHERE agent_id = ?`,
		string(status), nowMillis(), agentID,
	)
	if err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrAgentNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanAgent(sc scanner) (store.Agent, error) {
	var a store.Agent
	var level, status string
	err := sc.Scan(&a.AgentID, &a.Name, &a.Role, &level, &status,
		&a.CurrentTaskID, &a.SessionKey, &a.Emoji, &a.LastHeartbeat)
	if err != nil {
		return store.Agent{}, err
	}
	a.Level = store.AgentLevel(level)
	a.Status = store.AgentStatus(status)
	return a, nil
}
