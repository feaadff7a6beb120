// Package daemon – standup.go compiles the daily standup report: task
// breakdown, urgent items, last-24h movement, and agent status. The
// serve command schedules it with cron; the CLI can print it on demand.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// standupWindow is the lookback for "recent" items.
const standupWindow = 24 * time.Hour

// Standup generates the daily team summary.
type Standup struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStandup creates a standup generator.
func NewStandup(st store.Store, logger *slog.Logger) *Standup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Standup{
		store:  st,
		logger: logger.With("component", "standup"),
		now:    time.Now,
	}
}

// Generate builds the standup report.
func (s *Standup) Generate(ctx context.Context) (string, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return "", fmt.Errorf("list agents: %w", err)
	}
	activities, err := s.store.RecentActivities(ctx, 50)
	if err != nil {
		return "", fmt.Errorf("list activities: %w", err)
	}

	now := s.now()
	cutoff := now.Add(-standupWindow).UnixMilli()

	byStatus := make(map[store.TaskStatus]int)
	var urgent []store.Task
	var completed, created int
	for _, t := range tasks {
		byStatus[t.Status]++
		if t.Priority == store.TaskPriorityUrgent && t.Status != store.TaskStatusDone {
			urgent = append(urgent, t)
		}
		if t.Status == store.TaskStatusDone && t.UpdatedAt > cutoff {
			completed++
		}
		if t.CreatedAt > cutoff {
			created++
		}
	}

	var recentActivity int
	for _, a := range activities {
		if a.CreatedAt > cutoff {
			recentActivity++
		}
	}

	var b strings.Builder
	b.WriteString("# 📋 Mission Control — Daily Standup\n")
	b.WriteString(fmt.Sprintf("*%s*\n\n", now.UTC().Format(time.RFC1123)))

	b.WriteString("## 🎯 Overview\n")
	b.WriteString(fmt.Sprintf("- **Total tasks:** %d\n", len(tasks)))
	b.WriteString(fmt.Sprintf("- **In progress:** %d\n", byStatus[store.TaskStatusProgress]))
	b.WriteString(fmt.Sprintf("- **In review:** %d\n", byStatus[store.TaskStatusReview]))
	b.WriteString(fmt.Sprintf("- **Blocked:** %d\n", byStatus[store.TaskStatusBlocked]))
	b.WriteString(fmt.Sprintf("- **Done (24h):** %d\n", completed))
	b.WriteString(fmt.Sprintf("- **New (24h):** %d\n\n", created))

	if len(urgent) > 0 {
		b.WriteString("## 🚨 Urgent\n")
		for _, t := range urgent {
			b.WriteString(fmt.Sprintf("- %s (%s, assigned: %s)\n",
				t.Title, t.Status, joinOrNone(t.AssigneeIDs)))
		}
		b.WriteString("\n")
	}

	b.WriteString("## 👥 Agents\n")
	for _, a := range agents {
		b.WriteString(fmt.Sprintf("- %s %s — %s (%s, heartbeat %s)\n",
			a.Emoji, a.Name, a.Role, a.Status, timeAgo(now, a.LastHeartbeat)))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("## 📡 Activity\n- %d events in the last 24h\n", recentActivity))

	return b.String(), nil
}

// Record generates the report and appends it to the activity feed.
func (s *Standup) Record(ctx context.Context) error {
	report, err := s.Generate(ctx)
	if err != nil {
		return err
	}

	_, err = s.store.LogActivity(ctx, store.Activity{
		Type:    store.ActivityStandup,
		AgentID: "system",
		Message: report,
	})
	if err != nil {
		return fmt.Errorf("record standup: %w", err)
	}

	s.logger.Info("standup recorded")
	return nil
}

// timeAgo renders an epoch-ms timestamp relative to now.
func timeAgo(now time.Time, epochMillis int64) string {
	if epochMillis == 0 {
		return "never"
	}
	diff := now.Sub(time.UnixMilli(epochMillis))
	switch {
	case diff >= 48*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours())/24)
	case diff >= time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff >= time.Minute:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	default:
		return "just now"
	}
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "nobody"
	}
	return strings.Join(ids, ", ")
}
