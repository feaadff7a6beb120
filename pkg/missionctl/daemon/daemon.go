// Package daemon – daemon.go is the notification delivery daemon. It
// polls the store for undelivered notifications per rostered agent,
// pushes them to agent sessions through the gateway, and marks rows
// delivered only after the gateway confirms success.
//
// Delivery semantics are at-least-once: when a send succeeds but the
// delivered mark fails, the row is retried and the recipient may see the
// message twice. That tradeoff is deliberate — a duplicate beats a
// silently lost notification.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openclaw/missionctl/pkg/missionctl/gateway"
	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

const (
	// DefaultPollInterval is the polling cadence.
	DefaultPollInterval = 2 * time.Second

	// DefaultDeliveryTimeout bounds a single delivery attempt so one
	// stuck agent cannot block the whole cycle.
	DefaultDeliveryTimeout = 10 * time.Second
)

// Config configures the delivery daemon.
type Config struct {
	// PollInterval is the time between polling cycles (default: 2s).
	PollInterval time.Duration

	// DeliveryTimeout bounds each delivery attempt (default: 10s).
	DeliveryTimeout time.Duration
}

// Daemon is the long-running delivery process. It never exits on a
// failed cycle; store and transport errors are logged and retried.
type Daemon struct {
	store    store.Store
	gw       gateway.Gateway
	attempts *AttemptLog
	logger   *slog.Logger

	interval time.Duration
	timeout  time.Duration
	retries  *retryTracker
	now      func() time.Time

	cycles    atomic.Int64
	delivered atomic.Int64
	failures  atomic.Int64
}

// New creates a delivery daemon. attempts may be nil to skip the attempt
// log (tests); gw must not be nil.
func New(st store.Store, gw gateway.Gateway, attempts *AttemptLog, cfg Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = DefaultDeliveryTimeout
	}

	return &Daemon{
		store:    st,
		gw:       gw,
		attempts: attempts,
		logger:   logger.With("component", "delivery_daemon"),
		interval: cfg.PollInterval,
		timeout:  cfg.DeliveryTimeout,
		retries:  newRetryTracker(nil),
		now:      time.Now,
	}
}

// Run executes the polling loop until ctx is cancelled. It always
// returns nil: routine errors are handled inside the cycle, and process
// supervision handles crashes.
func (d *Daemon) Run(ctx context.Context) error {
	start := d.now()
	d.logger.Info("delivery daemon starting",
		"poll_interval", d.interval,
		"delivery_timeout", d.timeout,
	)

	// Initial cycle before the first tick.
	d.runCycle(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("delivery daemon stopping",
				"uptime", d.now().Sub(start).Round(time.Second),
				"cycles", d.cycles.Load(),
				"delivered", d.delivered.Load(),
				"failures", d.failures.Load(),
			)
			return nil
		case <-ticker.C:
			d.runCycle(ctx)
		}
	}
}

// runCycle polls every rostered agent once. Agents are processed in
// parallel; notifications for one agent are processed sequentially so a
// single row is never raced by two sends within this process.
func (d *Daemon) runCycle(ctx context.Context) {
	d.cycles.Add(1)

	agents, err := d.store.ListAgents(ctx)
	if err != nil {
		d.logger.Error("failed to list agents, skipping cycle", "error", err)
		return
	}

	names := make(map[string]string, len(agents))
	for _, a := range agents {
		names[a.AgentID] = a.Name
	}

	// live collects every undelivered id seen this cycle so stale
	// backoff entries can be pruned afterwards. Pruning only happens
	// when the cycle saw the full picture: a skipped agent or a failed
	// fetch leaves the tracker untouched.
	var mu sync.Mutex
	live := make(map[string]bool)
	complete := true

	var wg sync.WaitGroup
	for _, a := range agents {
		if a.SessionKey == "" {
			d.logger.Error("agent has no session mapping, skipping",
				"agent", a.AgentID)
			complete = false
			continue
		}
		wg.Add(1)
		go func(a store.Agent) {
			defer wg.Done()
			seen, ok := d.deliverToAgent(ctx, a, names)
			mu.Lock()
			for _, id := range seen {
				live[id] = true
			}
			if !ok {
				complete = false
			}
			mu.Unlock()
		}(a)
	}
	wg.Wait()

	if complete && ctx.Err() == nil {
		d.retries.PruneExcept(live)
	}
}

// deliverToAgent fetches and attempts all eligible undelivered rows for
// one agent. It returns the ids it saw and whether the fetch succeeded.
func (d *Daemon) deliverToAgent(ctx context.Context, agent store.Agent, names map[string]string) ([]string, bool) {
	notifs, err := d.store.UndeliveredNotifications(ctx, agent.AgentID)
	if err != nil {
		d.logger.Error("failed to fetch undelivered notifications",
			"agent", agent.AgentID, "error", err)
		return nil, false
	}

	seen := make([]string, 0, len(notifs))
	for _, n := range notifs {
		seen = append(seen, n.ID)
	}

	for _, n := range notifs {
		if ctx.Err() != nil {
			return seen, true
		}
		if !d.retries.Ready(n.ID) {
			continue // Still backing off.
		}
		d.attempt(ctx, n, agent, names)
	}
	return seen, true
}

// attempt performs one delivery attempt and the resulting state
// transition: DELIVERED on confirmed success, FAILED_RETRYABLE with
// backoff otherwise.
func (d *Daemon) attempt(ctx context.Context, n store.Notification, agent store.Agent, names map[string]string) {
	text := gateway.FormatNotification(
		displayName(names, n.MentionedAgentID),
		displayName(names, n.FromAgentID),
		n.Content,
		d.taskTitle(ctx, n.TaskID),
	)

	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err := d.gw.Deliver(attemptCtx, agent.SessionKey, agent.AgentID, text)
	cancel()

	if err != nil {
		delay := d.retries.RecordFailure(n.ID)
		d.failures.Add(1)
		d.attempts.Append(OutcomeFailed, n.ID, agent.AgentID, err)
		d.logger.Warn("delivery failed",
			"notification", n.ID,
			"agent", agent.AgentID,
			"retry_in", delay,
			"error", err,
		)
		return
	}

	// Confirmed send; the row is only done once the mark sticks.
	if err := d.store.MarkDelivered(ctx, n.ID); err != nil {
		delay := d.retries.RecordFailure(n.ID)
		d.failures.Add(1)
		d.attempts.Append(OutcomeMarkFailed, n.ID, agent.AgentID, err)
		d.logger.Error("sent but failed to mark delivered, will retry",
			"notification", n.ID,
			"agent", agent.AgentID,
			"retry_in", delay,
			"error", err,
		)
		return
	}

	d.retries.Retire(n.ID)
	d.delivered.Add(1)
	d.attempts.Append(OutcomeDelivered, n.ID, agent.AgentID, nil)
	d.logger.Info("notification delivered",
		"notification", n.ID,
		"agent", agent.AgentID,
		"session", agent.SessionKey,
	)
}

// taskTitle resolves the task title for the payload; lookup failures
// degrade to an untitled payload rather than blocking delivery.
func (d *Daemon) taskTitle(ctx context.Context, taskID string) string {
	if taskID == "" {
		return ""
	}
	task, err := d.store.GetTask(ctx, taskID)
	if err != nil {
		return ""
	}
	return task.Title
}

func displayName(names map[string]string, agentID string) string {
	if name, ok := names[agentID]; ok && name != "" {
		return name
	}
	return agentID
}
