// Package gateway – exec.go delivers by shelling out to the openclaw
// CLI, which injects a message into the agent's session. This is the
// delivery path to use when no gateway HTTP endpoint is exposed.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ExecConfig configures the CLI gateway.
type ExecConfig struct {
	// Binary is the CLI to invoke (default: "openclaw").
	Binary string `yaml:"binary"`

	// TimeoutSeconds is passed to the CLI's own --timeout flag
	// (default: 30). The context deadline still bounds the process.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ExecGateway delivers session messages via the openclaw CLI.
type ExecGateway struct {
	binary  string
	timeout int
	logger  *slog.Logger
}

var _ Gateway = (*ExecGateway)(nil)

// NewExecGateway creates a CLI gateway.
func NewExecGateway(cfg ExecConfig, logger *slog.Logger) *ExecGateway {
	if logger == nil {
		logger = slog.Default()
	}
	binary := cfg.Binary
	if binary == "" {
		binary = "openclaw"
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &ExecGateway{
		binary:  binary,
		timeout: timeout,
		logger:  logger.With("component", "gateway"),
	}
}

// Deliver runs `openclaw agent --session-id <key> --agent <id> --message
// <text> --json --timeout <n>`. A non-zero exit is an unconfirmed
// delivery.
func (g *ExecGateway) Deliver(ctx context.Context, sessionKey, agentID, text string) error {
	cmd := exec.CommandContext(ctx, g.binary,
		"agent",
		"--session-id", sessionKey,
		"--agent", agentID,
		"--message", text,
		"--json",
		"--timeout", fmt.Sprintf("%d", g.timeout),
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		snippet := strings.TrimSpace(string(out))
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		return fmt.Errorf("deliver to session %q via %s: %w (%s)",
			sessionKey, g.binary, err, snippet)
	}

	g.logger.Debug("session send success",
		"session", sessionKey,
		"agent", agentID,
		"response_length", len(out),
	)
	return nil
}
