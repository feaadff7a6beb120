// Package gateway – openclaw.go is the HTTP client for a running
// OpenClaw gateway. Delivery is a single POST; any non-2xx status or
// transport error counts as an unconfirmed delivery.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultGatewayPort is the OpenClaw gateway's default listen port.
const DefaultGatewayPort = 18789

// OpenClawConfig configures the HTTP gateway client.
type OpenClawConfig struct {
	// URL is the gateway endpoint (e.g. "http://127.0.0.1:18789/agent").
	URL string `yaml:"url"`

	// Token is the bearer token; resolved via ResolveToken when empty.
	Token string `yaml:"token"`

	// TimeoutSeconds is the per-request timeout (default: 10).
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// OpenClawGateway delivers session messages over HTTP.
type OpenClawGateway struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

var _ Gateway = (*OpenClawGateway)(nil)

// NewOpenClawGateway creates an HTTP gateway client.
func NewOpenClawGateway(cfg OpenClawConfig, logger *slog.Logger) *OpenClawGateway {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	url := cfg.URL
	if url == "" {
		url = fmt.Sprintf("http://127.0.0.1:%d/agent", DefaultGatewayPort)
	}

	return &OpenClawGateway{
		url:    url,
		token:  cfg.Token,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "gateway"),
	}
}

// deliverRequest is the JSON body posted to the gateway.
type deliverRequest struct {
	SessionID string `json:"session_id"`
	Agent     string `json:"agent"`
	Message   string `json:"message"`
}

// Deliver posts the payload to the gateway endpoint.
func (g *OpenClawGateway) Deliver(ctx context.Context, sessionKey, agentID, text string) error {
	body, err := json.Marshal(deliverRequest{
		SessionID: sessionKey,
		Agent:     agentID,
		Message:   text,
	})
	if err != nil {
		return fmt.Errorf("marshal delivery request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver to session %q: %w", sessionKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a little of the body for the log; the daemon only needs
		// the error, not the payload.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("deliver to session %q: gateway returned %d: %s",
			sessionKey, resp.StatusCode, string(snippet))
	}

	g.logger.Debug("session send success", "session", sessionKey, "agent", agentID)
	return nil
}
