// Package commands – serve.go starts the delivery daemon.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/openclaw/missionctl/pkg/missionctl/config"
	"github.com/openclaw/missionctl/pkg/missionctl/daemon"
	"github.com/openclaw/missionctl/pkg/missionctl/gateway"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the notification delivery daemon",
		Long: `Run the delivery daemon: poll the notification store for undelivered
rows per rostered agent, push them to agent sessions via the gateway,
and mark them delivered on confirmed success.

Examples:
  missionctl serve
  missionctl serve --config ./config.yaml --verbose`,
		RunE: runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := buildLogger(cmd, cfg)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	gw := buildGateway(cfg, logger)

	attempts, err := daemon.OpenAttemptLog(cfg.Daemon.AttemptLogPath)
	if err != nil {
		return fmt.Errorf("open attempt log: %w", err)
	}
	defer attempts.Close()

	d := daemon.New(st, gw, attempts, daemon.Config{
		PollInterval:    cfg.PollInterval(),
		DeliveryTimeout: cfg.DeliveryTimeout(),
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduled standup, if enabled.
	var sched *cron.Cron
	if cfg.Standup.Enabled {
		standup := daemon.NewStandup(st, logger)
		sched = cron.New()
		_, err := sched.AddFunc(cfg.Standup.Schedule, func() {
			if err := standup.Record(ctx); err != nil {
				logger.Error("scheduled standup failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule standup %q: %w", cfg.Standup.Schedule, err)
		}
		sched.Start()
		logger.Info("standup scheduled", "cron", cfg.Standup.Schedule)
	}

	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	logger.Info("missionctl running. Press Ctrl+C to stop.",
		"database", cfg.Database.Driver,
		"gateway", cfg.Gateway.Mode,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")
	cancel()
	if sched != nil {
		sched.Stop()
	}

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out after 10s, forcing exit")
	}
	return nil
}

// buildGateway constructs the configured delivery gateway.
func buildGateway(cfg *config.Config, logger *slog.Logger) gateway.Gateway {
	if cfg.Gateway.Mode == "http" {
		httpCfg := cfg.Gateway.HTTP
		httpCfg.Token = gateway.ResolveToken(httpCfg.Token, logger)
		return gateway.NewOpenClawGateway(httpCfg, logger)
	}
	return gateway.NewExecGateway(cfg.Gateway.Exec, logger)
}
