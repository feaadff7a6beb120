// Package commands implements the missionctl CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openclaw/missionctl/pkg/missionctl/config"
	"github.com/openclaw/missionctl/pkg/missionctl/store"
	"github.com/openclaw/missionctl/pkg/missionctl/store/postgres"
	"github.com/openclaw/missionctl/pkg/missionctl/store/sqlite"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missionctl",
		Short: "Mission Control agent collaboration and notification delivery",
		Long: `missionctl runs the Mission Control notification core: the task and
message collaboration layer, the notification store, and the delivery
daemon that pushes undelivered notifications to agent sessions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "path to config.yaml")
	cmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPostCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newStandupCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	// .env is optional; real secrets come from the keyring or real env.
	_ = godotenv.Load()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig resolves the config flag into a Config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	return config.Load(path)
}

// buildLogger creates the slog logger per config and the verbose flag.
func buildLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

// openStore opens the configured store backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return postgres.Open(cfg.Database.DSN)
	default:
		return sqlite.Open(cfg.Database.Path)
	}
}
