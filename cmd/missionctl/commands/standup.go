package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/missionctl/pkg/missionctl/daemon"
)

// newStandupCmd creates the `missionctl standup` command.
func newStandupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Generate the daily standup report",
		Long: `Generate a standup report covering the last 24 hours: board overview,
urgent tasks, completions, new tasks, and the agent roster. With
--record the report is also appended to the activity feed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			standup := daemon.NewStandup(st, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			record, _ := cmd.Flags().GetBool("record")
			if record {
				if err := standup.Record(ctx); err != nil {
					return fmt.Errorf("record standup: %w", err)
				}
			}

			report, err := standup.Generate(ctx)
			if err != nil {
				return fmt.Errorf("generate standup: %w", err)
			}

			fmt.Println(report)
			return nil
		},
	}

	cmd.Flags().Bool("record", false, "also append the report to the activity feed")
	return cmd
}
