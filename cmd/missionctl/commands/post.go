package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/missionctl/pkg/missionctl/collab"
)

// newPostCmd creates the `missionctl post` command for posting a task
// message and triggering notification fan-out.
func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <task-id> <content>",
		Short: "Post a message on a task",
		Long: `Post a message on a task as a given agent. Mentioned agents and task
subscribers receive a notification row each; the sender never notifies
itself. The delivery daemon picks the rows up on its next cycle.

Examples:
  missionctl post t-4f2a "build is green" --from developer
  missionctl post t-4f2a "please review @designer" --from developer --mention designer`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			from, _ := cmd.Flags().GetString("from")
			mentions, _ := cmd.Flags().GetStringSlice("mention")

			svc := collab.NewService(st, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			msgID, err := svc.PostMessage(ctx, collab.MessageInput{
				TaskID:      args[0],
				FromAgentID: from,
				Content:     args[1],
				Mentions:    mentions,
			})
			if err != nil {
				return fmt.Errorf("post message: %w", err)
			}

			fmt.Printf("Posted message %s on task %s\n", msgID, args[0])
			return nil
		},
	}

	cmd.Flags().String("from", "", "posting agent id (required)")
	cmd.Flags().StringSlice("mention", nil, "agent ids to mention explicitly")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
