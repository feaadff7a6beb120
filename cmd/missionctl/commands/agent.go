package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// newAgentCmd creates the `missionctl agent` command group.
func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage the agent roster",
		Long: `Register and inspect agents. Each agent carries a session key the
delivery daemon uses to reach its session.

Examples:
  missionctl agent register developer --name "Dev" --role Developer --session agent:developer:main
  missionctl agent list
  missionctl agent status developer working`,
	}

	cmd.AddCommand(
		newAgentRegisterCmd(),
		newAgentListCmd(),
		newAgentStatusCmd(),
	)

	return cmd
}

func newAgentRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <agent-id>",
		Short: "Register an agent (no-op if it already exists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			level, _ := cmd.Flags().GetString("level")
			session, _ := cmd.Flags().GetString("session")
			emoji, _ := cmd.Flags().GetString("emoji")

			if name == "" {
				name = args[0]
			}
			if session == "" {
				session = fmt.Sprintf("agent:%s:main", args[0])
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			err = st.RegisterAgent(ctx, store.Agent{
				AgentID:    args[0],
				Name:       name,
				Role:       role,
				Level:      store.AgentLevel(level),
				Status:     store.AgentStatusIdle,
				SessionKey: session,
				Emoji:      emoji,
			})
			if err != nil {
				return fmt.Errorf("register agent: %w", err)
			}

			fmt.Printf("Registered agent %s (session %s)\n", args[0], session)
			return nil
		},
	}

	cmd.Flags().String("name", "", "display name (defaults to the agent id)")
	cmd.Flags().String("role", "", "agent role")
	cmd.Flags().String("level", "specialist", "seniority (lead, specialist, intern)")
	cmd.Flags().String("session", "", "gateway session key (defaults to agent:<id>:main)")
	cmd.Flags().String("emoji", "", "display emoji")
	return cmd
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered agents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			agents, err := st.ListAgents(ctx)
			if err != nil {
				return fmt.Errorf("list agents: %w", err)
			}

			if len(agents) == 0 {
				fmt.Println("No agents registered.")
				fmt.Println()
				fmt.Println("Seed the default roster with:")
				fmt.Println("  missionctl seed")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tNAME\tROLE\tLEVEL\tSTATUS\tSESSION\n")
			fmt.Fprintf(w, "──\t────\t────\t─────\t──────\t───────\n")
			for _, a := range agents {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					a.AgentID, a.Name, a.Role, a.Level, a.Status, a.SessionKey)
			}
			w.Flush()
			fmt.Printf("\n%d agent(s).\n", len(agents))
			return nil
		},
	}
}

func newAgentStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <agent-id> <status>",
		Short: "Update an agent's status (idle, working, blocked)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := st.UpdateAgentStatus(ctx, args[0], store.AgentStatus(args[1])); err != nil {
				return fmt.Errorf("update agent status: %w", err)
			}

			fmt.Printf("Agent %s is now %s\n", args[0], args[1])
			return nil
		},
	}
}
