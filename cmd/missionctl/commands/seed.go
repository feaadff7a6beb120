package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// defaultRoster is the standard team registered by `missionctl seed`.
// Session keys follow the agent:<id>:main convention the gateway expects.
var defaultRoster = []store.Agent{
	{AgentID: "jarvis", Name: "Jarvis", Role: "Squad Lead", Level: store.AgentLevelLead, Emoji: "🧠"},
	{AgentID: "product-analyst", Name: "Product Analyst", Role: "Product Analysis", Level: store.AgentLevelSpecialist, Emoji: "📊"},
	{AgentID: "customer-researcher", Name: "Customer Researcher", Role: "Customer Research", Level: store.AgentLevelSpecialist, Emoji: "🔍"},
	{AgentID: "seo-analyst", Name: "SEO Analyst", Role: "SEO Analysis", Level: store.AgentLevelSpecialist, Emoji: "📈"},
	{AgentID: "content-writer", Name: "Content Writer", Role: "Content Writing", Level: store.AgentLevelSpecialist, Emoji: "✍️"},
	{AgentID: "social-media", Name: "Social Media", Role: "Social Media", Level: store.AgentLevelSpecialist, Emoji: "📣"},
	{AgentID: "designer", Name: "Designer", Role: "Design", Level: store.AgentLevelSpecialist, Emoji: "🎨"},
	{AgentID: "email-marketing", Name: "Email Marketing", Role: "Email Marketing", Level: store.AgentLevelSpecialist, Emoji: "📧"},
	{AgentID: "developer", Name: "Developer", Role: "Development", Level: store.AgentLevelSpecialist, Emoji: "💻"},
	{AgentID: "documentation", Name: "Documentation", Role: "Documentation", Level: store.AgentLevelSpecialist, Emoji: "📚"},
}

// newSeedCmd creates the `missionctl seed` command.
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Register the default agent roster",
		Long: `Register the standard ten-agent roster. Registration is idempotent:
agents that already exist are left untouched, so seeding can be run
repeatedly.`,
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

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			for _, a := range defaultRoster {
				a.Status = store.AgentStatusIdle
				a.SessionKey = fmt.Sprintf("agent:%s:main", a.AgentID)
				if err := st.RegisterAgent(ctx, a); err != nil {
					return fmt.Errorf("register %s: %w", a.AgentID, err)
				}
				fmt.Printf("  %s %s (%s)\n", a.Emoji, a.AgentID, a.Role)
			}

			fmt.Printf("\n%d agent(s) in the roster.\n", len(defaultRoster))
			return nil
		},
	}
}
