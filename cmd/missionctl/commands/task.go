package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/missionctl/pkg/missionctl/collab"
	"github.com/openclaw/missionctl/pkg/missionctl/store"
)

// newTaskCmd creates the `missionctl task` command group.
func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long: `Create, inspect, and update tasks on the shared board.

Examples:
  missionctl task create "Ship landing page" --by jarvis --assign designer,developer
  missionctl task list --status in_progress
  missionctl task show t-4f2a
  missionctl task update t-4f2a --status review --by developer`,
	}

	cmd.AddCommand(
		newTaskCreateCmd(),
		newTaskListCmd(),
		newTaskShowCmd(),
		newTaskUpdateCmd(),
	)

	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
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

			by, _ := cmd.Flags().GetString("by")
			assignees, _ := cmd.Flags().GetStringSlice("assign")
			desc, _ := cmd.Flags().GetString("description")
			priority, _ := cmd.Flags().GetString("priority")
			tags, _ := cmd.Flags().GetStringSlice("tag")

			svc := collab.NewService(st, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			id, err := svc.CreateTask(ctx, store.Task{
				Title:       args[0],
				Description: desc,
				Priority:    store.TaskPriority(priority),
				AssigneeIDs: assignees,
				CreatedBy:   by,
				Tags:        tags,
			})
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}

			fmt.Printf("Created task %s\n", id)
			return nil
		},
	}

	cmd.Flags().String("by", "", "creating agent id (required)")
	cmd.Flags().StringSlice("assign", nil, "assignee agent ids")
	cmd.Flags().String("description", "", "task description")
	cmd.Flags().String("priority", "medium", "priority (low, medium, high, urgent)")
	cmd.Flags().StringSlice("tag", nil, "free-form tags")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
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

			status, _ := cmd.Flags().GetString("status")

			var tasks []store.Task
			if status != "" {
				tasks, err = st.ListTasksByStatus(ctx, store.TaskStatus(status))
			} else {
				tasks, err = st.ListTasks(ctx)
			}
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tSTATUS\tPRIORITY\tASSIGNEES\tTITLE\n")
			fmt.Fprintf(w, "──\t──────\t────────\t─────────\t─────\n")
			for _, t := range tasks {
				title := t.Title
				if len(title) > 50 {
					title = title[:47] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Status, t.Priority, joinOrDash(t.AssigneeIDs), title)
			}
			w.Flush()
			fmt.Printf("\n%d task(s).\n", len(tasks))
			return nil
		},
	}

	cmd.Flags().String("status", "", "filter by status (inbox, assigned, in_progress, review, done, blocked)")
	return cmd
}

func newTaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task and its messages",
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

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			t, err := st.GetTask(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}

			fmt.Printf("Task:        %s\n", t.ID)
			fmt.Printf("Title:       %s\n", t.Title)
			if t.Description != "" {
				fmt.Printf("Description: %s\n", t.Description)
			}
			fmt.Printf("Status:      %s\n", t.Status)
			fmt.Printf("Priority:    %s\n", t.Priority)
			fmt.Printf("Created by:  %s\n", t.CreatedBy)
			fmt.Printf("Assignees:   %s\n", joinOrDash(t.AssigneeIDs))
			fmt.Printf("Subscribers: %s\n", joinOrDash(t.SubscriberIDs))
			if len(t.Tags) > 0 {
				fmt.Printf("Tags:        %s\n", strings.Join(t.Tags, ", "))
			}

			msgs, err := st.ListMessagesByTask(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("list messages: %w", err)
			}
			if len(msgs) > 0 {
				fmt.Printf("\nMessages (%d):\n", len(msgs))
				for _, m := range msgs {
					ts := time.UnixMilli(m.CreatedAt).Format("2006-01-02 15:04")
					fmt.Printf("  [%s] %s: %s\n", ts, m.FromAgentID, m.Content)
				}
			}
			return nil
		},
	}
}

func newTaskUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task's status, priority, or assignees",
		Args:  cobra.ExactArgs(1),
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

			by, _ := cmd.Flags().GetString("by")
			statusFlag, _ := cmd.Flags().GetString("status")
			priorityFlag, _ := cmd.Flags().GetString("priority")
			assignees, _ := cmd.Flags().GetStringSlice("assign")

			var upd store.TaskUpdate
			if statusFlag != "" {
				s := store.TaskStatus(statusFlag)
				upd.Status = &s
			}
			if priorityFlag != "" {
				p := store.TaskPriority(priorityFlag)
				upd.Priority = &p
			}
			upd.AssigneeIDs = assignees

			svc := collab.NewService(st, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := svc.UpdateTask(ctx, args[0], by, upd); err != nil {
				return fmt.Errorf("update task: %w", err)
			}

			fmt.Printf("Updated task %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().String("by", "", "acting agent id (required)")
	cmd.Flags().String("status", "", "new status")
	cmd.Flags().String("priority", "", "new priority")
	cmd.Flags().StringSlice("assign", nil, "agent ids to add as assignees")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ",")
}
