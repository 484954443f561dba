package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/platform/postgres"
	"github.com/phrazzld/taskpulse-api/internal/service"
	"github.com/spf13/cobra"
)

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "remindctl",
		Short:         "Operate the taskpulse reminder pipeline",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "print results as JSON")

	root.AddCommand(
		migrateCmd(e),
		planCmd(e),
		generateCmd(e),
		cancelCmd(e),
		sendCmd(e),
		listCmd(e),
		historyCmd(e),
		statsCmd(e),
		previewCmd(e),
	)
	return root
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := postgres.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}
			return e.migrate(cmd.Context(), command)
		},
	}
}

func planCmd(e *env) *cobra.Command {
	var (
		taskID, userID, strategy, message string
		priority                          int
		useAI                             bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan and save the reminders for a task",
		Example: `  remindctl plan --task 7d9f... --user 1c2e... --strategy escalating
  remindctl plan --task 7d9f... --user 1c2e... --ai --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := parseID("task", taskID)
			if err != nil {
				return err
			}
			user, err := parseID("user", userID)
			if err != nil {
				return err
			}

			svc, done, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.CreateReminders(cmd.Context(), user, service.CreateRemindersInput{
				TaskID:   task,
				Message:  message,
				Strategy: domain.ReminderStrategy(strategy),
				Priority: priority,
				UseAI:    useAI,
			})
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.GenerationError != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "content generation skipped: %s\n", res.GenerationError)
			}
			return writeReminders(cmd.OutOrStdout(), res.Reminders)
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "task id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "owner id (required)")
	cmd.Flags().StringVar(&strategy, "strategy", string(domain.StrategySingle), "single, multi_round or escalating")
	cmd.Flags().StringVar(&message, "message", "", "reminder message; defaults to the task title")
	cmd.Flags().IntVar(&priority, "priority", domain.MinReminderPriority, "base reminder priority")
	cmd.Flags().BoolVar(&useAI, "ai", false, "generate the reminder message")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func generateCmd(e *env) *cobra.Command {
	var taskID, userID, tone, timing string
	style := domain.DefaultContentStyle()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Preview generated reminder content for a task without saving it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := parseID("task", taskID)
			if err != nil {
				return err
			}
			user, err := parseID("user", userID)
			if err != nil {
				return err
			}
			style.Tone = domain.Tone(tone)
			style.Timing = domain.Timing(timing)

			svc, done, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.GenerateContent(cmd.Context(), user, task, style)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Fallback {
				fmt.Fprintln(cmd.ErrOrStderr(), "provider output was unusable; showing fallback content")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Content.Compose())
			return err
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "task id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "owner id (required)")
	cmd.Flags().StringVar(&tone, "tone", string(style.Tone), "friendly, professional or urgent")
	cmd.Flags().StringVar(&timing, "timing", string(style.Timing), "early, on_time or late")
	cmd.Flags().BoolVar(&style.IncludeMotivation, "motivation", style.IncludeMotivation, "include a motivation quote")
	cmd.Flags().BoolVar(&style.IncludeSuggestions, "suggestions", style.IncludeSuggestions, "include a suggested action")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func cancelCmd(e *env) *cobra.Command {
	var reminderID, userID string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending reminder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reminder, err := parseID("reminder", reminderID)
			if err != nil {
				return err
			}
			user, err := parseID("user", userID)
			if err != nil {
				return err
			}

			svc, done, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			r, err := svc.Cancel(cmd.Context(), user, reminder)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reminder %s is %s\n", r.ID, r.State)
			return err
		},
	}

	cmd.Flags().StringVar(&reminderID, "reminder", "", "reminder id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("reminder")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func sendCmd(e *env) *cobra.Command {
	var reminderID, userID string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Deliver a pending reminder now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reminder, err := parseID("reminder", reminderID)
			if err != nil {
				return err
			}
			user, err := parseID("user", userID)
			if err != nil {
				return err
			}

			svc, done, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if err := svc.SendNow(cmd.Context(), user, reminder); err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"reminder_id": reminder,
					"state":       domain.ReminderStateSent,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reminder %s is %s\n", reminder, domain.ReminderStateSent)
			return err
		},
	}

	cmd.Flags().StringVar(&reminderID, "reminder", "", "reminder id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("reminder")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func listCmd(e *env) *cobra.Command {
	var userID, state string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's reminders",
		Example: `  remindctl list --user 1c2e...
  remindctl list --user 1c2e... --state pending --limit 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := parseID("user", userID)
			if err != nil {
				return err
			}

			svc, done, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			reminders, err := svc.ListReminders(cmd.Context(), user, domain.ReminderState(state), limit, offset)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), reminders)
			}
			return writeReminders(cmd.OutOrStdout(), reminders)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owner id (required)")
	cmd.Flags().StringVar(&state, "state", "", "only list reminders in this state (pending, sent, cancelled)")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultListLimit, "maximum reminders to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "reminders to skip")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func historyCmd(e *env) *cobra.Command {
	var userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a recipient's most recent notification records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := parseID("user", userID)
			if err != nil {
				return err
			}

			svc, done, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			records, err := svc.NotificationHistory(cmd.Context(), user, limit)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), records)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tREMINDER\tCHANNEL\tOUTCOME\tDETAIL")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.CreatedAt.Format(time.RFC3339), r.ReminderID, r.Channel, r.Outcome, r.Detail)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "recipient id (required)")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultListLimit, "maximum records to show")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func statsCmd(e *env) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a recipient's delivery outcomes per channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := parseID("user", userID)
			if err != nil {
				return err
			}

			svc, done, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			stats, err := svc.NotificationStats(cmd.Context(), user)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHANNEL\tTOTAL\tDELIVERED\tSKIPPED\tFAILED")
			for _, c := range stats.Channels {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", c.Channel, c.Total, c.Delivered, c.Skipped, c.Failed)
			}
			fmt.Fprintf(tw, "all\t%d\t\t\t\n", stats.Total)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "recipient id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func previewCmd(e *env) *cobra.Command {
	var due, now, priority, strategy string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the reminder timeline for a due date without touching the database",
		Example: `  remindctl preview --due 2025-06-12T17:00:00Z --priority high --strategy escalating
  remindctl preview --priority low`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at := time.Now().UTC()
			if now != "" {
				t, err := time.Parse(time.RFC3339, now)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				at = t
			}

			var dueAt *time.Time
			if due != "" {
				t, err := time.Parse(time.RFC3339, due)
				if err != nil {
					return fmt.Errorf("invalid --due: %w", err)
				}
				dueAt = &t
			}

			plan, err := e.planner.Plan(at, dueAt, domain.TaskPriority(priority), domain.ReminderStrategy(strategy))
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), plan)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STAGE\tAT\tIN\tESCALATION")
			for _, st := range plan.Stages {
				fmt.Fprintf(tw, "%s\t%s\t%s\t+%d\n",
					st.Stage, st.At.Format(time.RFC3339), st.At.Sub(at).Round(time.Minute), st.Escalation)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "task due date (RFC 3339); omit for undated tasks")
	cmd.Flags().StringVar(&now, "now", "", "reference time (RFC 3339); defaults to the current time")
	cmd.Flags().StringVar(&priority, "priority", string(domain.TaskPriorityMedium), "low, medium, high or urgent")
	cmd.Flags().StringVar(&strategy, "strategy", string(domain.StrategySingle), "single, multi_round or escalating")
	return cmd
}

func parseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid --%s %q: expected a UUID", name, raw)
	}
	return id, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReminders(w io.Writer, reminders []*domain.Reminder) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTAGE\tSTATE\tSCHEDULED\tPRIORITY\tMESSAGE")
	for _, r := range reminders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Stage, r.State, r.ScheduledAt.Format(time.RFC3339), r.Priority, firstLine(r.Message))
	}
	return tw.Flush()
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
