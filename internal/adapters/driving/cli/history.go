package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

const displayTime = "2006-01-02 15:04:05"

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [task]",
	Short: "Show scheduled task runs",
	Long: `Shows the state of the scheduled tasks and their most recent runs.
Tasks are sync-pending and purge-stale. Without an argument both are shown.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: domain.TaskIDs(),
	RunE:      runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "runs to show per task")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if schedulerStore == nil {
		return errors.New("scheduler store not configured")
	}
	ctx := cmd.Context()

	tasks, err := schedulerStore.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(args) > 0 {
		if !slices.Contains(domain.TaskIDs(), args[0]) {
			return fmt.Errorf("%w: unknown task %q", domain.ErrInvalidInput, args[0])
		}
		tasks = slices.DeleteFunc(tasks, func(t domain.ScheduledTask) bool { return t.ID != args[0] })
	}
	if len(tasks) == 0 {
		cmd.Println("No scheduled tasks yet. Run 'noticesync schedule' first.")
		return nil
	}

	out := cmd.OutOrStdout()
	for i, task := range tasks {
		if i > 0 {
			cmd.Println()
		}
		printTask(out, task)

		results, err := schedulerStore.GetTaskHistory(ctx, task.ID, historyLimit)
		if err != nil {
			return fmt.Errorf("history of %s: %w", task.ID, err)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, paint(out, mutedStyle, "  no runs recorded"))
			continue
		}
		if err := historyListing(results).render(out); err != nil {
			return err
		}
	}
	return nil
}

func printTask(w io.Writer, task domain.ScheduledTask) {
	state := paint(w, successStyle, "enabled")
	if !task.Enabled {
		state = paint(w, mutedStyle, "disabled")
	}
	fmt.Fprintf(w, "%s (%s) %s, every %s\n", paint(w, titleStyle, task.Name), task.ID, state, task.Interval)
	fmt.Fprintf(w, "  last run: %s, next run: %s\n", formatTime(task.LastRun), formatTime(task.NextRun))
	if task.LastError != "" {
		fmt.Fprintf(w, "  last error: %s\n", paint(w, errorStyle, task.LastError))
	}
}

func historyListing(results []domain.TaskResult) listing {
	l := listing{headers: []string{"STARTED", "DURATION", "STATUS", "ITEMS", "ERROR"}, statusCol: 2}
	for _, r := range results {
		status := statusOK
		if !r.Success {
			status = statusFailed
		}
		l.rows = append(l.rows, []string{
			formatTime(r.StartedAt),
			r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			status,
			strconv.Itoa(r.ItemsProcessed),
			r.Error,
		})
	}
	return l
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(displayTime)
}
