package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/choresd/internal/model"
)

func newAddCommand(rt *runtime) *cobra.Command {
	var minDays, maxDays int
	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add a task, due today",
		Example: `  choresd add Take out bins --min 6 --max 8
  choresd add "Water plants" --min 2 --max 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			task, err := rt.container.Tasks.CreateTask(cmd.Context(), strings.Join(args, " "), minDays, maxDays)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q, due %s\n", shortID(task.ID), task.Name, task.NextDueDate)
			return nil
		}),
	}
	cmd.Flags().IntVar(&minDays, "min", 0, "minimum days between completions")
	cmd.Flags().IntVar(&maxDays, "max", 0, "maximum days between completions")
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func newListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by due date",
		Args:    cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			tasks, err := rt.container.Tasks.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks, model.Today(rt.container.Clock))
			return nil
		}),
	}
}

func newDoneCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "done ID",
		Aliases: []string{"complete"},
		Short:   "Mark a task done and schedule its next due date",
		Long:    "Mark a task done. ID may be any unique prefix of the task id.",
		Args:    cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := rt.container.Tasks.FindTask(ctx, args[0])
			if err != nil {
				return err
			}
			done, err := rt.container.Tasks.CompleteTask(ctx, task)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed %q, next due %s\n", done.Name, done.NextDueDate)
			return nil
		}),
	}
}

func newEditCommand(rt *runtime) *cobra.Command {
	var (
		name             string
		minDays, maxDays int
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's name or window",
		Long: `Change a task's name or recurrence window. The current due date is
kept; the new window applies from the next completion.`,
		Args: cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := rt.container.Tasks.FindTask(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("min") && !flags.Changed("max") {
				return errors.New("nothing to change: pass --name, --min or --max")
			}
			if flags.Changed("name") {
				task.Name = strings.TrimSpace(name)
			}
			if flags.Changed("min") {
				task.MinRecurrenceDays = minDays
			}
			if flags.Changed("max") {
				task.MaxRecurrenceDays = maxDays
			}
			if err := model.ValidateInput(task.Name, task.MinRecurrenceDays, task.MaxRecurrenceDays); err != nil {
				return err
			}
			if err := rt.container.Tasks.UpdateTaskDetails(ctx, task); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %q, every %d-%d days\n",
				shortID(task.ID), task.Name, task.MinRecurrenceDays, task.MaxRecurrenceDays)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().IntVar(&minDays, "min", 0, "new minimum days")
	cmd.Flags().IntVar(&maxDays, "max", 0, "new maximum days")
	return cmd
}

func newRemoveCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := rt.container.Tasks.FindTask(ctx, args[0])
			if err != nil {
				return err
			}
			if err := rt.container.Tasks.DeleteTask(ctx, task); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", task.Name)
			return nil
		}),
	}
}

func printTasks(w io.Writer, tasks []model.Task, today model.Date) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks.")
		return
	}
	_, _ = fmt.Fprintf(w, "%-8s  %-24s  %-7s  %-10s  %s\n", "ID", "NAME", "WINDOW", "DUE", "STATUS")
	for _, task := range tasks {
		due := "-"
		if task.NextDueDate != nil {
			due = task.NextDueDate.String()
		}
		window := fmt.Sprintf("%d-%d", task.MinRecurrenceDays, task.MaxRecurrenceDays)
		_, _ = fmt.Fprintf(w, "%-8s  %-24s  %-7s  %-10s  %s\n",
			shortID(task.ID), task.Name, window, due, statusText(task.Urgency(today)))
	}
}

func statusText(u model.Urgency) string {
	switch u.Kind {
	case model.Overdue:
		return color.New(color.FgRed, color.Bold).Sprint(u.Status())
	case model.DueToday:
		return color.New(color.FgYellow).Sprint(u.Status())
	case model.DueInFuture:
		return color.New(color.FgGreen).Sprint(u.Status())
	default:
		return color.New(color.Faint).Sprint(u.Status())
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
