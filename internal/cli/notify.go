package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/reminders"
)

const shutdownTimeout = 10 * time.Second

func newDueCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Show the tasks a reminder run would notify today",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			c := rt.container
			today := model.Today(c.Clock)
			tasks, err := reminders.SelectDueTasks(cmd.Context(), c.Store, today)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(w, "Nothing due today.")
				return nil
			}
			plan := reminders.Plan(tasks, today, c.Config.Notifications.Cap, c.Config.Notifications.BaseID)
			for i, task := range tasks {
				line := fmt.Sprintf("%-8s  %-24s  %s", shortID(task.ID), task.Name, statusText(task.Urgency(today)))
				if i >= len(plan.Notifications) {
					line += color.New(color.Faint).Sprint("  (not notified)")
				}
				_, _ = fmt.Fprintln(w, line)
			}
			if plan.Skipped > 0 {
				_, _ = fmt.Fprintf(w, "%d due, %d over the notification cap\n", len(tasks), plan.Skipped)
			}
			return nil
		}),
	}
}

func newNotifyCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Post notifications for today's due tasks now",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			report, err := rt.container.NotifyNow(cmd.Context())
			if errors.Is(err, reminders.ErrPermissionUnavailable) {
				return fmt.Errorf("%w (enable notifications.desktop in the config and install notify-send or osascript)", err)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), reportText(report))
			return nil
		}),
	}
}

func newDaemonCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run reminder passes on the configured interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			c := rt.container
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if err := c.StartDaily(ctx); err != nil {
				return err
			}
			c.Logger.Info("daemon started", "interval", c.Config.Scheduler.Interval.Duration)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "choresd daemon running every %s, press Ctrl+C to stop\n",
				c.Config.Scheduler.Interval.Duration)

			wait := gfshutdown.GracefulShutdown(context.WithoutCancel(ctx), shutdownTimeout, map[string]gfshutdown.Operation{
				"scheduler": func(context.Context) error {
					cancel()
					c.Engine.Stop()
					return nil
				},
			})
			if code := <-wait; code != 0 {
				return fmt.Errorf("daemon shutdown finished with exit code %d", code)
			}
			c.Logger.Info("daemon stopped")
			return nil
		}),
	}
}

func reportText(r reminders.Report) string {
	switch {
	case r.Due == 0:
		return "Nothing due today."
	case r.Skipped > 0:
		return fmt.Sprintf("Notified %d of %d due tasks (%d not shown).", r.Notified, r.Due, r.Skipped)
	default:
		return fmt.Sprintf("Notified %d of %d due tasks.", r.Notified, r.Due)
	}
}
