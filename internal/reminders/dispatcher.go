package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/storage"
)

type Report struct {
	Due      int
	Notified int
	Skipped  int
}

// Dispatcher computes the due tasks for today and posts them.
type Dispatcher struct {
	Source     DueSource
	Notifier   Notifier
	Permission PermissionChecker
	Clock      model.Clock
	Cap        int
	BaseID     int
	Logger     *slog.Logger
}

// Run checks permission, selects due tasks, posts the planned notifications
// in order and logs the remainder. A denied permission returns
// ErrPermissionUnavailable. Store failures that storage.IsTransient accepts
// and notifier failures come back as *TransientError; any other store error
// is returned as is and ends the run. A failing notification does not stop
// later ones.
func (d *Dispatcher) Run(ctx context.Context) (Report, error) {
	logger := d.logger()
	granted, err := d.permission().Granted(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrPermissionUnavailable, err)
	}
	if !granted {
		logger.Info("notification permission not granted, skipping run")
		return Report{}, ErrPermissionUnavailable
	}

	today := model.Today(d.clock())
	due, err := SelectDueTasks(ctx, d.Source, today)
	if err != nil {
		if storage.IsTransient(err) {
			return Report{}, transient(err)
		}
		logger.Error("due task selection failed", "error", err)
		return Report{}, err
	}

	plan := Plan(due, today, d.Cap, d.BaseID)
	report := Report{Due: len(due), Skipped: plan.Skipped}
	var errs []error
	for _, n := range plan.Notifications {
		if err := d.Notifier.Notify(ctx, n); err != nil {
			logger.Warn("notification failed", "id", n.ID, "task_id", n.TaskID, "error", err)
			errs = append(errs, err)
			continue
		}
		report.Notified++
		logger.Debug("notification posted", "id", n.ID, "task_id", n.TaskID, "body", n.Body)
	}
	if plan.Skipped > 0 {
		logger.Info("due tasks beyond notification cap", "skipped", plan.Skipped, "cap", len(plan.Notifications))
	}
	logger.Info("reminder run finished", "due", report.Due, "notified", report.Notified)
	return report, transient(errors.Join(errs...))
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d *Dispatcher) permission() PermissionChecker {
	if d.Permission == nil {
		return AlwaysGranted{}
	}
	return d.Permission
}

func (d *Dispatcher) clock() model.Clock {
	if d.Clock == nil {
		return model.SystemClock{}
	}
	return d.Clock
}
