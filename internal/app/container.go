// Package app wires the store, services, notifier and scheduler together
// from a resolved configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sandeepkv93/choresd/internal/config"
	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/reminders"
	"github.com/sandeepkv93/choresd/internal/scheduler"
	"github.com/sandeepkv93/choresd/internal/service"
	"github.com/sandeepkv93/choresd/internal/storage"
)

// Trigger names. The daily trigger keeps an already pending run; a manual
// trigger replaces one.
const (
	DailyTrigger  = "daily-reminders"
	ManualTrigger = "manual-reminders"
)

type Container struct {
	Config     config.Config
	Logger     *slog.Logger
	Clock      model.Clock
	Store      *storage.SQLiteRepository
	Tasks      *service.TaskService
	Dispatcher *reminders.Dispatcher
	Engine     *scheduler.Engine

	startOnce sync.Once
	mu        sync.Mutex
	reports   map[string]reminders.Report
}

type Option func(*options)

type options struct {
	notifier   reminders.Notifier
	permission reminders.PermissionChecker
	clock      model.Clock
	random     model.RandomSource
}

func WithNotifier(n reminders.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func WithPermission(p reminders.PermissionChecker) Option {
	return func(o *options) { o.permission = p }
}

func WithClock(c model.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithRandom(r model.RandomSource) Option {
	return func(o *options) { o.random = r }
}

// New opens the database named by cfg and builds every component. Close
// must be called when done.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := options{clock: model.SystemClock{}, random: model.DefaultRandom()}
	if cfg.Notifications.Desktop {
		o.notifier = reminders.NewDesktopNotifier()
	} else {
		o.notifier = reminders.NoopNotifier{}
	}
	o.permission = reminders.NewDesktopPermission(cfg.Notifications.Desktop)
	for _, opt := range opts {
		opt(&o)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("app: create data directory: %w", err)
		}
	}
	store, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Clock:   o.clock,
		Store:   store,
		reports: make(map[string]reminders.Report),
	}
	c.Tasks = service.NewTaskService(store,
		service.WithClock(o.clock),
		service.WithRandom(o.random),
		service.WithLogger(logger.With("component", "tasks")),
	)
	c.Dispatcher = &reminders.Dispatcher{
		Source:     store,
		Notifier:   o.notifier,
		Permission: o.permission,
		Clock:      o.clock,
		Cap:        cfg.Notifications.Cap,
		BaseID:     cfg.Notifications.BaseID,
		Logger:     logger.With("component", "reminders"),
	}
	c.Engine = scheduler.NewEngine(c.runTrigger, scheduler.Config{
		MaxRetries:     cfg.Scheduler.MaxRetries,
		BaseRetryDelay: cfg.Scheduler.BaseRetryDelay.Duration,
		MaxRetryDelay:  cfg.Scheduler.MaxRetryDelay.Duration,
	}, logger.With("component", "scheduler"))
	return c, nil
}

// Start launches the scheduler. It is safe to call more than once.
func (c *Container) Start(ctx context.Context) {
	c.startOnce.Do(func() { c.Engine.Start(ctx) })
}

// StartDaily starts the scheduler and the periodic reminder trigger.
func (c *Container) StartDaily(ctx context.Context) error {
	c.Start(ctx)
	return c.Engine.Every(DailyTrigger, c.Config.Scheduler.Interval.Duration)
}

// NotifyNow runs a reminder pass through the scheduler and waits for it. A
// pass already pending is replaced by this one.
func (c *Container) NotifyNow(ctx context.Context) (reminders.Report, error) {
	c.Start(context.WithoutCancel(ctx))
	ticket, _, err := c.Engine.Enqueue(scheduler.Trigger{Name: ManualTrigger, Policy: scheduler.ReplacePending})
	if err != nil {
		return reminders.Report{}, err
	}
	res, err := ticket.Wait(ctx)
	if err != nil {
		return reminders.Report{}, err
	}
	if res.Superseded {
		return reminders.Report{}, errors.New("app: reminder run superseded by a newer request")
	}
	report, _ := res.Value.(reminders.Report)
	return report, res.Err
}

// LastReport returns the outcome of the latest run of the named trigger.
func (c *Container) LastReport(trigger string) reminders.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reports[trigger]
}

func (c *Container) runTrigger(ctx context.Context, name string) error {
	start := time.Now()
	report, err := c.Dispatcher.Run(ctx)
	c.mu.Lock()
	c.reports[name] = report
	c.mu.Unlock()
	scheduler.SetValue(ctx, report)
	c.Logger.Debug("reminder trigger ran", "trigger", name, "elapsed", time.Since(start), "error", err)
	return err
}

// Close stops the scheduler and closes the store.
func (c *Container) Close() error {
	c.Engine.Stop()
	return c.Store.Close()
}
