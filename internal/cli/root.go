// Package cli provides the choresd command line.
package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/choresd/internal/app"
	"github.com/sandeepkv93/choresd/internal/config"
	"github.com/sandeepkv93/choresd/internal/logging"
)

// Command group IDs.
const (
	groupTasks     = "tasks"
	groupReminders = "reminders"
)

// launchTUIFunc is swapped out in tests.
var launchTUIFunc = launchTUI

// runtime holds the flag values and the container built for one invocation.
type runtime struct {
	configPath string
	dbPath     string
	logLevel   string

	opts      []app.Option
	container *app.Container
	logCloser io.Closer
}

// NewRootCommand builds the choresd command tree. Options are passed to
// app.New when a subcommand opens the store.
func NewRootCommand(version string, opts ...app.Option) *cobra.Command {
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:   "choresd",
		Short: "Track recurring household chores",
		Long: `choresd tracks recurring chores. Each task has a window of
min..max days; completing it schedules the next due date on a random day
inside that window, counted from today.

Run without a subcommand to open the interactive view.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.open(cmd)
		},
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd.Context(), rt.container)
		}),
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "config file (default ~/.choresd/config.toml)")
	root.PersistentFlags().StringVar(&rt.dbPath, "db", "", "SQLite database path")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddGroup(
		&cobra.Group{ID: groupTasks, Title: "Task Commands:"},
		&cobra.Group{ID: groupReminders, Title: "Reminder Commands:"},
	)

	for _, cmd := range []*cobra.Command{
		newAddCommand(rt),
		newListCommand(rt),
		newDoneCommand(rt),
		newEditCommand(rt),
		newRemoveCommand(rt),
		newTUICommand(rt),
	} {
		cmd.GroupID = groupTasks
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newDueCommand(rt),
		newNotifyCommand(rt),
		newDaemonCommand(rt),
	} {
		cmd.GroupID = groupReminders
		root.AddCommand(cmd)
	}
	return root
}

// open resolves configuration and builds the container. The interactive
// view logs to the configured file; everything else logs to stderr, at warn
// unless a level was asked for.
func (rt *runtime) open(cmd *cobra.Command) error {
	cfg, err := config.Resolve(rt.configPath)
	if err != nil {
		return err
	}
	if rt.dbPath != "" {
		cfg.DBPath = rt.dbPath
	}
	if rt.logLevel != "" {
		cfg.LogLevel = rt.logLevel
	}
	level := logging.ParseLevel(cfg.LogLevel)

	var logger *slog.Logger
	if interactive(cmd) {
		l, closer, err := logging.OpenFile(cfg.LogFile, level)
		if err != nil {
			return err
		}
		logger, rt.logCloser = l, closer
	} else {
		if rt.logLevel == "" && level < slog.LevelWarn {
			level = slog.LevelWarn
		}
		logger = logging.New(cmd.ErrOrStderr(), level)
	}

	c, err := app.New(cfg, logger, rt.opts...)
	if err != nil {
		return errors.Join(err, rt.close())
	}
	rt.container = c
	logger.Debug("opened store", "command", cmd.Name(), "db", cfg.DBPath)
	return nil
}

// run wraps a RunE so the container is closed whether or not fn fails.
func (rt *runtime) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, rt.close())
		}()
		return fn(cmd, args)
	}
}

func (rt *runtime) close() error {
	var errs []error
	if rt.container != nil {
		errs = append(errs, rt.container.Close())
		rt.container = nil
	}
	if rt.logCloser != nil {
		errs = append(errs, rt.logCloser.Close())
		rt.logCloser = nil
	}
	return errors.Join(errs...)
}

func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

