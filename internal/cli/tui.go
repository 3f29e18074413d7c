package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/choresd/internal/app"
	"github.com/sandeepkv93/choresd/internal/update"
)

func newTUICommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive view (same as running choresd alone)",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd.Context(), rt.container)
		}),
	}
}

// launchTUI runs the daily reminder trigger in the background for as long as
// the view is open.
func launchTUI(ctx context.Context, c *app.Container) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.StartDaily(ctx); err != nil {
		return err
	}
	updates, err := c.Tasks.Watch(ctx)
	if err != nil {
		return err
	}
	model := update.NewModel(update.Deps{
		Ctx:     ctx,
		Actions: c.Tasks,
		Notify:  c.NotifyNow,
		Updates: updates,
		Clock:   c.Clock,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}
