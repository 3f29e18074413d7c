package update

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/choresd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

func (m Model) bindings() []KeyBinding {
	out := make([]KeyBinding, 0, 9)
	for _, group := range m.Keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			out = append(out, KeyBinding{Key: h.Key, Action: h.Desc})
		}
	}
	return out
}

// helpMarkdown documents keys, the command line and how due dates move.
func (m Model) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# choresd\n\n## Keys\n\n| Key | Action |\n|---|---|\n")
	for _, kb := range m.bindings() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", kb.Key, kb.Action)
	}
	b.WriteString(`
## Commands

- ` + "`add <name> <min> <max>`" + ` adds a task due today
- ` + "`done <id>`" + ` marks a task done (an id prefix is enough)
- ` + "`rm <id>`" + ` deletes a task
- ` + "`notify`" + ` posts notifications for due tasks now

## Scheduling

Completing a task sets its next due date to a random day between
*min* and *max* days from today. At most five due tasks are notified
per run; the rest are listed here.
`)
	return b.String()
}

func (m Model) renderHelpView() string {
	return views.RenderHelpPanel(views.HelpPanelData{
		Markdown: m.helpMarkdown(),
		HelpView: m.helpModel.FullHelpView(m.Keys.FullHelp()),
	})
}
