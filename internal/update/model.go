package update

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/reminders"
)

type Mode string

const (
	ModeList    Mode = "List"
	ModeForm    Mode = "Add"
	ModeCommand Mode = "Command"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Complete key.Binding
	Delete   key.Binding
	Notify   key.Binding
	Command  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "move up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "move down")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Complete: key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "mark done")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Notify:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notify now")),
		Command:  key.NewBinding(key.WithKeys(":", "/"), key.WithHelp(":", "command")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k GlobalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Complete, k.Delete, k.Notify, k.Command, k.Help, k.Quit}
}

func (k GlobalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Add, k.Complete, k.Delete},
		{k.Notify, k.Command, k.Help, k.Quit},
	}
}

// TaskActions is the mutation surface the TUI drives.
type TaskActions interface {
	CreateTask(ctx context.Context, name string, minDays, maxDays int) (model.Task, error)
	CompleteTask(ctx context.Context, task model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, task model.Task) error
}

// NotifyFunc runs one reminder pass on demand.
type NotifyFunc func(ctx context.Context) (reminders.Report, error)

type Deps struct {
	Ctx     context.Context
	Actions TaskActions
	Notify  NotifyFunc
	// Updates delivers ordered task snapshots, normally from
	// TaskService.Watch.
	Updates <-chan []model.Task
	Clock   model.Clock
}

type Model struct {
	Mode        Mode
	Tasks       []model.Task
	Cursor      int
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	ctx              context.Context
	actions          TaskActions
	notify           NotifyFunc
	updates          <-chan []model.Task
	clock            model.Clock
	form             taskForm
	commandInput     textinput.Model
	helpModel        help.Model
	permissionWarned bool
}

func NewModel(deps Deps) Model {
	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	clock := deps.Clock
	if clock == nil {
		clock = model.SystemClock{}
	}
	cmd := textinput.New()
	cmd.Prompt = ": "
	cmd.Placeholder = "add <name> <min> <max> | done <id> | rm <id> | notify"
	cmd.CharLimit = 200

	return Model{
		Mode:         ModeList,
		Keys:         DefaultKeyMap(),
		ctx:          ctx,
		actions:      deps.Actions,
		notify:       deps.Notify,
		updates:      deps.Updates,
		clock:        clock,
		form:         newTaskForm(),
		commandInput: cmd,
		helpModel:    help.New(),
	}
}

// Selected returns the task under the cursor.
func (m Model) Selected() (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return model.Task{}, false
	}
	return m.Tasks[m.Cursor], true
}

func (m Model) today() model.Date {
	return model.Today(m.clock)
}

// selectTask keeps the cursor on id across list refreshes when it survives.
func (m *Model) selectTask(id string) {
	for i, task := range m.Tasks {
		if task.ID == id {
			m.Cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Tasks) {
		m.Cursor = len(m.Tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
