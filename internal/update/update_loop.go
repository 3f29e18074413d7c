package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/choresd/internal/commands"
	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/reminders"
	"github.com/sandeepkv93/choresd/internal/views"
)

const permissionHelp = "notifications unavailable: enable notifications.desktop and install notify-send (Linux) or osascript (macOS)"

type TasksLoadedMsg struct {
	Tasks []model.Task
}

// TasksClosedMsg reports that the task stream ended.
type TasksClosedMsg struct{}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type taskCreatedMsg struct{ task model.Task }

type taskCompletedMsg struct{ task model.Task }

type taskDeletedMsg struct{ task model.Task }

type createFailedMsg struct{ err error }

type notifyDoneMsg struct {
	report reminders.Report
	err    error
}

func waitForTasks(ch <-chan []model.Task) tea.Cmd {
	return func() tea.Msg {
		tasks, ok := <-ch
		if !ok {
			return TasksClosedMsg{}
		}
		return TasksLoadedMsg{Tasks: tasks}
	}
}

func (m Model) Init() tea.Cmd {
	if m.updates != nil {
		return waitForTasks(m.updates)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch m.Mode {
		case ModeForm:
			return m.handleFormKey(typed)
		case ModeCommand:
			return m.handleCommandKey(typed)
		default:
			return m.handleListKey(typed)
		}
	case TasksLoadedMsg:
		var selectedID string
		if task, ok := m.Selected(); ok {
			selectedID = task.ID
		}
		m.Tasks = typed.Tasks
		m.selectTask(selectedID)
		if m.updates != nil {
			return m, waitForTasks(m.updates)
		}
		return m, nil
	case TasksClosedMsg:
		m.updates = nil
		return m, nil
	case taskCreatedMsg:
		m.form.reset()
		m.Status = StatusBar{Text: fmt.Sprintf("added %q, due %s", typed.task.Name, typed.task.NextDueDate)}
		return m, nil
	case createFailedMsg:
		if m.form.mergeValidation(typed.err) {
			m.Mode = ModeForm
			m.Status = StatusBar{Text: "fix the highlighted fields", IsError: true}
			return m, m.form.open()
		}
		return m.Update(AppErrorMsg{Err: typed.err})
	case taskCompletedMsg:
		m.Status = StatusBar{Text: fmt.Sprintf("%q done, next due %s", typed.task.Name, typed.task.NextDueDate)}
		return m, nil
	case taskDeletedMsg:
		m.Status = StatusBar{Text: fmt.Sprintf("deleted %q", typed.task.Name)}
		return m, nil
	case notifyDoneMsg:
		return m.onNotifyDone(typed), nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	if m.Mode == ModeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < len(m.Tasks)-1 {
			m.Cursor++
		}
		return m, nil
	case key.Matches(msg, m.Keys.Add):
		m.Mode = ModeForm
		m.HelpVisible = false
		return m, m.form.open()
	case key.Matches(msg, m.Keys.Command):
		m.Mode = ModeCommand
		m.commandInput.SetValue("")
		return m, m.commandInput.Focus()
	case key.Matches(msg, m.Keys.Complete):
		task, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.completeCmd(task)
	case key.Matches(msg, m.Keys.Delete):
		task, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.deleteCmd(task)
	case key.Matches(msg, m.Keys.Notify):
		return m, m.notifyCmd()
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeList
		m.form.errs = map[string]string{}
		return m, nil
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	case "enter":
		name, minDays, maxDays, ok := m.form.submit()
		if !ok {
			m.Status = StatusBar{Text: "fix the highlighted fields", IsError: true}
			return m, nil
		}
		m.Mode = ModeList
		m.Status = StatusBar{}
		return m, m.createCmd(name, minDays, maxDays)
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeList
		m.commandInput.Blur()
		return m, nil
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	case "enter":
		m.Mode = ModeList
		m.commandInput.Blur()
		return m.runCommand(m.commandInput.Value())
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

// runCommand parses a command line and turns it into the same tea.Cmds the
// key bindings use.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	parsed, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	var cmd tea.Cmd
	res, err := commands.Execute(parsed, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			if err := model.ValidateInput(a.Name, a.MinDays, a.MaxDays); err != nil {
				return commands.Result{}, err
			}
			cmd = m.createCmd(a.Name, a.MinDays, a.MaxDays)
			return commands.Result{Message: fmt.Sprintf("adding %q", strings.TrimSpace(a.Name))}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			task, err := m.findTask(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			cmd = m.completeCmd(task)
			return commands.Result{Message: fmt.Sprintf("completing %q", task.Name)}, nil
		},
		Remove: func(a commands.RemoveArgs) (commands.Result, error) {
			task, err := m.findTask(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			cmd = m.deleteCmd(task)
			return commands.Result{Message: fmt.Sprintf("deleting %q", task.Name)}, nil
		},
		Notify: func() (commands.Result, error) {
			cmd = m.notifyCmd()
			return commands.Result{Message: "checking due tasks"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, cmd
}

// findTask resolves an id prefix against the loaded list.
func (m Model) findTask(ref string) (model.Task, error) {
	var match []model.Task
	for _, task := range m.Tasks {
		if task.ID == ref {
			return task, nil
		}
		if strings.HasPrefix(task.ID, ref) {
			match = append(match, task)
		}
	}
	switch len(match) {
	case 0:
		return model.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return match[0], nil
	default:
		return model.Task{}, fmt.Errorf("%q matches %d tasks", ref, len(match))
	}
}

func (m Model) onNotifyDone(msg notifyDoneMsg) Model {
	switch {
	case errors.Is(msg.err, reminders.ErrPermissionUnavailable):
		if !m.permissionWarned {
			m.permissionWarned = true
			m.Status = StatusBar{Text: permissionHelp, IsError: true}
		}
	case msg.err != nil:
		m.LastError = msg.err
		m.Status = StatusBar{Text: "notify failed: " + msg.err.Error(), IsError: true}
	case msg.report.Due == 0:
		m.Status = StatusBar{Text: "nothing due"}
	default:
		text := fmt.Sprintf("notified %d of %d due", msg.report.Notified, msg.report.Due)
		if msg.report.Skipped > 0 {
			text += fmt.Sprintf(" (%d not shown)", msg.report.Skipped)
		}
		m.Status = StatusBar{Text: text}
	}
	return m
}

func (m Model) createCmd(name string, minDays, maxDays int) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		task, err := actions.CreateTask(ctx, name, minDays, maxDays)
		if err != nil {
			return createFailedMsg{err: err}
		}
		return taskCreatedMsg{task: task}
	}
}

func (m Model) completeCmd(task model.Task) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		done, err := actions.CompleteTask(ctx, task)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskCompletedMsg{task: done}
	}
}

func (m Model) deleteCmd(task model.Task) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		if err := actions.DeleteTask(ctx, task); err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskDeletedMsg{task: task}
	}
}

func (m Model) notifyCmd() tea.Cmd {
	if m.notify == nil {
		return nil
	}
	ctx, notify := m.ctx, m.notify
	return func() tea.Msg {
		report, err := notify(ctx)
		return notifyDoneMsg{report: report, err: err}
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	var main string
	switch {
	case m.Mode == ModeForm:
		main = m.form.view()
	case m.HelpVisible:
		main = m.renderHelpView()
	default:
		main = views.RenderTaskList(m.taskRows())
	}

	footer := m.helpModel.View(m.Keys)
	if m.Mode == ModeCommand {
		footer = m.commandInput.View()
	} else if m.Mode == ModeForm {
		footer = "tab next field | enter save | esc cancel"
	}

	due := 0
	today := m.today()
	for _, task := range m.Tasks {
		if task.Urgency(today).IsDue() {
			due++
		}
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("choresd | %s | %d tasks, %d due | %s", m.Mode, len(m.Tasks), due, today),
		Main:       main,
		StatusLine: status,
		Footer:     footer,
	})
}

func (m Model) taskRows() []views.TaskRowData {
	today := m.today()
	rows := make([]views.TaskRowData, 0, len(m.Tasks))
	for i, task := range m.Tasks {
		u := task.Urgency(today)
		last := "never"
		if task.LastCompletedDate != nil {
			last = task.LastCompletedDate.String()
		}
		rows = append(rows, views.TaskRowData{
			ID:       shortID(task.ID),
			Name:     task.Name,
			Window:   fmt.Sprintf("%d-%dd", task.MinRecurrenceDays, task.MaxRecurrenceDays),
			Status:   u.Status(),
			Urgency:  u.Kind.String(),
			LastDone: last,
			Selected: i == m.Cursor,
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
