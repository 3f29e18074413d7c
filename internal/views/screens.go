package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskRowData struct {
	ID       string
	Name     string
	Window   string
	Status   string
	Urgency  string
	LastDone string
	Selected bool
}

type FormFieldData struct {
	Label   string
	View    string
	Error   string
	Focused bool
}

type FormData struct {
	Title  string
	Fields []FormFieldData
}

type HelpPanelData struct {
	Markdown string
	HelpView string
}

var (
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	todayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	upcomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	labelStyle    = lipgloss.NewStyle().Bold(true)
)

var sections = []struct {
	urgency string
	title   string
}{
	{"overdue", "Overdue"},
	{"due_today", "Due today"},
	{"due_in_future", "Upcoming"},
	{"not_scheduled", "Not scheduled"},
}

// RenderTaskList groups rows by urgency. Rows arrive sorted by due date, so
// each group is contiguous and the on-screen order matches the cursor order.
func RenderTaskList(rows []TaskRowData) string {
	if len(rows) == 0 {
		return "no tasks yet, press [a] to add one"
	}
	var b strings.Builder
	for _, sec := range sections {
		var items []TaskRowData
		for _, row := range rows {
			if row.Urgency == sec.urgency {
				items = append(items, row)
			}
		}
		if len(items) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s (%d):\n", sec.title, len(items)))
		for _, item := range items {
			b.WriteString(renderRow(item) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func renderRow(row TaskRowData) string {
	cursor := " "
	if row.Selected {
		cursor = ">"
	}
	line := fmt.Sprintf("%s %s %-8s %-24s %-6s %s", cursor, urgencyBadge(row.Urgency), row.ID, row.Name, row.Window, urgencyStyle(row.Urgency).Render(row.Status))
	if row.Selected {
		line = selectedStyle.Render(line) + "\n      last done: " + row.LastDone
	}
	return line
}

func urgencyStyle(urgency string) lipgloss.Style {
	switch urgency {
	case "overdue":
		return overdueStyle
	case "due_today":
		return todayStyle
	case "due_in_future":
		return upcomingStyle
	default:
		return idleStyle
	}
}

func urgencyBadge(urgency string) string {
	switch urgency {
	case "overdue":
		return "[RED]"
	case "due_today":
		return "[YELLOW]"
	case "due_in_future":
		return "[GREEN]"
	default:
		return "[ -- ]"
	}
}

func RenderForm(data FormData) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(data.Title) + "\n")
	for _, f := range data.Fields {
		marker := " "
		if f.Focused {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-9s %s\n", marker, f.Label+":", f.View))
		if f.Error != "" {
			b.WriteString(errorStyle.Render("    error: "+f.Error) + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	md := RenderMarkdown(data.Markdown)
	if data.HelpView == "" {
		return md
	}
	return md + "\n\n" + data.HelpView
}
