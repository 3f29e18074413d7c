package views

import (
	"strings"
	"testing"
)

func TestRenderTaskListGroupsByUrgency(t *testing.T) {
	out := RenderTaskList([]TaskRowData{
		{ID: "a1", Name: "Bins", Window: "6-8", Status: "Overdue by 2 day(s)", Urgency: "overdue"},
		{ID: "b2", Name: "Dishes", Window: "1-1", Status: "Due today", Urgency: "due_today", Selected: true, LastDone: "2026-02-08"},
		{ID: "c3", Name: "Attic", Window: "30-60", Status: "Due in 12 day(s)", Urgency: "due_in_future"},
	})

	order := []string{"Overdue (1):", "[RED]", "Bins", "Due today (1):", "Dishes", "last done: 2026-02-08", "Upcoming (1):", "[GREEN]", "Attic"}
	pos := 0
	for _, want := range order {
		i := strings.Index(out[pos:], want)
		if i < 0 {
			t.Fatalf("expected %q after offset %d in:\n%s", want, pos, out)
		}
		pos += i + len(want)
	}
	if strings.Contains(out, "Not scheduled") {
		t.Fatalf("empty group should be omitted:\n%s", out)
	}
	if strings.Count(out, "last done:") != 1 {
		t.Fatalf("only the selected row shows its last completion:\n%s", out)
	}
}

func TestRenderTaskListEmpty(t *testing.T) {
	if got := RenderTaskList(nil); !strings.Contains(got, "press [a]") {
		t.Fatalf("unexpected empty view %q", got)
	}
}

func TestRenderFormShowsFieldErrors(t *testing.T) {
	out := RenderForm(FormData{
		Title: "New task",
		Fields: []FormFieldData{
			{Label: "Name", View: "Bins", Focused: true},
			{Label: "Min days", View: "0", Error: "must be at least 1"},
		},
	})
	if !strings.Contains(out, "> Name:") {
		t.Fatalf("focused field not marked:\n%s", out)
	}
	if !strings.Contains(out, "error: must be at least 1") {
		t.Fatalf("field error missing:\n%s", out)
	}
	if strings.Count(out, "error:") != 1 {
		t.Fatalf("expected exactly one error line:\n%s", out)
	}
}

func TestRenderAppIncludesStatusAndFooter(t *testing.T) {
	out := RenderApp(AppData{
		Header:     "choresd",
		Main:       "body",
		StatusLine: "status: saved",
		Footer:     "? help",
	})
	for _, want := range []string{"choresd", "body", "status: saved", "? help"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownBlank(t *testing.T) {
	if got := RenderMarkdown("  \n"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
