package model

import "testing"

func TestClassifyCases(t *testing.T) {
	today := NewDate(2026, 2, 9)
	cases := []struct {
		name string
		due  *Date
		want Urgency
	}{
		{"absent", nil, Urgency{Kind: NotScheduled}},
		{"zero date", &Date{}, Urgency{Kind: NotScheduled}},
		{"yesterday", today.AddDays(-1).Ptr(), Urgency{Kind: Overdue, Days: 1}},
		{"last week", today.AddDays(-7).Ptr(), Urgency{Kind: Overdue, Days: 7}},
		{"today", today.Ptr(), Urgency{Kind: DueToday}},
		{"tomorrow", today.AddDays(1).Ptr(), Urgency{Kind: DueInFuture, Days: 1}},
		{"next month", NewDate(2026, 3, 9).Ptr(), Urgency{Kind: DueInFuture, Days: 28}},
	}
	for _, tc := range cases {
		got := Classify(tc.due, today)
		if got != tc.want {
			t.Fatalf("%s: Classify = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyExclusiveAndPure(t *testing.T) {
	today := NewDate(2026, 2, 9)
	for offset := -40; offset <= 40; offset++ {
		due := today.AddDays(offset)
		first := Classify(&due, today)
		second := Classify(&due, today)
		if first != second {
			t.Fatalf("offset %d: classification not repeatable: %+v vs %+v", offset, first, second)
		}
		var want UrgencyKind
		switch {
		case offset < 0:
			want = Overdue
		case offset == 0:
			want = DueToday
		default:
			want = DueInFuture
		}
		if first.Kind != want {
			t.Fatalf("offset %d: kind %s, want %s", offset, first.Kind, want)
		}
		if (first.Kind == Overdue || first.Kind == DueInFuture) && first.Days < 1 {
			t.Fatalf("offset %d: expected positive day count, got %d", offset, first.Days)
		}
	}
}

func TestDueTodayIsNotOverdue(t *testing.T) {
	today := NewDate(2026, 2, 9)
	task := Task{
		ID:                "task-1",
		Name:              "Water plants",
		MinRecurrenceDays: 3,
		MaxRecurrenceDays: 5,
		LastCompletedDate: today.AddDays(-4).Ptr(),
		NextDueDate:       today.Ptr(),
	}
	if got := task.Urgency(today); got.Kind != DueToday {
		t.Fatalf("expected due today, got %+v", got)
	}
}

func TestUrgencyStatus(t *testing.T) {
	cases := map[string]Urgency{
		"Overdue by 3 day(s)": {Kind: Overdue, Days: 3},
		"Due today":           {Kind: DueToday},
		"Due in 2 day(s)":     {Kind: DueInFuture, Days: 2},
		"Not scheduled":       {Kind: NotScheduled},
	}
	for want, u := range cases {
		if got := u.Status(); got != want {
			t.Fatalf("Status(%+v) = %q, want %q", u, got, want)
		}
	}
	if !(Urgency{Kind: DueToday}).IsDue() || (Urgency{Kind: DueInFuture, Days: 1}).IsDue() {
		t.Fatal("unexpected IsDue result")
	}
}
