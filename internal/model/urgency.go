package model

import "fmt"

type UrgencyKind int

const (
	NotScheduled UrgencyKind = iota
	Overdue
	DueToday
	DueInFuture
)

func (k UrgencyKind) String() string {
	switch k {
	case NotScheduled:
		return "not_scheduled"
	case Overdue:
		return "overdue"
	case DueToday:
		return "due_today"
	case DueInFuture:
		return "due_in_future"
	default:
		return fmt.Sprintf("urgency(%d)", int(k))
	}
}

// Urgency is the classification of a due date relative to a reference day.
// Days is the overdue count for Overdue, the remaining count for
// DueInFuture and zero otherwise.
type Urgency struct {
	Kind UrgencyKind
	Days int
}

// Classify is total over its four cases: no due date, due strictly before
// today, due today, due after today.
func Classify(due *Date, today Date) Urgency {
	if due == nil || due.IsZero() {
		return Urgency{Kind: NotScheduled}
	}
	switch c := due.Compare(today); {
	case c < 0:
		return Urgency{Kind: Overdue, Days: due.DaysUntil(today)}
	case c == 0:
		return Urgency{Kind: DueToday}
	default:
		return Urgency{Kind: DueInFuture, Days: today.DaysUntil(*due)}
	}
}

// IsDue reports whether the task needs doing today.
func (u Urgency) IsDue() bool {
	return u.Kind == Overdue || u.Kind == DueToday
}

func (u Urgency) Status() string {
	switch u.Kind {
	case Overdue:
		return fmt.Sprintf("Overdue by %d day(s)", u.Days)
	case DueToday:
		return "Due today"
	case DueInFuture:
		return fmt.Sprintf("Due in %d day(s)", u.Days)
	default:
		return "Not scheduled"
	}
}
