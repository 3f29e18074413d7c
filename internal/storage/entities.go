package storage

import (
	"time"

	"github.com/sandeepkv93/choresd/internal/model"
)

// Task is the persisted row. Dates are midnight UTC; only the calendar day
// is stored.
type Task struct {
	ID                string
	Name              string
	MinRecurrenceDays int
	MaxRecurrenceDays int
	LastCompletedOn   *time.Time
	NextDueOn         *time.Time
}

// TaskFromModel maps a domain task to its row.
func TaskFromModel(t model.Task) Task {
	return Task{
		ID:                t.ID,
		Name:              t.Name,
		MinRecurrenceDays: t.MinRecurrenceDays,
		MaxRecurrenceDays: t.MaxRecurrenceDays,
		LastCompletedOn:   dateToTime(t.LastCompletedDate),
		NextDueOn:         dateToTime(t.NextDueDate),
	}
}

// Model maps the row back to its domain form.
func (t Task) Model() model.Task {
	return model.Task{
		ID:                t.ID,
		Name:              t.Name,
		MinRecurrenceDays: t.MinRecurrenceDays,
		MaxRecurrenceDays: t.MaxRecurrenceDays,
		LastCompletedDate: timeToDate(t.LastCompletedOn),
		NextDueDate:       timeToDate(t.NextDueOn),
	}
}

// Models maps a slice of rows.
func Models(rows []Task) []model.Task {
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Model())
	}
	return out
}

func dateToTime(d *model.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}

func timeToDate(t *time.Time) *model.Date {
	if t == nil || t.IsZero() {
		return nil
	}
	return model.DateOf(*t).Ptr()
}
