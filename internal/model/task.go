package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation is wrapped by every *ValidationError.
var ErrValidation = errors.New("model: invalid task")

// Field names used in ValidationError.Fields.
const (
	FieldName    = "name"
	FieldMinDays = "min_days"
	FieldMaxDays = "max_days"
)

// ValidationError reports each offending field independently so a form can
// show one message per input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Field returns the message for name, or "" when the field is valid.
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

type Task struct {
	ID                string
	Name              string
	MinRecurrenceDays int
	MaxRecurrenceDays int
	LastCompletedDate *Date
	NextDueDate       *Date
}

// ValidateInput checks the user-editable fields of a task. It returns nil or
// a *ValidationError.
func ValidateInput(name string, minDays, maxDays int) error {
	verr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		verr.add(FieldName, "name is required")
	}
	if minDays < 1 {
		verr.add(FieldMinDays, "min days must be at least 1")
	}
	if maxDays < 1 {
		verr.add(FieldMaxDays, "max days must be at least 1")
	}
	if minDays >= 1 && maxDays >= 1 && minDays > maxDays {
		verr.add(FieldMaxDays, fmt.Sprintf("max days must be at least min days (%d)", minDays))
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	return ValidateInput(t.Name, t.MinRecurrenceDays, t.MaxRecurrenceDays)
}

// Urgency classifies the task's next due date against today.
func (t Task) Urgency(today Date) Urgency {
	return Classify(t.NextDueDate, today)
}

// CompletedOn reports whether the task was last completed on d.
func (t Task) CompletedOn(d Date) bool {
	return t.LastCompletedDate != nil && t.LastCompletedDate.Equal(d)
}

// Less orders tasks by next due date (unscheduled last), then name, then id.
func Less(a, b Task) bool {
	switch {
	case a.NextDueDate == nil && b.NextDueDate != nil:
		return false
	case a.NextDueDate != nil && b.NextDueDate == nil:
		return true
	case a.NextDueDate != nil && b.NextDueDate != nil:
		if c := a.NextDueDate.Compare(*b.NextDueDate); c != 0 {
			return c < 0
		}
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return Less(tasks[i], tasks[j]) })
}
