package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the task store. Implementations serialise their own writes;
// callers must not assume exclusive access.
type Repository interface {
	// InsertTask stores a task, replacing any row with the same id.
	InsertTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error
	// ListTasks orders by next due day ascending (unscheduled last), then name.
	ListTasks(ctx context.Context) ([]Task, error)
	// ListDueTasks returns scheduled tasks due on or before day, ascending by due day.
	ListDueTasks(ctx context.Context, day time.Time) ([]Task, error)
}
