package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps tasks in a map. Err, when set, is returned by every
// call, which lets tests simulate store outages.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]Task
	Err   error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]Task)}
}

func (r *MemoryRepository) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *MemoryRepository) InsertTask(ctx context.Context, in Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}
	r.tasks[in.ID] = cloneTask(in)
	return nil
}

func (r *MemoryRepository) GetTask(ctx context.Context, id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(ctx); err != nil {
		return Task{}, err
	}
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return cloneTask(task), nil
}

func (r *MemoryRepository) UpdateTask(ctx context.Context, in Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}
	if _, ok := r.tasks[in.ID]; !ok {
		return ErrNotFound
	}
	r.tasks[in.ID] = cloneTask(in)
	return nil
}

func (r *MemoryRepository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}
	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepository) ListTasks(ctx context.Context) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	out := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, cloneTask(task))
	}
	sort.Slice(out, func(i, j int) bool { return rowLess(out[i], out[j]) })
	return out, nil
}

func (r *MemoryRepository) ListDueTasks(ctx context.Context, day time.Time) ([]Task, error) {
	all, err := r.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := mustDate(day)
	out := make([]Task, 0, len(all))
	for _, task := range all {
		if task.NextDueOn != nil && mustDate(*task.NextDueOn) <= cutoff {
			out = append(out, task)
		}
	}
	return out, nil
}

func (r *MemoryRepository) check(ctx context.Context) error {
	if r.Err != nil {
		return r.Err
	}
	return ctx.Err()
}

// rowLess mirrors the ORDER BY of SQLiteRepository.ListTasks.
func rowLess(a, b Task) bool {
	switch {
	case a.NextDueOn == nil && b.NextDueOn != nil:
		return false
	case a.NextDueOn != nil && b.NextDueOn == nil:
		return true
	case a.NextDueOn != nil && b.NextDueOn != nil:
		if da, db := mustDate(*a.NextDueOn), mustDate(*b.NextDueOn); da != db {
			return da < db
		}
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

func cloneTask(in Task) Task {
	out := in
	if in.LastCompletedOn != nil {
		v := *in.LastCompletedOn
		out.LastCompletedOn = &v
	}
	if in.NextDueOn != nil {
		v := *in.NextDueOn
		out.NextDueOn = &v
	}
	return out
}
