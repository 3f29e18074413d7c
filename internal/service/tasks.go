// Package service orchestrates task mutations: it validates input, derives
// dates through the recurrence engine and persists through a
// storage.Repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/storage"
)

var ErrAmbiguousID = errors.New("service: ambiguous task id")

const listKey = "tasks"

type TaskService struct {
	repo   storage.Repository
	clock  model.Clock
	rng    model.RandomSource
	newID  func() string
	logger *slog.Logger
	reads  singleflight.Group
	hub    *hub
}

type Option func(*TaskService)

func WithClock(c model.Clock) Option {
	return func(s *TaskService) { s.clock = c }
}

func WithRandom(rng model.RandomSource) Option {
	return func(s *TaskService) { s.rng = rng }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *TaskService) { s.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskService) { s.logger = l }
}

func NewTaskService(repo storage.Repository, opts ...Option) *TaskService {
	s := &TaskService{
		repo:   repo,
		clock:  model.SystemClock{},
		rng:    model.DefaultRandom(),
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger)
	return s
}

func (s *TaskService) today() model.Date {
	return model.Today(s.clock)
}

// CreateTask validates the input, seeds the next due date with today and
// stores the task. Nothing is stored when validation fails.
func (s *TaskService) CreateTask(ctx context.Context, name string, minDays, maxDays int) (model.Task, error) {
	if err := model.ValidateInput(name, minDays, maxDays); err != nil {
		return model.Task{}, err
	}
	today := s.today()
	task := model.Task{
		ID:                s.newID(),
		Name:              strings.TrimSpace(name),
		MinRecurrenceDays: minDays,
		MaxRecurrenceDays: maxDays,
		NextDueDate:       today.Ptr(),
	}
	if err := s.repo.InsertTask(ctx, storage.TaskFromModel(task)); err != nil {
		return model.Task{}, fmt.Errorf("service: create task: %w", err)
	}
	s.logger.Debug("task created", "id", task.ID, "name", task.Name, "due", today.String())
	s.changed(ctx)
	return task, nil
}

// CompleteTask marks the task done today and draws its next due date from
// the recurrence window. Completing twice on the same day draws again.
func (s *TaskService) CompleteTask(ctx context.Context, task model.Task) (model.Task, error) {
	if err := model.ValidateInput(task.Name, task.MinRecurrenceDays, task.MaxRecurrenceDays); err != nil {
		return model.Task{}, err
	}
	today := s.today()
	next := model.NextDueDate(s.rng, task.MinRecurrenceDays, task.MaxRecurrenceDays, today)
	task.LastCompletedDate = today.Ptr()
	task.NextDueDate = next.Ptr()
	if err := s.repo.UpdateTask(ctx, storage.TaskFromModel(task)); err != nil {
		return model.Task{}, fmt.Errorf("service: complete task %s: %w", task.ID, err)
	}
	s.logger.Debug("task completed", "id", task.ID, "completed", today.String(), "next_due", next.String())
	s.changed(ctx)
	return task, nil
}

func (s *TaskService) CompleteTaskByID(ctx context.Context, id string) (model.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	return s.CompleteTask(ctx, task)
}

// DeleteTask removes the task. Deleting a task that is already gone is a
// no-op.
func (s *TaskService) DeleteTask(ctx context.Context, task model.Task) error {
	err := s.repo.DeleteTask(ctx, task.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.Debug("delete of missing task ignored", "id", task.ID)
		return nil
	case err != nil:
		return fmt.Errorf("service: delete task %s: %w", task.ID, err)
	}
	s.logger.Debug("task deleted", "id", task.ID)
	s.changed(ctx)
	return nil
}

// UpdateTaskDetails replaces the stored record verbatim. It neither
// re-validates the recurrence window nor recomputes the due date.
func (s *TaskService) UpdateTaskDetails(ctx context.Context, task model.Task) error {
	if err := s.repo.UpdateTask(ctx, storage.TaskFromModel(task)); err != nil {
		return fmt.Errorf("service: update task %s: %w", task.ID, err)
	}
	s.logger.Debug("task updated", "id", task.ID)
	s.changed(ctx)
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (model.Task, error) {
	row, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("service: get task %s: %w", id, err)
	}
	return row.Model(), nil
}

// FindTask resolves a full id or a unique id prefix.
func (s *TaskService) FindTask(ctx context.Context, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("service: find task: %w", storage.ErrNotFound)
	}
	if task, err := s.GetTask(ctx, ref); err == nil {
		return task, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return model.Task{}, err
	}
	all, err := s.ListTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	var match []model.Task
	for _, task := range all {
		if strings.HasPrefix(task.ID, ref) {
			match = append(match, task)
		}
	}
	switch len(match) {
	case 0:
		return model.Task{}, fmt.Errorf("service: find task %s: %w", ref, storage.ErrNotFound)
	case 1:
		return match[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %q matches %d tasks", ErrAmbiguousID, ref, len(match))
	}
}

// ListTasks returns every task ordered by next due date, then name.
// Concurrent callers share one store query. The shared query does not
// inherit any caller's cancellation; each caller stops waiting when its own
// ctx is done.
func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	ch := s.reads.DoChan(listKey, func() (any, error) {
		rows, err := s.repo.ListTasks(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		tasks := storage.Models(rows)
		model.SortTasks(tasks)
		return tasks, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("service: list tasks: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("service: list tasks: %w", res.Err)
		}
		return slices.Clone(res.Val.([]model.Task)), nil
	}
}

// Watch streams the ordered task list: the current snapshot first, then a
// new snapshot after every committed mutation. A slow reader only ever
// receives the latest snapshot. The channel closes when ctx is done.
func (s *TaskService) Watch(ctx context.Context) (<-chan []model.Task, error) {
	ch, err := s.hub.subscribe(ctx, s.snapshot(ctx))
	if err != nil {
		return nil, fmt.Errorf("service: watch tasks: %w", err)
	}
	return ch, nil
}

// changed drops any shared read that started before the write and pushes a
// fresh snapshot to watchers.
func (s *TaskService) changed(ctx context.Context) {
	s.reads.Forget(listKey)
	if !s.hub.active() {
		return
	}
	s.hub.publish(s.snapshot(context.WithoutCancel(ctx)))
}

func (s *TaskService) snapshot(ctx context.Context) func() ([]model.Task, error) {
	return func() ([]model.Task, error) {
		rows, err := s.repo.ListTasks(ctx)
		if err != nil {
			return nil, err
		}
		tasks := storage.Models(rows)
		model.SortTasks(tasks)
		return tasks, nil
	}
}
