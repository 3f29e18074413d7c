package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/storage"
)

func seed(t *testing.T, repo storage.Repository, tasks ...model.Task) {
	t.Helper()
	for _, task := range tasks {
		if err := repo.InsertTask(context.Background(), storage.TaskFromModel(task)); err != nil {
			t.Fatalf("seed %s: %v", task.ID, err)
		}
	}
}

func TestSelectDueTasks(t *testing.T) {
	repo := storage.NewMemoryRepository()
	done := dueTask("done", planDay)
	done.LastCompletedDate = planDay.Ptr()
	seed(t, repo,
		dueTask("today", planDay),
		dueTask("old", planDay.AddDays(-4)),
		dueTask("future", planDay.AddDays(1)),
		done,
		model.Task{ID: "unscheduled", Name: "x", MinRecurrenceDays: 1, MaxRecurrenceDays: 1},
	)

	got, err := SelectDueTasks(context.Background(), repo, planDay)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 || got[0].ID != "old" || got[1].ID != "today" {
		t.Fatalf("unexpected selection: %#v", got)
	}
}

func TestSelectDueTasksKeepsCompletedYesterday(t *testing.T) {
	repo := storage.NewMemoryRepository()
	task := dueTask("y", planDay)
	task.LastCompletedDate = planDay.AddDays(-1).Ptr()
	seed(t, repo, task)

	got, err := SelectDueTasks(context.Background(), repo, planDay)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected task completed yesterday to be due, got %d", len(got))
	}
}

func TestSelectDueTasksStoreError(t *testing.T) {
	repo := storage.NewMemoryRepository()
	repo.SetErr(storage.ErrUnavailable)
	_, err := SelectDueTasks(context.Background(), repo, model.DateOf(time.Now()))
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
}
