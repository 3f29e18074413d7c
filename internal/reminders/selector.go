package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/storage"
)

// DueSource is the read side of the store the selector needs.
type DueSource interface {
	ListDueTasks(ctx context.Context, day time.Time) ([]storage.Task, error)
}

// SelectDueTasks returns tasks due on or before today, earliest first,
// without those already completed today.
func SelectDueTasks(ctx context.Context, src DueSource, today model.Date) ([]model.Task, error) {
	rows, err := src.ListDueTasks(ctx, today.Time())
	if err != nil {
		return nil, fmt.Errorf("reminders: select due tasks: %w", err)
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task := row.Model()
		if task.CompletedOn(today) {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}
