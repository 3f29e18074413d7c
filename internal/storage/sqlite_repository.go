package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Days are stored as YYYY-MM-DD so lexical order equals date order.
const sqliteDateLayout = "2006-01-02"

const taskColumns = `id, name, min_recurrence_days, max_recurrence_days, last_completed_on, next_due_on`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path and applies migrations. A single
// connection is kept so writes are serialised by database/sql.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) InsertTask(ctx context.Context, in Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			min_recurrence_days = excluded.min_recurrence_days,
			max_recurrence_days = excluded.max_recurrence_days,
			last_completed_on = excluded.last_completed_on,
			next_due_on = excluded.next_due_on`,
		in.ID, in.Name, in.MinRecurrenceDays, in.MaxRecurrenceDays,
		nullDate(in.LastCompletedOn), nullDate(in.NextDueOn),
	)
	return classify(err)
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, classify(err)
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, min_recurrence_days = ?, max_recurrence_days = ?, last_completed_on = ?, next_due_on = ?
		WHERE id = ?`,
		in.Name, in.MinRecurrenceDays, in.MaxRecurrenceDays,
		nullDate(in.LastCompletedOn), nullDate(in.NextDueOn), in.ID,
	)
	if err != nil {
		return classify(err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context) ([]Task, error) {
	return r.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		ORDER BY next_due_on IS NULL, next_due_on ASC, name ASC, id ASC`)
}

func (r *SQLiteRepository) ListDueTasks(ctx context.Context, day time.Time) ([]Task, error) {
	return r.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE next_due_on IS NOT NULL AND next_due_on <= ?
		ORDER BY next_due_on ASC, name ASC, id ASC`,
		mustDate(day),
	)
}

func (r *SQLiteRepository) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, classify(rows.Err())
}

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return mustDate(*v)
}

func mustDate(v time.Time) string {
	y, m, d := v.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(sqliteDateLayout)
}

func parseNullableDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteDateLayout, v.String)
	if err != nil {
		return nil, fmt.Errorf("storage: parse date %q: %w", v.String, err)
	}
	return &tm, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var lastCompleted sql.NullString
	var nextDue sql.NullString
	if err := s.Scan(&out.ID, &out.Name, &out.MinRecurrenceDays, &out.MaxRecurrenceDays, &lastCompleted, &nextDue); err != nil {
		return Task{}, err
	}
	completedOn, err := parseNullableDate(lastCompleted)
	if err != nil {
		return Task{}, err
	}
	dueOn, err := parseNullableDate(nextDue)
	if err != nil {
		return Task{}, err
	}
	out.LastCompletedOn = completedOn
	out.NextDueOn = dueOn
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
