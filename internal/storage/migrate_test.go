package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	due := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	if err := repo.InsertTask(t.Context(), Task{
		ID:                "task-rt-1",
		Name:              "Roundtrip task",
		MinRecurrenceDays: 1,
		MaxRecurrenceDays: 3,
		NextDueOn:         &due,
	}); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := repo.GetTask(t.Context(), "task-rt-1")
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got.Name != "Roundtrip task" {
		t.Fatalf("unexpected name after roundtrip: %q", got.Name)
	}
}

func TestMigrationRejectsInvalidBounds(t *testing.T) {
	repo := setupRepo(t)
	err := repo.InsertTask(t.Context(), Task{ID: "bad", Name: "bad", MinRecurrenceDays: 0, MaxRecurrenceDays: 1})
	if err == nil {
		t.Fatal("expected check constraint failure")
	}
}
