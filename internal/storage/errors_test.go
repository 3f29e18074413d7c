package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", ErrNotFound, false},
		{"unavailable", fmt.Errorf("list: %w", ErrUnavailable), true},
		{"deadline", context.DeadlineExceeded, true},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"locked", fmt.Errorf("wrap: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), true},
		{"constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Fatalf("%s: IsTransient = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyWrapsTransient(t *testing.T) {
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	err := classify(busy)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrBusy {
		t.Fatalf("expected driver error preserved, got %v", err)
	}
	plain := errors.New("boom")
	if classify(plain) != plain {
		t.Fatal("expected non-transient error unchanged")
	}
}
