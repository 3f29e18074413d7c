package model

import (
	"testing"
	"time"
)

type fixedRandom int

func (f fixedRandom) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

type recordingRandom struct {
	calls []int
}

func (r *recordingRandom) IntN(n int) int {
	r.calls = append(r.calls, n)
	return 0
}

func TestNextDueDateStaysInWindow(t *testing.T) {
	rng := SeededRandom(42)
	completed := NewDate(2026, 2, 9)
	for minDays := 1; minDays <= 10; minDays++ {
		for maxDays := minDays; maxDays <= 14; maxDays++ {
			earliest, latest := Window(minDays, maxDays, completed)
			for i := 0; i < 50; i++ {
				got := NextDueDate(rng, minDays, maxDays, completed)
				if got.Before(earliest) || got.After(latest) {
					t.Fatalf("NextDueDate(%d, %d) = %s, want within [%s, %s]", minDays, maxDays, got, earliest, latest)
				}
			}
		}
	}
}

func TestNextDueDateFixedInterval(t *testing.T) {
	rng := &recordingRandom{}
	completed := NewDate(2026, 2, 28)
	got := NextDueDate(rng, 1, 1, completed)
	if got.String() != "2026-03-01" {
		t.Fatalf("unexpected next due date: %s", got)
	}
	if len(rng.calls) != 0 {
		t.Fatalf("expected no random draw for a single-day window, got %v", rng.calls)
	}
}

func TestNextDueDateUsesInclusiveRange(t *testing.T) {
	rng := &recordingRandom{}
	NextDueDate(rng, 3, 5, NewDate(2026, 2, 9))
	if len(rng.calls) != 1 || rng.calls[0] != 3 {
		t.Fatalf("expected one draw over 3 values, got %v", rng.calls)
	}

	completed := NewDate(2026, 2, 9)
	if got := NextDueDate(fixedRandom(0), 3, 5, completed); got.String() != "2026-02-12" {
		t.Fatalf("lowest draw: got %s", got)
	}
	if got := NextDueDate(fixedRandom(2), 3, 5, completed); got.String() != "2026-02-14" {
		t.Fatalf("highest draw: got %s", got)
	}
}

func TestNextDueDateCrossesMonthAndYear(t *testing.T) {
	got := NextDueDate(fixedRandom(0), 7, 7, NewDate(2026, 12, 28))
	if got.String() != "2027-01-04" {
		t.Fatalf("unexpected next due date: %s", got)
	}
}

func TestDateOfIgnoresClock(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	d := DateOf(time.Date(2026, 2, 9, 23, 59, 0, 0, loc))
	if d.String() != "2026-02-09" {
		t.Fatalf("expected local calendar date, got %s", d)
	}
	if !d.Equal(NewDate(2026, 2, 9)) {
		t.Fatalf("expected equal dates")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if NewDate(2026, 2, 28).DaysUntil(d) != 1 {
		t.Fatalf("unexpected day delta to %s", d)
	}
	if _, err := ParseDate("2026-13-01"); err == nil {
		t.Fatal("expected parse error")
	}
}
