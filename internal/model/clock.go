package model

import "time"

// Clock provides the current time so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today returns the calendar date of c.Now().
func Today(c Clock) Date {
	return DateOf(c.Now())
}
