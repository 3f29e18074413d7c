package model

import "math/rand/v2"

// RandomSource draws the post-completion interval. IntN returns a value in
// [0, n) for n > 0.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom returns the process-wide math/rand/v2 source.
func DefaultRandom() RandomSource { return globalRandom{} }

// SeededRandom returns a deterministic source.
func SeededRandom(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NextDueDate draws n uniformly from [minDays, maxDays] and returns
// completed+n. Callers must validate the window first.
func NextDueDate(rng RandomSource, minDays, maxDays int, completed Date) Date {
	n := minDays
	if span := maxDays - minDays + 1; span > 1 {
		n += rng.IntN(span)
	}
	return completed.AddDays(n)
}

// Window returns the earliest and latest possible next due dates for a
// completion on completed.
func Window(minDays, maxDays int, completed Date) (earliest, latest Date) {
	return completed.AddDays(minDays), completed.AddDays(maxDays)
}
