// Package backoff retries a fallible fetch with an exponentially growing delay.
//
// A [Controller] alternates between fetching and sleeping. On success the
// value is emitted and the next attempt waits the base polling interval. On
// failure the next attempt waits the current [Schedule] delay, which then
// grows by the multiplier. The first success after a failure run resets the
// delay to its initial value.
package backoff

import "time"

const defaultMultiplier = 2

// Schedule tracks the retry delay across consecutive failures.
//
// The delay returned by [Schedule.Failure] is monotonically non-decreasing
// across a run of failures and returns to Initial after [Schedule.Success].
// A zero Max means the delay grows without bound.
type Schedule struct {
	initial    time.Duration
	multiplier float64
	max        time.Duration
	current    time.Duration
}

// NewSchedule creates a [Schedule].
//
// A multiplier below 1 is replaced by the default of 2 so the delay never
// shrinks. A positive max caps the delay; zero leaves it uncapped.
func NewSchedule(initial time.Duration, multiplier float64, max time.Duration) *Schedule {
	if multiplier < 1 {
		multiplier = defaultMultiplier
	}
	if max > 0 && initial > max {
		initial = max
	}
	return &Schedule{
		initial:    initial,
		multiplier: multiplier,
		max:        max,
		current:    initial,
	}
}

// Failure returns the delay before the next attempt and grows the delay
// for the failure after it.
func (s *Schedule) Failure() time.Duration {
	delay := s.current

	next := time.Duration(float64(s.current) * s.multiplier)
	if next < s.current {
		// overflow
		next = s.current
	}
	if s.max > 0 && next > s.max {
		next = s.max
	}
	s.current = next

	return delay
}

// Success resets the delay to its initial value.
func (s *Schedule) Success() {
	s.current = s.initial
}

// Current returns the delay the next failure would be given.
func (s *Schedule) Current() time.Duration {
	return s.current
}
