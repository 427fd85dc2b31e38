package clock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Sleeper pauses the caller for a duration or until ctx is done.
type Sleeper interface {
	// Sleep returns nil after d elapses, or ctx.Err() if ctx ends first.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real sleeps on the wall clock.
type Real struct{}

// Sleep implements [Sleeper].
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ErrExhausted is returned by [Fake.Sleep] once MaxSleeps is reached.
var ErrExhausted = errors.New("clock: fake sleeper exhausted")

// Fake records requested delays without sleeping.
//
// When MaxSleeps is positive, the call that records the MaxSleeps-th delay
// returns [ErrExhausted], which lets tests stop otherwise endless loops.
type Fake struct {
	MaxSleeps int

	mu     sync.Mutex
	delays []time.Duration
}

// Sleep implements [Sleeper].
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	if f.MaxSleeps > 0 && len(f.delays) >= f.MaxSleeps {
		return ErrExhausted
	}
	return nil
}

// Delays returns a copy of every delay requested so far.
func (f *Fake) Delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.delays...)
}
