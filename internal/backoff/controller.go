package backoff

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jpalmerr/pista/internal/clock"
)

// Phase is the state of a [Controller].
type Phase int32

const (
	// Idle means the last attempt succeeded and the controller is waiting
	// out the base interval.
	Idle Phase = iota

	// Attempting means a fetch is in flight.
	Attempting

	// Cooling means the last attempt failed and the controller is waiting
	// out the backoff delay.
	Cooling
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Attempting:
		return "attempting"
	case Cooling:
		return "cooling"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Controller polls Fetch, emitting successes and backing off on failure.
type Controller[T any] struct {
	// Fetch performs one bounded attempt.
	Fetch func(ctx context.Context) (T, error)

	// Interval is the base polling interval used after a success.
	Interval time.Duration

	// Schedule supplies the delays used after failures.
	Schedule *Schedule

	// Sleeper waits between attempts. Nil uses the wall clock.
	Sleeper clock.Sleeper

	// Source identifies the data source in logs.
	Source string

	// Logger receives failure and retry logs. Nil uses slog.Default().
	Logger *slog.Logger

	phase atomic.Int32
}

// Phase reports the controller's current phase.
func (c *Controller[T]) Phase() Phase {
	return Phase(c.phase.Load())
}

// Run attempts Fetch immediately and then forever, sending each successful
// value on out. It returns only when ctx is cancelled or the sleeper fails.
//
// Failures never reach out: they are logged and retried after the current
// backoff delay.
func (c *Controller[T]) Run(ctx context.Context, out chan<- T) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleeper := c.Sleeper
	if sleeper == nil {
		sleeper = clock.Real{}
	}

	for {
		c.phase.Store(int32(Attempting))
		value, err := c.Fetch(ctx)

		var delay time.Duration
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay = c.Schedule.Failure()
			c.phase.Store(int32(Cooling))
			logger.Error("fetch failed", "source", c.Source, "error", err.Error())
			logger.Warn("retry scheduled", "source", c.Source, "delay", delay.String())
		} else {
			c.Schedule.Success()
			select {
			case out <- value:
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = c.Interval
			c.phase.Store(int32(Idle))
			logger.Debug("fetch succeeded", "source", c.Source, "next_in", delay.String())
		}

		if err := sleeper.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}
