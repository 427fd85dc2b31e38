package clock

import (
	"context"
	"sync"
	"time"
)

// Tick signals that one interval has elapsed. It carries no payload.
type Tick struct{}

// Clock emits a [Tick] once per interval until stopped.
//
// The first tick is emitted after one full interval, not at start. Ticks
// are handed over on an unbuffered channel: the Clock blocks until the
// consumer receives the pending tick before it waits for the next one.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Clock struct {
	interval time.Duration
	ticks    chan Tick
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// New creates a [Clock] that ticks every interval.
//
// Panics if interval <= 0, matching time.NewTicker. The clock does nothing
// until [Clock.Start] is called.
func New(interval time.Duration) *Clock {
	if interval <= 0 {
		panic("clock: non-positive interval")
	}
	return &Clock{
		interval: interval,
		ticks:    make(chan Tick),
	}
}

// Ticks returns the receive-only tick channel.
//
// The channel is closed when the clock stops.
func (c *Clock) Ticks() <-chan Tick {
	return c.ticks
}

// Start begins ticking in a background goroutine.
//
// Start is idempotent; subsequent calls after the first are no-ops. If Stop
// was called before Start, Start is a no-op. The clock also stops when ctx
// is cancelled.
func (c *Clock) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer c.closeOnce.Do(func() { close(c.ticks) })
		c.loop(ctx)
	}()
}

func (c *Clock) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		select {
		case c.ticks <- Tick{}:
		case <-ctx.Done():
			return
		}

		// a tick that fired while the consumer was busy is dropped and
		// the next interval starts from the handoff
		select {
		case <-ticker.C:
		default:
		}
		ticker.Reset(c.interval)
	}
}

// Stop halts the clock and waits for its goroutine to exit.
//
// Stop is idempotent and safe to call before Start. The tick channel is
// closed once Stop returns.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		if c.cancel != nil {
			c.cancel()
		}
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.closeOnce.Do(func() { close(c.ticks) })
}
