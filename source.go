package pista

import (
	"context"
	"log/slog"
)

// Poll calls attempt once per trigger and streams the successful results.
//
// An attempt performs one bounded unit of I/O and returns promptly. Its only
// side effect is the read itself.
//
// Triggers may be clock ticks or any other notification. Failed attempts are
// logged at error level and produce no event, so they never reach the
// State. The returned channel is unbuffered and is closed when ctx is
// cancelled or triggers is closed.
//
// Only [WithName] and [WithLogger] apply to Poll. An invalid option is
// reported through the logger and yields a closed channel.
func Poll[T, E any](ctx context.Context, triggers <-chan T, attempt func(ctx context.Context) (E, error), opts ...Option) <-chan E {
	out := make(chan E)

	cfg, err := newRunConfig(opts)
	if err != nil {
		slog.Default().Error("invalid poll option", "error", err.Error())
		close(out)
		return out
	}
	logger := cfg.logger

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-triggers:
				if !ok {
					return
				}
			}

			event, err := safeAttempt(ctx, attempt, cfg)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("source read failed", "error", err.Error())
				continue
			}

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func safeAttempt[E any](ctx context.Context, attempt func(ctx context.Context) (E, error), cfg *runConfig) (event E, err error) {
	defer recoverInto(cfg.logger, "source", &err)
	return attempt(ctx)
}
