package bluetooth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/pista"
	"github.com/jpalmerr/pista/internal/clock"
)

// Config configures the Bluetooth feed.
type Config struct {
	Prefix    string
	Interval  time.Duration
	RfkillDir string
	Logger    *slog.Logger
}

// Run samples the rfkill directory every interval and renders each reading
// until ctx is cancelled. Extra options, such as [pista.WithOutput], are
// passed to [pista.Run].
func Run(ctx context.Context, cfg Config, opts ...pista.Option) error {
	if cfg.Interval <= 0 {
		return errors.New("interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clk := clock.New(cfg.Interval)
	clk.Start(ctx)
	defer clk.Stop()

	base := []pista.Option{pista.WithName("bluetooth"), pista.WithLogger(cfg.Logger)}
	reader := Reader{Dir: cfg.RfkillDir}

	events := pista.Poll(ctx, clk.Ticks(), reader.Read, base...)
	return pista.Run[Reading](ctx, events, NewState(cfg.Prefix), append(base, opts...)...)
}
