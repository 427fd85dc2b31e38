package pulseaudio

import (
	"context"
	"log/slog"
	"time"

	"github.com/jpalmerr/pista"
)

// Config configures the audio feed.
type Config struct {
	Symbols Symbols

	// Pactl is the pactl executable. Defaults to "pactl".
	Pactl string

	// Timeout bounds each pactl query.
	Timeout time.Duration

	Logger *slog.Logger
}

// Run subscribes to audio server events and renders the audio state after
// each one until ctx is cancelled. It returns [pista.ErrEventsClosed] if the
// subscription process exits on its own.
func Run(ctx context.Context, cfg Config, opts ...pista.Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pactl := &Pactl{Bin: cfg.Pactl, Timeout: cfg.Timeout}
	triggers, err := pactl.Subscribe(ctx)
	if err != nil {
		return err
	}

	base := []pista.Option{pista.WithName("pulseaudio"), pista.WithLogger(cfg.Logger)}
	events := pista.Poll(ctx, triggers, pactl.Read, base...)
	return pista.Run[AudioState](ctx, events, NewState(cfg.Symbols), append(base, opts...)...)
}
