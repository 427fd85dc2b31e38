package pista

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// runConfig holds mutable state during pipeline construction.
type runConfig struct {
	name   string
	output io.Writer
	alerts AlertSink
	logger *slog.Logger
}

// Option configures [Run] and [Poll].
//
// Option implements the functional options pattern. Options return an error
// if validation fails. Options that do not apply to a call are ignored.
type Option func(*runConfig) error

func newRunConfig(opts []Option) (*runConfig, error) {
	cfg := &runConfig{
		name:   "feed",
		output: os.Stdout,
		alerts: discardAlerts{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	cfg.logger = cfg.logger.With("feed", cfg.name)
	return cfg, nil
}

// WithName sets the feed name attached to every log record.
//
// Pass the same name to [Poll] and [Run] so both halves of a feed log under
// one key.
//
// Example:
//
//	events := pista.Poll(ctx, clk.Ticks(), reader.Read, pista.WithName("bluetooth"))
//	err := pista.Run[Reading](ctx, events, state, pista.WithName("bluetooth"))
//
// Returns an error if name is empty.
func WithName(name string) Option {
	return func(cfg *runConfig) error {
		if name == "" {
			return errors.New("feed name cannot be empty")
		}
		cfg.name = name
		return nil
	}
}

// WithOutput sets where rendered lines are written. Defaults to os.Stdout.
//
// Each line reaches w in a single Write. If w also has a Flush() error
// method, such as *bufio.Writer, it is flushed after every line.
//
// Example:
//
//	var buf bytes.Buffer
//	err := pista.Run[int](ctx, events, state, pista.WithOutput(&buf))
//
// Returns an error if w is nil.
func WithOutput(w io.Writer) Option {
	return func(cfg *runConfig) error {
		if w == nil {
			return errors.New("output cannot be nil")
		}
		cfg.output = w
		return nil
	}
}

// WithAlertSink sets where alerts returned by [State.Update] are delivered.
// Alerts are discarded when no sink is configured.
//
// Example:
//
//	err := pista.Run[AudioState](ctx, events, state,
//	    pista.WithAlertSink(&notify.Desktop{AppName: "pista"}),
//	)
//
// Returns an error if sink is nil.
func WithAlertSink(sink AlertSink) Option {
	return func(cfg *runConfig) error {
		if sink == nil {
			return errors.New("alert sink cannot be nil")
		}
		cfg.alerts = sink
		return nil
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	err := pista.Run[int](ctx, events, state, pista.WithLogger(logger))
//
// Passing nil keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *runConfig) error {
		cfg.logger = logger
		return nil
	}
}
