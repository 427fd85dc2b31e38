package weather

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/pista"
	"github.com/jpalmerr/pista/internal/backoff"
	"github.com/jpalmerr/pista/internal/clock"
	"github.com/jpalmerr/pista/internal/fetch"
)

// Config configures the weather feed.
type Config struct {
	StationID   string
	BaseURL     string
	Interval    time.Duration
	Timeout     time.Duration
	SummaryFile string
	UserAgent   UserAgent

	// BackoffInitial is the first retry delay after a failure.
	BackoffInitial time.Duration

	// BackoffMultiplier grows the delay per consecutive failure.
	BackoffMultiplier float64

	// BackoffMax caps the retry delay. Zero means no cap.
	BackoffMax time.Duration

	Logger *slog.Logger

	// Sleeper overrides the wall clock between attempts.
	Sleeper clock.Sleeper
}

// Run downloads observations until ctx is cancelled, rendering each one.
// Extra options, such as [pista.WithOutput], are passed to [pista.Run].
func Run(ctx context.Context, cfg Config, opts ...pista.Option) error {
	if cfg.StationID == "" {
		return errors.New("station id is required")
	}
	if cfg.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if cfg.BackoffInitial <= 0 {
		return errors.New("backoff initial delay must be positive")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := fetch.NewClient()
	defer client.Close()

	url := ObservationURL(cfg.BaseURL, cfg.StationID)
	logger.Info("weather feed configured",
		"station", cfg.StationID,
		"url", url,
		"user_agent", cfg.UserAgent.String(),
		"interval", cfg.Interval.String(),
	)

	source := &Source{
		URL:         url,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
		SummaryFile: cfg.SummaryFile,
		Client:      client,
		Logger:      logger,
	}
	controller := &backoff.Controller[Observation]{
		Fetch:    source.Fetch,
		Interval: cfg.Interval,
		Schedule: backoff.NewSchedule(cfg.BackoffInitial, cfg.BackoffMultiplier, cfg.BackoffMax),
		Sleeper:  cfg.Sleeper,
		Source:   url,
		Logger:   logger.With("feed", "weather"),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan Observation)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		if err := controller.Run(ctx, events); err != nil && ctx.Err() == nil {
			logger.Error("backoff controller stopped", "error", err.Error())
		}
	}()

	base := []pista.Option{pista.WithName("weather"), pista.WithLogger(logger)}
	err := pista.Run[Observation](ctx, events, NewState(), append(base, opts...)...)
	cancel()
	<-done
	return err
}
