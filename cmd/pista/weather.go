package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/pista"
	"github.com/jpalmerr/pista/config"
	"github.com/jpalmerr/pista/feeds/weather"
	"github.com/spf13/cobra"
)

// weatherCmd runs the weather feed.
var weatherCmd = &cobra.Command{
	Use:   "weather [STATION_ID]",
	Short: "Report the current temperature",
	Long: `Report the temperature observed at a weather.gov station.

The latest observation is downloaded every interval. Failed downloads are
retried with growing delays and the last known temperature stays on screen.

The station may be given as an argument or as weather.station_id in the
config file. The argument wins.

Example:
  pista weather KBOS
  pista weather KJFK --interval 15m --summary-file /tmp/weather.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWeather,
}

func init() {
	rootCmd.AddCommand(weatherCmd)

	f := weatherCmd.Flags()
	f.Duration("interval", 0, "time between downloads (default 30m)")
	f.Duration("timeout", 0, "timeout for one download (default 30s)")
	f.String("summary-file", "", "write a readable report here after each download")
	f.String("admin-email", "", "contact address sent in the User-Agent")
	f.String("base-url", "", "weather API root")
}

func runWeather(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		w := &cfg.Weather
		if len(args) == 1 {
			w.StationID = args[0]
		}
		durationFlag(cmd, "interval", &w.Interval)
		durationFlag(cmd, "timeout", &w.Timeout)
		stringFlag(cmd, "summary-file", &w.SummaryFile)
		stringFlag(cmd, "admin-email", &w.AdminEmail)
		stringFlag(cmd, "base-url", &w.BaseURL)
	})
	if err != nil {
		return err
	}

	w := cfg.Weather
	if w.StationID == "" {
		return errors.New("weather: station id is required")
	}

	logger := newLogger(cfg.LogLevel)
	wc := weather.Config{
		StationID:   w.StationID,
		BaseURL:     w.BaseURL,
		Interval:    w.Interval.Duration(),
		Timeout:     w.Timeout.Duration(),
		SummaryFile: w.SummaryFile,
		UserAgent: weather.UserAgent{
			AppName:    w.AppName,
			AppVersion: w.AppVersion,
			AppURL:     w.AppURL,
			AdminEmail: w.AdminEmail,
		},
		BackoffInitial:    w.Backoff.Initial.Duration(),
		BackoffMultiplier: w.Backoff.Multiplier,
		BackoffMax:        w.Backoff.Max.Duration(),
		Logger:            logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting feed",
		"feed", "weather",
		"station", wc.StationID,
		"interval", wc.Interval.String(),
	)
	if err := weather.Run(ctx, wc, pista.WithAlertSink(alertSink(cfg, logger))); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	return nil
}
