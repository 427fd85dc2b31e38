package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/pista"
	"github.com/jpalmerr/pista/config"
	"github.com/jpalmerr/pista/feeds/bluetooth"
	"github.com/spf13/cobra"
)

// bluetoothCmd runs the Bluetooth feed.
var bluetoothCmd = &cobra.Command{
	Use:   "bluetooth",
	Short: "Report the Bluetooth radio state",
	Long: `Report whether the Bluetooth radio is on.

The rfkill directory is sampled every interval. The line shows the prefix
followed by "on", "off", or "--" when no Bluetooth device exists.

Example:
  pista bluetooth
  pista bluetooth --prefix "bt " --interval 10s`,
	Args: cobra.NoArgs,
	RunE: runBluetooth,
}

func init() {
	rootCmd.AddCommand(bluetoothCmd)

	bluetoothCmd.Flags().String("prefix", "", `text before the state (default "B ")`)
	bluetoothCmd.Flags().Duration("interval", 0, "sampling interval (default 5s)")
	bluetoothCmd.Flags().String("rfkill-dir", "", "rfkill sysfs directory")
}

func runBluetooth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		stringPtrFlag(cmd, "prefix", &cfg.Bluetooth.Prefix)
		durationFlag(cmd, "interval", &cfg.Bluetooth.Interval)
		stringFlag(cmd, "rfkill-dir", &cfg.Bluetooth.RfkillDir)
	})
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	bt := bluetooth.Config{
		Prefix:    *cfg.Bluetooth.Prefix,
		Interval:  cfg.Bluetooth.Interval.Duration(),
		RfkillDir: cfg.Bluetooth.RfkillDir,
		Logger:    logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting feed", "feed", "bluetooth", "interval", bt.Interval.String())
	if err := bluetooth.Run(ctx, bt, pista.WithAlertSink(alertSink(cfg, logger))); err != nil {
		return fmt.Errorf("bluetooth: %w", err)
	}
	return nil
}
