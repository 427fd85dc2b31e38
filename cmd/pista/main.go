// Package main is the entry point for the pista CLI.
//
// Each subcommand runs one status-bar feed, writing one line per update to
// stdout. A status bar aggregator reads the lines from each feed's pipe.
//
// Usage:
//
//	pista bluetooth                  # Bluetooth radio state
//	pista weather KBOS               # Current temperature for a station
//	pista pulseaudio                 # Volume, mute and microphone state
//	pista validate -c config.yaml    # Validate configuration
//	pista version                    # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jpalmerr/pista"
	"github.com/jpalmerr/pista/config"
	"github.com/jpalmerr/pista/internal/notify"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "pista",
	Short: "Status bar feeds",
	Long: `pista runs small data feeds for text status bars.

Every feed writes one complete line to stdout each time its value may have
changed. Logs go to stderr as JSON so stdout stays clean for the bar.

Quick start:
  pista bluetooth > /tmp/bar/bt &
  pista weather KBOS > /tmp/bar/weather &
  pista pulseaudio > /tmp/bar/audio &

All settings can also come from a YAML file given with -c.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this pista binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pista %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "path to config file")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("alerts", false, "send alerts as desktop notifications")
}

// newLogger creates a JSON logger on stderr for CLI use.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}

// loadConfig reads the file named by --config, or the built-in defaults
// when none is given, applies the global flags and then the command's own
// overrides, and validates the result. Flag values are held to the same
// rules as file values.
func loadConfig(cmd *cobra.Command, overrides func(*config.Config)) (*config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("alerts") {
		cfg.Alerts.Enabled, _ = cmd.Flags().GetBool("alerts")
	}
	if overrides != nil {
		overrides(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// stringFlag copies a string flag into dst when it was set.
func stringFlag(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

// stringPtrFlag copies a string flag into dst when it was set, keeping an
// explicit empty value.
func stringPtrFlag(cmd *cobra.Command, name string, dst **string) {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		*dst = &v
	}
}

// durationFlag copies a duration flag into dst when it was set.
func durationFlag(cmd *cobra.Command, name string, dst *config.Duration) {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetDuration(name)
		*dst = config.Duration(v)
	}
}

// alertSink picks where feed alerts go.
func alertSink(cfg *config.Config, logger *slog.Logger) pista.AlertSink {
	if cfg.Alerts.Enabled {
		return &notify.Desktop{Command: cfg.Alerts.Command}
	}
	return notify.Log{Logger: logger}
}
