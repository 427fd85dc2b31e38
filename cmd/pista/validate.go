package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting a feed.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a pista configuration file without starting a feed.

This command parses the YAML, expands environment variables, and validates
all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  pista validate -c config.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	station := cfg.Weather.StationID
	if station == "" {
		station = "(from argument)"
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Log level:          %s\n", cfg.LogLevel)
	fmt.Printf("  Alerts:             %t\n", cfg.Alerts.Enabled)
	fmt.Printf("  Bluetooth interval: %s\n", cfg.Bluetooth.Interval.Duration())
	fmt.Printf("  Weather station:    %s\n", station)
	fmt.Printf("  Weather interval:   %s\n", cfg.Weather.Interval.Duration())
	fmt.Printf("  Pactl:              %s\n", cfg.PulseAudio.Pactl)

	return nil
}
