package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/pista"
	"github.com/jpalmerr/pista/config"
	"github.com/jpalmerr/pista/feeds/pulseaudio"
	"github.com/spf13/cobra"
)

// pulseaudioCmd runs the audio feed.
var pulseaudioCmd = &cobra.Command{
	Use:   "pulseaudio",
	Short: "Report volume, mute and microphone state",
	Long: `Report the default sink volume and whether a microphone is in use.

The feed subscribes to audio server events through pactl and redraws the
line after each relevant change. Muting, unmuting and a microphone coming
into use raise alerts.

Example:
  pista pulseaudio
  pista pulseaudio --alerts --symbol-mute " MUTE "`,
	Args: cobra.NoArgs,
	RunE: runPulseAudio,
}

func init() {
	rootCmd.AddCommand(pulseaudioCmd)

	f := pulseaudioCmd.Flags()
	f.String("prefix", "", `text before the volume (default "v ")`)
	f.String("symbol-mic-on", "", "shown while a microphone is in use")
	f.String("symbol-mic-off", "", "shown while no microphone is in use")
	f.String("symbol-mute", "", "shown instead of the volume when muted")
	f.String("symbol-equal", "", "shown when both channels match")
	f.String("symbol-approx", "", "shown when the channels differ")
	f.String("pactl", "", "pactl executable")
}

func runPulseAudio(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		pa := &cfg.PulseAudio
		stringPtrFlag(cmd, "prefix", &pa.Prefix)
		stringPtrFlag(cmd, "symbol-mic-on", &pa.SymbolMicOn)
		stringPtrFlag(cmd, "symbol-mic-off", &pa.SymbolMicOff)
		stringPtrFlag(cmd, "symbol-mute", &pa.SymbolMute)
		stringPtrFlag(cmd, "symbol-equal", &pa.SymbolEqual)
		stringPtrFlag(cmd, "symbol-approx", &pa.SymbolApprox)
		stringFlag(cmd, "pactl", &pa.Pactl)
	})
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	pa := cfg.PulseAudio
	pc := pulseaudio.Config{
		Symbols: pulseaudio.Symbols{
			Prefix: *pa.Prefix,
			MicOn:  *pa.SymbolMicOn,
			MicOff: *pa.SymbolMicOff,
			Mute:   *pa.SymbolMute,
			Equal:  *pa.SymbolEqual,
			Approx: *pa.SymbolApprox,
		},
		Pactl:   pa.Pactl,
		Timeout: pa.Timeout.Duration(),
		Logger:  logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting feed", "feed", "pulseaudio", "pactl", pc.Pactl)
	if err := pulseaudio.Run(ctx, pc, pista.WithAlertSink(alertSink(cfg, logger))); err != nil {
		return fmt.Errorf("pulseaudio: %w", err)
	}
	return nil
}
