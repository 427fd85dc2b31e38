// Package notify delivers feed alerts out of process.
//
// The main components are:
//
//   - [Desktop]: runs notify-send (or a compatible command) per alert
//   - [Log]: writes alerts to a structured logger
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/jpalmerr/pista"
)

const (
	defaultCommand = "notify-send"
	defaultTimeout = 5 * time.Second
)

// Desktop shows alerts as desktop notifications.
//
// The command is invoked as:
//
//	<Command> --app-name <AppName> --urgency <urgency> <summary> [body]
type Desktop struct {
	// Command is the executable to run. Defaults to notify-send.
	Command string

	// AppName is passed as --app-name. Defaults to pista.
	AppName string

	// Timeout bounds a single delivery. Defaults to 5s.
	Timeout time.Duration
}

// Alert implements [pista.AlertSink].
func (d *Desktop) Alert(ctx context.Context, alert pista.Alert) error {
	command := d.Command
	if command == "" {
		command = defaultCommand
	}
	appName := d.AppName
	if appName == "" {
		appName = "pista"
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if alert.Summary == "" {
		return errors.New("alert summary is empty")
	}

	urgency := alert.Urgency
	if urgency == "" {
		urgency = pista.UrgencyNormal
	}

	args := []string{"--app-name", appName, "--urgency", urgency.String(), alert.Summary}
	if alert.Body != "" {
		args = append(args, alert.Body)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, command, args...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%s failed: %w: %s", command, err, detail)
		}
		return fmt.Errorf("%s failed: %w", command, err)
	}
	return nil
}

// Log writes alerts to a logger at warn level.
type Log struct {
	Logger *slog.Logger
}

// Alert implements [pista.AlertSink].
func (l Log) Alert(_ context.Context, alert pista.Alert) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("alert",
		"urgency", alert.Urgency.String(),
		"summary", alert.Summary,
		"body", alert.Body,
	)
	return nil
}
