package pista

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrEventsClosed is returned by [Run] when the event source ends while the
// context is still live.
var ErrEventsClosed = errors.New("event source closed")

// Run drives state with events until ctx is cancelled.
//
// For every received event Run calls [State.Update], renders the state with
// [State.Display] and writes the line to the output in a single Write. An
// output with a Flush() error method is flushed after each line. Alerts
// returned by Update are then handed to the alert sink.
//
// Run never exits on a fault inside the State or the output. A rejected
// event or a failed render is logged and skipped; the previously written
// line stays the latest one. A failed write affects only that line. Panics
// in Update or Display are recovered and treated the same way.
//
// Returns nil when ctx is cancelled, [ErrEventsClosed] if events is closed
// first, and an error if an option is invalid.
func Run[E any](ctx context.Context, events <-chan E, state State[E], opts ...Option) error {
	cfg, err := newRunConfig(opts)
	if err != nil {
		return err
	}
	if state == nil {
		return errors.New("state cannot be nil")
	}

	r := &runner[E]{
		cfg:   cfg,
		state: state,
		out:   cfg.output,
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrEventsClosed
			}
			r.step(ctx, event)
		}
	}
}

type runner[E any] struct {
	cfg   *runConfig
	state State[E]
	out   io.Writer
	line  bytes.Buffer
}

// step applies one event and renders the result.
func (r *runner[E]) step(ctx context.Context, event E) {
	logger := r.cfg.logger

	alerts, err := r.update(event)
	if err != nil {
		logger.Error("event rejected", "error", err.Error())
		return
	}

	if err := r.render(); err != nil {
		logger.Error("render failed", "error", err.Error())
	}

	for _, alert := range alerts {
		if alert.Urgency == "" {
			alert.Urgency = UrgencyNormal
		}
		if err := r.cfg.alerts.Alert(ctx, alert); err != nil {
			logger.Error("alert delivery failed",
				"summary", alert.Summary,
				"error", err.Error(),
			)
		}
	}
}

// render writes the current state as a single line. Nothing reaches the
// output unless Display produced exactly one complete UTF-8 line.
func (r *runner[E]) render() error {
	r.line.Reset()
	if err := r.display(); err != nil {
		return err
	}

	line := r.line.Bytes()
	if err := checkLine(line); err != nil {
		return err
	}

	if _, err := r.out.Write(line); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}
	if f, ok := r.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush line: %w", err)
		}
	}
	return nil
}

// flusher is implemented by buffered outputs such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// checkLine reports whether b is exactly one newline-terminated UTF-8 line.
func checkLine(b []byte) error {
	switch {
	case len(b) == 0:
		return errors.New("display wrote nothing")
	case b[len(b)-1] != '\n':
		return errors.New("display line is not newline-terminated")
	case bytes.Count(b, []byte{'\n'}) != 1:
		return errors.New("display wrote more than one line")
	case !utf8.Valid(b):
		return errors.New("display line is not valid UTF-8")
	}
	return nil
}

func (r *runner[E]) update(event E) (alerts []Alert, err error) {
	defer recoverInto(r.cfg.logger, "update", &err)
	return r.state.Update(event)
}

func (r *runner[E]) display() (err error) {
	defer recoverInto(r.cfg.logger, "display", &err)
	return r.state.Display(&r.line)
}

// recoverInto turns a panic into an error carrying a correlation ID.
// The full stack trace is logged under the same ID.
func recoverInto(logger *slog.Logger, op string, err *error) {
	r := recover()
	if r == nil {
		return
	}

	correlationID := uuid.NewString()
	logger.Error(op+" panic",
		"correlation_id", correlationID,
		"panic", fmt.Sprintf("%v", r),
		"stack", string(debug.Stack()),
	)
	*err = fmt.Errorf("%s panic (correlation_id: %s)", op, correlationID)
}
