package pista

import (
	"context"
	"io"
)

// State is the per-feed accumulator driven by [Run].
//
// Each feed defines exactly one State implementation and a process hosts a
// single instance of it for its whole lifetime. The pipeline calls Update
// and Display from one goroutine, strictly in event order, so
// implementations need no locking.
type State[E any] interface {
	// Update applies one event. It returns the alerts to raise for this
	// change (nil for none). An error means the event itself cannot be
	// represented; the State must be left as it was before the call.
	Update(event E) ([]Alert, error)

	// Display writes exactly one newline-terminated line describing the
	// current state. It must not depend on anything but the State's fields:
	// two calls with no Update in between produce identical bytes.
	Display(w io.Writer) error
}

// Urgency is the importance of an [Alert].
type Urgency string

const (
	// UrgencyLow is for informational alerts.
	UrgencyLow Urgency = "low"

	// UrgencyNormal is the default urgency.
	UrgencyNormal Urgency = "normal"

	// UrgencyCritical is for alerts that should not be missed.
	UrgencyCritical Urgency = "critical"
)

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	return string(u)
}

// Alert is a user-visible notification raised alongside a state change.
//
// Alerts never reach the primary output; [Run] hands them to an
// [AlertSink].
type Alert struct {
	// Urgency defaults to [UrgencyNormal] when empty.
	Urgency Urgency

	// Summary is the short headline of the notification.
	Summary string

	// Body is optional detail text.
	Body string
}

// AlertSink delivers alerts out of process.
//
// Delivery errors are logged by the pipeline and never stop it.
type AlertSink interface {
	Alert(ctx context.Context, alert Alert) error
}

// AlertSinkFunc adapts a function to [AlertSink].
type AlertSinkFunc func(ctx context.Context, alert Alert) error

// Alert calls f(ctx, alert).
func (f AlertSinkFunc) Alert(ctx context.Context, alert Alert) error {
	return f(ctx, alert)
}

// discardAlerts drops every alert.
type discardAlerts struct{}

func (discardAlerts) Alert(context.Context, Alert) error { return nil }
