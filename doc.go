// Package pista turns a stream of samples into a continuously rendered
// status-bar line.
//
// A feed is a small process that samples one piece of system or network
// state and prints one line per update for a status-bar renderer to read.
// Every feed is built on the same pipeline:
//
//	clock tick ──▶ Poll(attempt) ──▶ Run ──▶ State.Update ──▶ State.Display ──▶ stdout
//
// # State
//
// A feed implements [State] for its event type. Update applies an event and
// may return [Alert] values; Display writes exactly one line:
//
//	type counter struct{ n int }
//
//	func (c *counter) Update(delta int) ([]pista.Alert, error) {
//	    c.n += delta
//	    return nil, nil
//	}
//
//	func (c *counter) Display(w io.Writer) error {
//	    _, err := fmt.Fprintf(w, "n=%d\n", c.n)
//	    return err
//	}
//
// # Running
//
// [Poll] calls a read function once per trigger and streams successes; failed
// attempts are logged and dropped. [Run] consumes the stream:
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	events := pista.Poll(ctx, ticks, readSensor, pista.WithName("sensor"))
//	err := pista.Run[int](ctx, events, &counter{}, pista.WithName("sensor"))
//
// Feeds whose source fails often, such as network calls, drive Run from the
// backoff controller instead of a clock. The ready-made feeds live under
// feeds/ and the CLI under cmd/pista.
//
// # Fault Handling
//
// Run never exits because of the State. Rejected events and failed renders
// are logged and skipped, leaving the last good line as the latest output.
// Panics are logged with a correlation ID and the full stack trace.
package pista
