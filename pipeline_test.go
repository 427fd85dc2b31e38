package pista

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// counter is a minimal State: it sums events and rejects negative ones.
type counter struct {
	n int
}

func (c *counter) Update(delta int) ([]Alert, error) {
	if delta < 0 {
		return nil, fmt.Errorf("negative delta %d", delta)
	}
	c.n += delta
	if delta >= 100 {
		return []Alert{{Summary: "big jump", Body: fmt.Sprintf("+%d", delta)}}, nil
	}
	return nil, nil
}

func (c *counter) Display(w io.Writer) error {
	_, err := fmt.Fprintf(w, "n=%d\n", c.n)
	return err
}

// syncBuffer is a bytes.Buffer safe for concurrent Write and String.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runEvents feeds events through Run and returns the output once the
// channel is drained.
func runEvents[E any](t *testing.T, state State[E], events []E, opts ...Option) string {
	t.Helper()

	var out bytes.Buffer
	ch := make(chan E)
	done := make(chan error, 1)

	opts = append([]Option{WithOutput(&out), WithLogger(testLogger())}, opts...)
	go func() { done <- Run(context.Background(), ch, state, opts...) }()

	for _, e := range events {
		ch <- e
	}
	close(ch)

	if err := <-done; !errors.Is(err, ErrEventsClosed) {
		t.Fatalf("Run() error = %v, want ErrEventsClosed", err)
	}
	return out.String()
}

func TestRun_OneLinePerEvent(t *testing.T) {
	got := runEvents[int](t, &counter{}, []int{1, 2, 3})

	want := "n=1\nn=3\nn=6\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// TestRun_Replay verifies that output is a pure function of the event
// sequence: replaying it into a fresh State gives identical bytes.
func TestRun_Replay(t *testing.T) {
	events := []int{5, 0, 0, 7, 1}

	first := runEvents[int](t, &counter{}, events)
	second := runEvents[int](t, &counter{}, events)

	if first != second {
		t.Errorf("replay differs:\nfirst:  %q\nsecond: %q", first, second)
	}
	if lines := strings.Count(first, "\n"); lines != len(events) {
		t.Errorf("got %d lines, want %d", lines, len(events))
	}
}

// TestRun_RejectedEventKeepsLastLine verifies that an invalid event skips
// the render and leaves the state untouched.
func TestRun_RejectedEventKeepsLastLine(t *testing.T) {
	got := runEvents[int](t, &counter{}, []int{4, -1, 1})

	want := "n=4\nn=5\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRun_AlertsGoToSink(t *testing.T) {
	var alerts []Alert
	sink := AlertSinkFunc(func(_ context.Context, a Alert) error {
		alerts = append(alerts, a)
		return nil
	})

	got := runEvents[int](t, &counter{}, []int{1, 150}, WithAlertSink(sink))

	if got != "n=1\nn=151\n" {
		t.Errorf("output = %q, alerts must not reach the output", got)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Summary != "big jump" {
		t.Errorf("Summary = %q, want %q", alerts[0].Summary, "big jump")
	}
	if alerts[0].Urgency != UrgencyNormal {
		t.Errorf("Urgency = %q, want default %q", alerts[0].Urgency, UrgencyNormal)
	}
}

func TestRun_AlertSinkErrorDoesNotStop(t *testing.T) {
	sink := AlertSinkFunc(func(context.Context, Alert) error {
		return errors.New("notification daemon unavailable")
	})

	got := runEvents[int](t, &counter{}, []int{200, 1}, WithAlertSink(sink))
	if got != "n=200\nn=201\n" {
		t.Errorf("output = %q, want %q", got, "n=200\nn=201\n")
	}
}

// faultyState misbehaves according to its event.
type faultyState struct {
	last string
}

func (s *faultyState) Update(e string) ([]Alert, error) {
	if e == "panic-update" {
		panic("boom")
	}
	s.last = e
	return nil, nil
}

func (s *faultyState) Display(w io.Writer) error {
	switch s.last {
	case "panic-display":
		panic("boom")
	case "two-lines":
		_, err := io.WriteString(w, "a\nb\n")
		return err
	case "no-newline":
		_, err := io.WriteString(w, "partial")
		return err
	case "empty":
		return nil
	case "bad-utf8":
		_, err := w.Write([]byte{0xff, '\n'})
		return err
	case "display-error":
		_, _ = io.WriteString(w, "half")
		return errors.New("render failed")
	}
	_, err := fmt.Fprintf(w, "%s\n", s.last)
	return err
}

func TestRun_FaultsAreSkipped(t *testing.T) {
	tests := []string{
		"panic-update",
		"panic-display",
		"two-lines",
		"no-newline",
		"empty",
		"bad-utf8",
		"display-error",
	}

	for _, fault := range tests {
		t.Run(fault, func(t *testing.T) {
			got := runEvents[string](t, &faultyState{}, []string{"ok", fault, "fine"})

			want := "ok\nfine\n"
			if got != want {
				t.Errorf("output = %q, want %q", got, want)
			}
		})
	}
}

func TestRun_ReturnsNilOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, make(chan int), State[int](&counter{}), WithOutput(io.Discard), WithLogger(testLogger()))
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRun_InvalidOption(t *testing.T) {
	err := Run(context.Background(), make(chan int), State[int](&counter{}), WithOutput(nil))
	if err == nil {
		t.Fatal("Run() expected error for nil output, got nil")
	}
}

func TestRun_NilState(t *testing.T) {
	err := Run[int](context.Background(), make(chan int), nil, WithOutput(io.Discard))
	if err == nil {
		t.Fatal("Run() expected error for nil state, got nil")
	}
}

// TestRun_FlushesEachLine verifies that a line is visible to the reader
// before the next event arrives.
func TestRun_FlushesEachLine(t *testing.T) {
	out := &syncBuffer{}
	ch := make(chan int)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = Run(ctx, ch, State[int](&counter{}), WithOutput(out), WithLogger(testLogger())) }()

	ch <- 3

	deadline := time.After(time.Second)
	for out.String() != "n=3\n" {
		select {
		case <-deadline:
			t.Fatalf("output = %q, want %q without further events", out.String(), "n=3\n")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestCheckLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
	}{
		{"single line", "on\n", false},
		{"unicode", " 72°F\n", false},
		{"empty", "", true},
		{"missing newline", "on", true},
		{"two lines", "on\noff\n", true},
		{"invalid utf8", "\xff\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkLine([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Errorf("checkLine(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
		})
	}
}

// failingWriter returns an error for the first fails writes and records
// the rest.
type failingWriter struct {
	fails int
	buf   bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.fails > 0 {
		w.fails--
		return 0, errors.New("broken pipe")
	}
	return w.buf.Write(p)
}

// TestRun_WriteErrorAffectsOneLine verifies that a failed write drops only
// that line; later updates are still written.
func TestRun_WriteErrorAffectsOneLine(t *testing.T) {
	w := &failingWriter{fails: 1}
	ch := make(chan int)
	done := make(chan error, 1)

	go func() {
		done <- Run(context.Background(), ch, State[int](&counter{}), WithOutput(w), WithLogger(testLogger()))
	}()

	for _, e := range []int{1, 2, 3} {
		ch <- e
	}
	close(ch)

	if err := <-done; !errors.Is(err, ErrEventsClosed) {
		t.Fatalf("Run() error = %v, want ErrEventsClosed", err)
	}
	if got, want := w.buf.String(), "n=3\nn=6\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// flushRecorder counts Flush calls and the bytes written before each one.
type flushRecorder struct {
	bytes.Buffer
	flushed []string
}

func (f *flushRecorder) Flush() error {
	f.flushed = append(f.flushed, f.String())
	return nil
}

func TestRun_FlushesBufferedOutput(t *testing.T) {
	out := &flushRecorder{}
	ch := make(chan int)
	done := make(chan error, 1)

	go func() {
		done <- Run(context.Background(), ch, State[int](&counter{}), WithOutput(out), WithLogger(testLogger()))
	}()

	ch <- 1
	ch <- 2
	close(ch)
	<-done

	want := []string{"n=1\n", "n=1\nn=3\n"}
	if len(out.flushed) != len(want) {
		t.Fatalf("Flush called %d times, want %d", len(out.flushed), len(want))
	}
	for i := range want {
		if out.flushed[i] != want[i] {
			t.Errorf("flush %d saw %q, want %q", i, out.flushed[i], want[i])
		}
	}
}
