// Package pulseaudio reports the default sink's volume, mute status and
// whether any application is recording.
//
// The feed is event-driven: it re-reads the audio state whenever
// "pactl subscribe" reports a sink, source or server change, instead of
// polling on a clock.
package pulseaudio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPactl   = "pactl"
	defaultTimeout = 2 * time.Second
	defaultSink    = "@DEFAULT_SINK@"
)

// AudioState is one sample of the audio server.
type AudioState struct {
	Muted bool

	// Left and Right are channel volumes in percent. A mono sink reports
	// the same value for both.
	Left  int
	Right int

	// MicActive is true while at least one application is recording.
	MicActive bool
}

// Pactl queries the audio server through the pactl command.
type Pactl struct {
	// Bin is the pactl executable. Defaults to "pactl".
	Bin string

	// Timeout bounds each query. Defaults to 2s.
	Timeout time.Duration
}

func (p *Pactl) bin() string {
	if p.Bin == "" {
		return defaultPactl
	}
	return p.Bin
}

func (p *Pactl) run(ctx context.Context, args ...string) ([]byte, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin(), args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("pactl %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("pactl %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// Read samples mute status, volume and recording streams.
func (p *Pactl) Read(ctx context.Context) (AudioState, error) {
	muteOut, err := p.run(ctx, "get-sink-mute", defaultSink)
	if err != nil {
		return AudioState{}, err
	}
	muted, err := parseMute(muteOut)
	if err != nil {
		return AudioState{}, err
	}

	volOut, err := p.run(ctx, "get-sink-volume", defaultSink)
	if err != nil {
		return AudioState{}, err
	}
	left, right, err := parseVolume(volOut)
	if err != nil {
		return AudioState{}, err
	}

	recOut, err := p.run(ctx, "list", "short", "source-outputs")
	if err != nil {
		return AudioState{}, err
	}

	return AudioState{
		Muted:     muted,
		Left:      left,
		Right:     right,
		MicActive: countLines(recOut) > 0,
	}, nil
}

// Subscribe starts "pactl subscribe" and returns a trigger channel.
//
// One trigger is pending immediately so the first state is read at start.
// Afterwards a trigger is sent for every sink, source or server event.
// Bursts coalesce: at most one trigger is ever pending. The channel is
// closed when the subscription process exits or ctx is cancelled.
func (p *Pactl) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	cmd := exec.CommandContext(ctx, p.bin(), "subscribe")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pactl subscribe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("pactl subscribe: %w", err)
	}

	triggers := make(chan struct{}, 1)
	triggers <- struct{}{}

	go func() {
		defer close(triggers)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if !relevantEvent(scanner.Text()) {
				continue
			}
			select {
			case triggers <- struct{}{}:
			default:
			}
		}
		_ = cmd.Wait()
	}()

	return triggers, nil
}

// relevantEvent reports whether a subscribe line can change the audio state.
func relevantEvent(line string) bool {
	for _, kind := range []string{" on sink", " on source", " on server"} {
		if strings.Contains(line, kind) {
			return true
		}
	}
	return false
}

func parseMute(out []byte) (bool, error) {
	s := strings.TrimSpace(string(out))
	value, ok := strings.CutPrefix(s, "Mute:")
	if !ok {
		return false, fmt.Errorf("unexpected mute output %q", s)
	}
	switch strings.TrimSpace(value) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected mute value %q", value)
	}
}

var percentPattern = regexp.MustCompile(`(\d+)%`)

func parseVolume(out []byte) (left, right int, err error) {
	first, _, _ := strings.Cut(string(out), "\n")
	if !strings.HasPrefix(first, "Volume:") {
		return 0, 0, fmt.Errorf("unexpected volume output %q", first)
	}

	matches := percentPattern.FindAllStringSubmatch(first, -1)
	if len(matches) == 0 {
		return 0, 0, errors.New("volume output has no percentage")
	}

	values := make([]int, 0, 2)
	for _, m := range matches[:min(len(matches), 2)] {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid volume %q: %w", m[1], err)
		}
		values = append(values, v)
	}

	if len(values) == 1 {
		return values[0], values[0], nil
	}
	return values[0], values[1], nil
}

func countLines(out []byte) int {
	n := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
