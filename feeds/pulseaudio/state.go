package pulseaudio

import (
	"fmt"
	"io"
	"strings"

	"github.com/jpalmerr/pista"
)

// Symbols are the pieces the audio line is built from.
type Symbols struct {
	Prefix string
	MicOn  string
	MicOff string
	Mute   string
	Equal  string
	Approx string
}

// DefaultSymbols returns the stock symbol set.
func DefaultSymbols() Symbols {
	return Symbols{
		Prefix: "v ",
		MicOn:  "!",
		MicOff: " ",
		Mute:   "  X  ",
		Equal:  "=",
		Approx: "~",
	}
}

// State renders the audio line:
//
//	<prefix><mute>|<volume%><equal|approx><mic>
//
// The volume is the mean of both channels; the equal symbol means the
// channels are balanced.
type State struct {
	symbols Symbols
	audio   AudioState
	seen    bool
}

// NewState creates a [State] that has seen no sample yet.
func NewState(symbols Symbols) *State {
	return &State{symbols: symbols}
}

// Update implements [pista.State].
//
// It raises an alert when the sink is muted or unmuted and when an
// application starts recording. Nothing is raised for the first sample.
// Negative volumes are rejected.
func (s *State) Update(a AudioState) ([]pista.Alert, error) {
	if a.Left < 0 || a.Right < 0 {
		return nil, fmt.Errorf("negative volume %d/%d", a.Left, a.Right)
	}

	var alerts []pista.Alert
	if s.seen {
		if a.Muted != s.audio.Muted {
			summary := "Audio unmuted"
			if a.Muted {
				summary = "Audio muted"
			}
			alerts = append(alerts, pista.Alert{Urgency: pista.UrgencyLow, Summary: summary})
		}
		if a.MicActive && !s.audio.MicActive {
			alerts = append(alerts, pista.Alert{
				Urgency: pista.UrgencyNormal,
				Summary: "Microphone in use",
				Body:    "An application started recording.",
			})
		}
	}

	s.audio = a
	s.seen = true
	return alerts, nil
}

// Display implements [pista.State].
func (s *State) Display(w io.Writer) error {
	var b strings.Builder
	b.WriteString(s.symbols.Prefix)

	switch {
	case !s.seen:
		b.WriteString("  ?  ")
	case s.audio.Muted:
		b.WriteString(s.symbols.Mute)
	default:
		fmt.Fprintf(&b, "%3d%%", (s.audio.Left+s.audio.Right)/2)
		if s.audio.Left == s.audio.Right {
			b.WriteString(s.symbols.Equal)
		} else {
			b.WriteString(s.symbols.Approx)
		}
	}

	if s.audio.MicActive {
		b.WriteString(s.symbols.MicOn)
	} else {
		b.WriteString(s.symbols.MicOff)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}
