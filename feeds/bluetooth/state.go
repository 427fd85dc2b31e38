package bluetooth

import (
	"fmt"
	"io"

	"github.com/jpalmerr/pista"
)

// State renders the Bluetooth power state behind a prefix.
type State struct {
	prefix string
	device *DeviceState
}

// NewState creates a [State] that has seen no reading yet.
func NewState(prefix string) *State {
	return &State{prefix: prefix}
}

// Update implements [pista.State]. An invalid state byte is rejected and
// the previous device state is kept.
func (s *State) Update(r Reading) ([]pista.Alert, error) {
	if !r.Present {
		s.device = nil
		return nil, nil
	}

	ds, err := FromByte(r.Raw)
	if err != nil {
		return nil, err
	}
	s.device = &ds
	return nil, nil
}

// Display implements [pista.State].
//
// OffSoft and OffHard both render as "off".
func (s *State) Display(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s%s\n", s.prefix, s.symbol())
	return err
}

func (s *State) symbol() string {
	if s.device == nil {
		return "--"
	}
	switch *s.device {
	case On:
		return "on"
	case OffSoft, OffHard:
		return "off"
	default:
		return "--"
	}
}
