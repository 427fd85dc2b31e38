package weather

import (
	"fmt"
	"io"
	"math"

	"github.com/jpalmerr/pista"
)

// State renders the latest temperature in degrees Fahrenheit.
type State struct {
	tempF float64
	seen  bool
}

// NewState creates a [State] that has seen no observation yet.
func NewState() *State {
	return &State{}
}

// Update implements [pista.State]. A non-finite temperature is rejected.
func (s *State) Update(obs Observation) ([]pista.Alert, error) {
	if math.IsNaN(obs.TempF) || math.IsInf(obs.TempF, 0) {
		return nil, fmt.Errorf("station %s: temperature is not a number", obs.StationID)
	}
	s.tempF = obs.TempF
	s.seen = true
	return nil, nil
}

// Display implements [pista.State]. The temperature is rounded and padded
// to three characters.
func (s *State) Display(w io.Writer) error {
	if !s.seen {
		_, err := io.WriteString(w, "---°F\n")
		return err
	}
	_, err := fmt.Fprintf(w, "%3.0f°F\n", s.tempF)
	return err
}
