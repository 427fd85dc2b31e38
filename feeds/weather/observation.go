// Package weather reports the latest temperature observed at a weather.gov
// station.
//
// The station is polled through the backoff controller: a failed download
// is retried after 15s, 30s, 60s and so on, while a success waits the
// configured interval. Each success may also refresh a multi-line summary
// file.
package weather

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// rfc2822 layouts accepted for observation times, most common first.
var rfc2822Layouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
}

// RFC2822Time is a timestamp encoded as RFC 2822 text.
type RFC2822Time struct {
	time.Time
}

// UnmarshalXML implements xml.Unmarshaler.
func (t *RFC2822Time) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	s = strings.TrimSpace(s)

	for _, layout := range rfc2822Layouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid RFC 2822 time %q", s)
}

// Observation is a station's current observation.
type Observation struct {
	XMLName           xml.Name    `xml:"current_observation"`
	Location          string      `xml:"location"`
	StationID         string      `xml:"station_id"`
	Weather           string      `xml:"weather"`
	TemperatureString string      `xml:"temperature_string"`
	TempF             float64     `xml:"temp_f"`
	RelativeHumidity  string      `xml:"relative_humidity"`
	WindString        string      `xml:"wind_string"`
	PressureString    string      `xml:"pressure_string"`
	DewpointString    string      `xml:"dewpoint_string"`
	VisibilityMi      float64     `xml:"visibility_mi"`
	ObservedAt        RFC2822Time `xml:"observation_time_rfc822"`
}

// Decode parses an observation document.
//
// Documents declaring a non-UTF-8 encoding, such as ISO-8859-1, are
// transcoded.
func Decode(r io.Reader) (Observation, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var obs Observation
	if err := dec.Decode(&obs); err != nil {
		return Observation{}, fmt.Errorf("failed to decode observation: %w", err)
	}
	if obs.StationID == "" {
		return Observation{}, fmt.Errorf("observation has no station_id")
	}
	return obs, nil
}

// Summary renders the observation as a human-readable report.
//
// Times are shown in the local zone of downloadedAt.
func (o Observation) Summary(downloadedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s (%s)\n\n", o.Location, o.StationID)
	fmt.Fprintf(&b, "%s\n%s\n\n", o.Weather, o.TemperatureString)
	fmt.Fprintf(&b, "humidity   : %s%%\n", o.RelativeHumidity)
	fmt.Fprintf(&b, "wind       : %s\n", o.WindString)
	fmt.Fprintf(&b, "pressure   : %s\n", o.PressureString)
	fmt.Fprintf(&b, "dewpoint   : %s\n", o.DewpointString)
	fmt.Fprintf(&b, "visibility : %g miles\n\n", o.VisibilityMi)
	fmt.Fprintf(&b, "observed   : %s\n", o.ObservedAt.In(downloadedAt.Location()).Format(time.RFC1123Z))
	fmt.Fprintf(&b, "downloaded : %s\n", downloadedAt.Format(time.RFC1123Z))

	return b.String()
}
