package weather

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jpalmerr/pista/internal/fetch"
)

const (
	// DefaultBaseURL is the weather.gov API root.
	DefaultBaseURL = "https://api.weather.gov"

	acceptObservationXML = "application/vnd.noaa.obs+xml"
)

// UserAgent identifies the application to weather.gov, which asks clients
// for a contact address:
//
//	ApplicationName/vX.Y (http://your.app.url/; contact.email@example.com)
type UserAgent struct {
	AppName    string
	AppVersion string
	AppURL     string
	AdminEmail string
}

// String returns the header value.
func (u UserAgent) String() string {
	return fmt.Sprintf("%s/%s (%s; %s)", u.AppName, u.AppVersion, u.AppURL, u.AdminEmail)
}

// ObservationURL returns the latest-observation endpoint for a station.
func ObservationURL(baseURL, stationID string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/stations/%s/observations/latest?require_qc=false",
		strings.TrimRight(baseURL, "/"), url.PathEscape(stationID))
}

// Source downloads observations for one station.
type Source struct {
	// URL is the observation endpoint, usually from [ObservationURL].
	URL string

	// UserAgent is sent with every request.
	UserAgent UserAgent

	// Timeout bounds one download. Defaults to 30s.
	Timeout time.Duration

	// SummaryFile, if set, receives [Observation.Summary] after every
	// successful download. Write failures are logged, not returned.
	SummaryFile string

	// Client performs the request. Defaults to a new fetch client.
	Client *fetch.Client

	// Now returns the download time. Defaults to time.Now.
	Now func() time.Time

	// Logger receives summary write failures. Nil uses slog.Default().
	Logger *slog.Logger
}

// Fetch performs one download. Any transport error, non-200 status
// ([*fetch.StatusError]) or malformed document is returned as an error.
func (s *Source) Fetch(ctx context.Context) (Observation, error) {
	client := s.Client
	if client == nil {
		client = fetch.NewClient()
		s.Client = client
	}

	resp, err := client.Get(ctx, fetch.Request{
		URL:       s.URL,
		Accept:    acceptObservationXML,
		UserAgent: s.UserAgent.String(),
		Timeout:   s.Timeout,
	})
	if err != nil {
		return Observation{}, err
	}

	obs, err := Decode(bytes.NewReader(resp.Body))
	if err != nil {
		return Observation{}, err
	}
	s.logger().Debug("observation downloaded",
		"station", obs.StationID,
		"latency", resp.Latency.String(),
	)

	if s.SummaryFile != "" {
		s.writeSummary(obs)
	}
	return obs, nil
}

func (s *Source) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Source) writeSummary(obs Observation) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if err := os.WriteFile(s.SummaryFile, []byte(obs.Summary(now())), 0o644); err != nil {
		s.logger().Error("failed to write summary file",
			"path", s.SummaryFile,
			"error", err.Error(),
		)
	}
}
