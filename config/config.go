// Package config provides YAML configuration for pista feeds.
//
// A single file configures every feed; each feed command reads only its
// own section. All fields are optional and command-line flags override
// them.
//
// Example configuration:
//
//	log_level: info
//
//	alerts:
//	  enabled: true
//
//	bluetooth:
//	  prefix: "B "
//	  interval: 5s
//
//	weather:
//	  station_id: KBOS
//	  interval: 30m
//	  summary_file: ${XDG_RUNTIME_DIR:-/tmp}/weather.txt
//	  admin_email: ${USER}@example.com
//	  backoff:
//	    initial: 15s
//	    multiplier: 2
//
//	pulseaudio:
//	  prefix: "v "
//	  symbol_mic_on: "!"
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minInterval is the minimum allowed sampling interval.
const minInterval = 1 * time.Second

// Config is the root configuration structure.
//
// Use [Load] or [Parse] to create a Config from YAML, or [Default] for the
// built-in values.
type Config struct {
	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	Alerts     AlertsConfig     `yaml:"alerts"`
	Bluetooth  BluetoothConfig  `yaml:"bluetooth"`
	Weather    WeatherConfig    `yaml:"weather"`
	PulseAudio PulseAudioConfig `yaml:"pulseaudio"`
}

// AlertsConfig controls desktop notifications.
type AlertsConfig struct {
	// Enabled sends alerts to the desktop. When false alerts are only logged.
	Enabled bool `yaml:"enabled"`

	// Command is the notifier executable. Defaults to notify-send.
	// Supports environment variable substitution.
	Command string `yaml:"command"`
}

// BluetoothConfig configures the Bluetooth feed.
type BluetoothConfig struct {
	Prefix    *string  `yaml:"prefix"`
	Interval  Duration `yaml:"interval"`
	RfkillDir string   `yaml:"rfkill_dir"`
}

// WeatherConfig configures the weather feed.
type WeatherConfig struct {
	// StationID is the weather.gov station, e.g. KBOS.
	// Supports environment variable substitution.
	StationID string `yaml:"station_id"`

	Interval Duration `yaml:"interval"`
	Timeout  Duration `yaml:"timeout"`

	// SummaryFile receives a human-readable report after each download.
	// Supports environment variable substitution.
	SummaryFile string `yaml:"summary_file"`

	// BaseURL overrides the API root. Must be http or https.
	BaseURL string `yaml:"base_url"`

	AppName    string `yaml:"app_name"`
	AppVersion string `yaml:"app_version"`
	AppURL     string `yaml:"app_url"`

	// AdminEmail is the contact address sent in the User-Agent.
	// Supports environment variable substitution.
	AdminEmail string `yaml:"admin_email"`

	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig configures retry delays after failed downloads.
type BackoffConfig struct {
	Initial    Duration `yaml:"initial"`
	Multiplier float64  `yaml:"multiplier"`

	// Max caps the delay. Zero means no cap.
	Max Duration `yaml:"max"`
}

// PulseAudioConfig configures the audio feed.
//
// Symbol fields are pointers so an explicit empty string can be told apart
// from an unset field.
type PulseAudioConfig struct {
	Prefix       *string `yaml:"prefix"`
	SymbolMicOn  *string `yaml:"symbol_mic_on"`
	SymbolMicOff *string `yaml:"symbol_mic_off"`
	SymbolMute   *string `yaml:"symbol_mute"`
	SymbolEqual  *string `yaml:"symbol_equal"`
	SymbolApprox *string `yaml:"symbol_approx"`

	// Pactl is the pactl executable. Defaults to "pactl".
	Pactl string `yaml:"pactl"`

	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshalling.
//
// Accepts duration strings like "10s" or "30m", and bare integers, which
// are read as whole seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.ShortTag() == "!!int" {
		var secs int64
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Defaults are applied to unset fields, environment variables are expanded
// and the result is validated.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func strPtr(s string) *string { return &s }

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	bt := &c.Bluetooth
	if bt.Prefix == nil {
		bt.Prefix = strPtr("B ")
	}
	if bt.Interval == 0 {
		bt.Interval = Duration(5 * time.Second)
	}
	if bt.RfkillDir == "" {
		bt.RfkillDir = "/sys/class/rfkill"
	}

	w := &c.Weather
	if w.Interval == 0 {
		w.Interval = Duration(30 * time.Minute)
	}
	if w.Timeout == 0 {
		w.Timeout = Duration(30 * time.Second)
	}
	if w.BaseURL == "" {
		w.BaseURL = "https://api.weather.gov"
	}
	if w.AppName == "" {
		w.AppName = "pista-sensor-weather"
	}
	if w.AppVersion == "" {
		w.AppVersion = "HEAD"
	}
	if w.AppURL == "" {
		w.AppURL = "https://github.com/jpalmerr/pista"
	}
	if w.AdminEmail == "" {
		w.AdminEmail = "user-has-not-provided-contact-info"
	}
	if w.Backoff.Initial == 0 {
		w.Backoff.Initial = Duration(15 * time.Second)
	}
	if w.Backoff.Multiplier == 0 {
		w.Backoff.Multiplier = 2
	}

	pa := &c.PulseAudio
	defaults := []struct {
		field **string
		value string
	}{
		{&pa.Prefix, "v "},
		{&pa.SymbolMicOn, "!"},
		{&pa.SymbolMicOff, " "},
		{&pa.SymbolMute, "  X  "},
		{&pa.SymbolEqual, "="},
		{&pa.SymbolApprox, "~"},
	}
	for _, d := range defaults {
		if *d.field == nil {
			*d.field = strPtr(d.value)
		}
	}
	if pa.Pactl == "" {
		pa.Pactl = "pactl"
	}
	if pa.Timeout == 0 {
		pa.Timeout = Duration(2 * time.Second)
	}
}

// expand substitutes environment variables in fields that name external
// resources.
func (c *Config) expand() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"alerts.command", &c.Alerts.Command},
		{"weather.station_id", &c.Weather.StationID},
		{"weather.summary_file", &c.Weather.SummaryFile},
		{"weather.base_url", &c.Weather.BaseURL},
		{"weather.admin_email", &c.Weather.AdminEmail},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

// Validate checks every section.
//
// A missing weather station is not an error here: the weather command
// may supply it as an argument.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.Bluetooth.Interval.Duration() < minInterval {
		return fmt.Errorf("bluetooth: interval must be at least %s, got %s", minInterval, c.Bluetooth.Interval.Duration())
	}

	w := c.Weather
	if w.Interval.Duration() < minInterval {
		return fmt.Errorf("weather: interval must be at least %s, got %s", minInterval, w.Interval.Duration())
	}
	if w.Timeout.Duration() < time.Second {
		return fmt.Errorf("weather: timeout must be at least 1s, got %s", w.Timeout.Duration())
	}
	if strings.ContainsAny(w.StationID, "/?# ") {
		return fmt.Errorf("weather: invalid station_id %q", w.StationID)
	}

	parsedURL, err := url.Parse(w.BaseURL)
	if err != nil {
		return fmt.Errorf("weather: invalid base_url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("weather: base_url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	b := w.Backoff
	if b.Initial.Duration() < time.Second {
		return fmt.Errorf("weather: backoff.initial must be at least 1s, got %s", b.Initial.Duration())
	}
	if b.Multiplier < 1 {
		return fmt.Errorf("weather: backoff.multiplier must be at least 1, got %g", b.Multiplier)
	}
	if b.Max != 0 && b.Max < b.Initial {
		return fmt.Errorf("weather: backoff.max (%s) must not be below backoff.initial (%s)",
			b.Max.Duration(), b.Initial.Duration())
	}

	if c.PulseAudio.Timeout.Duration() <= 0 {
		return fmt.Errorf("pulseaudio: timeout must be positive, got %s", c.PulseAudio.Timeout.Duration())
	}

	return nil
}
