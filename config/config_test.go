package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if *cfg.Bluetooth.Prefix != "B " {
		t.Errorf("Bluetooth.Prefix = %q, want %q", *cfg.Bluetooth.Prefix, "B ")
	}
	if cfg.Bluetooth.Interval.Duration() != 5*time.Second {
		t.Errorf("Bluetooth.Interval = %v, want 5s", cfg.Bluetooth.Interval.Duration())
	}
	if cfg.Weather.Interval.Duration() != 30*time.Minute {
		t.Errorf("Weather.Interval = %v, want 30m", cfg.Weather.Interval.Duration())
	}
	if cfg.Weather.Backoff.Initial.Duration() != 15*time.Second {
		t.Errorf("Weather.Backoff.Initial = %v, want 15s", cfg.Weather.Backoff.Initial.Duration())
	}
	if cfg.Weather.Backoff.Multiplier != 2 {
		t.Errorf("Weather.Backoff.Multiplier = %v, want 2", cfg.Weather.Backoff.Multiplier)
	}
	if cfg.Weather.Backoff.Max != 0 {
		t.Errorf("Weather.Backoff.Max = %v, want 0 (uncapped)", cfg.Weather.Backoff.Max.Duration())
	}
	if *cfg.PulseAudio.SymbolMute != "  X  " {
		t.Errorf("PulseAudio.SymbolMute = %q, want %q", *cfg.PulseAudio.SymbolMute, "  X  ")
	}
	if cfg.Alerts.Enabled {
		t.Error("Alerts.Enabled = true, want false")
	}
}

func TestDefault_MatchesEmptyParse(t *testing.T) {
	def := Default()
	parsed, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if def.Weather != parsed.Weather {
		t.Errorf("Default().Weather = %+v, want %+v", def.Weather, parsed.Weather)
	}
	if err := def.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
log_level: debug
alerts:
  enabled: true
  command: /usr/bin/notify-send
bluetooth:
  prefix: "bt:"
  interval: 10s
  rfkill_dir: /tmp/rfkill
weather:
  station_id: KBOS
  interval: 1800
  timeout: 20s
  summary_file: /tmp/weather.txt
  app_name: my-bar
  app_version: "1.0"
  app_url: https://example.com
  admin_email: ops@example.com
  backoff:
    initial: 10s
    multiplier: 3
    max: 10m
pulseaudio:
  prefix: ""
  symbol_mic_on: "*"
  pactl: /usr/bin/pactl
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.Alerts.Enabled || cfg.Alerts.Command != "/usr/bin/notify-send" {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
	if *cfg.Bluetooth.Prefix != "bt:" {
		t.Errorf("Bluetooth.Prefix = %q, want %q", *cfg.Bluetooth.Prefix, "bt:")
	}
	if cfg.Bluetooth.RfkillDir != "/tmp/rfkill" {
		t.Errorf("Bluetooth.RfkillDir = %q", cfg.Bluetooth.RfkillDir)
	}

	w := cfg.Weather
	if w.StationID != "KBOS" {
		t.Errorf("StationID = %q, want KBOS", w.StationID)
	}
	if w.Interval.Duration() != 30*time.Minute {
		t.Errorf("Interval = %v, want 30m (bare integer seconds)", w.Interval.Duration())
	}
	if w.Timeout.Duration() != 20*time.Second {
		t.Errorf("Timeout = %v, want 20s", w.Timeout.Duration())
	}
	if w.AppName != "my-bar" || w.AppVersion != "1.0" || w.AdminEmail != "ops@example.com" {
		t.Errorf("user agent fields = %q %q %q", w.AppName, w.AppVersion, w.AdminEmail)
	}
	if w.Backoff.Initial.Duration() != 10*time.Second || w.Backoff.Multiplier != 3 || w.Backoff.Max.Duration() != 10*time.Minute {
		t.Errorf("Backoff = %+v", w.Backoff)
	}

	pa := cfg.PulseAudio
	if *pa.Prefix != "" {
		t.Errorf("PulseAudio.Prefix = %q, want explicit empty string", *pa.Prefix)
	}
	if *pa.SymbolMicOn != "*" {
		t.Errorf("SymbolMicOn = %q, want *", *pa.SymbolMicOn)
	}
	if *pa.SymbolMicOff != " " {
		t.Errorf("SymbolMicOff = %q, want default %q", *pa.SymbolMicOff, " ")
	}
	if pa.Pactl != "/usr/bin/pactl" {
		t.Errorf("Pactl = %q", pa.Pactl)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	// t.Setenv auto-restores after test (Go 1.17+)
	t.Setenv("TEST_STATION", "KJFK")
	t.Setenv("TEST_EMAIL", "me@example.com")

	yaml := `
weather:
  station_id: ${TEST_STATION}
  admin_email: ${TEST_EMAIL}
  summary_file: ${TEST_UNSET_DIR:-/tmp}/weather.txt
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Weather.StationID != "KJFK" {
		t.Errorf("StationID = %q, want KJFK", cfg.Weather.StationID)
	}
	if cfg.Weather.AdminEmail != "me@example.com" {
		t.Errorf("AdminEmail = %q, want me@example.com", cfg.Weather.AdminEmail)
	}
	if cfg.Weather.SummaryFile != "/tmp/weather.txt" {
		t.Errorf("SummaryFile = %q, want /tmp/weather.txt", cfg.Weather.SummaryFile)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	yaml := `
weather:
  station_id: ${TEST_DEFINITELY_NOT_SET}
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "weather.station_id") {
		t.Errorf("error = %v, want field name", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name:        "bad log level",
			yaml:        `log_level: verbose`,
			wantErrLike: "log_level must be",
		},
		{
			name: "bluetooth interval too short",
			yaml: `
bluetooth:
  interval: 500ms
`,
			wantErrLike: "bluetooth: interval must be at least 1s",
		},
		{
			name: "weather interval too short",
			yaml: `
weather:
  interval: 100ms
`,
			wantErrLike: "weather: interval must be at least 1s",
		},
		{
			name: "weather timeout too short",
			yaml: `
weather:
  timeout: 10ms
`,
			wantErrLike: "timeout must be at least 1s",
		},
		{
			name: "station with slash",
			yaml: `
weather:
  station_id: KBOS/../x
`,
			wantErrLike: "invalid station_id",
		},
		{
			name: "base url scheme",
			yaml: `
weather:
  base_url: ftp://weather.example.com
`,
			wantErrLike: "base_url scheme must be http or https",
		},
		{
			name: "backoff initial too short",
			yaml: `
weather:
  backoff:
    initial: 10ms
`,
			wantErrLike: "backoff.initial must be at least 1s",
		},
		{
			name: "backoff shrinking multiplier",
			yaml: `
weather:
  backoff:
    multiplier: 0.5
`,
			wantErrLike: "backoff.multiplier must be at least 1",
		},
		{
			name: "backoff max below initial",
			yaml: `
weather:
  backoff:
    initial: 1m
    max: 30s
`,
			wantErrLike: "must not be below backoff.initial",
		},
		{
			name: "negative pulseaudio timeout",
			yaml: `
pulseaudio:
  timeout: -1s
`,
			wantErrLike: "pulseaudio: timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErrLike)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("weather: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v, want 'failed to parse YAML'", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "10s", 10 * time.Second, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"hours", "1h", 1 * time.Hour, false},
		{"combined", "1m30s", 90 * time.Second, false},
		{"bare integer", "45", 45 * time.Second, false},
		{"quoted integer", `"45s"`, 45 * time.Second, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := "bluetooth:\n  interval: " + tt.input + "\n"

			cfg, err := Parse([]byte(yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.Bluetooth.Interval.Duration() != tt.want {
				t.Errorf("Interval = %v, want %v", cfg.Bluetooth.Interval.Duration(), tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pista.yaml")
	if err := os.WriteFile(path, []byte("weather:\n  station_id: KBOS\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Weather.StationID != "KBOS" {
		t.Errorf("StationID = %q, want KBOS", cfg.Weather.StationID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/pista.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error = %v, want 'failed to read'", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
