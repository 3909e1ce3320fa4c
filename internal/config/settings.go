package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Detector kinds accepted by Settings.Detector.
const (
	DetectorMock   = "mock"
	DetectorVision = "vision"
)

// Settings holds runtime configuration for scanning, serving and watching.
type Settings struct {
	// DefaultScaleCmPerPx is used when a scan request carries no scale
	// Default: 0.1, must be > 0
	DefaultScaleCmPerPx float64

	// MeasureTimeout bounds a single detection, including queueing
	// Default: 10s, Range: 1s-10m
	MeasureTimeout time.Duration

	// SimulatedDelay is the mock detector's processing time
	// Default: 2s, must be < MeasureTimeout when the mock detector is used
	SimulatedDelay time.Duration

	// MaxConcurrent caps in-flight detections
	// Default: 4, Range: 1-64
	MaxConcurrent int

	// Detector selects the measurement backend: "mock" or "vision"
	// Default: "mock"
	Detector string

	// VisionModel is the model name for the vision detector
	// Default: "" (detector's built-in default)
	VisionModel string

	// VisionRequestsPerMinute rate-limits vision calls, 0 = unlimited
	// Default: 30
	VisionRequestsPerMinute int

	// EventsURL selects the event sink: "", nats://..., amqp://...
	// Default: "" (events disabled)
	EventsURL string

	// EventsSubject is the NATS subject / AMQP queue for measurement events
	// Default: "babyscan.measurement.recorded"
	EventsSubject string

	// ListenAddr is the HTTP API address for `serve`
	// Default: ":8080"
	ListenAddr string

	// InboxPattern selects files the inbox watcher scans (doublestar syntax)
	// Default: "**/*.{jpg,jpeg,png}"
	InboxPattern string
}

// DefaultSettings returns the default configuration
func DefaultSettings() Settings {
	return Settings{
		DefaultScaleCmPerPx:     0.1,
		MeasureTimeout:          10 * time.Second,
		SimulatedDelay:          2 * time.Second,
		MaxConcurrent:           4,
		Detector:                DetectorMock,
		VisionRequestsPerMinute: 30,
		EventsSubject:           "babyscan.measurement.recorded",
		ListenAddr:              ":8080",
		InboxPattern:            "**/*.{jpg,jpeg,png}",
	}
}

// Validate checks if the configuration has valid values
func (s Settings) Validate() error {
	if !(s.DefaultScaleCmPerPx > 0) {
		return fmt.Errorf("default_scale_cm_per_px must be positive (got %v)", s.DefaultScaleCmPerPx)
	}

	if s.MeasureTimeout < time.Second || s.MeasureTimeout > 10*time.Minute {
		return fmt.Errorf("measure_timeout must be between 1s and 10m (got %s)", s.MeasureTimeout)
	}

	if s.SimulatedDelay < 0 {
		return fmt.Errorf("simulated_delay cannot be negative (got %s)", s.SimulatedDelay)
	}

	if s.MaxConcurrent < 1 || s.MaxConcurrent > 64 {
		return fmt.Errorf("max_concurrent must be between 1 and 64 (got %d)", s.MaxConcurrent)
	}

	switch s.Detector {
	case DetectorMock:
		if s.SimulatedDelay >= s.MeasureTimeout {
			return fmt.Errorf("simulated_delay (%s) must be shorter than measure_timeout (%s)",
				s.SimulatedDelay, s.MeasureTimeout)
		}
	case DetectorVision:
	default:
		return fmt.Errorf("detector must be %q or %q (got %q)", DetectorMock, DetectorVision, s.Detector)
	}

	if s.VisionRequestsPerMinute < 0 {
		return fmt.Errorf("vision_requests_per_minute cannot be negative (got %d)", s.VisionRequestsPerMinute)
	}

	if s.EventsURL != "" && s.EventsSubject == "" {
		return errors.New("events_subject is required when events_url is set")
	}

	if s.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}

	if !doublestar.ValidatePattern(s.InboxPattern) {
		return fmt.Errorf("inbox_pattern is not a valid glob: %q", s.InboxPattern)
	}

	return nil
}

// String returns a human-readable representation of the config
func (s Settings) String() string {
	events := s.EventsURL
	if events == "" {
		events = "disabled"
	}
	return fmt.Sprintf(
		"Settings{Scale: %gcm/px, Timeout: %s, Delay: %s, MaxConcurrent: %d, "+
			"Detector: %s, VisionRPM: %d, Events: %s, Listen: %s, Inbox: %s}",
		s.DefaultScaleCmPerPx, s.MeasureTimeout, s.SimulatedDelay, s.MaxConcurrent,
		s.Detector, s.VisionRequestsPerMinute, events, s.ListenAddr, s.InboxPattern,
	)
}

// fileSettings mirrors Settings for YAML. Durations are strings such as "2s".
type fileSettings struct {
	DefaultScaleCmPerPx     *float64 `yaml:"default_scale_cm_per_px,omitempty"`
	MeasureTimeout          string   `yaml:"measure_timeout,omitempty"`
	SimulatedDelay          string   `yaml:"simulated_delay,omitempty"`
	MaxConcurrent           *int     `yaml:"max_concurrent,omitempty"`
	Detector                string   `yaml:"detector,omitempty"`
	VisionModel             string   `yaml:"vision_model,omitempty"`
	VisionRequestsPerMinute *int     `yaml:"vision_requests_per_minute,omitempty"`
	EventsURL               string   `yaml:"events_url,omitempty"`
	EventsSubject           string   `yaml:"events_subject,omitempty"`
	ListenAddr              string   `yaml:"listen_addr,omitempty"`
	InboxPattern            string   `yaml:"inbox_pattern,omitempty"`
}

// apply overlays the fields present in the file onto s.
func (f *fileSettings) apply(s *Settings) error {
	if f.DefaultScaleCmPerPx != nil {
		s.DefaultScaleCmPerPx = *f.DefaultScaleCmPerPx
	}
	if f.MeasureTimeout != "" {
		d, err := time.ParseDuration(f.MeasureTimeout)
		if err != nil {
			return fmt.Errorf("invalid measure_timeout %q: %w", f.MeasureTimeout, err)
		}
		s.MeasureTimeout = d
	}
	if f.SimulatedDelay != "" {
		d, err := time.ParseDuration(f.SimulatedDelay)
		if err != nil {
			return fmt.Errorf("invalid simulated_delay %q: %w", f.SimulatedDelay, err)
		}
		s.SimulatedDelay = d
	}
	if f.MaxConcurrent != nil {
		s.MaxConcurrent = *f.MaxConcurrent
	}
	if f.VisionRequestsPerMinute != nil {
		s.VisionRequestsPerMinute = *f.VisionRequestsPerMinute
	}
	overlayString(&s.Detector, f.Detector)
	overlayString(&s.VisionModel, f.VisionModel)
	overlayString(&s.EventsURL, f.EventsURL)
	overlayString(&s.EventsSubject, f.EventsSubject)
	overlayString(&s.ListenAddr, f.ListenAddr)
	overlayString(&s.InboxPattern, f.InboxPattern)
	return nil
}

func overlayString(dest *string, value string) {
	if value != "" {
		*dest = value
	}
}

// LoadFile overlays a YAML settings file onto s. Keys absent from the file
// keep their current values. The result is not validated.
func LoadFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var f fileSettings
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return f.apply(s)
}

// Load builds Settings from defaults, then the optional YAML file at path,
// then BABYSCAN_* environment variables, and validates the result.
// An empty path or a missing file is not an error.
func Load(path string) (Settings, error) {
	s := DefaultSettings()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := LoadFile(path, &s); err != nil {
				return s, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := applyEnv(&s); err != nil {
		return s, err
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// SettingsFromEnv creates Settings from environment variables,
// falling back to defaults
//
// Environment variables:
//   - BABYSCAN_DEFAULT_SCALE: Default cm-per-pixel scale (default: 0.1)
//   - BABYSCAN_MEASURE_TIMEOUT: Per-detection timeout (default: 10s)
//   - BABYSCAN_SIMULATED_DELAY: Mock detector delay (default: 2s)
//   - BABYSCAN_MAX_CONCURRENT: Concurrent detections (default: 4)
//   - BABYSCAN_DETECTOR: "mock" or "vision" (default: mock)
//   - BABYSCAN_VISION_MODEL: Vision model name
//   - BABYSCAN_VISION_RPM: Vision requests per minute, 0 = unlimited (default: 30)
//   - BABYSCAN_EVENTS_URL: nats:// or amqp:// event sink (default: disabled)
//   - BABYSCAN_EVENTS_SUBJECT: Event subject/queue name
//   - BABYSCAN_LISTEN_ADDR: HTTP listen address (default: :8080)
//   - BABYSCAN_INBOX_PATTERN: Inbox glob (default: **/*.{jpg,jpeg,png})
//
// Returns an error if any environment variable has an invalid value.
func SettingsFromEnv() (Settings, error) {
	return Load("")
}

func applyEnv(s *Settings) error {
	if err := parseEnvFloat("BABYSCAN_DEFAULT_SCALE", &s.DefaultScaleCmPerPx); err != nil {
		return err
	}
	if err := parseEnvDuration("BABYSCAN_MEASURE_TIMEOUT", &s.MeasureTimeout); err != nil {
		return err
	}
	if err := parseEnvDuration("BABYSCAN_SIMULATED_DELAY", &s.SimulatedDelay); err != nil {
		return err
	}
	if err := parseEnvInt("BABYSCAN_MAX_CONCURRENT", &s.MaxConcurrent); err != nil {
		return err
	}
	if err := parseEnvString("BABYSCAN_DETECTOR", &s.Detector); err != nil {
		return err
	}
	if err := parseEnvString("BABYSCAN_VISION_MODEL", &s.VisionModel); err != nil {
		return err
	}
	if err := parseEnvInt("BABYSCAN_VISION_RPM", &s.VisionRequestsPerMinute); err != nil {
		return err
	}
	if err := parseEnvString("BABYSCAN_EVENTS_URL", &s.EventsURL); err != nil {
		return err
	}
	if err := parseEnvString("BABYSCAN_EVENTS_SUBJECT", &s.EventsSubject); err != nil {
		return err
	}
	if err := parseEnvString("BABYSCAN_LISTEN_ADDR", &s.ListenAddr); err != nil {
		return err
	}
	return parseEnvString("BABYSCAN_INBOX_PATTERN", &s.InboxPattern)
}
