package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all beacon configuration.
type Config struct {
	Enabled bool        `yaml:"enabled"`
	Sink    SinkConfig  `yaml:"sink"`
	Event   EventConfig `yaml:"event"`
	Log     LogConfig   `yaml:"log"`
}

// SinkConfig selects and configures the analytics sink.
type SinkConfig struct {
	Name    string            `yaml:"name"`   // "stdout", "jsonl", "webhook"
	Target  string            `yaml:"target"` // file path or URL, sink-specific
	Headers map[string]string `yaml:"headers,omitempty"`
	Async   bool              `yaml:"async"` // deliver via a background goroutine
}

// EventConfig holds the event-kind registration parameters.
type EventConfig struct {
	Name        string `yaml:"name"`
	MaxPerHour  int    `yaml:"max_per_hour"`
	MaxElements int    `yaml:"max_elements"`
	VendorKey   string `yaml:"vendor_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

func defaults() Config {
	return Config{
		Enabled: true,
		Sink: SinkConfig{
			Name: "stdout",
		},
		Event: EventConfig{
			Name:        "beacon.inference_model_set",
			MaxPerHour:  1000,
			MaxElements: 1000,
			VendorKey:   "crimson-sun.beacon",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return applyEnv(defaults())
}

// LoadFile reads a YAML config file over the defaults. Environment
// variables still win over file values.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

// Validate checks the configuration for inconsistencies. All problems are
// reported together.
func (c Config) Validate() error {
	var errs []error

	switch c.Sink.Name {
	case "stdout":
	case "jsonl", "webhook":
		if c.Sink.Target == "" {
			errs = append(errs, fmt.Errorf("config: sink %q requires BEACON_SINK_TARGET", c.Sink.Name))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown sink %q", c.Sink.Name))
	}

	if c.Event.Name == "" {
		errs = append(errs, fmt.Errorf("config: event name must not be empty"))
	}
	if c.Event.MaxPerHour < 0 {
		errs = append(errs, fmt.Errorf("config: max events per hour must be >= 0, got %d", c.Event.MaxPerHour))
	}
	if c.Event.MaxElements < 0 {
		errs = append(errs, fmt.Errorf("config: max elements must be >= 0, got %d", c.Event.MaxElements))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// applyEnv overlays BEACON_* environment variables onto cfg.
func applyEnv(cfg Config) Config {
	cfg.Enabled = getenvBool("BEACON_ENABLED", cfg.Enabled)
	cfg.Sink.Name = getenv("BEACON_SINK", cfg.Sink.Name)
	cfg.Sink.Target = getenv("BEACON_SINK_TARGET", cfg.Sink.Target)
	cfg.Sink.Async = getenvBool("BEACON_SINK_ASYNC", cfg.Sink.Async)
	cfg.Event.Name = getenv("BEACON_EVENT_NAME", cfg.Event.Name)
	cfg.Event.MaxPerHour = getenvInt("BEACON_MAX_EVENTS_PER_HOUR", cfg.Event.MaxPerHour)
	cfg.Event.MaxElements = getenvInt("BEACON_MAX_ELEMENTS", cfg.Event.MaxElements)
	cfg.Event.VendorKey = getenv("BEACON_VENDOR_KEY", cfg.Event.VendorKey)
	cfg.Log.Level = getenv("BEACON_LOG_LEVEL", cfg.Log.Level)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
