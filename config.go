package canopy

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a Context is created with. The zero value is
// usable; DefaultConfig fills in the recommended limits.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`

	// Debug prints per-cycle stats and warnings to stderr.
	Debug bool `yaml:"debug"`

	// StyleSheets are loaded in order by NewFromConfig.
	StyleSheets []string `yaml:"stylesheets"`

	// MaxEventsPerCycle bounds how many queued events one cycle delivers.
	// Zero or less drains the queue completely.
	MaxEventsPerCycle int `yaml:"max_events_per_cycle"`

	// TabNavigation moves focus on unconsumed Tab / Shift+Tab key presses.
	TabNavigation bool `yaml:"tab_navigation"`

	// KeyframeDuration is the duration of animations registered from
	// @keyframes blocks.
	KeyframeDuration Duration `yaml:"keyframe_duration"`

	// TracerName names the OpenTelemetry tracer used for cycle spans.
	TracerName string `yaml:"tracer_name"`
}

// ViewportConfig is the initial window size.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		MaxEventsPerCycle: 10000,
		TabNavigation:     true,
		KeyframeDuration:  Duration(defaultKeyframeDuration),
		TracerName:        defaultTracerName,
	}
}

// ParseConfig decodes YAML on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("canopy: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a YAML config file. Relative stylesheet
// paths are kept as written.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("canopy: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports settings that cannot be applied.
func (c Config) Validate() error {
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("canopy: negative viewport %gx%g", c.Viewport.Width, c.Viewport.Height)
	}
	if c.KeyframeDuration < 0 {
		return fmt.Errorf("canopy: negative keyframe_duration %v", c.KeyframeDuration)
	}
	return nil
}

// Duration is a time.Duration written as "250ms" or "1.5s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

func (d Duration) String() string { return time.Duration(d).String() }
