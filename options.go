// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunables of a Manager.
type Config struct {
	// CrossSlide enables cross-slide viewports, which let elements with
	// partial axis manipulation modes or drag sources arbitrate touch
	// gestures with ancestor viewports.
	CrossSlide bool `toml:"cross_slide"`
	// CompositorAware enables viewport declarations to the compositor.
	CompositorAware bool `toml:"compositor_aware"`
	// Chaining enables the suppression of parent transitions while a
	// chained child viewport is manipulated.
	Chaining bool `toml:"chaining"`
	// TraceLevel is the logger verbosity of status traces.
	TraceLevel int `toml:"trace_level"`
}

// Option configures a Manager.
type Option func(m *Manager)

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		CrossSlide:      true,
		CompositorAware: true,
		Chaining:        true,
		TraceLevel:      1,
	}
}

// LoadConfig reads a TOML configuration. Keys not present keep their
// default values; unknown keys are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("manip: load config: %w", err)
	}
	if cfg.TraceLevel < 0 {
		return Config{}, fmt.Errorf("manip: load config: negative trace_level %d", cfg.TraceLevel)
	}
	return cfg, nil
}

// WithLogger sets the logger. Status traces are logged at the
// configured TraceLevel.
func WithLogger(l logr.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithCompositor sets the compositor viewports are declared to.
func WithCompositor(c Compositor) Option {
	return func(m *Manager) {
		m.compositor = c
	}
}

// WithScheduler sets the frame scheduler.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) {
		m.scheduler = s
	}
}

func WithConfig(c Config) Option {
	return func(m *Manager) {
		m.cfg = c
	}
}
