package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for animation timing. Step duration is the travel time per
// column traversed; the fallback timeout bounds how long the move overlay
// can stay up when the database call never resolves.
const (
	DefaultStepDurationMS    = 800
	DefaultFallbackTimeoutMS = 15000
	DefaultFrameIntervalMS   = 50
)

// Config is the root configuration for a deck board.
type Config struct {
	Version   int       `yaml:"version"`
	Database  Database  `yaml:"database"`
	Animation Animation `yaml:"animation"`
	Log       Log       `yaml:"log"`
}

// Database holds persistence settings.
type Database struct {
	Path string `yaml:"path"` // SQLite file, relative to the deck dir
}

// Animation holds move-animation timing, all in milliseconds.
type Animation struct {
	StepDurationMS    int `yaml:"step_duration_ms"`    // per column traversed
	FallbackTimeoutMS int `yaml:"fallback_timeout_ms"` // overlay ceiling
	FrameIntervalMS   int `yaml:"frame_interval_ms"`   // TUI tick rate
}

// Log holds logging settings. The TUI owns the terminal, so dispatch
// failures go to a file.
type Log struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"` // debug, info, warn, error
}

// StepDuration returns the per-column travel time.
func (a Animation) StepDuration() time.Duration {
	return time.Duration(a.StepDurationMS) * time.Millisecond
}

// FallbackTimeout returns the overlay ceiling.
func (a Animation) FallbackTimeout() time.Duration {
	return time.Duration(a.FallbackTimeoutMS) * time.Millisecond
}

// FrameInterval returns the TUI animation tick rate.
func (a Animation) FrameInterval() time.Duration {
	return time.Duration(a.FrameIntervalMS) * time.Millisecond
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the starter configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Database: Database{Path: "deck.db"},
		Animation: Animation{
			StepDurationMS:    DefaultStepDurationMS,
			FallbackTimeoutMS: DefaultFallbackTimeoutMS,
			FrameIntervalMS:   DefaultFrameIntervalMS,
		},
		Log: Log{Path: "deck.log", Level: "warn"},
	}
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Animation.StepDurationMS < 0 {
		return fmt.Errorf("animation.step_duration_ms must not be negative")
	}
	if c.Animation.FallbackTimeoutMS < 0 {
		return fmt.Errorf("animation.fallback_timeout_ms must not be negative")
	}
	if c.Animation.FrameIntervalMS < 0 {
		return fmt.Errorf("animation.frame_interval_ms must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	// Missing timing values fall back to defaults rather than freezing
	// the animation.
	if c.Animation.StepDurationMS == 0 {
		c.Animation.StepDurationMS = DefaultStepDurationMS
	}
	if c.Animation.FallbackTimeoutMS == 0 {
		c.Animation.FallbackTimeoutMS = DefaultFallbackTimeoutMS
	}
	if c.Animation.FrameIntervalMS == 0 {
		c.Animation.FrameIntervalMS = DefaultFrameIntervalMS
	}
	return nil
}
