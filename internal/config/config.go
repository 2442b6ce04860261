// Package config loads and watches the TOML configuration file.
//
// Loading is forgiving about absence and strict about content: a missing
// file yields the defaults, while a file that parses but fails validation
// is rejected as a whole rather than applied piecemeal.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	Layout  LayoutConfig  `toml:"layout"`
	Sync    SyncConfig    `toml:"sync"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

// LayoutConfig controls layout reconstruction and the preview surface.
type LayoutConfig struct {
	// LineHeight is the fallback height for lines without their own.
	LineHeight float64 `toml:"line_height"`

	// DefaultFontSize seeds the base style of the span cascade.
	DefaultFontSize int `toml:"default_font_size"`

	// Width is the layout width requested from the engine.
	Width float64 `toml:"width"`
}

// SyncConfig controls edit computation.
type SyncConfig struct {
	// DetectReplacements enables same-length replacement detection, which
	// turns an otherwise invisible change into a delete+insert pair.
	DetectReplacements bool `toml:"detect_replacements"`
}

// EngineConfig controls the engine connection.
type EngineConfig struct {
	// RequestTimeoutMS bounds each engine request. Zero disables the bound.
	RequestTimeoutMS int `toml:"request_timeout_ms"`
}

// RequestTimeout returns the request timeout as a duration.
func (e EngineConfig) RequestTimeout() time.Duration {
	return time.Duration(e.RequestTimeoutMS) * time.Millisecond
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			LineHeight:      16,
			DefaultFontSize: 14,
			Width:           800,
		},
		Sync: SyncConfig{
			DetectReplacements: false,
		},
		Engine: EngineConfig{
			RequestTimeoutMS: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration at path over the defaults. A missing file is
// not an error; a file that fails to parse or validate is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field against its allowed range.
func (c Config) Validate() error {
	if c.Layout.LineHeight <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidLineHeight, c.Layout.LineHeight)
	}
	if c.Layout.DefaultFontSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFontSize, c.Layout.DefaultFontSize)
	}
	if c.Layout.Width <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidWidth, c.Layout.Width)
	}
	if c.Engine.RequestTimeoutMS < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTimeout, c.Engine.RequestTimeoutMS)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	return nil
}
