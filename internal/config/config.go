// Package config loads unfold settings from TOML files.
//
// A missing file is not an error: Load returns the defaults. Unknown keys
// are rejected so that typos surface instead of being ignored.
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[markers]
//	invalidate = "overlap"   # never | surround | overlap | inside
//
//	[document]
//	retain = false           # keep expanded text when a document closes
//	write_on_close = false
//	tab_width = 4
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/unfold/internal/engine/marker"
	"github.com/dshills/unfold/internal/logging"
)

// DefaultFileName is the settings file looked up in a project root.
const DefaultFileName = ".unfold.toml"

// Config holds all settings.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Markers  MarkerConfig   `toml:"markers"`
	Document DocumentConfig `toml:"document"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// MarkerConfig configures expansion markers.
type MarkerConfig struct {
	Invalidate string `toml:"invalidate"`
}

// DocumentConfig configures open documents.
type DocumentConfig struct {
	// Retain keeps expanded text in the document when it is closed.
	// When false, every expansion is undone on close.
	Retain bool `toml:"retain"`
	// WriteOnClose writes the document back to disk when it is closed.
	WriteOnClose bool `toml:"write_on_close"`
	// TabWidth is the tab width of new buffers.
	TabWidth int `toml:"tab_width"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info"},
		Markers:  MarkerConfig{Invalidate: marker.InvalidateOverlap.String()},
		Document: DocumentConfig{TabWidth: 4},
	}
}

// Load reads configuration from path, layered over the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data, layered over the defaults, and validates it.
// The source names the data in errors.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

// Validate checks that every setting holds an allowed value.
func (c *Config) Validate() error {
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: log.level %q", ErrValidationFailed, c.Log.Level)
	}
	if _, err := marker.ParseInvalidation(c.Markers.Invalidate); err != nil {
		return fmt.Errorf("%w: markers.invalidate: %v", ErrValidationFailed, err)
	}
	if c.Document.TabWidth <= 0 {
		return fmt.Errorf("%w: document.tab_width must be positive, got %d", ErrValidationFailed, c.Document.TabWidth)
	}
	return nil
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// Invalidation returns the configured marker invalidation strategy.
func (c *Config) Invalidation() marker.Invalidation {
	inv, _ := marker.ParseInvalidation(c.Markers.Invalidate)
	return inv
}
