// Package config loads engine settings from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/engine"
	"github.com/gogpu/compose/text"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor
// TOML.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Config is the top-level configuration.
type Config struct {
	ResolutionScale  float64 `yaml:"resolution_scale" toml:"resolution_scale"`
	FlattenTolerance float64 `yaml:"flatten_tolerance" toml:"flatten_tolerance"`
	MiterLimit       float64 `yaml:"miter_limit" toml:"miter_limit"`
	Canvas           Canvas  `yaml:"canvas" toml:"canvas"`
	Text             Text    `yaml:"text" toml:"text"`
	Log              Log     `yaml:"log" toml:"log"`
	Sink             Sink    `yaml:"sink" toml:"sink"`
}

// Canvas sizes the root svg element. A zero canvas leaves it unsized.
type Canvas struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// Text configures the text layouter.
type Text struct {
	CacheSize   int     `yaml:"cache_size" toml:"cache_size"`
	DefaultFont string  `yaml:"default_font" toml:"default_font"`
	DefaultSize float64 `yaml:"default_size" toml:"default_size"`
}

// Log configures the package logger.
type Log struct {
	Level string `yaml:"level" toml:"level"` // debug | info | warn | error
}

// Sink selects where batches go.
type Sink struct {
	Kind string `yaml:"kind" toml:"kind"` // stdout | websocket
	Addr string `yaml:"addr" toml:"addr"` // websocket listen address
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadFile reads a configuration file. The format is chosen by
// extension: .yaml, .yml or .toml.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ResolutionScale <= 0 {
		c.ResolutionScale = 1
	}
	if c.FlattenTolerance <= 0 {
		c.FlattenTolerance = compose.DefaultTolerance
	}
	if c.MiterLimit <= 0 {
		c.MiterLimit = 4
	}
	if c.Text.CacheSize <= 0 {
		c.Text.CacheSize = 256
	}
	if c.Text.DefaultFont == "" {
		c.Text.DefaultFont = "go-regular"
	}
	if c.Text.DefaultSize <= 0 {
		c.Text.DefaultSize = 16
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Sink.Kind == "" {
		c.Sink.Kind = "stdout"
	}
	if c.Sink.Kind == "websocket" && c.Sink.Addr == "" {
		c.Sink.Addr = "localhost:8080"
	}
}

// Validate reports settings that defaults cannot repair.
func (c *Config) Validate() error {
	if c.MiterLimit < 1 {
		return fmt.Errorf("config: miter_limit %v is below 1", c.MiterLimit)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Sink.Kind {
	case "stdout", "websocket":
	default:
		return fmt.Errorf("config: unknown sink kind %q", c.Sink.Kind)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}

// EngineOptions converts the configuration into engine options. The text
// layouter uses the built-in font book, which must contain the default
// font.
func (c *Config) EngineOptions() ([]engine.Option, error) {
	book, err := text.DefaultFontBook()
	if err != nil {
		return nil, err
	}
	if _, err := book.Lookup(c.Text.DefaultFont); err != nil {
		return nil, fmt.Errorf("config: text.default_font: %w", err)
	}
	layouter := text.New(book,
		text.WithDefaultFont(c.Text.DefaultFont),
		text.WithDefaultSize(c.Text.DefaultSize),
		text.WithCacheSize(c.Text.CacheSize),
	)
	opts := []engine.Option{
		engine.WithResolutionScale(c.ResolutionScale),
		engine.WithFlattenTolerance(c.FlattenTolerance),
		engine.WithMiterLimit(c.MiterLimit),
		engine.WithTextLayouter(layouter),
	}
	if c.Canvas.Width > 0 && c.Canvas.Height > 0 {
		opts = append(opts, engine.WithCanvas(compose.Sz(c.Canvas.Width, c.Canvas.Height)))
	}
	return opts, nil
}
