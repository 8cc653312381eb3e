package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/engine"
	"github.com/gogpu/compose/text"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, 1.0, c.ResolutionScale)
	assert.Equal(t, compose.DefaultTolerance, c.FlattenTolerance)
	assert.Equal(t, 4.0, c.MiterLimit)
	assert.Equal(t, 256, c.Text.CacheSize)
	assert.Equal(t, "go-regular", c.Text.DefaultFont)
	assert.Equal(t, 16.0, c.Text.DefaultSize)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "stdout", c.Sink.Kind)
	assert.NoError(t, c.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "compose.yaml", `
resolution_scale: 2
miter_limit: 10
canvas:
  width: 640
  height: 480
text:
  default_font: go-mono
log:
  level: debug
sink:
  kind: websocket
`)
	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.ResolutionScale)
	assert.Equal(t, 10.0, c.MiterLimit)
	assert.Equal(t, compose.DefaultTolerance, c.FlattenTolerance, "unset keys get defaults")
	assert.Equal(t, Canvas{Width: 640, Height: 480}, c.Canvas)
	assert.Equal(t, "go-mono", c.Text.DefaultFont)
	assert.Equal(t, "localhost:8080", c.Sink.Addr)

	level, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "compose.toml", `
flatten_tolerance = 0.1

[text]
cache_size = 32
default_size = 12

[sink]
kind = "websocket"
addr = ":9000"
`)
	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, c.FlattenTolerance)
	assert.Equal(t, 32, c.Text.CacheSize)
	assert.Equal(t, 12.0, c.Text.DefaultSize)
	assert.Equal(t, ":9000", c.Sink.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFile(write(t, "compose.json", `{}`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(write(t, "bad.yaml", "miter_limit: [1"))
	assert.Error(t, err)

	_, err = LoadFile(write(t, "bad.toml", "unknown_key = 1"))
	assert.Error(t, err, "unknown TOML keys are rejected")

	_, err = LoadFile(write(t, "low.yaml", "miter_limit: 0.5"))
	assert.ErrorContains(t, err, "miter_limit")

	_, err = LoadFile(write(t, "level.yaml", "log: {level: loud}"))
	assert.ErrorContains(t, err, "log level")

	_, err = LoadFile(write(t, "sink.yaml", "sink: {kind: kafka}"))
	assert.ErrorContains(t, err, "kafka")
}

func TestEngineOptions(t *testing.T) {
	c := Default()
	c.Canvas = Canvas{Width: 10, Height: 20}
	opts, err := c.EngineOptions()
	require.NoError(t, err)

	e := engine.New(opts...)
	_, err = e.Update(context.Background())
	require.NoError(t, err)
	assert.Contains(t, e.ToSVGString(), `viewBox="0 0 10 20"`)

	c.Text.DefaultFont = "comic-sans"
	_, err = c.EngineOptions()
	assert.ErrorIs(t, err, text.ErrUnknownFont)
}
