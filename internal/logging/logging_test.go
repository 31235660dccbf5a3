package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insighthub/internal/config"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("project saved", slog.String("id", "p1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "project saved", line["msg"])
	assert.Equal(t, "p1", line["id"])
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, _, err := New(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, _, err = NewLogrus(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Debug("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestNewLogrus(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogrus(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.WithField("op", "create task").Warn("persistence failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "persistence failed", line["msg"])
	assert.Equal(t, "create task", line["op"])
	assert.Equal(t, "warning", line["level"])
}
