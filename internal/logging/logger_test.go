package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf}), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogLevelString(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	level, err = ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, nil, "warn")
	logger.Error(ctx, errors.New("boom"), "error")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["msg"])
	assert.Equal(t, "error", entries[1]["msg"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestWithFieldsAndComponent(t *testing.T) {
	base, buf := newBufferLogger(LevelDebug)

	logger := base.With("view", "home", "dangling").WithComponent("renderer")
	logger.Info(context.Background(), "rendered", "bytes", 12)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "renderer", entries[0]["component"])
	assert.Equal(t, "home", entries[0]["view"])
	assert.Equal(t, float64(12), entries[0]["bytes"])
	assert.NotContains(t, entries[0], "dangling")
}

func TestWithDoesNotMutateParent(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo)

	_ = base.With("request", "abc")
	base.Info(context.Background(), "plain")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "request")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUILL_LOG_LEVEL", "error")
	t.Setenv("QUILL_LOG_FORMAT", "JSON")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, LevelError, cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	t.Setenv("QUILL_LOG_LEVEL", "chatty")
	_, err = ConfigFromEnv()
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error(context.Background(), errors.New("x"), "dropped")
	})
}
