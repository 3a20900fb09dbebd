package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"product-filter-service/internal/core/port"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"use_case": "FilterProducts"}).
		Error("Catalog query failed", errors.New("timeout"), port.Fields{"page": 2})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Catalog query failed", record["msg"])
	assert.Equal(t, "FilterProducts", record["use_case"])
	assert.Equal(t, float64(2), record["page"])
	assert.Equal(t, "timeout", record["error"])
}

func TestSlogAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	logger.Info("hidden", nil)
	logger.Debug("hidden", nil)
	logger.Warn("shown", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 1, strings.Count(out, "shown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

type recordingPoster struct {
	tags     []string
	messages []map[string]interface{}
	closed   bool
}

func (r *recordingPoster) Post(tag string, message interface{}) error {
	r.tags = append(r.tags, tag)
	r.messages = append(r.messages, message.(port.Fields))
	return nil
}

func (r *recordingPoster) Close() error {
	r.closed = true
	return nil
}

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &recordingPoster{}
	adapter := newFluentLoggerAdapter(poster, slog.LevelInfo)
	adapter.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	logger := adapter.WithFields(port.Fields{"service": "product-filter-service"})
	logger.Debug("dropped", nil)
	logger.Info("Price range recomputed", port.Fields{"min": 1.5})
	logger.Error("Catalog query failed", errors.New("timeout"), nil)

	require.Equal(t, []string{"info", "error"}, poster.tags)
	assert.Equal(t, "product-filter-service", poster.messages[0]["service"])
	assert.Equal(t, 1.5, poster.messages[0]["min"])
	assert.Equal(t, "2024-05-01T10:00:00Z", poster.messages[0]["timestamp"])
	assert.Equal(t, "timeout", poster.messages[1]["error"])

	require.NoError(t, adapter.Close())
	assert.True(t, poster.closed)
}

func TestMultilogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	assert.Error(t, err)

	var a, b bytes.Buffer
	single, err := NewMultiloggerAdapter(NewSlogAdapter(SlogConfig{Writer: &a}), nil)
	require.NoError(t, err)
	assert.IsType(t, &SlogAdapter{}, single)

	multi, err := NewMultiloggerAdapter(NewSlogAdapter(SlogConfig{Writer: &a}), NewSlogAdapter(SlogConfig{Writer: &b}))
	require.NoError(t, err)
	multi.WithFields(port.Fields{"trace_id": "abc"}).Info("hello", nil)

	assert.Contains(t, a.String(), "trace_id=abc")
	assert.Contains(t, b.String(), "trace_id=abc")
}
