package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/lseinc/vagrant/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoggingConfig(level, format string) config.LoggingConfig {
	return config.LoggingConfig{Level: level, Format: format}
}

func TestNewLoggerWithWriter_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLoggerWithWriter(testLoggingConfig("info", "json"), &buf)
		log.Info("hello", slog.String("key", "value"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLoggerWithWriter(testLoggingConfig("info", "text"), &buf)
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}

func TestNewLoggerWithWriter_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(testLoggingConfig("info", "json"), &buf)

	type credentials struct {
		User     string
		Password string
	}
	log.Info("connecting", slog.Any("credentials", credentials{User: "admin", Password: "hunter2"}))

	out := buf.String()
	assert.Contains(t, out, "admin")
	assert.NotContains(t, out, "hunter2")
}

func TestNewLoggerWithWriter_RedactsURLParams(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(testLoggingConfig("info", "json"), &buf)
	log.Info("fetch", slog.String("url", "http://example.com/api?user=a&token=supersecret"))

	out := buf.String()
	assert.NotContains(t, out, "supersecret")
	assert.Contains(t, out, "[REDACTED]")
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(testLoggingConfig("warn", "text"), &buf)

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")

	SetLogLevel("trace")
	assert.Equal(t, "trace", GetLogLevel())
	assert.True(t, Trace())

	SetLogLevel("info")
	assert.Equal(t, "info", GetLogLevel())
	assert.False(t, Trace())
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(testLoggingConfig("info", "json"), &buf)

	WithComponent(log, "basis").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "basis", entry["component"])
}

func TestContextLogger(t *testing.T) {
	log := slog.Default()
	ctx := ContextWithLogger(context.Background(), log)
	assert.Same(t, log, LoggerFromContext(ctx))
	assert.NotNil(t, LoggerFromContext(context.Background()))
}
