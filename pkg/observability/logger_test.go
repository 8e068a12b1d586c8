package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("guild_id", "G1").Info("permission check")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "permission check", entry["msg"])
	assert.Equal(t, "G1", entry["guild_id"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Debug("hidden")
	logger.Info("also hidden")
	assert.Empty(t, buf.String())

	logger.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLogLevel("ERROR"))
	assert.Equal(t, InfoLevel, ParseLogLevel("bogus"))
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(nil).Info("no error field")
	assert.NotContains(t, buf.String(), "error")

	buf.Reset()
	logger.WithError(assert.AnError).Error("boom")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithGuildID(ctx, "G1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "G1", GetGuildID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))

	logger := NewLogger(InfoLevel, nil)
	ctx = WithLogger(ctx, logger)
	assert.Same(t, logger, LoggerFromContext(ctx))
	assert.NotNil(t, LoggerFromContext(context.Background()))
}
