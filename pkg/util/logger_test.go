package util

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slogctx "github.com/veqryn/slog-context"
)

func TestNewLogger_JSONCarriesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LevelWarn, Format: FormatJSON, Output: &buf})

	ctx := WithLogger(context.Background(), logger)
	ctx = slogctx.With(ctx, "library", "sap.m")

	LoggerFrom(ctx).Info("dropped below level")
	LoggerFrom(ctx).Warn("AUTOFIXING", "fqn", "sap.m.Button#foo")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "AUTOFIXING", record["msg"])
	assert.Equal(t, "sap.m", record["library"])
	assert.Equal(t, "sap.m.Button#foo", record["fqn"])
}

func TestNewLogger_PrettyDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LevelDebug, Output: &buf})

	logger.Debug("loading api.json", "path", "sap/m/designtime/api.json")
	assert.Contains(t, buf.String(), "loading api.json")
	assert.Contains(t, buf.String(), "sap/m/designtime/api.json")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(LevelDebug))
	assert.Equal(t, slog.LevelWarn, ParseLevel(LevelWarn))
	assert.Equal(t, slog.LevelError, ParseLevel(LevelError))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestLoggerFrom_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, LoggerFrom(context.Background()))
}

func TestGetOptimalPoolSize(t *testing.T) {
	size := GetOptimalPoolSize()
	assert.GreaterOrEqual(t, size, 4)
	assert.LessOrEqual(t, size, 32)
	assert.Equal(t, 7, GetOptimalPoolSizeWithOverride(7))
	assert.Equal(t, size, GetOptimalPoolSizeWithOverride(0))
}
