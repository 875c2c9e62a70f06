package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, "warn", FormatJSON)
	logger.Info("dropped")
	logger.Warn("kept", "automation_id", "aut_001")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "aut_001", entry["automation_id"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, "debug", FormatText).Debug("hello", "module", "trigger")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "module=trigger")
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer

	fallback := New(&buf, "info", FormatText)
	assert.Same(t, slog.Default(), FromContext(context.Background(), nil))
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	logger := fallback.With("execution_id", "exe_001")
	ctx := WithContext(t.Context(), logger)

	assert.Same(t, logger, FromContext(ctx, fallback))
}
