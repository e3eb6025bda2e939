package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		enabled bool
	}{
		{"trace", LevelTrace, true},
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", LevelFatal, true},
		{"silent", slog.LevelInfo, false},
		{"", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, enabled := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.enabled, enabled)
		})
	}
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", "info")

	log.Info("hello", slog.String("op", "test"), Err(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "test", line["op"])
	assert.Equal(t, "boom", line["error"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", "warn")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "development", "trace")

	log.Log(context.Background(), LevelTrace, "deep")
	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestNew_Silent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "development", "silent")

	log.Error("nothing")
	assert.Zero(t, buf.Len())
}

func TestFromContext(t *testing.T) {
	fallback := slog.New(slog.DiscardHandler)
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
