package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupJSONWithRunID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup("debug", "json", &buf)
	ctx := WithRunID(context.Background(), "run-1")
	FromContext(ctx).Debug("hello", "words", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "run-1", entry["run_id"])
	require.EqualValues(t, 3, entry["words"])
}

func TestSetupFiltersByLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup("warn", "text", &buf)
	WithComponent(context.Background(), "test").Info("quiet")
	require.Zero(t, buf.Len())
	WithComponent(context.Background(), "test").Warn("loud")
	require.Contains(t, buf.String(), "component=test")
}

func TestWithComponentKeepsRunID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup("info", "json", &buf)
	WithComponent(WithRunID(context.Background(), "run-9"), "indexer").Info("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "run-9", entry["run_id"])
	require.Equal(t, "indexer", entry["component"])
}
