package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContext_FallsBackToGlobal ensures an empty context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithKV_AddsFields verifies that fields attached to the context reach the output.
func TestWithKV_AddsFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "engine")
	ctx = WithKV(ctx, "sensor_id", "abc")

	InfoKV(ctx, "Sensor changed", "active", true)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "engine", entries[0].LoggerName)
	require.Equal(t, "Sensor changed", entries[0].Message)
	require.Equal(t, "abc", entries[0].ContextMap()["sensor_id"])
	require.Equal(t, true, entries[0].ContextMap()["active"])
}
