package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestPrintf_LevelCap verifies the adapter logs at its level and honours WithLevel.
func TestPrintf_LevelCap(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	NewPrintf(ctx, zapcore.WarnLevel).Printf("broker %s lost", "tcp://localhost:1883")
	NewPrintf(ctx, zapcore.DebugLevel, WithLevel(zapcore.WarnLevel)).Println("ping", "sent")
	NewPrintf(ctx, zapcore.ErrorLevel, WithLevel(zapcore.WarnLevel)).Println("connect", "failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "broker tcp://localhost:1883 lost", entries[0].Message)
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(t, "connect failed", entries[1].Message)
}
