package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/logger"
)

// TestNewGormLogger checks GORM output lands in the context logger at warn level.
func TestNewGormLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	l := newGormLogger(ctx)
	l.Info(ctx, "connected to %s", "sqlite")
	l.Warn(ctx, "slow migration of %s", "sensors")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "gorm", entries[0].LoggerName)
	require.Contains(t, entries[0].Message, "slow migration of sensors")
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, closeFn, err := Open(context.Background(), config.Storage{Driver: "etcd"})
	require.Error(t, err)
	require.NotNil(t, closeFn)
	require.NoError(t, closeFn())
}
