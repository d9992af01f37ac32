package security

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

var errTestPersist = errors.New("test persist error")

// TestFileRepository_MissingFile verifies a missing file yields an empty state.
func TestFileRepository_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.json")
	repo, err := NewFileRepository(path)
	require.NoError(t, err)
	require.Equal(t, path, repo.Path())

	sensors, err := repo.GetSensors(context.Background())
	require.NoError(t, err)
	require.Empty(t, sensors)

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_ReopenRoundtrip ensures a second repository on the same file sees the state.
func TestFileRepository_ReopenRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	repo, err := NewFileRepository(path)
	require.NoError(t, err)

	window := domain.NewSensor("Kitchen window", domain.SensorWindow)
	window.Active = true

	require.NoError(t, repo.AddSensor(ctx, window))
	require.NoError(t, repo.SetArmingStatus(ctx, domain.ArmedHome))
	require.NoError(t, repo.SetAlarmStatus(ctx, domain.Alarm))

	reopened, err := NewFileRepository(path)
	require.NoError(t, err)

	sensors, err := reopened.GetSensors(ctx)
	require.NoError(t, err)
	require.Equal(t, []*domain.Sensor{window}, sensors)

	alarm, err := reopened.GetAlarmStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Alarm, alarm)

	arming, err := reopened.GetArmingStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.ArmedHome, arming)
}

// TestFileRepository_CorruptFile returns a decode error instead of an empty state.
func TestFileRepository_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo, err := NewFileRepository(path)
	require.Error(t, err)
	require.Nil(t, repo)
}

// TestMemoryRepository_FailedPersistKeepsState checks that a rejected write is not committed.
func TestMemoryRepository_FailedPersistKeepsState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.persist = func(context.Context, *snapshot) error { return errTestPersist }

	err := repo.SetAlarmStatus(ctx, domain.Alarm)
	require.ErrorIs(t, err, errTestPersist)

	alarm, err := repo.GetAlarmStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.NoAlarm, alarm)

	require.ErrorIs(t, repo.AddSensor(ctx, domain.NewSensor("Door", domain.SensorDoor)), errTestPersist)

	sensors, err := repo.GetSensors(ctx)
	require.NoError(t, err)
	require.Empty(t, sensors)
}
