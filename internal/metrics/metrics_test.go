package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

func TestCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := New(reg)
	ctx := context.Background()

	door := domain.NewSensor("Door", domain.SensorDoor)
	door.Active = true
	window := domain.NewSensor("Window", domain.SensorWindow)

	c.Init(ctx, domain.PendingAlarm, domain.ArmedAway, []*domain.Sensor{door, window})

	require.InDelta(t, 1, testutil.ToFloat64(c.alarmStatus), 0)
	require.InDelta(t, 2, testutil.ToFloat64(c.armingStatus), 0)
	require.Equal(t, 2, testutil.CollectAndCount(c.sensorActive))
	require.InDelta(t, 1, testutil.ToFloat64(c.sensorActive.WithLabelValues(door.ID.String(), "Door", "DOOR")), 0)

	c.AlarmStatusChanged(ctx, domain.Alarm)
	require.InDelta(t, 2, testutil.ToFloat64(c.alarmStatus), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.alarmTransitions.WithLabelValues("ALARM")), 0)

	c.CatDetected(ctx, true)
	c.CatDetected(ctx, false)
	require.InDelta(t, 0, testutil.ToFloat64(c.catDetected), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.images.WithLabelValues("true")), 0)

	// Removing a sensor drops its series.
	c.SensorsChanged(ctx, []*domain.Sensor{window})
	require.Equal(t, 1, testutil.CollectAndCount(c.sensorActive))

	c.ArmingStatusChanged(ctx, domain.Disarmed)
	require.InDelta(t, 0, testutil.ToFloat64(c.armingStatus), 0)
}
