package security

import (
	"context"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

// Listener observes committed changes. Callbacks run after the engine has
// released its lock and must not call back into the engine.
type Listener interface {
	// AlarmStatusChanged is called when the alarm status actually changed.
	AlarmStatusChanged(ctx context.Context, status domain.AlarmStatus)
	// ArmingStatusChanged is called after every successful arming request.
	ArmingStatusChanged(ctx context.Context, status domain.ArmingStatus)
	// CatDetected is called with every image verdict.
	CatDetected(ctx context.Context, detected bool)
	// SensorsChanged is called with copies of all sensors after any sensor write.
	SensorsChanged(ctx context.Context, sensors []*domain.Sensor)
}

// NopListener implements Listener with no-ops; embed it to observe a subset.
type NopListener struct{}

// AlarmStatusChanged does nothing.
func (NopListener) AlarmStatusChanged(context.Context, domain.AlarmStatus) {}

// ArmingStatusChanged does nothing.
func (NopListener) ArmingStatusChanged(context.Context, domain.ArmingStatus) {}

// CatDetected does nothing.
func (NopListener) CatDetected(context.Context, bool) {}

// SensorsChanged does nothing.
func (NopListener) SensorsChanged(context.Context, []*domain.Sensor) {}

// notification collects what changed during one operation.
type notification struct {
	alarm   *domain.AlarmStatus
	arming  *domain.ArmingStatus
	cat     *bool
	sensors []*domain.Sensor
}

// dispatch delivers the notification to every listener.
func (n *notification) dispatch(ctx context.Context, listeners []Listener) {
	for _, l := range listeners {
		if n.arming != nil {
			l.ArmingStatusChanged(ctx, *n.arming)
		}

		if n.sensors != nil {
			l.SensorsChanged(ctx, domain.CloneSensors(n.sensors))
		}

		if n.cat != nil {
			l.CatDetected(ctx, *n.cat)
		}

		if n.alarm != nil {
			l.AlarmStatusChanged(ctx, *n.alarm)
		}
	}
}
