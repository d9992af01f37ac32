package security

import domain "github.com/oshokin/home-security/internal/domain/security"

// sensorChange describes one activation change request.
type sensorChange struct {
	// alarm is the alarm status before the change.
	alarm domain.AlarmStatus
	// arming is the arming status before the change.
	arming domain.ArmingStatus
	// wasActive is the sensor flag before the change.
	wasActive bool
	// active is the requested flag.
	active bool
	// othersActive reports whether any other sensor is active.
	othersActive bool
}

// next returns the alarm status after the sensor change.
func (c sensorChange) next() domain.AlarmStatus {
	if c.wasActive == c.active || !c.arming.IsArmed() {
		return c.alarm
	}

	if c.active {
		switch c.alarm {
		case domain.NoAlarm:
			return domain.PendingAlarm
		case domain.PendingAlarm:
			return domain.Alarm
		default:
			return c.alarm
		}
	}

	if c.alarm == domain.PendingAlarm && !c.othersActive {
		return domain.NoAlarm
	}

	return c.alarm
}

// imageVerdict describes one processed camera frame.
type imageVerdict struct {
	// alarm is the alarm status before the verdict.
	alarm domain.AlarmStatus
	// arming is the current arming status.
	arming domain.ArmingStatus
	// cat reports whether the frame shows a cat.
	cat bool
	// anySensorActive reports whether any sensor is active.
	anySensorActive bool
}

// next returns the alarm status after the verdict.
func (v imageVerdict) next() domain.AlarmStatus {
	switch {
	case v.cat && v.arming == domain.ArmedHome:
		return domain.Alarm
	case !v.cat && !v.anySensorActive:
		return domain.NoAlarm
	default:
		return v.alarm
	}
}
