package security

import (
	"context"
	"errors"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

// Repository defines persistence operations for sensors and status values.
type Repository interface {
	IsAnySensorActive(ctx context.Context) (bool, error)
	AddSensor(ctx context.Context, sensor *domain.Sensor) error
	RemoveSensor(ctx context.Context, sensor *domain.Sensor) error
	// UpdateSensor stores the sensor, adding it when it is not known yet.
	UpdateSensor(ctx context.Context, sensor *domain.Sensor) error
	SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error
	SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error
	// GetSensors returns copies of all sensors sorted by name, type and ID.
	GetSensors(ctx context.Context) ([]*domain.Sensor, error)
	GetAlarmStatus(ctx context.Context) (domain.AlarmStatus, error)
	GetArmingStatus(ctx context.Context) (domain.ArmingStatus, error)
}

var (
	// ErrSensorRequired is returned when a nil sensor is passed to a write.
	ErrSensorRequired = errors.New("sensor is required")
	// ErrInvalidStatus is returned when a status value outside the known set is written.
	ErrInvalidStatus = errors.New("invalid status")
)

// validateSensor rejects sensors that could not be read back once stored.
func validateSensor(sensor *domain.Sensor) error {
	if sensor == nil {
		return ErrSensorRequired
	}

	return sensor.Validate()
}
