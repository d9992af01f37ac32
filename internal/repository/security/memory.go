package security

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

// snapshot is the complete persisted state.
type snapshot struct {
	// sensors holds every known sensor keyed by ID.
	sensors map[uuid.UUID]*domain.Sensor
	// alarm is the current alarm status.
	alarm domain.AlarmStatus
	// arming is the current arming status.
	arming domain.ArmingStatus
}

// newSnapshot returns an empty state: no sensors, no alarm, disarmed.
func newSnapshot() *snapshot {
	return &snapshot{
		sensors: make(map[uuid.UUID]*domain.Sensor),
		alarm:   domain.NoAlarm,
		arming:  domain.Disarmed,
	}
}

// clone returns a deep copy of the snapshot.
func (s *snapshot) clone() *snapshot {
	cloned := &snapshot{
		sensors: make(map[uuid.UUID]*domain.Sensor, len(s.sensors)),
		alarm:   s.alarm,
		arming:  s.arming,
	}

	for id, sensor := range s.sensors {
		cloned.sensors[id] = sensor.Clone()
	}

	return cloned
}

// sortedSensors returns copies of the sensors in a stable order.
func (s *snapshot) sortedSensors() []*domain.Sensor {
	result := make([]*domain.Sensor, 0, len(s.sensors))
	for _, sensor := range s.sensors {
		result = append(result, sensor.Clone())
	}

	domain.SortSensors(result)

	return result
}

// MemoryRepository keeps the state in memory.
// An optional persist hook turns it into a write-through store: a write is
// only applied when the hook accepts the new state.
type MemoryRepository struct {
	// state is the committed state.
	state *snapshot
	// persist is called with the candidate state before it is committed.
	persist func(ctx context.Context, state *snapshot) error
	// mu protects state.
	mu sync.RWMutex
}

// NewMemoryRepository creates an empty, disarmed repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		state: newSnapshot(),
	}
}

// IsAnySensorActive reports whether at least one sensor is active.
func (r *MemoryRepository) IsAnySensorActive(context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sensor := range r.state.sensors {
		if sensor.Active {
			return true, nil
		}
	}

	return false, nil
}

// AddSensor stores a copy of the sensor.
func (r *MemoryRepository) AddSensor(ctx context.Context, sensor *domain.Sensor) error {
	return r.putSensor(ctx, sensor)
}

// UpdateSensor stores a copy of the sensor, replacing the previous version.
func (r *MemoryRepository) UpdateSensor(ctx context.Context, sensor *domain.Sensor) error {
	return r.putSensor(ctx, sensor)
}

// RemoveSensor deletes the sensor. Removing an unknown sensor is a no-op.
func (r *MemoryRepository) RemoveSensor(ctx context.Context, sensor *domain.Sensor) error {
	if sensor == nil {
		return ErrSensorRequired
	}

	return r.mutate(ctx, func(state *snapshot) {
		delete(state.sensors, sensor.ID)
	})
}

// SetAlarmStatus stores the alarm status.
func (r *MemoryRepository) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set alarm status %s: %w", status, ErrInvalidStatus)
	}

	return r.mutate(ctx, func(state *snapshot) {
		state.alarm = status
	})
}

// SetArmingStatus stores the arming status.
func (r *MemoryRepository) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set arming status %s: %w", status, ErrInvalidStatus)
	}

	return r.mutate(ctx, func(state *snapshot) {
		state.arming = status
	})
}

// GetSensors returns copies of all sensors.
func (r *MemoryRepository) GetSensors(context.Context) ([]*domain.Sensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.sortedSensors(), nil
}

// GetAlarmStatus returns the stored alarm status.
func (r *MemoryRepository) GetAlarmStatus(context.Context) (domain.AlarmStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.alarm, nil
}

// GetArmingStatus returns the stored arming status.
func (r *MemoryRepository) GetArmingStatus(context.Context) (domain.ArmingStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.arming, nil
}

// putSensor inserts or replaces a sensor.
func (r *MemoryRepository) putSensor(ctx context.Context, sensor *domain.Sensor) error {
	if err := validateSensor(sensor); err != nil {
		return err
	}

	stored := sensor.Clone()

	return r.mutate(ctx, func(state *snapshot) {
		state.sensors[stored.ID] = stored
	})
}

// mutate applies fn to a copy of the state and commits it once persisted.
func (r *MemoryRepository) mutate(ctx context.Context, fn func(state *snapshot)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.persist == nil {
		fn(r.state)

		return nil
	}

	candidate := r.state.clone()
	fn(candidate)

	if err := r.persist(ctx, candidate); err != nil {
		return err
	}

	r.state = candidate

	return nil
}
