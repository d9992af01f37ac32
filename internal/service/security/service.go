package security

import (
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"sync"

	"github.com/gofrs/uuid"

	domain "github.com/oshokin/home-security/internal/domain/security"
	"github.com/oshokin/home-security/internal/logger"
	repo "github.com/oshokin/home-security/internal/repository/security"
	"github.com/oshokin/home-security/internal/service/image"
)

// DefaultConfidenceThreshold is the image confidence threshold used when none is configured.
const DefaultConfidenceThreshold float32 = 50

var (
	// ErrSensorRequired is returned when a nil sensor is passed.
	ErrSensorRequired = repo.ErrSensorRequired
	// ErrInvalidSensor is returned for a sensor without an ID or with an unknown type.
	ErrInvalidSensor = domain.ErrInvalidSensor
	// ErrSensorNotFound is returned when no sensor has the requested ID.
	ErrSensorNotFound = errors.New("sensor not found")
	// ErrInvalidArmingStatus is returned for an arming status outside the known set.
	ErrInvalidArmingStatus = errors.New("invalid arming status")
	// errRepositoryRequired is returned when New gets no repository.
	errRepositoryRequired = errors.New("repository is required")
	// errImageServiceRequired is returned when New gets no image service.
	errImageServiceRequired = errors.New("image service is required")
)

// Status is a consistent view of the whole engine state.
type Status struct {
	// Alarm is the current alarm status.
	Alarm domain.AlarmStatus
	// Arming is the current arming status.
	Arming domain.ArmingStatus
	// Sensors holds copies of all sensors.
	Sensors []*domain.Sensor
	// AnySensorActive reports whether at least one sensor is active.
	AnySensorActive bool
	// CatDetected is the verdict of the last processed image.
	CatDetected bool
}

// Service is the alarm decision engine.
type Service struct {
	// repo persists sensors and status values.
	repo repo.Repository
	// images classifies camera frames.
	images image.Service
	// threshold is the confidence threshold passed to images.
	threshold float32
	// listeners observe committed changes.
	listeners []Listener
	// catDetected is the verdict of the last processed image.
	catDetected bool
	// mu serializes every read-decide-write sequence.
	mu sync.Mutex
}

// Option configures the Service.
type Option func(*Service)

// WithConfidenceThreshold sets the confidence threshold, in percent, for cat verdicts.
func WithConfidenceThreshold(threshold float32) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithListeners registers listeners at construction time.
func WithListeners(listeners ...Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, listeners...)
	}
}

// New creates an engine backed by the provided repository and image service.
func New(repository repo.Repository, images image.Service, opts ...Option) (*Service, error) {
	if repository == nil {
		return nil, errRepositoryRequired
	}

	if images == nil {
		return nil, errImageServiceRequired
	}

	s := &Service{
		repo:      repository,
		images:    images,
		threshold: DefaultConfidenceThreshold,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// ConfidenceThreshold returns the threshold passed to the image service.
func (s *Service) ConfidenceThreshold() float32 {
	return s.threshold
}

// AddListener registers a listener for subsequent changes.
func (s *Service) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
}

// ChangeSensorActivationStatus sets the sensor active flag and applies the
// alarm transition rules. The stored flag is authoritative for known sensors;
// for a sensor the repository does not know yet, the flag carried by the
// argument is the previous value. On success sensor.Active is updated too.
//
//nolint:funlen // One critical section reads best as one function.
func (s *Service) ChangeSensorActivationStatus(ctx context.Context, sensor *domain.Sensor, active bool) error {
	if sensor == nil {
		return ErrSensorRequired
	}

	if err := sensor.Validate(); err != nil {
		return err
	}

	s.mu.Lock()

	alarm, arming, sensors, err := s.readState(ctx)
	if err != nil {
		s.mu.Unlock()

		return err
	}

	change := sensorChange{
		alarm:     alarm,
		arming:    arming,
		wasActive: sensor.Active,
		active:    active,
	}

	var previous *domain.Sensor

	for _, stored := range sensors {
		if stored.ID == sensor.ID {
			previous = stored
			change.wasActive = stored.Active

			continue
		}

		if stored.Active {
			change.othersActive = true
		}
	}

	next := change.next()

	updated := sensor.Clone()
	updated.Active = active

	var uow unitOfWork

	err = uow.do(ctx, "update sensor",
		func(ctx context.Context) error { return s.repo.UpdateSensor(ctx, updated) },
		func(ctx context.Context) error {
			if previous == nil {
				return s.repo.RemoveSensor(ctx, updated)
			}

			return s.repo.UpdateSensor(ctx, previous)
		})
	if err != nil {
		s.mu.Unlock()

		return fmt.Errorf("update sensor %s: %w", sensor.ID, err)
	}

	if next != alarm {
		if err = s.setAlarmStatus(ctx, &uow, alarm, next); err != nil {
			s.mu.Unlock()

			return err
		}
	}

	sensor.Active = active

	n := &notification{sensors: s.sensorsAfterWrite(ctx)}
	if next != alarm {
		n.alarm = &next
	}

	listeners := s.listeners
	s.mu.Unlock()

	logger.InfoKV(ctx, "Sensor activation changed",
		"sensor_id", sensor.ID.String(),
		"sensor_name", sensor.Name,
		"active", active,
		"arming_status", arming.String(),
		"alarm_status", next.String(),
	)

	n.dispatch(ctx, listeners)

	return nil
}

// SetArmingStatus changes the operator mode. Disarming clears the alarm;
// arming resets every sensor to inactive and, when arming home right after a
// cat was seen, raises the alarm.
//
//nolint:funlen // One critical section reads best as one function.
func (s *Service) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%s: %w", status, ErrInvalidArmingStatus)
	}

	s.mu.Lock()

	alarm, arming, sensors, err := s.readState(ctx)
	if err != nil {
		s.mu.Unlock()

		return err
	}

	var (
		uow            unitOfWork
		next           = alarm
		sensorsChanged bool
	)

	switch {
	case status == domain.Disarmed:
		next = domain.NoAlarm

		// Written unconditionally so the stored value is NO_ALARM whatever it was.
		if err = s.setAlarmStatus(ctx, &uow, alarm, next); err != nil {
			s.mu.Unlock()

			return err
		}
	default:
		for _, sensor := range sensors {
			if !sensor.Active {
				continue
			}

			if err = s.deactivate(ctx, &uow, sensor); err != nil {
				s.mu.Unlock()

				return err
			}

			sensorsChanged = true
		}

		if status == domain.ArmedHome && s.catDetected && alarm != domain.Alarm {
			next = domain.Alarm

			if err = s.setAlarmStatus(ctx, &uow, alarm, next); err != nil {
				s.mu.Unlock()

				return err
			}
		}
	}

	err = uow.do(ctx, "set arming status",
		func(ctx context.Context) error { return s.repo.SetArmingStatus(ctx, status) },
		func(ctx context.Context) error { return s.repo.SetArmingStatus(ctx, arming) })
	if err != nil {
		s.mu.Unlock()

		return fmt.Errorf("set arming status: %w", err)
	}

	n := &notification{arming: &status}
	if next != alarm {
		n.alarm = &next
	}

	if sensorsChanged {
		n.sensors = s.sensorsAfterWrite(ctx)
	}

	listeners := s.listeners
	s.mu.Unlock()

	logger.InfoKV(ctx, "Arming status changed",
		"from", arming.String(),
		"to", status.String(),
		"alarm_status", next.String(),
	)

	n.dispatch(ctx, listeners)

	return nil
}

// ProcessImage classifies the frame and applies the image rules: a cat while
// armed home raises the alarm, no cat with no active sensor clears it.
func (s *Service) ProcessImage(ctx context.Context, img stdimage.Image) error {
	if img == nil {
		return image.ErrImageRequired
	}

	// The classifier holds no engine state, so it runs outside the critical section.
	cat, err := s.images.ImageContainsCat(ctx, img, s.threshold)
	if err != nil {
		return fmt.Errorf("classify image: %w", err)
	}

	s.mu.Lock()

	verdict := imageVerdict{cat: cat}

	if verdict.alarm, err = s.repo.GetAlarmStatus(ctx); err != nil {
		s.mu.Unlock()

		return fmt.Errorf("get alarm status: %w", err)
	}

	if verdict.arming, err = s.repo.GetArmingStatus(ctx); err != nil {
		s.mu.Unlock()

		return fmt.Errorf("get arming status: %w", err)
	}

	if verdict.anySensorActive, err = s.repo.IsAnySensorActive(ctx); err != nil {
		s.mu.Unlock()

		return fmt.Errorf("check active sensors: %w", err)
	}

	next := verdict.next()

	if next != verdict.alarm {
		var uow unitOfWork
		if err = s.setAlarmStatus(ctx, &uow, verdict.alarm, next); err != nil {
			s.mu.Unlock()

			return err
		}
	}

	s.catDetected = cat

	n := &notification{cat: &cat}
	if next != verdict.alarm {
		n.alarm = &next
	}

	listeners := s.listeners
	s.mu.Unlock()

	logger.InfoKV(ctx, "Image processed",
		"cat_detected", cat,
		"confidence_threshold", s.threshold,
		"arming_status", verdict.arming.String(),
		"alarm_status", next.String(),
	)

	n.dispatch(ctx, listeners)

	return nil
}

// AddSensor registers a sensor.
func (s *Service) AddSensor(ctx context.Context, sensor *domain.Sensor) error {
	if sensor != nil {
		if err := sensor.Validate(); err != nil {
			return err
		}
	}

	return s.writeSensor(ctx, "add sensor", sensor, s.repo.AddSensor)
}

// RemoveSensor unregisters a sensor.
func (s *Service) RemoveSensor(ctx context.Context, sensor *domain.Sensor) error {
	return s.writeSensor(ctx, "remove sensor", sensor, s.repo.RemoveSensor)
}

// UpdateSensor stores a sensor as-is, without applying alarm rules.
func (s *Service) UpdateSensor(ctx context.Context, sensor *domain.Sensor) error {
	if sensor != nil {
		if err := sensor.Validate(); err != nil {
			return err
		}
	}

	return s.writeSensor(ctx, "update sensor", sensor, s.repo.UpdateSensor)
}

// GetAlarmStatus returns the current alarm status.
func (s *Service) GetAlarmStatus(ctx context.Context) (domain.AlarmStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.repo.GetAlarmStatus(ctx)
	if err != nil {
		return domain.NoAlarm, fmt.Errorf("get alarm status: %w", err)
	}

	return status, nil
}

// GetArmingStatus returns the current arming status.
func (s *Service) GetArmingStatus(ctx context.Context) (domain.ArmingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.repo.GetArmingStatus(ctx)
	if err != nil {
		return domain.Disarmed, fmt.Errorf("get arming status: %w", err)
	}

	return status, nil
}

// GetSensors returns copies of all sensors.
func (s *Service) GetSensors(ctx context.Context) ([]*domain.Sensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sensors, err := s.repo.GetSensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sensors: %w", err)
	}

	return sensors, nil
}

// GetSensor returns a copy of the sensor with the given ID.
func (s *Service) GetSensor(ctx context.Context, id uuid.UUID) (*domain.Sensor, error) {
	sensors, err := s.GetSensors(ctx)
	if err != nil {
		return nil, err
	}

	for _, sensor := range sensors {
		if sensor.ID == id {
			return sensor, nil
		}
	}

	return nil, fmt.Errorf("sensor %s: %w", id, ErrSensorNotFound)
}

// IsAnySensorActive reports whether at least one sensor is active.
func (s *Service) IsAnySensorActive(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.repo.IsAnySensorActive(ctx)
	if err != nil {
		return false, fmt.Errorf("check active sensors: %w", err)
	}

	return active, nil
}

// Status returns the alarm status, arming status and sensors read in one critical section.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarm, arming, sensors, err := s.readState(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Alarm:       alarm,
		Arming:      arming,
		Sensors:     sensors,
		CatDetected: s.catDetected,
	}

	for _, sensor := range sensors {
		if sensor.Active {
			status.AnySensorActive = true

			break
		}
	}

	return status, nil
}

// readState loads both statuses and all sensors. The caller holds mu.
func (s *Service) readState(
	ctx context.Context,
) (domain.AlarmStatus, domain.ArmingStatus, []*domain.Sensor, error) {
	alarm, err := s.repo.GetAlarmStatus(ctx)
	if err != nil {
		return alarm, domain.Disarmed, nil, fmt.Errorf("get alarm status: %w", err)
	}

	arming, err := s.repo.GetArmingStatus(ctx)
	if err != nil {
		return alarm, arming, nil, fmt.Errorf("get arming status: %w", err)
	}

	sensors, err := s.repo.GetSensors(ctx)
	if err != nil {
		return alarm, arming, nil, fmt.Errorf("get sensors: %w", err)
	}

	return alarm, arming, sensors, nil
}

// setAlarmStatus writes the alarm status as part of uow. The caller holds mu.
func (s *Service) setAlarmStatus(
	ctx context.Context,
	uow *unitOfWork,
	previous, next domain.AlarmStatus,
) error {
	err := uow.do(ctx, "set alarm status",
		func(ctx context.Context) error { return s.repo.SetAlarmStatus(ctx, next) },
		func(ctx context.Context) error { return s.repo.SetAlarmStatus(ctx, previous) })
	if err != nil {
		return fmt.Errorf("set alarm status: %w", err)
	}

	if previous != next {
		logger.InfoKV(ctx, "Alarm status changed", "from", previous.String(), "to", next.String())
	}

	return nil
}

// deactivate writes the sensor as inactive as part of uow. The caller holds mu.
func (s *Service) deactivate(ctx context.Context, uow *unitOfWork, sensor *domain.Sensor) error {
	inactive := sensor.Clone()
	inactive.Active = false

	err := uow.do(ctx, "deactivate sensor",
		func(ctx context.Context) error { return s.repo.UpdateSensor(ctx, inactive) },
		func(ctx context.Context) error { return s.repo.UpdateSensor(ctx, sensor) })
	if err != nil {
		return fmt.Errorf("deactivate sensor %s: %w", sensor.ID, err)
	}

	return nil
}

// writeSensor runs a passthrough sensor write and notifies listeners.
func (s *Service) writeSensor(
	ctx context.Context,
	action string,
	sensor *domain.Sensor,
	write func(ctx context.Context, sensor *domain.Sensor) error,
) error {
	if sensor == nil {
		return ErrSensorRequired
	}

	s.mu.Lock()

	if err := write(ctx, sensor); err != nil {
		s.mu.Unlock()

		return fmt.Errorf("%s %s: %w", action, sensor.ID, err)
	}

	n := &notification{sensors: s.sensorsAfterWrite(ctx)}
	listeners := s.listeners
	s.mu.Unlock()

	logger.InfoKV(ctx, "Sensor registry changed",
		"action", action,
		"sensor_id", sensor.ID.String(),
		"sensor_name", sensor.Name,
		"sensor_type", sensor.Type.String(),
	)

	n.dispatch(ctx, listeners)

	return nil
}

// sensorsAfterWrite reads the sensors for listeners. A failed read only skips
// the notification, the write itself already succeeded. The caller holds mu.
func (s *Service) sensorsAfterWrite(ctx context.Context) []*domain.Sensor {
	if len(s.listeners) == 0 {
		return nil
	}

	sensors, err := s.repo.GetSensors(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Unable to read sensors for listeners", "error", err)

		return nil
	}

	if sensors == nil {
		sensors = []*domain.Sensor{}
	}

	return sensors
}
