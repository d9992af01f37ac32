package security

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

// Keys of the rows holding the two status values.
const (
	alarmStatusKey  = "alarm"
	armingStatusKey = "arming"
)

// SensorRecord is the table row of a sensor.
type SensorRecord struct {
	ID     string `gorm:"primaryKey;size:36"`
	Name   string `gorm:"not null"`
	Type   string `gorm:"size:16;not null"`
	Active bool   `gorm:"not null;default:false;index"`
}

// TableName pins the table name regardless of the naming strategy.
func (SensorRecord) TableName() string { return "sensors" }

// StatusRecord is a key/value row holding one status value.
type StatusRecord struct {
	Name  string `gorm:"primaryKey;size:16"`
	Value string `gorm:"size:32;not null"`
}

// TableName pins the table name regardless of the naming strategy.
func (StatusRecord) TableName() string { return "statuses" }

// GormRepository stores sensors and status values in a SQL database through GORM.
type GormRepository struct {
	// db is the GORM handle; every call is scoped with WithContext.
	db *gorm.DB
}

// NewGormRepository creates a GORM-backed repository and migrates its tables.
func NewGormRepository(ctx context.Context, db *gorm.DB) (*GormRepository, error) {
	if err := db.WithContext(ctx).AutoMigrate(&SensorRecord{}, &StatusRecord{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	return &GormRepository{db: db}, nil
}

// IsAnySensorActive reports whether at least one sensor row is active.
func (r *GormRepository) IsAnySensorActive(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&SensorRecord{}).Where("active = ?", true).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count active sensors: %w", err)
	}

	return count > 0, nil
}

// AddSensor inserts or replaces the sensor row.
func (r *GormRepository) AddSensor(ctx context.Context, sensor *domain.Sensor) error {
	return r.UpdateSensor(ctx, sensor)
}

// UpdateSensor upserts the sensor row.
func (r *GormRepository) UpdateSensor(ctx context.Context, sensor *domain.Sensor) error {
	if err := validateSensor(sensor); err != nil {
		return err
	}

	record := toSensorRecord(sensor)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "type", "active"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("upsert sensor %s: %w", sensor.ID, err)
	}

	return nil
}

// RemoveSensor deletes the sensor row. Removing an unknown sensor is a no-op.
func (r *GormRepository) RemoveSensor(ctx context.Context, sensor *domain.Sensor) error {
	if sensor == nil {
		return ErrSensorRequired
	}

	if err := r.db.WithContext(ctx).Delete(&SensorRecord{}, "id = ?", sensor.ID.String()).Error; err != nil {
		return fmt.Errorf("delete sensor %s: %w", sensor.ID, err)
	}

	return nil
}

// SetAlarmStatus stores the alarm status.
func (r *GormRepository) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set alarm status %s: %w", status, ErrInvalidStatus)
	}

	return r.setStatus(ctx, alarmStatusKey, status.String())
}

// SetArmingStatus stores the arming status.
func (r *GormRepository) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set arming status %s: %w", status, ErrInvalidStatus)
	}

	return r.setStatus(ctx, armingStatusKey, status.String())
}

// GetSensors returns all sensors sorted by name, type and ID.
func (r *GormRepository) GetSensors(ctx context.Context) ([]*domain.Sensor, error) {
	var records []SensorRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}

	sensors := make([]*domain.Sensor, 0, len(records))
	for _, record := range records {
		sensor, err := fromSensorRecord(record)
		if err != nil {
			return nil, err
		}

		sensors = append(sensors, sensor)
	}

	domain.SortSensors(sensors)

	return sensors, nil
}

// GetAlarmStatus returns the stored alarm status, NoAlarm when none was stored.
func (r *GormRepository) GetAlarmStatus(ctx context.Context) (domain.AlarmStatus, error) {
	value, err := r.getStatus(ctx, alarmStatusKey)
	if err != nil || value == "" {
		return domain.NoAlarm, err
	}

	return domain.ParseAlarmStatus(value)
}

// GetArmingStatus returns the stored arming status, Disarmed when none was stored.
func (r *GormRepository) GetArmingStatus(ctx context.Context) (domain.ArmingStatus, error) {
	value, err := r.getStatus(ctx, armingStatusKey)
	if err != nil || value == "" {
		return domain.Disarmed, err
	}

	return domain.ParseArmingStatus(value)
}

// setStatus upserts one status row.
func (r *GormRepository) setStatus(ctx context.Context, key, value string) error {
	record := StatusRecord{Name: key, Value: value}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("store %s status: %w", key, err)
	}

	return nil
}

// getStatus reads one status row; a missing row yields an empty value.
func (r *GormRepository) getStatus(ctx context.Context, key string) (string, error) {
	var record StatusRecord

	err := r.db.WithContext(ctx).Where("name = ?", key).Take(&record).Error
	switch {
	case err == nil:
		return record.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", nil
	default:
		return "", fmt.Errorf("read %s status: %w", key, err)
	}
}

// toSensorRecord converts a domain sensor into its table row.
func toSensorRecord(sensor *domain.Sensor) SensorRecord {
	return SensorRecord{
		ID:     sensor.ID.String(),
		Name:   sensor.Name,
		Type:   sensor.Type.String(),
		Active: sensor.Active,
	}
}

// fromSensorRecord converts a table row into a domain sensor.
func fromSensorRecord(record SensorRecord) (*domain.Sensor, error) {
	id, err := uuid.FromString(record.ID)
	if err != nil {
		return nil, fmt.Errorf("sensor id %q: %w", record.ID, err)
	}

	sensorType, err := domain.ParseSensorType(record.Type)
	if err != nil {
		return nil, err
	}

	return &domain.Sensor{
		ID:     id,
		Name:   record.Name,
		Type:   sensorType,
		Active: record.Active,
	}, nil
}
