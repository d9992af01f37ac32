package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

// Redis key layout, relative to the configured prefix.
const (
	redisSensorsKey = "sensors"
	redisAlarmKey   = "status/alarm"
	redisArmingKey  = "status/arming"
)

// redisSensor is the JSON value stored per sensor in the sensors hash.
type redisSensor struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

// RedisRepository stores sensors in a hash and statuses in plain keys.
type RedisRepository struct {
	// client is the Redis connection pool.
	client *redis.Client
	// prefix namespaces every key, e.g. "home-security/".
	prefix string
}

// NewRedisClient parses a redis:// or rediss:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return redis.NewClient(options), nil
}

// NewRedisRepository creates a repository on top of an existing client.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{
		client: client,
		prefix: prefix,
	}
}

// IsAnySensorActive reports whether at least one stored sensor is active.
func (r *RedisRepository) IsAnySensorActive(ctx context.Context) (bool, error) {
	sensors, err := r.GetSensors(ctx)
	if err != nil {
		return false, err
	}

	for _, sensor := range sensors {
		if sensor.Active {
			return true, nil
		}
	}

	return false, nil
}

// AddSensor stores the sensor in the sensors hash.
func (r *RedisRepository) AddSensor(ctx context.Context, sensor *domain.Sensor) error {
	return r.UpdateSensor(ctx, sensor)
}

// UpdateSensor stores the sensor, replacing the previous version.
func (r *RedisRepository) UpdateSensor(ctx context.Context, sensor *domain.Sensor) error {
	if err := validateSensor(sensor); err != nil {
		return err
	}

	value, err := encodeRedisSensor(sensor)
	if err != nil {
		return err
	}

	if err = r.client.HSet(ctx, r.key(redisSensorsKey), sensor.ID.String(), value).Err(); err != nil {
		return fmt.Errorf("store sensor %s: %w", sensor.ID, err)
	}

	return nil
}

// RemoveSensor deletes the sensor from the hash.
func (r *RedisRepository) RemoveSensor(ctx context.Context, sensor *domain.Sensor) error {
	if sensor == nil {
		return ErrSensorRequired
	}

	if err := r.client.HDel(ctx, r.key(redisSensorsKey), sensor.ID.String()).Err(); err != nil {
		return fmt.Errorf("delete sensor %s: %w", sensor.ID, err)
	}

	return nil
}

// SetAlarmStatus stores the alarm status.
func (r *RedisRepository) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set alarm status %s: %w", status, ErrInvalidStatus)
	}

	if err := r.client.Set(ctx, r.key(redisAlarmKey), status.String(), 0).Err(); err != nil {
		return fmt.Errorf("store alarm status: %w", err)
	}

	return nil
}

// SetArmingStatus stores the arming status.
func (r *RedisRepository) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set arming status %s: %w", status, ErrInvalidStatus)
	}

	if err := r.client.Set(ctx, r.key(redisArmingKey), status.String(), 0).Err(); err != nil {
		return fmt.Errorf("store arming status: %w", err)
	}

	return nil
}

// GetSensors returns all sensors sorted by name, type and ID.
func (r *RedisRepository) GetSensors(ctx context.Context) ([]*domain.Sensor, error) {
	entries, err := r.client.HGetAll(ctx, r.key(redisSensorsKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}

	sensors := make([]*domain.Sensor, 0, len(entries))
	for id, value := range entries {
		sensor, err := decodeRedisSensor(id, value)
		if err != nil {
			return nil, err
		}

		sensors = append(sensors, sensor)
	}

	domain.SortSensors(sensors)

	return sensors, nil
}

// GetAlarmStatus returns the stored alarm status, NoAlarm when none was stored.
func (r *RedisRepository) GetAlarmStatus(ctx context.Context) (domain.AlarmStatus, error) {
	value, err := r.get(ctx, redisAlarmKey)
	if err != nil || value == "" {
		return domain.NoAlarm, err
	}

	return domain.ParseAlarmStatus(value)
}

// GetArmingStatus returns the stored arming status, Disarmed when none was stored.
func (r *RedisRepository) GetArmingStatus(ctx context.Context) (domain.ArmingStatus, error) {
	value, err := r.get(ctx, redisArmingKey)
	if err != nil || value == "" {
		return domain.Disarmed, err
	}

	return domain.ParseArmingStatus(value)
}

// Close releases the connection pool.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// get reads a plain key; a missing key yields an empty value.
func (r *RedisRepository) get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, redis.Nil):
		return "", nil
	default:
		return "", fmt.Errorf("read %s: %w", key, err)
	}
}

// key applies the configured prefix.
func (r *RedisRepository) key(name string) string {
	return r.prefix + name
}

// encodeRedisSensor serializes the sensor fields stored in the hash value.
func encodeRedisSensor(sensor *domain.Sensor) (string, error) {
	data, err := json.Marshal(redisSensor{
		Name:   sensor.Name,
		Type:   sensor.Type.String(),
		Active: sensor.Active,
	})
	if err != nil {
		return "", fmt.Errorf("encode sensor %s: %w", sensor.ID, err)
	}

	return string(data), nil
}

// decodeRedisSensor rebuilds a sensor from its hash field and value.
func decodeRedisSensor(id, value string) (*domain.Sensor, error) {
	sensorID, err := uuid.FromString(id)
	if err != nil {
		return nil, fmt.Errorf("sensor id %q: %w", id, err)
	}

	var stored redisSensor
	if err = json.Unmarshal([]byte(value), &stored); err != nil {
		return nil, fmt.Errorf("decode sensor %s: %w", id, err)
	}

	sensorType, err := domain.ParseSensorType(stored.Type)
	if err != nil {
		return nil, err
	}

	return &domain.Sensor{
		ID:     sensorID,
		Name:   stored.Name,
		Type:   sensorType,
		Active: stored.Active,
	}, nil
}
