package security

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gofrs/uuid"
)

// SensorType is the category of a monitored device.
type SensorType uint8

const (
	// SensorDoor is a door contact.
	SensorDoor SensorType = iota + 1
	// SensorWindow is a window contact.
	SensorWindow
	// SensorMotion is a motion detector.
	SensorMotion
)

var (
	// ErrUnknownSensorType is returned when a sensor type name cannot be parsed.
	ErrUnknownSensorType = errors.New("unknown sensor type")
	// ErrInvalidSensor is returned for a sensor without an ID or with an unknown type.
	ErrInvalidSensor = errors.New("invalid sensor")
)

// SensorTypes lists every supported sensor type.
func SensorTypes() []SensorType {
	return []SensorType{SensorDoor, SensorWindow, SensorMotion}
}

// String returns the canonical upper-case name of the sensor type.
func (t SensorType) String() string {
	switch t {
	case SensorDoor:
		return "DOOR"
	case SensorWindow:
		return "WINDOW"
	case SensorMotion:
		return "MOTION"
	default:
		return fmt.Sprintf("SensorType(%d)", uint8(t))
	}
}

// IsValid reports whether t is one of the known sensor types.
func (t SensorType) IsValid() bool {
	return slices.Contains(SensorTypes(), t)
}

// ParseSensorType converts a name such as "door" or "MOTION" to a SensorType.
func ParseSensorType(s string) (SensorType, error) {
	for _, t := range SensorTypes() {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("sensor type %q: %w", s, ErrUnknownSensorType)
}

// Sensor is a monitored device with a binary active state.
type Sensor struct {
	// ID identifies the sensor; names are not unique.
	ID uuid.UUID
	// Name is a human readable label such as "Front door".
	Name string
	// Type is the device category.
	Type SensorType
	// Active reports whether the sensor currently detects something.
	Active bool
}

// NewSensor creates an inactive sensor with a fresh random ID.
func NewSensor(name string, sensorType SensorType) *Sensor {
	return &Sensor{
		ID:   uuid.Must(uuid.NewV4()),
		Name: name,
		Type: sensorType,
	}
}

// Validate checks the sensor can be stored and read back: it needs an ID
// and a known type.
func (s *Sensor) Validate() error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("sensor %q has no id: %w", s.Name, ErrInvalidSensor)
	}

	if !s.Type.IsValid() {
		return fmt.Errorf("sensor %s has type %s: %w", s.ID, s.Type, ErrInvalidSensor)
	}

	return nil
}

// Clone returns a copy of the sensor.
func (s *Sensor) Clone() *Sensor {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// Compare orders sensors by name, then type, then ID.
func (s *Sensor) Compare(other *Sensor) int {
	if c := cmp.Compare(s.Name, other.Name); c != 0 {
		return c
	}

	if c := cmp.Compare(s.Type, other.Type); c != 0 {
		return c
	}

	return cmp.Compare(s.ID.String(), other.ID.String())
}

// SortSensors sorts sensors in place using Compare.
func SortSensors(sensors []*Sensor) {
	slices.SortFunc(sensors, func(a, b *Sensor) int {
		return a.Compare(b)
	})
}

// CloneSensors returns a deep copy of the slice.
func CloneSensors(sensors []*Sensor) []*Sensor {
	result := make([]*Sensor, 0, len(sensors))
	for _, s := range sensors {
		result = append(result, s.Clone())
	}

	return result
}
