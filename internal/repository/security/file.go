package security

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/home-security/internal/config"
	domain "github.com/oshokin/home-security/internal/domain/security"
)

// FileRepository persists the whole state to a JSON file on disk after every write.
// JSON is produced and consumed via protobuf JSON (protojson) over a structpb.Struct,
// the same well-known type layout the gRPC API uses for free-form payloads.
type FileRepository struct {
	*MemoryRepository

	// path is the filesystem location of the JSON state file.
	path string
}

// Snapshot field names inside the state file.
const (
	fieldAlarmStatus  = "alarm_status"
	fieldArmingStatus = "arming_status"
	fieldSensors      = "sensors"
	fieldSensorID     = "id"
	fieldSensorName   = "name"
	fieldSensorType   = "type"
	fieldSensorActive = "active"
	fieldSavedAt      = "saved_at"
)

// errMalformedSnapshot is returned when the state file has an unexpected shape.
var errMalformedSnapshot = errors.New("malformed state file")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
// A missing file yields an empty, disarmed state; the file is created on the first write.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{
		MemoryRepository: NewMemoryRepository(),
		path:             filepath.Clean(path),
	}

	state, err := r.load()
	switch {
	case err == nil:
		r.state = state
	case errors.Is(err, os.ErrNotExist):
		// Keep the empty state.
	default:
		return nil, err
	}

	r.persist = r.save

	return r, nil
}

// Path returns the location of the state file.
func (r *FileRepository) Path() string {
	return r.path
}

// load reads the state from disk.
func (r *FileRepository) load() (*snapshot, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	state, err := fromStruct(&document)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return state, nil
}

// save writes the state to disk using JSON representation.
// The file is written next to the target and renamed so readers never see half a state.
func (r *FileRepository) save(_ context.Context, state *snapshot) error {
	document, err := toStruct(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// toStruct converts the snapshot into a structpb document.
func toStruct(state *snapshot) (*structpb.Struct, error) {
	sensors := make([]any, 0, len(state.sensors))
	for _, sensor := range state.sortedSensors() {
		sensors = append(sensors, map[string]any{
			fieldSensorID:     sensor.ID.String(),
			fieldSensorName:   sensor.Name,
			fieldSensorType:   sensor.Type.String(),
			fieldSensorActive: sensor.Active,
		})
	}

	return structpb.NewStruct(map[string]any{
		fieldAlarmStatus:  state.alarm.String(),
		fieldArmingStatus: state.arming.String(),
		fieldSensors:      sensors,
		fieldSavedAt:      time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// fromStruct converts a structpb document into a snapshot.
func fromStruct(document *structpb.Struct) (*snapshot, error) {
	state := newSnapshot()
	fields := document.GetFields()

	if v, ok := fields[fieldAlarmStatus]; ok {
		alarm, err := domain.ParseAlarmStatus(v.GetStringValue())
		if err != nil {
			return nil, err
		}

		state.alarm = alarm
	}

	if v, ok := fields[fieldArmingStatus]; ok {
		arming, err := domain.ParseArmingStatus(v.GetStringValue())
		if err != nil {
			return nil, err
		}

		state.arming = arming
	}

	for _, item := range fields[fieldSensors].GetListValue().GetValues() {
		sensor, err := sensorFromStruct(item.GetStructValue())
		if err != nil {
			return nil, err
		}

		state.sensors[sensor.ID] = sensor
	}

	return state, nil
}

// sensorFromStruct converts one element of the sensors list.
func sensorFromStruct(item *structpb.Struct) (*domain.Sensor, error) {
	if item == nil {
		return nil, fmt.Errorf("sensor entry: %w", errMalformedSnapshot)
	}

	fields := item.GetFields()

	id, err := uuid.FromString(fields[fieldSensorID].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("sensor id: %w", err)
	}

	sensorType, err := domain.ParseSensorType(fields[fieldSensorType].GetStringValue())
	if err != nil {
		return nil, err
	}

	return &domain.Sensor{
		ID:     id,
		Name:   fields[fieldSensorName].GetStringValue(),
		Type:   sensorType,
		Active: fields[fieldSensorActive].GetBoolValue(),
	}, nil
}
