package securityv1

// Sensor is the wire form of a sensor.
type Sensor struct {
	// Id is the sensor UUID.
	Id string //nolint:revive,stylecheck // Mirrors protoc-gen-go field naming.
	// Name is the human readable label.
	Name string
	// Type is DOOR, WINDOW or MOTION.
	Type string
	// Active reports whether the sensor detects something.
	Active bool
}

func (x *Sensor) GetId() string { //nolint:revive,stylecheck // Mirrors protoc-gen-go getter naming.
	if x == nil {
		return ""
	}

	return x.Id
}

func (x *Sensor) GetName() string {
	if x == nil {
		return ""
	}

	return x.Name
}

func (x *Sensor) GetType() string {
	if x == nil {
		return ""
	}

	return x.Type
}

func (x *Sensor) GetActive() bool {
	if x == nil {
		return false
	}

	return x.Active
}

// GetStatusRequest asks for the full engine state.
type GetStatusRequest struct{}

// StatusResponse carries the engine state after a call.
type StatusResponse struct {
	// AlarmStatus is NO_ALARM, PENDING_ALARM or ALARM.
	AlarmStatus string
	// ArmingStatus is DISARMED, ARMED_HOME or ARMED_AWAY.
	ArmingStatus string
	// Sensors lists every sensor.
	Sensors []*Sensor
	// AnySensorActive reports whether at least one sensor is active.
	AnySensorActive bool
	// CatDetected is the verdict of the last processed image.
	CatDetected bool
}

func (x *StatusResponse) GetAlarmStatus() string {
	if x == nil {
		return ""
	}

	return x.AlarmStatus
}

func (x *StatusResponse) GetArmingStatus() string {
	if x == nil {
		return ""
	}

	return x.ArmingStatus
}

func (x *StatusResponse) GetSensors() []*Sensor {
	if x == nil {
		return nil
	}

	return x.Sensors
}

func (x *StatusResponse) GetAnySensorActive() bool {
	if x == nil {
		return false
	}

	return x.AnySensorActive
}

func (x *StatusResponse) GetCatDetected() bool {
	if x == nil {
		return false
	}

	return x.CatDetected
}

// SetArmingStatusRequest changes the arming status.
type SetArmingStatusRequest struct {
	// ArmingStatus is DISARMED, ARMED_HOME or ARMED_AWAY.
	ArmingStatus string
}

func (x *SetArmingStatusRequest) GetArmingStatus() string {
	if x == nil {
		return ""
	}

	return x.ArmingStatus
}

// ListSensorsRequest asks for every sensor.
type ListSensorsRequest struct{}

// ListSensorsResponse lists sensors sorted by name, type and ID.
type ListSensorsResponse struct {
	// Sensors lists every sensor.
	Sensors []*Sensor
}

func (x *ListSensorsResponse) GetSensors() []*Sensor {
	if x == nil {
		return nil
	}

	return x.Sensors
}

// AddSensorRequest registers a new inactive sensor.
type AddSensorRequest struct {
	// Name is the human readable label.
	Name string
	// Type is DOOR, WINDOW or MOTION.
	Type string
}

func (x *AddSensorRequest) GetName() string {
	if x == nil {
		return ""
	}

	return x.Name
}

func (x *AddSensorRequest) GetType() string {
	if x == nil {
		return ""
	}

	return x.Type
}

// SensorResponse carries one sensor.
type SensorResponse struct {
	// Sensor is the stored sensor.
	Sensor *Sensor
}

func (x *SensorResponse) GetSensor() *Sensor {
	if x == nil {
		return nil
	}

	return x.Sensor
}

// RemoveSensorRequest unregisters a sensor.
type RemoveSensorRequest struct {
	// Id is the sensor UUID.
	Id string //nolint:revive,stylecheck // Mirrors protoc-gen-go field naming.
}

func (x *RemoveSensorRequest) GetId() string { //nolint:revive,stylecheck // Mirrors protoc-gen-go getter naming.
	if x == nil {
		return ""
	}

	return x.Id
}

// RemoveSensorResponse is empty.
type RemoveSensorResponse struct{}

// UpdateSensorRequest stores a sensor as-is.
type UpdateSensorRequest struct {
	// Sensor is the sensor to store.
	Sensor *Sensor
}

func (x *UpdateSensorRequest) GetSensor() *Sensor {
	if x == nil {
		return nil
	}

	return x.Sensor
}

// ChangeSensorActivationRequest activates or deactivates a known sensor.
type ChangeSensorActivationRequest struct {
	// Id is the sensor UUID.
	Id string //nolint:revive,stylecheck // Mirrors protoc-gen-go field naming.
	// Active is the requested flag.
	Active bool
}

func (x *ChangeSensorActivationRequest) GetId() string { //nolint:revive,stylecheck // Mirrors protoc-gen-go getter naming.
	if x == nil {
		return ""
	}

	return x.Id
}

func (x *ChangeSensorActivationRequest) GetActive() bool {
	if x == nil {
		return false
	}

	return x.Active
}

// ProcessImageRequest carries one encoded camera frame.
type ProcessImageRequest struct {
	// Image is a PNG, JPEG or GIF encoded frame.
	Image []byte
}

func (x *ProcessImageRequest) GetImage() []byte {
	if x == nil {
		return nil
	}

	return x.Image
}
