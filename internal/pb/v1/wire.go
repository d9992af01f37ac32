package securityv1

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// wireMessage converts a message to and from its protobuf representation.
// descriptor must be safe to call on a nil receiver.
type wireMessage interface {
	descriptor() protoreflect.MessageDescriptor
	toWire(m protoreflect.Message)
	fromWire(m protoreflect.Message)
}

// messagePtr is satisfied by a pointer to a message struct.
type messagePtr[T any] interface {
	*T
	wireMessage
}

// encode returns the protobuf form of msg.
func encode(msg wireMessage) *dynamicpb.Message {
	m := dynamicpb.NewMessage(msg.descriptor())
	msg.toWire(m)

	return m
}

// Marshal-side helpers skip zero values so that proto3 implicit presence holds.

func setString(m protoreflect.Message, name protoreflect.Name, value string) {
	if value != "" {
		m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfString(value))
	}
}

func setBool(m protoreflect.Message, name protoreflect.Name, value bool) {
	if value {
		m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfBool(value))
	}
}

func setBytes(m protoreflect.Message, name protoreflect.Name, value []byte) {
	if len(value) > 0 {
		m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfBytes(value))
	}
}

func setSensor(m protoreflect.Message, name protoreflect.Name, sensor *Sensor) {
	if sensor != nil {
		sensor.toWire(m.Mutable(m.Descriptor().Fields().ByName(name)).Message())
	}
}

func setSensors(m protoreflect.Message, name protoreflect.Name, sensors []*Sensor) {
	if len(sensors) == 0 {
		return
	}

	list := m.Mutable(m.Descriptor().Fields().ByName(name)).List()

	for _, sensor := range sensors {
		element := list.NewElement()
		sensor.toWire(element.Message())
		list.Append(element)
	}
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(m.Descriptor().Fields().ByName(name)).String()
}

func getBool(m protoreflect.Message, name protoreflect.Name) bool {
	return m.Get(m.Descriptor().Fields().ByName(name)).Bool()
}

func getBytes(m protoreflect.Message, name protoreflect.Name) []byte {
	return m.Get(m.Descriptor().Fields().ByName(name)).Bytes()
}

func getSensor(m protoreflect.Message, name protoreflect.Name) *Sensor {
	field := m.Descriptor().Fields().ByName(name)
	if !m.Has(field) {
		return nil
	}

	sensor := new(Sensor)
	sensor.fromWire(m.Get(field).Message())

	return sensor
}

func getSensors(m protoreflect.Message, name protoreflect.Name) []*Sensor {
	field := m.Descriptor().Fields().ByName(name)
	if !m.Has(field) {
		return nil
	}

	list := m.Get(field).List()
	sensors := make([]*Sensor, 0, list.Len())

	for i := range list.Len() {
		sensor := new(Sensor)
		sensor.fromWire(list.Get(i).Message())
		sensors = append(sensors, sensor)
	}

	return sensors
}

func (*Sensor) descriptor() protoreflect.MessageDescriptor { return sensorDescriptor }

func (x *Sensor) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setString(m, "id", x.Id)
	setString(m, "name", x.Name)
	setString(m, "type", x.Type)
	setBool(m, "active", x.Active)
}

func (x *Sensor) fromWire(m protoreflect.Message) {
	x.Id = getString(m, "id")
	x.Name = getString(m, "name")
	x.Type = getString(m, "type")
	x.Active = getBool(m, "active")
}

func (*GetStatusRequest) descriptor() protoreflect.MessageDescriptor {
	return getStatusRequestDescriptor
}

func (*GetStatusRequest) toWire(protoreflect.Message) {}

func (*GetStatusRequest) fromWire(protoreflect.Message) {}

func (*StatusResponse) descriptor() protoreflect.MessageDescriptor { return statusResponseDescriptor }

func (x *StatusResponse) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setString(m, "alarm_status", x.AlarmStatus)
	setString(m, "arming_status", x.ArmingStatus)
	setSensors(m, "sensors", x.Sensors)
	setBool(m, "any_sensor_active", x.AnySensorActive)
	setBool(m, "cat_detected", x.CatDetected)
}

func (x *StatusResponse) fromWire(m protoreflect.Message) {
	x.AlarmStatus = getString(m, "alarm_status")
	x.ArmingStatus = getString(m, "arming_status")
	x.Sensors = getSensors(m, "sensors")
	x.AnySensorActive = getBool(m, "any_sensor_active")
	x.CatDetected = getBool(m, "cat_detected")
}

func (*SetArmingStatusRequest) descriptor() protoreflect.MessageDescriptor {
	return setArmingStatusRequestDescriptor
}

func (x *SetArmingStatusRequest) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setString(m, "arming_status", x.ArmingStatus)
}

func (x *SetArmingStatusRequest) fromWire(m protoreflect.Message) {
	x.ArmingStatus = getString(m, "arming_status")
}

func (*ListSensorsRequest) descriptor() protoreflect.MessageDescriptor {
	return listSensorsRequestDescriptor
}

func (*ListSensorsRequest) toWire(protoreflect.Message) {}

func (*ListSensorsRequest) fromWire(protoreflect.Message) {}

func (*ListSensorsResponse) descriptor() protoreflect.MessageDescriptor {
	return listSensorsResponseDescriptor
}

func (x *ListSensorsResponse) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setSensors(m, "sensors", x.Sensors)
}

func (x *ListSensorsResponse) fromWire(m protoreflect.Message) {
	x.Sensors = getSensors(m, "sensors")
}

func (*AddSensorRequest) descriptor() protoreflect.MessageDescriptor {
	return addSensorRequestDescriptor
}

func (x *AddSensorRequest) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setString(m, "name", x.Name)
	setString(m, "type", x.Type)
}

func (x *AddSensorRequest) fromWire(m protoreflect.Message) {
	x.Name = getString(m, "name")
	x.Type = getString(m, "type")
}

func (*SensorResponse) descriptor() protoreflect.MessageDescriptor { return sensorResponseDescriptor }

func (x *SensorResponse) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setSensor(m, "sensor", x.Sensor)
}

func (x *SensorResponse) fromWire(m protoreflect.Message) {
	x.Sensor = getSensor(m, "sensor")
}

func (*RemoveSensorRequest) descriptor() protoreflect.MessageDescriptor {
	return removeSensorRequestDescriptor
}

func (x *RemoveSensorRequest) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setString(m, "id", x.Id)
}

func (x *RemoveSensorRequest) fromWire(m protoreflect.Message) {
	x.Id = getString(m, "id")
}

func (*RemoveSensorResponse) descriptor() protoreflect.MessageDescriptor {
	return removeSensorResponseDescriptor
}

func (*RemoveSensorResponse) toWire(protoreflect.Message) {}

func (*RemoveSensorResponse) fromWire(protoreflect.Message) {}

func (*UpdateSensorRequest) descriptor() protoreflect.MessageDescriptor {
	return updateSensorRequestDescriptor
}

func (x *UpdateSensorRequest) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setSensor(m, "sensor", x.Sensor)
}

func (x *UpdateSensorRequest) fromWire(m protoreflect.Message) {
	x.Sensor = getSensor(m, "sensor")
}

func (*ChangeSensorActivationRequest) descriptor() protoreflect.MessageDescriptor {
	return changeSensorActivationRequestDescriptor
}

func (x *ChangeSensorActivationRequest) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setString(m, "id", x.Id)
	setBool(m, "active", x.Active)
}

func (x *ChangeSensorActivationRequest) fromWire(m protoreflect.Message) {
	x.Id = getString(m, "id")
	x.Active = getBool(m, "active")
}

func (*ProcessImageRequest) descriptor() protoreflect.MessageDescriptor {
	return processImageRequestDescriptor
}

func (x *ProcessImageRequest) toWire(m protoreflect.Message) {
	if x == nil {
		return
	}

	setBytes(m, "image", x.Image)
}

func (x *ProcessImageRequest) fromWire(m protoreflect.Message) {
	x.Image = getBytes(m, "image")
}
