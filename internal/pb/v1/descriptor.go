package securityv1

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// FileName is the path of the security.v1 schema in the protobuf registry.
const FileName = "security/v1/security.proto"

// protoPackage is the protobuf package of every message.
const protoPackage = "security.v1"

//nolint:gochecknoglobals // Descriptors are built once and read-only afterwards.
var (
	// File describes the security.v1 schema: messages and SecurityService.
	File = buildFile()

	sensorDescriptor                        = File.Messages().ByName("Sensor")
	getStatusRequestDescriptor              = File.Messages().ByName("GetStatusRequest")
	statusResponseDescriptor                = File.Messages().ByName("StatusResponse")
	setArmingStatusRequestDescriptor        = File.Messages().ByName("SetArmingStatusRequest")
	listSensorsRequestDescriptor            = File.Messages().ByName("ListSensorsRequest")
	listSensorsResponseDescriptor           = File.Messages().ByName("ListSensorsResponse")
	addSensorRequestDescriptor              = File.Messages().ByName("AddSensorRequest")
	sensorResponseDescriptor                = File.Messages().ByName("SensorResponse")
	removeSensorRequestDescriptor           = File.Messages().ByName("RemoveSensorRequest")
	removeSensorResponseDescriptor          = File.Messages().ByName("RemoveSensorResponse")
	updateSensorRequestDescriptor           = File.Messages().ByName("UpdateSensorRequest")
	changeSensorActivationRequestDescriptor = File.Messages().ByName("ChangeSensorActivationRequest")
	processImageRequestDescriptor           = File.Messages().ByName("ProcessImageRequest")
)

//nolint:gochecknoinits // The schema must be resolvable by gRPC reflection.
func init() {
	if err := protoregistry.GlobalFiles.RegisterFile(File); err != nil {
		panic(fmt.Sprintf("register %s: %v", FileName, err))
	}
}

// buildFile assembles the schema the way protoc would describe security.proto.
func buildFile() protoreflect.FileDescriptor {
	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(FileName),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/oshokin/home-security/internal/pb/v1;securityv1"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			message("Sensor",
				scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("type", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("active", 4, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			),
			message("GetStatusRequest"),
			message("StatusResponse",
				scalar("alarm_status", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("arming_status", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				repeatedSensors("sensors", 3),
				scalar("any_sensor_active", 4, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
				scalar("cat_detected", 5, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			),
			message("SetArmingStatusRequest",
				scalar("arming_status", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("ListSensorsRequest"),
			message("ListSensorsResponse",
				repeatedSensors("sensors", 1),
			),
			message("AddSensorRequest",
				scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("type", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("SensorResponse",
				singleSensor("sensor", 1),
			),
			message("RemoveSensorRequest",
				scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("RemoveSensorResponse"),
			message("UpdateSensorRequest",
				singleSensor("sensor", 1),
			),
			message("ChangeSensorActivationRequest",
				scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("active", 2, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			),
			message("ProcessImageRequest",
				scalar("image", 1, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
			),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("SecurityService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("GetStatus", "GetStatusRequest", "StatusResponse"),
				method("SetArmingStatus", "SetArmingStatusRequest", "StatusResponse"),
				method("ListSensors", "ListSensorsRequest", "ListSensorsResponse"),
				method("AddSensor", "AddSensorRequest", "SensorResponse"),
				method("RemoveSensor", "RemoveSensorRequest", "RemoveSensorResponse"),
				method("UpdateSensor", "UpdateSensorRequest", "SensorResponse"),
				method("ChangeSensorActivation", "ChangeSensorActivationRequest", "StatusResponse"),
				method("ProcessImage", "ProcessImageRequest", "StatusResponse"),
			},
		}},
	}

	fd, err := protodesc.NewFile(file, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("build %s: %v", FileName, err))
	}

	return fd
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

func scalar(
	name string,
	number int32,
	kind descriptorpb.FieldDescriptorProto_Type,
) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   kind.Enum(),
	}
}

func singleSensor(name string, number int32) *descriptorpb.FieldDescriptorProto {
	field := scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	field.TypeName = proto.String(qualified("Sensor"))

	return field
}

func repeatedSensors(name string, number int32) *descriptorpb.FieldDescriptorProto {
	field := singleSensor(name, number)
	field.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()

	return field
}

func method(name, input, output string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(qualified(input)),
		OutputType: proto.String(qualified(output)),
	}
}

func qualified(name string) string {
	return "." + protoPackage + "." + name
}
