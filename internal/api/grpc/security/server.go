package security

import (
	"bytes"
	"context"
	"errors"
	"image"
	// Register decoders for camera frames.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gofrs/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/home-security/internal/domain/security"
	"github.com/oshokin/home-security/internal/logger"
	pb "github.com/oshokin/home-security/internal/pb/v1"
	imagesvc "github.com/oshokin/home-security/internal/service/image"
	engine "github.com/oshokin/home-security/internal/service/security"
)

// Service abstracts the engine operations the transport layer depends on.
type Service interface {
	Status(ctx context.Context) (*engine.Status, error)
	SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error
	GetSensors(ctx context.Context) ([]*domain.Sensor, error)
	GetSensor(ctx context.Context, id uuid.UUID) (*domain.Sensor, error)
	AddSensor(ctx context.Context, sensor *domain.Sensor) error
	RemoveSensor(ctx context.Context, sensor *domain.Sensor) error
	UpdateSensor(ctx context.Context, sensor *domain.Sensor) error
	ChangeSensorActivationStatus(ctx context.Context, sensor *domain.Sensor, active bool) error
	ProcessImage(ctx context.Context, img image.Image) error
}

// Server implements the SecurityService gRPC API.
type Server struct {
	pb.UnimplementedSecurityServiceServer

	// service provides the alarm decision logic.
	service Service
}

// NewServer wires the provided engine into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetStatus returns the engine state.
func (s *Server) GetStatus(ctx context.Context, _ *pb.GetStatusRequest) (*pb.StatusResponse, error) {
	return s.statusResponse(ctx)
}

// SetArmingStatus changes the arming status and returns the resulting state.
func (s *Server) SetArmingStatus(
	ctx context.Context,
	req *pb.SetArmingStatusRequest,
) (*pb.StatusResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	arming, err := domain.ParseArmingStatus(req.GetArmingStatus())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err = s.service.SetArmingStatus(ctx, arming); err != nil {
		return nil, toStatusError(ctx, "set arming status", err)
	}

	return s.statusResponse(ctx)
}

// ListSensors returns every sensor.
func (s *Server) ListSensors(ctx context.Context, _ *pb.ListSensorsRequest) (*pb.ListSensorsResponse, error) {
	sensors, err := s.service.GetSensors(ctx)
	if err != nil {
		return nil, toStatusError(ctx, "list sensors", err)
	}

	return &pb.ListSensorsResponse{Sensors: toProtoSensors(sensors)}, nil
}

// AddSensor registers a new inactive sensor with a fresh ID.
func (s *Server) AddSensor(ctx context.Context, req *pb.AddSensorRequest) (*pb.SensorResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "sensor name is required")
	}

	sensorType, err := domain.ParseSensorType(req.GetType())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sensor := domain.NewSensor(req.GetName(), sensorType)

	if err = s.service.AddSensor(ctx, sensor); err != nil {
		return nil, toStatusError(ctx, "add sensor", err)
	}

	return &pb.SensorResponse{Sensor: toProtoSensor(sensor)}, nil
}

// RemoveSensor unregisters a sensor by ID.
func (s *Server) RemoveSensor(
	ctx context.Context,
	req *pb.RemoveSensorRequest,
) (*pb.RemoveSensorResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := parseID(req.GetId())
	if err != nil {
		return nil, err
	}

	sensor, err := s.service.GetSensor(ctx, id)
	if err != nil {
		return nil, toStatusError(ctx, "get sensor", err)
	}

	if err = s.service.RemoveSensor(ctx, sensor); err != nil {
		return nil, toStatusError(ctx, "remove sensor", err)
	}

	return new(pb.RemoveSensorResponse), nil
}

// UpdateSensor stores the sensor as-is.
func (s *Server) UpdateSensor(ctx context.Context, req *pb.UpdateSensorRequest) (*pb.SensorResponse, error) {
	if req == nil || req.GetSensor() == nil {
		return nil, status.Error(codes.InvalidArgument, "sensor is required")
	}

	sensor, err := toDomainSensor(req.GetSensor())
	if err != nil {
		return nil, err
	}

	if err = s.service.UpdateSensor(ctx, sensor); err != nil {
		return nil, toStatusError(ctx, "update sensor", err)
	}

	return &pb.SensorResponse{Sensor: toProtoSensor(sensor)}, nil
}

// ChangeSensorActivation activates or deactivates a known sensor and returns the resulting state.
func (s *Server) ChangeSensorActivation(
	ctx context.Context,
	req *pb.ChangeSensorActivationRequest,
) (*pb.StatusResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := parseID(req.GetId())
	if err != nil {
		return nil, err
	}

	sensor, err := s.service.GetSensor(ctx, id)
	if err != nil {
		return nil, toStatusError(ctx, "get sensor", err)
	}

	if err = s.service.ChangeSensorActivationStatus(ctx, sensor, req.GetActive()); err != nil {
		return nil, toStatusError(ctx, "change sensor activation", err)
	}

	return s.statusResponse(ctx)
}

// ProcessImage decodes a camera frame, runs it through the engine and returns the resulting state.
func (s *Server) ProcessImage(ctx context.Context, req *pb.ProcessImageRequest) (*pb.StatusResponse, error) {
	if req == nil || len(req.GetImage()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "image is required")
	}

	img, _, err := image.Decode(bytes.NewReader(req.GetImage()))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode image: %v", err)
	}

	if err = s.service.ProcessImage(ctx, img); err != nil {
		return nil, toStatusError(ctx, "process image", err)
	}

	return s.statusResponse(ctx)
}

// statusResponse reads the engine state into a response.
func (s *Server) statusResponse(ctx context.Context) (*pb.StatusResponse, error) {
	state, err := s.service.Status(ctx)
	if err != nil {
		return nil, toStatusError(ctx, "get status", err)
	}

	return toProtoStatus(state), nil
}

// toStatusError maps engine errors to gRPC status codes.
// Internal errors are logged and hidden from the caller.
func toStatusError(ctx context.Context, action string, err error) error {
	switch {
	case errors.Is(err, engine.ErrSensorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, engine.ErrSensorRequired),
		errors.Is(err, engine.ErrInvalidSensor),
		errors.Is(err, engine.ErrInvalidArmingStatus),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrUnknownSensorType),
		errors.Is(err, imagesvc.ErrImageRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.ErrorKV(ctx, "Request failed", "action", action, "error", err)

		return status.Errorf(codes.Internal, "unable to %s", action)
	}
}

// parseID parses a sensor UUID from the wire.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid sensor id %q", raw)
	}

	return id, nil
}

// toDomainSensor converts a wire sensor to a domain sensor.
func toDomainSensor(sensor *pb.Sensor) (*domain.Sensor, error) {
	id, err := parseID(sensor.GetId())
	if err != nil {
		return nil, err
	}

	sensorType, err := domain.ParseSensorType(sensor.GetType())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return &domain.Sensor{
		ID:     id,
		Name:   sensor.GetName(),
		Type:   sensorType,
		Active: sensor.GetActive(),
	}, nil
}

// toProtoSensor converts a domain sensor to its wire form.
func toProtoSensor(sensor *domain.Sensor) *pb.Sensor {
	if sensor == nil {
		return nil
	}

	return &pb.Sensor{
		Id:     sensor.ID.String(),
		Name:   sensor.Name,
		Type:   sensor.Type.String(),
		Active: sensor.Active,
	}
}

// toProtoSensors converts a slice of domain sensors.
func toProtoSensors(sensors []*domain.Sensor) []*pb.Sensor {
	result := make([]*pb.Sensor, 0, len(sensors))
	for _, sensor := range sensors {
		result = append(result, toProtoSensor(sensor))
	}

	return result
}

// toProtoStatus converts an engine status to a response.
func toProtoStatus(state *engine.Status) *pb.StatusResponse {
	if state == nil {
		return new(pb.StatusResponse)
	}

	return &pb.StatusResponse{
		AlarmStatus:     state.Alarm.String(),
		ArmingStatus:    state.Arming.String(),
		Sensors:         toProtoSensors(state.Sensors),
		AnySensorActive: state.AnySensorActive,
		CatDetected:     state.CatDetected,
	}
}
