package securityv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "security.v1.SecurityService"

// SecurityServiceServer is the server API for SecurityService.
type SecurityServiceServer interface {
	GetStatus(context.Context, *GetStatusRequest) (*StatusResponse, error)
	SetArmingStatus(context.Context, *SetArmingStatusRequest) (*StatusResponse, error)
	ListSensors(context.Context, *ListSensorsRequest) (*ListSensorsResponse, error)
	AddSensor(context.Context, *AddSensorRequest) (*SensorResponse, error)
	RemoveSensor(context.Context, *RemoveSensorRequest) (*RemoveSensorResponse, error)
	UpdateSensor(context.Context, *UpdateSensorRequest) (*SensorResponse, error)
	ChangeSensorActivation(context.Context, *ChangeSensorActivationRequest) (*StatusResponse, error)
	ProcessImage(context.Context, *ProcessImageRequest) (*StatusResponse, error)
}

// SecurityServiceClient is the client API for SecurityService.
type SecurityServiceClient interface {
	GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	SetArmingStatus(ctx context.Context, in *SetArmingStatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	ListSensors(ctx context.Context, in *ListSensorsRequest, opts ...grpc.CallOption) (*ListSensorsResponse, error)
	AddSensor(ctx context.Context, in *AddSensorRequest, opts ...grpc.CallOption) (*SensorResponse, error)
	RemoveSensor(ctx context.Context, in *RemoveSensorRequest, opts ...grpc.CallOption) (*RemoveSensorResponse, error)
	UpdateSensor(ctx context.Context, in *UpdateSensorRequest, opts ...grpc.CallOption) (*SensorResponse, error)
	ChangeSensorActivation(
		ctx context.Context,
		in *ChangeSensorActivationRequest,
		opts ...grpc.CallOption,
	) (*StatusResponse, error)
	ProcessImage(ctx context.Context, in *ProcessImageRequest, opts ...grpc.CallOption) (*StatusResponse, error)
}

// UnimplementedSecurityServiceServer answers every method with codes.Unimplemented.
type UnimplementedSecurityServiceServer struct{}

func (UnimplementedSecurityServiceServer) GetStatus(context.Context, *GetStatusRequest) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatus not implemented")
}

func (UnimplementedSecurityServiceServer) SetArmingStatus(
	context.Context,
	*SetArmingStatusRequest,
) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetArmingStatus not implemented")
}

func (UnimplementedSecurityServiceServer) ListSensors(
	context.Context,
	*ListSensorsRequest,
) (*ListSensorsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSensors not implemented")
}

func (UnimplementedSecurityServiceServer) AddSensor(context.Context, *AddSensorRequest) (*SensorResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddSensor not implemented")
}

func (UnimplementedSecurityServiceServer) RemoveSensor(
	context.Context,
	*RemoveSensorRequest,
) (*RemoveSensorResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveSensor not implemented")
}

func (UnimplementedSecurityServiceServer) UpdateSensor(
	context.Context,
	*UpdateSensorRequest,
) (*SensorResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateSensor not implemented")
}

func (UnimplementedSecurityServiceServer) ChangeSensorActivation(
	context.Context,
	*ChangeSensorActivationRequest,
) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangeSensorActivation not implemented")
}

func (UnimplementedSecurityServiceServer) ProcessImage(
	context.Context,
	*ProcessImageRequest,
) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ProcessImage not implemented")
}

// SecurityServiceDesc describes SecurityService for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package level by convention.
var SecurityServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecurityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("GetStatus", SecurityServiceServer.GetStatus),
		unaryMethod("SetArmingStatus", SecurityServiceServer.SetArmingStatus),
		unaryMethod("ListSensors", SecurityServiceServer.ListSensors),
		unaryMethod("AddSensor", SecurityServiceServer.AddSensor),
		unaryMethod("RemoveSensor", SecurityServiceServer.RemoveSensor),
		unaryMethod("UpdateSensor", SecurityServiceServer.UpdateSensor),
		unaryMethod("ChangeSensorActivation", SecurityServiceServer.ChangeSensorActivation),
		unaryMethod("ProcessImage", SecurityServiceServer.ProcessImage),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FileName,
}

// RegisterSecurityServiceServer registers srv on s.
func RegisterSecurityServiceServer(s grpc.ServiceRegistrar, srv SecurityServiceServer) {
	s.RegisterService(&SecurityServiceDesc, srv)
}

// FullMethod returns the full gRPC method name, e.g. /security.v1.SecurityService/GetStatus.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryMethod builds a method descriptor that decodes the protobuf request into Req,
// calls the server method and encodes the returned Resp.
func unaryMethod[Req, Resp any, PReq messagePtr[Req], PResp messagePtr[Resp]](
	name string,
	call func(SecurityServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv any,
			ctx context.Context,
			dec func(any) error,
			interceptor grpc.UnaryServerInterceptor,
		) (any, error) {
			var request PReq

			wire := dynamicpb.NewMessage(request.descriptor())
			if err := dec(wire); err != nil {
				return nil, err
			}

			in := new(Req)
			PReq(in).fromWire(wire)

			server, _ := srv.(SecurityServiceServer)

			if interceptor == nil {
				out, err := call(server, ctx, in)
				if err != nil {
					return nil, err
				}

				return encodeResponse[Resp, PResp](name, out)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}

			handler := func(ctx context.Context, req any) (any, error) {
				typed, _ := req.(*Req)

				return call(server, ctx, typed)
			}

			out, err := interceptor(ctx, in, info, handler)
			if err != nil {
				return nil, err
			}

			typed, _ := out.(*Resp)

			return encodeResponse[Resp, PResp](name, typed)
		},
	}
}

// encodeResponse converts a server result into its protobuf form.
func encodeResponse[Resp any, PResp messagePtr[Resp]](name string, out *Resp) (any, error) {
	if out == nil {
		return nil, status.Errorf(codes.Internal, "method %s returned no response", name)
	}

	return encode(PResp(out)), nil
}

// securityServiceClient invokes SecurityService over a connection.
type securityServiceClient struct {
	// cc is the client connection.
	cc grpc.ClientConnInterface
}

// NewSecurityServiceClient returns a client for SecurityService over cc.
func NewSecurityServiceClient(cc grpc.ClientConnInterface) SecurityServiceClient { //nolint:ireturn // Mirrors generated clients.
	return &securityServiceClient{cc: cc}
}

func (c *securityServiceClient) GetStatus(
	ctx context.Context,
	in *GetStatusRequest,
	opts ...grpc.CallOption,
) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "GetStatus", in, opts)
}

func (c *securityServiceClient) SetArmingStatus(
	ctx context.Context,
	in *SetArmingStatusRequest,
	opts ...grpc.CallOption,
) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "SetArmingStatus", in, opts)
}

func (c *securityServiceClient) ListSensors(
	ctx context.Context,
	in *ListSensorsRequest,
	opts ...grpc.CallOption,
) (*ListSensorsResponse, error) {
	return invoke[ListSensorsResponse](ctx, c.cc, "ListSensors", in, opts)
}

func (c *securityServiceClient) AddSensor(
	ctx context.Context,
	in *AddSensorRequest,
	opts ...grpc.CallOption,
) (*SensorResponse, error) {
	return invoke[SensorResponse](ctx, c.cc, "AddSensor", in, opts)
}

func (c *securityServiceClient) RemoveSensor(
	ctx context.Context,
	in *RemoveSensorRequest,
	opts ...grpc.CallOption,
) (*RemoveSensorResponse, error) {
	return invoke[RemoveSensorResponse](ctx, c.cc, "RemoveSensor", in, opts)
}

func (c *securityServiceClient) UpdateSensor(
	ctx context.Context,
	in *UpdateSensorRequest,
	opts ...grpc.CallOption,
) (*SensorResponse, error) {
	return invoke[SensorResponse](ctx, c.cc, "UpdateSensor", in, opts)
}

func (c *securityServiceClient) ChangeSensorActivation(
	ctx context.Context,
	in *ChangeSensorActivationRequest,
	opts ...grpc.CallOption,
) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "ChangeSensorActivation", in, opts)
}

func (c *securityServiceClient) ProcessImage(
	ctx context.Context,
	in *ProcessImageRequest,
	opts ...grpc.CallOption,
) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "ProcessImage", in, opts)
}

// invoke performs a unary call with protobuf encoded messages.
func invoke[Resp any, PResp messagePtr[Resp]](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in wireMessage,
	opts []grpc.CallOption,
) (*Resp, error) {
	var response PResp

	wire := dynamicpb.NewMessage(response.descriptor())
	if err := cc.Invoke(ctx, FullMethod(method), encode(in), wire, opts...); err != nil {
		return nil, err
	}

	out := new(Resp)
	PResp(out).fromWire(wire)

	return out, nil
}
