package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "xnova.engine.v1.EngineService"

// Method names
const (
	MethodRegisterPlayer = "RegisterPlayer"
	MethodStartJob       = "StartJob"
	MethodCancelJob      = "CancelJob"
	MethodGetStatus      = "GetStatus"
	MethodGetResources   = "GetResources"
	MethodCallback       = "Callback"
	MethodDeletePlayer   = "DeletePlayer"
	MethodListPlayers    = "ListPlayers"
)

// EngineServiceServer is the server API for EngineService. Every method
// takes and returns a google.protobuf.Struct.
type EngineServiceServer interface {
	RegisterPlayer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetResources(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Callback(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeletePlayer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPlayers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type serviceMethod func(EngineServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// EngineServiceDesc describes EngineService for grpc.Server.RegisterService
var EngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegisterPlayer, EngineServiceServer.RegisterPlayer),
		unary(MethodStartJob, EngineServiceServer.StartJob),
		unary(MethodCancelJob, EngineServiceServer.CancelJob),
		unary(MethodGetStatus, EngineServiceServer.GetStatus),
		unary(MethodGetResources, EngineServiceServer.GetResources),
		unary(MethodCallback, EngineServiceServer.Callback),
		unary(MethodDeletePlayer, EngineServiceServer.DeletePlayer),
		unary(MethodListPlayers, EngineServiceServer.ListPlayers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "xnova/engine/v1/engine.proto",
}

// RegisterEngineServiceServer registers srv with s
func RegisterEngineServiceServer(s grpc.ServiceRegistrar, srv EngineServiceServer) {
	s.RegisterService(&EngineServiceDesc, srv)
}

// FullMethod returns "/xnova.engine.v1.EngineService/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary(name string, call serviceMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EngineServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(EngineServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
