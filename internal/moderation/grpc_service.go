package moderation

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gostatus.moderation.v1.ModerationService"

// ModerationServer is the server API for ModerationService. Messages are
// structpb.Struct so no generated code is needed.
type ModerationServer interface {
	Approve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reject(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelRejection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Sweep(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterModerationServer(s grpc.ServiceRegistrar, srv ModerationServer) {
	s.RegisterService(&ModerationServiceDesc, srv)
}

var ModerationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ModerationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Approve", Handler: unaryHandler("Approve", ModerationServer.Approve)},
		{MethodName: "Reject", Handler: unaryHandler("Reject", ModerationServer.Reject)},
		{MethodName: "CancelRejection", Handler: unaryHandler("CancelRejection", ModerationServer.CancelRejection)},
		{MethodName: "Sweep", Handler: unaryHandler("Sweep", ModerationServer.Sweep)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gostatus/moderation/v1/moderation.proto",
}

type moderationCall func(ModerationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call moderationCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ModerationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ModerationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ModerationClient calls ModerationService over an existing connection.
type ModerationClient struct {
	cc grpc.ClientConnInterface
}

func NewModerationClient(cc grpc.ClientConnInterface) *ModerationClient {
	return &ModerationClient{cc: cc}
}

func (c *ModerationClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ModerationClient) Approve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Approve", in, opts...)
}

func (c *ModerationClient) Reject(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Reject", in, opts...)
}

func (c *ModerationClient) CancelRejection(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CancelRejection", in, opts...)
}

func (c *ModerationClient) Sweep(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Sweep", in, opts...)
}
