package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "fuzzy.v1.Inference"

	evaluateMethod   = "Evaluate"
	evaluateFullName = "/" + ServiceName + "/" + evaluateMethod
)

// InferenceServer is the server API for the Inference service. Requests and
// responses are google.protobuf.Struct so no generated stubs are needed.
type InferenceServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Inference service for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InferenceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: evaluateMethod,
			Handler:    evaluateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fuzzy/v1/inference.proto",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InferenceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: evaluateFullName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InferenceServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion service-desc
