package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "rbindex.Index"

// IndexServer is the server side of the rbindex.Index service.
type IndexServer interface {
	Insert(context.Context, *InsertRequest) (*InsertResponse, error)
	Get(context.Context, *KeyRequest) (*GetResponse, error)
	Remove(context.Context, *KeyRequest) (*RemoveResponse, error)
	Glb(context.Context, *KeyRequest) (*BoundResponse, error)
	Lub(context.Context, *KeyRequest) (*BoundResponse, error)
	Stats(context.Context, *StatsRequest) (*StatsResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*IndexServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Insert", IndexServer.Insert),
		unary("Get", IndexServer.Get),
		unary("Remove", IndexServer.Remove),
		unary("Glb", IndexServer.Glb),
		unary("Lub", IndexServer.Lub),
		unary("Stats", IndexServer.Stats),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rbindex/index.proto",
}

func RegisterIndexServer(s grpc.ServiceRegistrar, srv IndexServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

func unary[Req, Resp any](
	name string,
	call func(IndexServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv any,
			ctx context.Context,
			dec func(any) error,
			interceptor grpc.UnaryServerInterceptor,
		) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(IndexServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(IndexServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
