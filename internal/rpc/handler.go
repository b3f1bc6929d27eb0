package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// unary adapts a typed service method to a grpc method handler, running the
// server's interceptor chain around it.
func unary[S, Req, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// callOptions select the CBOR codec and zstd compression per call. They are
// not dial defaults so the standard health client keeps using protobuf.
func callOptions(extra []grpc.CallOption) []grpc.CallOption {
	opts := make([]grpc.CallOption, 0, len(extra)+2)
	opts = append(opts, grpc.CallContentSubtype(CodecName), grpc.UseCompressor(CompressorName))
	return append(opts, extra...)
}

func methodName(service, method string) string {
	return "/" + service + "/" + method
}
