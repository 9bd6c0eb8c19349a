// Package flightsrpc is the wire contract of the flight inventory gRPC service.
package flightsrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const ServiceName = "flights.v1.FlightInventory"

const (
	getFlightMethod    = "/" + ServiceName + "/GetFlight"
	reserveSeatsMethod = "/" + ServiceName + "/ReserveSeats"
	releaseSeatsMethod = "/" + ServiceName + "/ReleaseSeats"
)

type FlightInventoryServer interface {
	GetFlight(context.Context, *GetFlightRequest) (*GetFlightResponse, error)
	ReserveSeats(context.Context, *SeatsRequest) (*SeatsResponse, error)
	ReleaseSeats(context.Context, *SeatsRequest) (*SeatsResponse, error)
}

func RegisterFlightInventoryServer(s grpc.ServiceRegistrar, srv FlightInventoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightInventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFlight", Handler: getFlightHandler},
		{MethodName: "ReserveSeats", Handler: reserveSeatsHandler},
		{MethodName: "ReleaseSeats", Handler: releaseSeatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flights/v1/flights.proto",
}

func getFlightHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetFlightRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightInventoryServer).GetFlight(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getFlightMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(FlightInventoryServer).GetFlight(ctx, req.(*GetFlightRequest))
	})
}

func reserveSeatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SeatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightInventoryServer).ReserveSeats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: reserveSeatsMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(FlightInventoryServer).ReserveSeats(ctx, req.(*SeatsRequest))
	})
}

func releaseSeatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SeatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightInventoryServer).ReleaseSeats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: releaseSeatsMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(FlightInventoryServer).ReleaseSeats(ctx, req.(*SeatsRequest))
	})
}

type FlightInventoryClient interface {
	GetFlight(ctx context.Context, in *GetFlightRequest, opts ...grpc.CallOption) (*GetFlightResponse, error)
	ReserveSeats(ctx context.Context, in *SeatsRequest, opts ...grpc.CallOption) (*SeatsResponse, error)
	ReleaseSeats(ctx context.Context, in *SeatsRequest, opts ...grpc.CallOption) (*SeatsResponse, error)
}

type flightInventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewFlightInventoryClient(cc grpc.ClientConnInterface) FlightInventoryClient {
	return &flightInventoryClient{cc: cc}
}

func (c *flightInventoryClient) GetFlight(ctx context.Context, in *GetFlightRequest, opts ...grpc.CallOption) (*GetFlightResponse, error) {
	out := new(GetFlightResponse)
	if err := c.cc.Invoke(ctx, getFlightMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *flightInventoryClient) ReserveSeats(ctx context.Context, in *SeatsRequest, opts ...grpc.CallOption) (*SeatsResponse, error) {
	out := new(SeatsResponse)
	if err := c.cc.Invoke(ctx, reserveSeatsMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *flightInventoryClient) ReleaseSeats(ctx context.Context, in *SeatsRequest, opts ...grpc.CallOption) (*SeatsResponse, error) {
	out := new(SeatsResponse)
	if err := c.cc.Invoke(ctx, releaseSeatsMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// Dial opens a plaintext client connection to the flight service.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	return grpc.NewClient(addr, append(base, opts...)...)
}
