package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bowling.v1.BowlingService"

// Full method names, as seen by interceptors and clients.
const (
	MethodCreateGame = "/" + ServiceName + "/CreateGame"
	MethodGetGame    = "/" + ServiceName + "/GetGame"
	MethodListGames  = "/" + ServiceName + "/ListGames"
	MethodRoll       = "/" + ServiceName + "/Roll"
	MethodScore      = "/" + ServiceName + "/Score"
	MethodDeleteGame = "/" + ServiceName + "/DeleteGame"
	MethodRuleset    = "/" + ServiceName + "/Ruleset"
	MethodStatus     = "/" + ServiceName + "/Status"
)

// BowlingServiceServer is the server API for the bowling service.
type BowlingServiceServer interface {
	CreateGame(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetGame(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListGames(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Roll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Score(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	DeleteGame(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	Ruleset(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterBowlingServiceServer registers srv on s.
func RegisterBowlingServiceServer(s grpc.ServiceRegistrar, srv BowlingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler builds the grpc.MethodDesc handler for one RPC.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(BowlingServiceServer, context.Context, *Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BowlingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BowlingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for bowling.v1.BowlingService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BowlingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateGame",
			Handler:    unaryHandler(MethodCreateGame, BowlingServiceServer.CreateGame),
		},
		{
			MethodName: "GetGame",
			Handler:    unaryHandler(MethodGetGame, BowlingServiceServer.GetGame),
		},
		{
			MethodName: "ListGames",
			Handler:    unaryHandler(MethodListGames, BowlingServiceServer.ListGames),
		},
		{
			MethodName: "Roll",
			Handler:    unaryHandler(MethodRoll, BowlingServiceServer.Roll),
		},
		{
			MethodName: "Score",
			Handler:    unaryHandler(MethodScore, BowlingServiceServer.Score),
		},
		{
			MethodName: "DeleteGame",
			Handler:    unaryHandler(MethodDeleteGame, BowlingServiceServer.DeleteGame),
		},
		{
			MethodName: "Ruleset",
			Handler:    unaryHandler(MethodRuleset, BowlingServiceServer.Ruleset),
		},
		{
			MethodName: "Status",
			Handler:    unaryHandler(MethodStatus, BowlingServiceServer.Status),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bowling/v1/bowling.proto",
}
