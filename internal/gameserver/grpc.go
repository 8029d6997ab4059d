package gameserver

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer builds a grpc.Server serving srv and the standard health
// service, with request-id and access-log interceptors and OpenTelemetry
// stats.
//
// Precondition: srv and logger must be non-nil.
func NewGRPCServer(srv BowlingServiceServer, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		// RequestIDInterceptor runs first so the access log sees the id.
		grpc.ChainUnaryInterceptor(
			RequestIDInterceptor(logger),
			LoggingInterceptor(logger),
		),
	}
	s := grpc.NewServer(append(base, opts...)...)
	RegisterBowlingServiceServer(s, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}
