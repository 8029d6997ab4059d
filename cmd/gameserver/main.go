// Package main provides the game server binary that serves the bowling
// service over gRPC.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/bowling/internal/config"
	"github.com/cory-johannsen/bowling/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	app, cleanup, err := initializeApp(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing game server: %v", err)
	}
	defer cleanup()
	logger := app.Logger
	defer func() { _ = logger.Sync() }()

	lifecycle := server.NewLifecycle(logger, cfg.GameServer.ShutdownTimeout)
	lifecycle.Add("grpc", grpcService(app.GRPC, cfg.GameServer.Addr(), logger))

	logger.Info("game server ready",
		zap.String("grpc_addr", cfg.GameServer.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("ruleset", app.Ruleset.ID()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("game server stopped with error", zap.Error(err))
		cleanup()
		_ = logger.Sync()
		log.Fatalf("game server: %v", err)
	}
}

// grpcService serves s on addr. Stop drains in-flight calls and falls back to
// a hard stop when ctx expires.
func grpcService(s *grpc.Server, addr string, logger *zap.Logger) server.Service {
	return &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
			if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		},
		StopFn: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				s.GracefulStop()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				s.Stop()
				return ctx.Err()
			}
		},
	}
}
