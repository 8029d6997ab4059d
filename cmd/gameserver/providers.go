package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/bowling/internal/config"
	"github.com/cory-johannsen/bowling/internal/game/bowling"
	"github.com/cory-johannsen/bowling/internal/game/ruleset"
	"github.com/cory-johannsen/bowling/internal/gameserver"
	"github.com/cory-johannsen/bowling/internal/observability"
	"github.com/cory-johannsen/bowling/internal/storage/memory"
	"github.com/cory-johannsen/bowling/internal/storage/postgres"
	"github.com/cory-johannsen/bowling/internal/storage/sqlite"
)

// App is the assembled game server.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Ruleset ruleset.Ruleset
	GRPC    *grpc.Server
}

func provideLogger(cfg config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Logging, "gameserver")
}

func provideRuleset(cfg config.Config, logger *zap.Logger) (ruleset.Ruleset, error) {
	v, err := ruleset.Resolve(cfg.Ruleset.Dir, cfg.Ruleset.Variant)
	if err != nil {
		return nil, fmt.Errorf("resolving ruleset: %w", err)
	}
	logger.Info("ruleset selected",
		zap.String("ruleset", v.ID()),
		zap.Int("pins", v.PinCount()),
		zap.Int("frames", v.FrameCount()),
		zap.Int("bonus_rolls", v.BonusRollCount()),
	)
	return v, nil
}

// provideStore opens the configured backend. The cleanup function releases it.
func provideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (bowling.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory store")
		return memory.NewStore(), func() {}, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite store", zap.String("path", cfg.Storage.SQLitePath))
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("closing sqlite store", zap.Error(err))
			}
		}, nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using postgres store", zap.String("host", cfg.Database.Host))
		return postgres.NewGameRepository(pool.DB()), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func provideGRPCServer(srv *gameserver.BowlingServer, logger *zap.Logger) *grpc.Server {
	return gameserver.NewGRPCServer(srv, logger)
}

func newApp(cfg config.Config, logger *zap.Logger, rs ruleset.Ruleset, s *grpc.Server) *App {
	return &App{Config: cfg, Logger: logger, Ruleset: rs, GRPC: s}
}
