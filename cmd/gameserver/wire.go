//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/bowling/internal/config"
	"github.com/cory-johannsen/bowling/internal/game/bowling"
	"github.com/cory-johannsen/bowling/internal/gameserver"
)

func initializeApp(ctx context.Context, cfg config.Config) (*App, func(), error) {
	wire.Build(
		provideLogger,
		provideRuleset,
		provideStore,
		bowling.NewService,
		gameserver.NewBowlingServer,
		provideGRPCServer,
		newApp,
	)
	return nil, nil, nil
}
