package bowling

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bowling/internal/game/ruleset"
)

// ErrIllegalPinCount is returned when a roll's pin count is negative or
// exceeds the ruleset's pin count.
var ErrIllegalPinCount = errors.New("illegal pin count")

// ErrRollBudgetExceeded is returned when a game has already recorded the
// ruleset's maximum number of rolls.
var ErrRollBudgetExceeded = errors.New("roll budget exceeded")

// Service validates and applies rolls and scores games held in a Store.
type Service struct {
	store   Store
	ruleset ruleset.Ruleset
	logger  *zap.Logger
}

// NewService creates a Service bound to one ruleset.
//
// Precondition: store, rs, and logger must be non-nil.
func NewService(store Store, rs ruleset.Ruleset, logger *zap.Logger) *Service {
	return &Service{store: store, ruleset: rs, logger: logger}
}

// Ruleset returns the ruleset the service validates against.
func (s *Service) Ruleset() ruleset.Ruleset {
	return s.ruleset
}

// ApplyRoll records pins as the next roll of game id.
//
// The pin count is checked before the roll budget, so a request that breaks
// both rules reports ErrIllegalPinCount.
//
// Postcondition: On success the game has one more roll and has been saved.
// On any error the stored game is unchanged. Errors wrap ErrGameNotFound,
// ErrIllegalPinCount, ErrRollBudgetExceeded, or a store failure.
func (s *Service) ApplyRoll(ctx context.Context, id int64, pins int) (*Game, error) {
	g, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading game %d: %w", id, err)
	}
	if s.ruleset.IsIllegalPinCount(pins) {
		s.logger.Debug("roll rejected",
			zap.Int64("game_id", id),
			zap.Int("pins", pins),
			zap.String("reason", ErrIllegalPinCount.Error()),
		)
		return nil, fmt.Errorf("game %d: %w: %d not in [0, %d]", id, ErrIllegalPinCount, pins, s.ruleset.PinCount())
	}
	if s.ruleset.IsRollBudgetExceeded(g.RollCount()) {
		s.logger.Debug("roll rejected",
			zap.Int64("game_id", id),
			zap.Int("roll_count", g.RollCount()),
			zap.String("reason", ErrRollBudgetExceeded.Error()),
		)
		return nil, fmt.Errorf("game %d: %w: %d rolls recorded", id, ErrRollBudgetExceeded, g.RollCount())
	}

	g.AppendRoll(pins)
	saved, err := s.store.Save(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("saving game %d: %w", id, err)
	}
	s.logger.Debug("roll applied",
		zap.Int64("game_id", id),
		zap.Int("pins", pins),
		zap.Int("roll_count", saved.RollCount()),
	)
	return saved, nil
}

// Score computes the current score of game id, caches it on the game, and
// saves it.
//
// Postcondition: Returns the saved game with CurrentScore == Score(game), or
// an error wrapping ErrGameNotFound or a store failure.
func (s *Service) Score(ctx context.Context, id int64) (*Game, error) {
	g, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading game %d: %w", id, err)
	}
	g.CurrentScore = Score(g, s.ruleset)
	saved, err := s.store.Save(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("saving game %d: %w", id, err)
	}
	return saved, nil
}

// CreateGame stores a new empty game.
//
// Postcondition: Returns the saved game with a non-zero ID.
func (s *Service) CreateGame(ctx context.Context) (*Game, error) {
	g, err := s.store.Save(ctx, NewGame())
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	s.logger.Info("game created",
		zap.Int64("game_id", g.ID),
		zap.String("ruleset", s.ruleset.ID()),
	)
	return g, nil
}

// Game returns game id without modifying it.
func (s *Service) Game(ctx context.Context, id int64) (*Game, error) {
	g, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading game %d: %w", id, err)
	}
	return g, nil
}

// ListGames returns every stored game ordered by ID.
func (s *Service) ListGames(ctx context.Context) ([]*Game, error) {
	games, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// DeleteGame removes game id.
//
// Postcondition: Returns nil, or an error wrapping ErrGameNotFound or a store failure.
func (s *Service) DeleteGame(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("deleting game %d: %w", id, err)
	}
	s.logger.Info("game deleted", zap.Int64("game_id", id))
	return nil
}
