package bowler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bowling/internal/game/ruleset"
)

// Bowler picks pin counts for the next roll of a game.
type Bowler struct {
	src    Source
	logger *zap.Logger
}

// New creates a Bowler that draws from src without logging.
//
// Precondition: src must be non-nil.
func New(src Source) *Bowler {
	return &Bowler{src: src, logger: zap.NewNop()}
}

// NewLoggedBowler creates a Bowler that logs each pick at debug level.
//
// Precondition: src and logger must be non-nil.
func NewLoggedBowler(src Source, logger *zap.Logger) *Bowler {
	return &Bowler{src: src, logger: logger}
}

// Next returns a pin count for the roll after rolls, uniformly drawn from the
// pins left standing.
//
// Postcondition: ok is false once the game has reached its natural end.
// Otherwise pins is legal for rs and never exceeds the pins standing.
func (b *Bowler) Next(rolls []int, rs ruleset.Ruleset) (pins int, ok bool) {
	standing, done := Lane(rolls, rs)
	if done {
		return 0, false
	}
	pins = b.src.Intn(standing + 1)
	b.logger.Debug("generated roll",
		zap.Int("roll_index", len(rolls)),
		zap.Int("standing", standing),
		zap.Int("pins", pins),
	)
	return pins, true
}

// RollFunc records pins as the next roll and returns the updated history.
type RollFunc func(ctx context.Context, pins int) ([]int, error)

// PlayOut rolls with b until the game reaches its natural end, starting from
// the given history.
//
// Postcondition: Returns the final history, or the first error from roll or
// from ctx.
func PlayOut(ctx context.Context, b *Bowler, rs ruleset.Ruleset, rolls []int, roll RollFunc) ([]int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return rolls, err
		}
		pins, ok := b.Next(rolls, rs)
		if !ok {
			return rolls, nil
		}
		next, err := roll(ctx, pins)
		if err != nil {
			return rolls, fmt.Errorf("rolling %d pins at roll %d: %w", pins, len(rolls), err)
		}
		rolls = next
	}
}
