// Package bowling holds the roll history of a game, the scoring engine that
// derives a score from it, and the Service that validates and applies rolls.
package bowling

import (
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/bowling/internal/game/ruleset"
)

// ErrRollOutOfRange is returned when a roll index outside the recorded
// history is read.
var ErrRollOutOfRange = errors.New("roll index out of range")

// Game is the roll history of one game.
//
// Invariant: RollCount() == len(rolls); rolls are only ever appended.
type Game struct {
	// ID is assigned by the Store on first save; zero means unsaved.
	ID int64
	// CurrentScore caches the last computed score. It is never the source of
	// truth for game progress.
	CurrentScore int
	CreatedAt    time.Time
	UpdatedAt    time.Time

	rolls []int
}

// NewGame returns an empty, unsaved game.
//
// Postcondition: RollCount() == 0 and ID == 0.
func NewGame() *Game {
	return &Game{rolls: make([]int, 0)}
}

// RestoreGame rebuilds a game from persisted fields.
//
// Precondition: rolls must have been produced by AppendRoll calls that passed
// validation.
// Postcondition: The returned game owns a copy of rolls.
func RestoreGame(id int64, rolls []int, currentScore int) *Game {
	cp := make([]int, len(rolls))
	copy(cp, rolls)
	return &Game{ID: id, CurrentScore: currentScore, rolls: cp}
}

// AppendRoll records pins as the next roll. It performs no validation.
//
// Postcondition: RollCount() increases by one.
func (g *Game) AppendRoll(pins int) {
	g.rolls = append(g.rolls, pins)
}

// RollCount returns the number of recorded rolls, which is also the index the
// next roll will occupy.
func (g *Game) RollCount() int {
	return len(g.rolls)
}

// Rolls returns a copy of the recorded rolls in chronological order.
func (g *Game) Rolls() []int {
	cp := make([]int, len(g.rolls))
	copy(cp, g.rolls)
	return cp
}

// PinsAt returns the pins knocked over by the roll at rollIndex.
//
// Postcondition: Returns an error wrapping ErrRollOutOfRange if rollIndex is
// outside [0, RollCount()).
func (g *Game) PinsAt(rollIndex int) (int, error) {
	if rollIndex < 0 || rollIndex >= len(g.rolls) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrRollOutOfRange, rollIndex, len(g.rolls))
	}
	return g.rolls[rollIndex], nil
}

// IsStrikeAt reports whether the roll at rollIndex knocked over every pin.
func (g *Game) IsStrikeAt(rollIndex int, rs ruleset.Ruleset) (bool, error) {
	pins, err := g.PinsAt(rollIndex)
	if err != nil {
		return false, err
	}
	return pins == rs.PinCount(), nil
}

// IsSpareAt reports whether the rolls at rollIndex and rollIndex+1 together
// knocked over every pin.
//
// Precondition: the caller knows both rolls belong to the same frame.
func (g *Game) IsSpareAt(rollIndex int, rs ruleset.Ruleset) (bool, error) {
	first, err := g.PinsAt(rollIndex)
	if err != nil {
		return false, err
	}
	second, err := g.PinsAt(rollIndex + 1)
	if err != nil {
		return false, err
	}
	return first+second == rs.PinCount(), nil
}

// IsBudgetExhausted reports whether the roll budget of rs is used up. A game
// can reach its natural end earlier; see bowler.Lane.
func (g *Game) IsBudgetExhausted(rs ruleset.Ruleset) bool {
	return g.RollCount() == rs.MaxRollCount()
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	cp := *g
	cp.rolls = g.Rolls()
	return &cp
}
