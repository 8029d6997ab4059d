package bowling

import (
	"context"
	"errors"
)

// ErrGameNotFound is returned when no game exists for an id.
var ErrGameNotFound = errors.New("game not found")

// Store persists games.
//
// Implementations MUST be safe for concurrent use. They need not serialize a
// FindByID/Save pair on the same id; callers that mutate concurrently provide
// that themselves.
type Store interface {
	// FindByID returns the game with the given id.
	//
	// Postcondition: Returns a game the caller may mutate freely, or an error
	// wrapping ErrGameNotFound.
	FindByID(ctx context.Context, id int64) (*Game, error)
	// Save inserts or updates g keyed by g.ID, assigning an ID when g.ID == 0.
	//
	// Postcondition: Returns the stored game with ID and timestamps set.
	Save(ctx context.Context, g *Game) (*Game, error)
	// DeleteByID removes the game with the given id.
	//
	// Postcondition: Returns nil, or an error wrapping ErrGameNotFound.
	DeleteByID(ctx context.Context, id int64) error
	// FindAll returns every stored game ordered by ID.
	FindAll(ctx context.Context) ([]*Game, error)
}
