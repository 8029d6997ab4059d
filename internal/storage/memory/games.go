// Package memory provides an in-process bowling.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/bowling/internal/game/bowling"
)

// Store keeps games in a map. All methods are safe for concurrent use.
//
// Games are cloned on the way in and out, so callers never share state with
// the store.
type Store struct {
	mu     sync.RWMutex
	games  map[int64]*bowling.Game
	nextID int64
	now    func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		games:  make(map[int64]*bowling.Game),
		nextID: 1,
		now:    time.Now,
	}
}

// FindByID returns a copy of the game with the given id.
//
// Postcondition: Returns the game or an error wrapping bowling.ErrGameNotFound.
func (s *Store) FindByID(_ context.Context, id int64) (*bowling.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", bowling.ErrGameNotFound, id)
	}
	return g.Clone(), nil
}

// Save stores a copy of g, assigning the next sequence id when g.ID == 0.
//
// Postcondition: Returns a copy of the stored game with ID, CreatedAt, and
// UpdatedAt set.
func (s *Store) Save(_ context.Context, g *bowling.Game) (*bowling.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := g.Clone()
	now := s.now().UTC()
	if stored.ID == 0 {
		stored.ID = s.nextID
		s.nextID++
	} else if stored.ID >= s.nextID {
		s.nextID = stored.ID + 1
	}
	if prev, ok := s.games[stored.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.games[stored.ID] = stored
	return stored.Clone(), nil
}

// DeleteByID removes the game with the given id.
//
// Postcondition: Returns nil or an error wrapping bowling.ErrGameNotFound.
func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[id]; !ok {
		return fmt.Errorf("%w: id %d", bowling.ErrGameNotFound, id)
	}
	delete(s.games, id)
	return nil
}

// FindAll returns copies of all games ordered by ID.
func (s *Store) FindAll(_ context.Context) ([]*bowling.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*bowling.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Len returns the number of stored games.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

var _ bowling.Store = (*Store)(nil)
