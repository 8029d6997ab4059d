package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/bowling/internal/game/bowling"
)

// GameRepository stores games in the games table.
type GameRepository struct {
	db *pgxpool.Pool
}

// NewGameRepository creates a GameRepository backed by db.
//
// Precondition: db must be open and migrated.
func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

const selectGame = `SELECT id, rolls, current_score, created_at, updated_at FROM games`

// FindByID loads the game with the given id.
//
// Postcondition: Returns the game or an error wrapping bowling.ErrGameNotFound.
func (r *GameRepository) FindByID(ctx context.Context, id int64) (*bowling.Game, error) {
	g, err := scanGame(r.db.QueryRow(ctx, selectGame+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", bowling.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game %d: %w", id, err)
	}
	return g, nil
}

// Save inserts g when g.ID == 0 and otherwise upserts the row with g.ID.
// An explicit id moves the id sequence past it so later inserts cannot
// collide.
//
// Postcondition: Returns the stored game with ID and timestamps set.
func (r *GameRepository) Save(ctx context.Context, g *bowling.Game) (*bowling.Game, error) {
	rolls := toInt32s(g.Rolls())

	if g.ID == 0 {
		stored, err := scanGame(r.db.QueryRow(ctx,
			`INSERT INTO games (rolls, roll_count, current_score)
			 VALUES ($1, $2, $3)
			 RETURNING id, rolls, current_score, created_at, updated_at`,
			rolls, len(rolls), g.CurrentScore,
		))
		if err != nil {
			return nil, fmt.Errorf("saving new game: %w", err)
		}
		return stored, nil
	}

	var stored *bowling.Game
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		stored, err = scanGame(tx.QueryRow(ctx,
			`INSERT INTO games (id, rolls, roll_count, current_score)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE
			    SET rolls = EXCLUDED.rolls,
			        roll_count = EXCLUDED.roll_count,
			        current_score = EXCLUDED.current_score,
			        updated_at = NOW()
			 RETURNING id, rolls, current_score, created_at, updated_at`,
			g.ID, rolls, len(rolls), g.CurrentScore,
		))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, advanceIDSequence)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("saving game %d: %w", g.ID, err)
	}
	return stored, nil
}

// advanceIDSequence sets the games id sequence to the largest stored id, so
// the next nextval returns a fresh id.
const advanceIDSequence = `SELECT setval(
	pg_get_serial_sequence('games', 'id'),
	GREATEST(
		(SELECT COALESCE(MAX(id), 1) FROM games),
		(SELECT last_value FROM games_id_seq)
	)
)`

// DeleteByID removes the game with the given id.
//
// Postcondition: Returns nil or an error wrapping bowling.ErrGameNotFound.
func (r *GameRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting game %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", bowling.ErrGameNotFound, id)
	}
	return nil
}

// FindAll returns every game ordered by id.
func (r *GameRepository) FindAll(ctx context.Context) ([]*bowling.Game, error) {
	rows, err := r.db.Query(ctx, selectGame+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	var games []*bowling.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating games: %w", err)
	}
	return games, nil
}

func scanGame(row pgx.Row) (*bowling.Game, error) {
	var (
		id        int64
		rolls     []int32
		score     int
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &rolls, &score, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	g := bowling.RestoreGame(id, fromInt32s(rolls), score)
	g.CreatedAt = createdAt.UTC()
	g.UpdatedAt = updatedAt.UTC()
	return g, nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func fromInt32s(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

var _ bowling.Store = (*GameRepository)(nil)
