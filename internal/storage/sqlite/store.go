// Package sqlite provides a SQLite-backed bowling.Store for single-node
// deployments. Rolls are kept as a JSON array in a text column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/bowling/internal/game/bowling"
	"github.com/cory-johannsen/bowling/internal/storage/migrations"
)

// Store persists games in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path and applies the embedded migrations.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a migrated Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite directory: %w", err)
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if err := migrations.UpSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating sqlite db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const selectGame = `SELECT id, rolls, current_score, created_at, updated_at FROM games`

// FindByID loads the game with the given id.
//
// Postcondition: Returns the game or an error wrapping bowling.ErrGameNotFound.
func (s *Store) FindByID(ctx context.Context, id int64) (*bowling.Game, error) {
	g, err := scanGame(s.db.QueryRowContext(ctx, selectGame+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", bowling.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game %d: %w", id, err)
	}
	return g, nil
}

// Save inserts g when g.ID == 0 and otherwise upserts the row with g.ID.
//
// Postcondition: Returns the stored game with ID and timestamps set.
func (s *Store) Save(ctx context.Context, g *bowling.Game) (*bowling.Game, error) {
	rolls, err := json.Marshal(g.Rolls())
	if err != nil {
		return nil, fmt.Errorf("encoding rolls: %w", err)
	}
	now := s.now().UTC().UnixMilli()

	var row *sql.Row
	if g.ID == 0 {
		row = s.db.QueryRowContext(ctx,
			`INSERT INTO games (rolls, roll_count, current_score, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 RETURNING id, rolls, current_score, created_at, updated_at`,
			string(rolls), g.RollCount(), g.CurrentScore, now, now,
		)
	} else {
		row = s.db.QueryRowContext(ctx,
			`INSERT INTO games (id, rolls, roll_count, current_score, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE
			    SET rolls = excluded.rolls,
			        roll_count = excluded.roll_count,
			        current_score = excluded.current_score,
			        updated_at = excluded.updated_at
			 RETURNING id, rolls, current_score, created_at, updated_at`,
			g.ID, string(rolls), g.RollCount(), g.CurrentScore, now, now,
		)
	}

	stored, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("saving game %d: %w", g.ID, err)
	}
	return stored, nil
}

// DeleteByID removes the game with the given id.
//
// Postcondition: Returns nil or an error wrapping bowling.ErrGameNotFound.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting game %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting game %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", bowling.ErrGameNotFound, id)
	}
	return nil
}

// FindAll returns every game ordered by id.
func (s *Store) FindAll(ctx context.Context) ([]*bowling.Game, error) {
	rows, err := s.db.QueryContext(ctx, selectGame+` ORDER BY id`)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*bowling.Game, error) {
	var (
		id        int64
		rollsJSON string
		score     int
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&id, &rollsJSON, &score, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var rolls []int
	if err := json.Unmarshal([]byte(rollsJSON), &rolls); err != nil {
		return nil, fmt.Errorf("decoding rolls of game %d: %w", id, err)
	}
	g := bowling.RestoreGame(id, rolls, score)
	g.CreatedAt = time.UnixMilli(createdAt).UTC()
	g.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return g, nil
}

var _ bowling.Store = (*Store)(nil)
