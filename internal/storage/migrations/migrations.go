// Package migrations embeds the schema migrations for the SQL game stores and
// applies them with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Postgres holds the PostgreSQL migrations under "postgres/".
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the SQLite migrations under "sqlite/".
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// PostgresSource returns a migrate source driver over the embedded PostgreSQL
// migrations.
func PostgresSource() (source.Driver, error) {
	return iofs.New(Postgres, "postgres")
}

// SQLiteSource returns a migrate source driver over the embedded SQLite
// migrations.
func SQLiteSource() (source.Driver, error) {
	return iofs.New(SQLite, "sqlite")
}

// NewPostgres builds a migrator for the PostgreSQL database at dsn.
//
// Precondition: dsn is a postgres:// URL understood by golang-migrate.
// Postcondition: The caller owns the returned migrator and must Close it.
func NewPostgres(dsn string) (*migrate.Migrate, error) {
	src, err := PostgresSource()
	if err != nil {
		return nil, fmt.Errorf("opening embedded postgres migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres migrator: %w", err)
	}
	return m, nil
}

// UpSQLite applies every pending SQLite migration to db.
//
// Precondition: db is an open handle using the modernc "sqlite" driver.
// Postcondition: The games table exists. db is left open.
func UpSQLite(db *sql.DB) error {
	src, err := SQLiteSource()
	if err != nil {
		return fmt.Errorf("opening embedded sqlite migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migrate driver: %w", err)
	}
	return up("iofs", src, "sqlite", driver)
}

func up(sourceName string, src source.Driver, dbName string, driver database.Driver) error {
	m, err := migrate.NewWithInstance(sourceName, src, dbName, driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
