package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var schema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS games (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		team_name     TEXT    NOT NULL,
		opponent_name TEXT    NOT NULL DEFAULT '',
		status        TEXT    NOT NULL DEFAULT 'active',
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id       INTEGER NOT NULL REFERENCES games (id),
		name          TEXT    NOT NULL,
		jersey_number INTEGER,
		position      INTEGER NOT NULL CHECK (position >= 1 AND position <= 6),
		UNIQUE (game_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS stats (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id    INTEGER NOT NULL REFERENCES games (id),
		player_id  INTEGER NOT NULL REFERENCES players (id),
		stat_type  TEXT    NOT NULL CHECK (stat_type IN ('kill', 'ace', 'dig', 'block', 'assist', 'error')),
		value      INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL,
		UNIQUE (game_id, player_id, stat_type)
	)`,
}

type SQLiteStorage struct {
	Connection *sqlx.DB
}

// NewSQLiteStorage opens the database file. A single connection is kept so
// that every write goes through one serialized SQLite writer.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	conn, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

// Init creates the schema if it does not exist yet.
func (that *SQLiteStorage) Init(ctx context.Context) error {
	for _, query := range schema {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create schema: %w", err)
		}
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
