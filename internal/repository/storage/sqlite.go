package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// register the pure Go sqlite driver with database/sql.
	_ "modernc.org/sqlite"
)

type Storage struct {
	Connection *sql.DB
}

// NewSQLiteStorage opens the database file, creating its directory when needed.
func NewSQLiteStorage(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("can't create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// sqlite allows one writer; a single connection also keeps :memory: databases shared.
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

func (that *Storage) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS game_stats (
			player_id   TEXT PRIMARY KEY,
			wins        INTEGER NOT NULL DEFAULT 0,
			losses      INTEGER NOT NULL DEFAULT 0,
			draws       INTEGER NOT NULL DEFAULT 0,
			total_games INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS game_results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id     TEXT NOT NULL,
			round       INTEGER NOT NULL,
			player_id   TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			difficulty  TEXT NOT NULL DEFAULT '',
			finished_at DATETIME NOT NULL,
			UNIQUE (game_id, round, player_id)
		);
		CREATE INDEX IF NOT EXISTS idx_game_results_player ON game_results(player_id, finished_at DESC);
	`

	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
