package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
)

var ErrResultAlreadyRecorded = errors.New("result already recorded")

const defaultHistoryLimit = 20

type StatsRepository interface {
	Get(ctx context.Context, playerID string) (entity.GameStats, error)
	Record(ctx context.Context, stats entity.GameStats, result entity.GameResult) error
	History(ctx context.Context, playerID string, limit int) ([]entity.GameResult, error)
}

type statsRepository struct {
	conn *sql.DB
}

func NewStatsRepository(conn *sql.DB) StatsRepository {
	return &statsRepository{
		conn: conn,
	}
}

// Get returns zero stats for players that have not finished a game yet.
func (that *statsRepository) Get(ctx context.Context, playerID string) (entity.GameStats, error) {
	query := `SELECT wins, losses, draws, total_games FROM game_stats WHERE player_id = ?`

	stats := entity.GameStats{PlayerID: playerID}

	err := that.conn.QueryRowContext(ctx, query, playerID).Scan(&stats.Wins, &stats.Losses, &stats.Draws, &stats.TotalGames)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("can't get stats: %w", err)
	}

	return stats, nil
}

// Record stores the updated stats together with the result row. A result for the same
// game round and player is accepted only once.
func (that *statsRepository) Record(ctx context.Context, stats entity.GameStats, result entity.GameResult) error {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint: errcheck // no-op after commit

	inserted, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO game_results (game_id, round, player_id, outcome, difficulty, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.GameID, result.Round, result.PlayerID, string(result.Outcome), string(result.Difficulty), result.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	if rows, err := inserted.RowsAffected(); err != nil {
		return fmt.Errorf("can't save result: %w", err)
	} else if rows == 0 {
		return fmt.Errorf("%w: game %s round %d", ErrResultAlreadyRecorded, result.GameID, result.Round)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_stats (player_id, wins, losses, draws, total_games) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
			wins = excluded.wins,
			losses = excluded.losses,
			draws = excluded.draws,
			total_games = excluded.total_games`,
		stats.PlayerID, stats.Wins, stats.Losses, stats.Draws, stats.TotalGames,
	)
	if err != nil {
		return fmt.Errorf("can't save stats: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit stats: %w", err)
	}

	return nil
}

// History returns the latest results first.
func (that *statsRepository) History(ctx context.Context, playerID string, limit int) ([]entity.GameResult, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := that.conn.QueryContext(ctx,
		`SELECT game_id, round, player_id, outcome, difficulty, finished_at
		 FROM game_results
		 WHERE player_id = ?
		 ORDER BY finished_at DESC, id DESC
		 LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("can't query history: %w", err)
	}
	defer rows.Close()

	results := make([]entity.GameResult, 0, limit)
	for rows.Next() {
		var (
			result     entity.GameResult
			outcome    string
			difficulty string
			finishedAt any
		)

		if err = rows.Scan(&result.GameID, &result.Round, &result.PlayerID, &outcome, &difficulty, &finishedAt); err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		result.Outcome = entity.Outcome(outcome)
		result.Difficulty = entity.Difficulty(difficulty)
		result.FinishedAt = parseTime(finishedAt)

		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate history: %w", err)
	}

	return results, nil
}

// parseTime accepts both decoded times and the text form sqlite may hand back.
func parseTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}

	return time.Time{}
}
