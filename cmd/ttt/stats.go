package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/repository"
	"github.com/rocketscienceinc/persona-chat-backend/internal/repository/storage"
)

// recordPlayedGame adds the game to the stats database named by --db, if any.
func recordPlayedGame(ctx context.Context, out io.Writer, game *entity.Game) error {
	if flagDBPath == "" {
		return nil
	}

	db, err := storage.NewSQLiteStorage(flagDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = db.Init(ctx); err != nil {
		return err
	}

	stats, err := recordResult(ctx, repository.NewStatsRepository(db.Connection), game, localPlayerID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Record: %d wins, %d losses, %d draws (%d%% won)\n", stats.Wins, stats.Losses, stats.Draws, stats.WinRate())

	return nil
}

func recordResult(ctx context.Context, repo repository.StatsRepository, game *entity.Game, playerID string) (entity.GameStats, error) {
	stats, err := repo.Get(ctx, playerID)
	if err != nil {
		return stats, err
	}

	stats.PlayerID = playerID
	updated := stats.Record(game, playerID)

	err = repo.Record(ctx, updated, entity.GameResult{
		GameID:     game.ID,
		Round:      game.Round,
		PlayerID:   playerID,
		Outcome:    entity.OutcomeFor(game, playerID),
		Difficulty: game.Difficulty,
		FinishedAt: time.Now(),
	})
	if errors.Is(err, repository.ErrResultAlreadyRecorded) {
		logger.Warn("game already recorded", "gameID", game.ID)
		return stats, nil
	}
	if err != nil {
		return stats, err
	}

	return updated, nil
}
