package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/repository"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type statsRepo interface {
	Get(ctx context.Context, playerID string) (entity.GameStats, error)
	Record(ctx context.Context, stats entity.GameStats, result entity.GameResult) error
	History(ctx context.Context, playerID string, limit int) ([]entity.GameResult, error)
}

type botService interface {
	MakeTurn(game *entity.Game) (int, error)
}

// GameManager owns the lifecycle of game sessions: creation, moves, resets and
// teardown. Mutations are serialised, so a delayed bot move can never interleave
// with a human move on the same game.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	statsRepo  statsRepo
	bot        botService

	defaultDifficulty entity.Difficulty
	now               func() time.Time

	mu sync.Mutex
}

func NewGameManager(
	logger *slog.Logger,
	playerRepo playerRepo,
	gameRepo gameRepo,
	statsRepo statsRepo,
	bot botService,
	defaultDifficulty entity.Difficulty,
) *GameManager {
	if !defaultDifficulty.IsValid() {
		defaultDifficulty = entity.MediumDifficulty
	}

	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		statsRepo:  statsRepo,
		bot:        bot,

		defaultDifficulty: defaultDifficulty,
		now:               time.Now,
	}
}

// GetOrCreatePlayer returns the stored player, creating it when the id is empty or unknown.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id != "" {
		player, err := that.playerRepo.GetByID(ctx, id)
		if err == nil {
			return player, nil
		}

		if !errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to get player by id: %w", err)
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	player := &entity.Player{ID: id}
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// CreateSession starts a game with playerA as X and playerB as O.
func (that *GameManager) CreateSession(ctx context.Context, playerA, playerB *entity.Player, difficulty entity.Difficulty) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.createSession(ctx, playerA, playerB, difficulty)
}

// InviteBot starts a game between the player (X) and a persona-controlled bot (O).
// A game the player is still attached to is discarded first.
func (that *GameManager) InviteBot(ctx context.Context, playerID, personaID string, difficulty entity.Difficulty) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		if err = that.endSession(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to end previous game: %w", err)
		}
	}

	bot := entity.NewBotPlayer("", personaID)

	game, err := that.createSession(ctx, player, bot, difficulty)
	if err != nil {
		return nil, err
	}

	game.Persona = personaID
	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) createSession(ctx context.Context, playerA, playerB *entity.Player, difficulty entity.Difficulty) (*entity.Game, error) {
	if difficulty == "" {
		difficulty = that.defaultDifficulty
	}

	if !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownDifficulty, difficulty)
	}

	game := entity.NewGame(uuid.NewString(), playerA, playerB, difficulty)

	if err := that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	for _, player := range game.HumanPlayers() {
		if err := that.updatePlayer(ctx, player); err != nil {
			return nil, err
		}
	}

	that.logger.Info("game created", "gameID", game.ID, "difficulty", difficulty)

	return game, nil
}

// GetSession returns the game the player is attached to.
func (that *GameManager) GetSession(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return that.gameOf(ctx, player)
}

// NeedsBotTurn reports whether the bot should be scheduled to move next.
func (that *GameManager) NeedsBotTurn(game *entity.Game) bool {
	return game != nil && game.IsBotTurn()
}

// ApplyHumanMove plays the player's mark on cell. A rejected move returns the unchanged
// game together with an error wrapping apperror.ErrInvalidMove.
func (that *GameManager) ApplyHumanMove(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.gameOf(ctx, player)
	if err != nil {
		return nil, err
	}

	seat := game.PlayerByID(player.ID)
	if seat == nil {
		return nil, fmt.Errorf("%w: player %s is not seated in game %s", apperror.ErrNoActiveGames, player.ID, game.ID)
	}

	if err = game.MakeTurn(seat.Mark, cell); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.finishTurn(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// ApplyAIMove plays the bot's move in the given round of the game. It returns
// apperror.ErrStaleSession when the game was ended or reset since the move was scheduled,
// or when the bot is not the one to move.
func (that *GameManager) ApplyAIMove(ctx context.Context, gameID string, round int) (*entity.Game, int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "ApplyAIMove", "gameID", gameID, "round", round)

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		log.Debug("game is gone, skipping bot move")
		return nil, -1, apperror.ErrStaleSession
	}
	if err != nil {
		return nil, -1, fmt.Errorf("failed to get game: %w", err)
	}

	if game.Round != round || !game.IsBotTurn() {
		log.Debug("game moved on, skipping bot move", "currentRound", game.Round, "status", game.Status)
		return game, -1, apperror.ErrStaleSession
	}

	cell, err := that.bot.MakeTurn(game)
	if err != nil {
		return nil, -1, fmt.Errorf("bot failed to make turn: %w", err)
	}

	if err = that.finishTurn(ctx, game); err != nil {
		return nil, -1, err
	}

	return game, cell, nil
}

// ResetSession replaces the player's game with a new round: same id and players,
// empty board, X to move.
func (that *GameManager) ResetSession(ctx context.Context, playerID string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.gameOf(ctx, player)
	if err != nil {
		return nil, err
	}

	fresh := game.Reset()
	if err = that.updateGame(ctx, fresh); err != nil {
		return nil, err
	}

	that.logger.Info("game reset", "gameID", fresh.ID, "round", fresh.Round)

	return fresh, nil
}

// EndSession discards the player's game and detaches every human from it.
func (that *GameManager) EndSession(ctx context.Context, playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return apperror.ErrNoActiveGames
	}

	return that.endSession(ctx, player)
}

func (that *GameManager) endSession(ctx context.Context, player *entity.Player) error {
	log := that.logger.With("method", "endSession", "gameID", player.GameID)

	humans := []*entity.Player{player}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	switch {
	case err == nil:
		humans = game.HumanPlayers()
		if err = that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
			return fmt.Errorf("failed to delete game: %w", err)
		}
	case errors.Is(err, repository.ErrGameNotFound):
		log.Warn("game already gone, detaching player")
	default:
		return fmt.Errorf("failed to get game: %w", err)
	}

	for _, human := range humans {
		human.GameID = ""
		human.Mark = ""

		if err = that.updatePlayer(ctx, human); err != nil {
			log.Error("failed to detach player", "playerID", human.ID, "error", err)
		}
	}

	player.GameID, player.Mark = "", ""

	log.Info("game ended")

	return nil
}

func (that *GameManager) Stats(ctx context.Context, playerID string) (entity.GameStats, error) {
	stats, err := that.statsRepo.Get(ctx, playerID)
	if err != nil {
		return stats, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

func (that *GameManager) History(ctx context.Context, playerID string, limit int) ([]entity.GameResult, error) {
	results, err := that.statsRepo.History(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return results, nil
}

// finishTurn records a just-completed game and saves it.
func (that *GameManager) finishTurn(ctx context.Context, game *entity.Game) error {
	if game.IsCompleted() {
		that.recordOutcome(ctx, game)
	}

	return that.updateGame(ctx, game)
}

// recordOutcome adds the result to every human's stats, once per round.
func (that *GameManager) recordOutcome(ctx context.Context, game *entity.Game) {
	if game.StatsRecorded {
		return
	}

	log := that.logger.With("method", "recordOutcome", "gameID", game.ID, "round", game.Round)

	for _, player := range game.HumanPlayers() {
		stats, err := that.statsRepo.Get(ctx, player.ID)
		if err != nil {
			log.Error("failed to get stats", "playerID", player.ID, "error", err)
			continue
		}

		stats.PlayerID = player.ID
		result := entity.GameResult{
			GameID:     game.ID,
			Round:      game.Round,
			PlayerID:   player.ID,
			Outcome:    entity.OutcomeFor(game, player.ID),
			Difficulty: game.Difficulty,
			FinishedAt: that.now(),
		}

		err = that.statsRepo.Record(ctx, stats.Record(game, player.ID), result)
		switch {
		case errors.Is(err, repository.ErrResultAlreadyRecorded):
			log.Debug("result already recorded", "playerID", player.ID)
		case err != nil:
			log.Error("failed to record stats", "playerID", player.ID, "error", err)
		default:
			log.Info("game result recorded", "playerID", player.ID, "outcome", result.Outcome)
		}
	}

	game.StatsRecorded = true
}

func (that *GameManager) gameOf(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: %w", apperror.ErrNoActiveGames, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
