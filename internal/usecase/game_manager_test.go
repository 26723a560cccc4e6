package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/repository"
	"github.com/rocketscienceinc/persona-chat-backend/internal/service"
)

var errRedisDown = errors.New("redis down")

type memoryPlayers struct {
	mu      sync.Mutex
	players map[string]entity.Player
	err     error
}

func (that *memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.err != nil {
		return that.err
	}

	that.players[player.ID] = *player

	return nil
}

func (that *memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.err != nil {
		return nil, that.err
	}

	player, ok := that.players[id]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	return &player, nil
}

type memoryGames struct {
	mu    sync.Mutex
	games map[string]entity.Game
}

func (that *memoryGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored := *game
	stored.Players = nil
	for _, player := range game.Players {
		p := *player
		stored.Players = append(stored.Players, &p)
	}

	that.games[game.ID] = stored

	return nil
}

func (that *memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}

	players := make([]*entity.Player, 0, len(game.Players))
	for _, player := range game.Players {
		p := *player
		players = append(players, &p)
	}
	game.Players = players

	return &game, nil
}

func (that *memoryGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return repository.ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}

type mockStatsRepo struct {
	mock.Mock
}

func (that *mockStatsRepo) Get(ctx context.Context, playerID string) (entity.GameStats, error) {
	args := that.Called(ctx, playerID)
	return args.Get(0).(entity.GameStats), args.Error(1)
}

func (that *mockStatsRepo) Record(ctx context.Context, stats entity.GameStats, result entity.GameResult) error {
	args := that.Called(ctx, stats, result)
	return args.Error(0)
}

func (that *mockStatsRepo) History(ctx context.Context, playerID string, limit int) ([]entity.GameResult, error) {
	args := that.Called(ctx, playerID, limit)
	return args.Get(0).([]entity.GameResult), args.Error(1)
}

type fixture struct {
	manager *GameManager
	players *memoryPlayers
	games   *memoryGames
	stats   *mockStatsRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		players: &memoryPlayers{players: map[string]entity.Player{}},
		games:   &memoryGames{games: map[string]entity.Game{}},
		stats:   &mockStatsRepo{},
	}
	f.manager = NewGameManager(logger, f.players, f.games, f.stats, service.NewBotService(), entity.HardDifficulty)

	t.Cleanup(func() { f.stats.AssertExpectations(t) })

	return f
}

// startBotGame registers the human and starts a hard game against the bot.
func (that *fixture) startBotGame(t *testing.T, ctx context.Context) *entity.Game {
	t.Helper()

	_, err := that.manager.GetOrCreatePlayer(ctx, "human")
	require.NoError(t, err)

	game, err := that.manager.InviteBot(ctx, "human", "nova", entity.HardDifficulty)
	require.NoError(t, err)

	return game
}

func TestGameManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when the id is empty", func(t *testing.T) {
		f := newFixture(t)

		player, err := f.manager.GetOrCreatePlayer(ctx, "")

		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)
		assert.Contains(t, f.players.players, player.ID)
	})

	t.Run("Returns the stored player", func(t *testing.T) {
		f := newFixture(t)
		f.players.players["p1"] = entity.Player{ID: "p1", GameID: "g1"}

		player, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, "g1", player.GameID)
	})

	t.Run("Creates an unknown player with the given id", func(t *testing.T) {
		f := newFixture(t)

		player, err := f.manager.GetOrCreatePlayer(ctx, "p2")

		require.NoError(t, err)
		assert.Equal(t, "p2", player.ID)
	})

	t.Run("Returns storage errors", func(t *testing.T) {
		f := newFixture(t)
		f.players.err = errRedisDown

		_, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestGameManager_InviteBot(t *testing.T) {
	ctx := context.Background()

	t.Run("Seats the human as X against the bot", func(t *testing.T) {
		// Given: a registered player
		f := newFixture(t)

		// When: the player invites a persona to play
		game := f.startBotGame(t, ctx)

		// Then: the human opens as X and both are attached to the game
		assert.Equal(t, entity.StatusPlaying, game.Status)
		assert.Equal(t, 1, game.Round)
		assert.Equal(t, "nova", game.Persona)
		assert.Equal(t, entity.PlayerX, game.PlayerByID("human").Mark)
		assert.Equal(t, entity.PlayerO, game.BotPlayer().Mark)
		assert.False(t, f.manager.NeedsBotTurn(game))

		player, err := f.players.GetByID(ctx, "human")
		require.NoError(t, err)
		assert.Equal(t, game.ID, player.GameID)
	})

	t.Run("Discards the previous game", func(t *testing.T) {
		f := newFixture(t)
		first := f.startBotGame(t, ctx)

		second, err := f.manager.InviteBot(ctx, "human", "luna", entity.EasyDifficulty)

		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.NotContains(t, f.games.games, first.ID)
	})

	t.Run("Falls back to the default difficulty", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.GetOrCreatePlayer(ctx, "human")
		require.NoError(t, err)

		game, err := f.manager.InviteBot(ctx, "human", "", "")

		require.NoError(t, err)
		assert.Equal(t, entity.HardDifficulty, game.Difficulty)
	})

	t.Run("Rejects an unknown difficulty", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.GetOrCreatePlayer(ctx, "human")
		require.NoError(t, err)

		_, err = f.manager.InviteBot(ctx, "human", "", "impossible")

		require.ErrorIs(t, err, entity.ErrUnknownDifficulty)
	})
}

func TestGameManager_CreateSession(t *testing.T) {
	// Given: two humans
	f := newFixture(t)
	a, b := &entity.Player{ID: "a"}, &entity.Player{ID: "b"}

	// When: a session is created between them
	game, err := f.manager.CreateSession(context.Background(), a, b, entity.MediumDifficulty)

	// Then: a moves first as X, and nobody waits on a bot
	require.NoError(t, err)
	assert.Equal(t, entity.PlayerX, game.Turn)
	assert.Equal(t, entity.PlayerX, a.Mark)
	assert.Equal(t, entity.PlayerO, b.Mark)
	assert.Nil(t, game.BotPlayer())
	assert.Equal(t, game.ID, f.players.players["b"].GameID)
}

func TestGameManager_ApplyHumanMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves the move and hands the turn to the bot", func(t *testing.T) {
		f := newFixture(t)
		f.startBotGame(t, ctx)

		game, err := f.manager.ApplyHumanMove(ctx, "human", 0)

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, game.Board[0])
		assert.True(t, f.manager.NeedsBotTurn(game))

		stored, err := f.games.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, game.Board, stored.Board)
	})

	t.Run("Rejects a move out of turn without changing the game", func(t *testing.T) {
		f := newFixture(t)
		f.startBotGame(t, ctx)
		_, err := f.manager.ApplyHumanMove(ctx, "human", 0)
		require.NoError(t, err)

		game, err := f.manager.ApplyHumanMove(ctx, "human", 1)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, entity.EmptyCell, game.Board[1])
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		f := newFixture(t)
		game := f.startBotGame(t, ctx)
		_, err := f.manager.ApplyHumanMove(ctx, "human", 4)
		require.NoError(t, err)
		_, cell, err := f.manager.ApplyAIMove(ctx, game.ID, game.Round)
		require.NoError(t, err)

		_, err = f.manager.ApplyHumanMove(ctx, "human", cell)

		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Fails without an active game", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.GetOrCreatePlayer(ctx, "human")
		require.NoError(t, err)

		_, err = f.manager.ApplyHumanMove(ctx, "human", 0)

		require.ErrorIs(t, err, apperror.ErrNoActiveGames)
	})
}

func TestGameManager_ApplyAIMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Plays the bot reply", func(t *testing.T) {
		f := newFixture(t)
		game := f.startBotGame(t, ctx)
		_, err := f.manager.ApplyHumanMove(ctx, "human", 0)
		require.NoError(t, err)

		updated, cell, err := f.manager.ApplyAIMove(ctx, game.ID, game.Round)

		require.NoError(t, err)
		assert.Equal(t, 4, cell)
		assert.Equal(t, entity.PlayerO, updated.Board[4])
		assert.Equal(t, entity.PlayerX, updated.Turn)
	})

	t.Run("Ignores a callback from before a reset", func(t *testing.T) {
		// Given: the bot move was scheduled in round 1, then the player reset the game
		f := newFixture(t)
		game := f.startBotGame(t, ctx)
		_, err := f.manager.ApplyHumanMove(ctx, "human", 0)
		require.NoError(t, err)

		fresh, err := f.manager.ResetSession(ctx, "human")
		require.NoError(t, err)

		// When: the stale callback fires
		_, _, err = f.manager.ApplyAIMove(ctx, game.ID, game.Round)

		// Then: it is rejected and the new board stays empty
		require.ErrorIs(t, err, apperror.ErrStaleSession)

		stored, err := f.games.GetByID(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, stored.Board)
		assert.Equal(t, 2, stored.Round)
	})

	t.Run("Ignores a callback after the game ended", func(t *testing.T) {
		f := newFixture(t)
		game := f.startBotGame(t, ctx)
		_, err := f.manager.ApplyHumanMove(ctx, "human", 0)
		require.NoError(t, err)
		require.NoError(t, f.manager.EndSession(ctx, "human"))

		_, _, err = f.manager.ApplyAIMove(ctx, game.ID, game.Round)

		require.ErrorIs(t, err, apperror.ErrStaleSession)
	})

	t.Run("Ignores a callback when it is the human's turn", func(t *testing.T) {
		f := newFixture(t)
		game := f.startBotGame(t, ctx)

		_, _, err := f.manager.ApplyAIMove(ctx, game.ID, game.Round)

		require.ErrorIs(t, err, apperror.ErrStaleSession)
	})
}

func TestGameManager_RecordOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("Records a bot win exactly once", func(t *testing.T) {
		// Given: a game where the human walks into a loss against the hard bot
		f := newFixture(t)
		game := f.startBotGame(t, ctx)

		f.stats.On("Get", mock.Anything, "human").Return(entity.GameStats{PlayerID: "human"}, nil).Once()
		f.stats.On("Record", mock.Anything,
			entity.GameStats{PlayerID: "human", Losses: 1, TotalGames: 1},
			mock.MatchedBy(func(result entity.GameResult) bool {
				return result.GameID == game.ID && result.Round == 1 && result.Outcome == entity.OutcomeLoss
			}),
		).Return(nil).Once()

		// When: the human keeps playing the first free cell until the game ends
		var current *entity.Game
		for {
			var err error
			current, err = f.manager.GetSession(ctx, "human")
			require.NoError(t, err)
			if current.IsCompleted() {
				break
			}

			current, err = f.manager.ApplyHumanMove(ctx, "human", current.Board.EmptyCells()[0])
			require.NoError(t, err)
			if current.IsCompleted() {
				break
			}

			_, _, err = f.manager.ApplyAIMove(ctx, game.ID, game.Round)
			require.NoError(t, err)
		}

		// Then: the bot won, the result was recorded and the flag is persisted
		assert.Equal(t, entity.PlayerO, current.Winner)
		assert.True(t, current.StatsRecorded)

		// And: further moves neither change the game nor record again
		_, err := f.manager.ApplyHumanMove(ctx, "human", current.Board.EmptyCells()[0])
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Tolerates an already recorded result", func(t *testing.T) {
		f := newFixture(t)
		game := entity.NewGame("g1", &entity.Player{ID: "a"}, &entity.Player{ID: "b"}, entity.MediumDifficulty)
		for _, move := range []int{0, 3, 1, 4, 2} {
			require.NoError(t, game.MakeTurn(game.Turn, move))
		}

		f.stats.On("Get", mock.Anything, mock.Anything).Return(entity.GameStats{}, nil).Twice()
		f.stats.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrResultAlreadyRecorded).Twice()

		f.manager.recordOutcome(ctx, game)

		assert.True(t, game.StatsRecorded)
	})
}

func TestGameManager_ResetSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	game := f.startBotGame(t, ctx)
	_, err := f.manager.ApplyHumanMove(ctx, "human", 0)
	require.NoError(t, err)

	fresh, err := f.manager.ResetSession(ctx, "human")

	require.NoError(t, err)
	assert.Equal(t, game.ID, fresh.ID)
	assert.Equal(t, 2, fresh.Round)
	assert.Equal(t, entity.PlayerX, fresh.Turn)
	assert.Equal(t, entity.Board{}, fresh.Board)
	assert.Len(t, fresh.Players, 2)
}

func TestGameManager_EndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the game and detaches the player", func(t *testing.T) {
		f := newFixture(t)
		game := f.startBotGame(t, ctx)

		require.NoError(t, f.manager.EndSession(ctx, "human"))

		assert.NotContains(t, f.games.games, game.ID)
		assert.Empty(t, f.players.players["human"].GameID)

		_, err := f.manager.GetSession(ctx, "human")
		require.ErrorIs(t, err, apperror.ErrNoActiveGames)
	})

	t.Run("Fails without an active game", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.GetOrCreatePlayer(ctx, "human")
		require.NoError(t, err)

		err = f.manager.EndSession(ctx, "human")

		require.ErrorIs(t, err, apperror.ErrNoActiveGames)
	})
}

func TestGameManager_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.stats.On("Get", mock.Anything, "human").Return(entity.GameStats{PlayerID: "human", Wins: 2, TotalGames: 3}, nil).Once()
	f.stats.On("History", mock.Anything, "human", 5).Return([]entity.GameResult{{GameID: "g1", Outcome: entity.OutcomeWin}}, nil).Once()

	stats, err := f.manager.Stats(ctx, "human")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Wins)

	history, err := f.manager.History(ctx, "human", 5)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
