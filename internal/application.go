package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/persona-chat-backend/internal/config"
	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/persona"
	"github.com/rocketscienceinc/persona-chat-backend/internal/repository"
	"github.com/rocketscienceinc/persona-chat-backend/internal/repository/storage"
	"github.com/rocketscienceinc/persona-chat-backend/internal/service"
	"github.com/rocketscienceinc/persona-chat-backend/internal/usecase"
	"github.com/rocketscienceinc/persona-chat-backend/transport/rest"
	"github.com/rocketscienceinc/persona-chat-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	difficulty, err := entity.ParseDifficulty(conf.Game.DefaultDifficulty)
	if err != nil {
		return fmt.Errorf("invalid default difficulty: %w", err)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	personas, err := persona.Load(conf.PersonasPath)
	if err != nil {
		return fmt.Errorf("could not load personas: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Redis.SessionTTL)
	statsRepo := repository.NewStatsRepository(sqliteStorage.Connection)

	gameManager := usecase.NewGameManager(logger, playerRepo, gameRepo, statsRepo, service.NewBotService(), difficulty)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(rest.NewHandlers(logger, personas, gameManager))
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, personas, conf.Game.ThinkMin, conf.Game.ThinkMax)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
