package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetSession(ctx context.Context, playerID string) (*entity.Game, error)
	InviteBot(ctx context.Context, playerID, personaID string, difficulty entity.Difficulty) (*entity.Game, error)
	ApplyHumanMove(ctx context.Context, playerID string, cell int) (*entity.Game, error)
	ApplyAIMove(ctx context.Context, gameID string, round int) (*entity.Game, int, error)
	ResetSession(ctx context.Context, playerID string) (*entity.Game, error)
	EndSession(ctx context.Context, playerID string) error
	NeedsBotTurn(game *entity.Game) bool
	Stats(ctx context.Context, playerID string) (entity.GameStats, error)
}

type commentator interface {
	GameComment() string
}

type handlerFunc func(ctx context.Context, msg *Message, conn *connection) error

type Server struct {
	logger   *slog.Logger
	games    gameUseCase
	comments commentator

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	bots *botScheduler
}

func New(logger *slog.Logger, games gameUseCase, comments commentator, thinkMin, thinkMax time.Duration) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		games:    games,
		comments: comments,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*connection),
	}

	server.bots = newBotScheduler(thinkMin, thinkMax, server.playBotTurn)

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameReset] = server.handleGameReset
	server.handlers[actionGameLeave] = server.handleGameLeave
	server.handlers[actionGameStats] = server.handleGameStats

	return server
}

// Handler exposes the socket endpoint at /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		that.upgradeToWebSocket(ctx, w, req)
	})

	return r
}

// Start serves WebSocket connections until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		that.bots.StopAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	socket, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(socket)
	defer func() {
		that.handleDisconnect(conn)
		conn.Close()
	}()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Debug("connection closed", "error", err)
	}
}

// handleMessages processes messages until the client goes away.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		data, err := conn.Read()
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(conn, "", "invalid message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(conn, message.Action, fmt.Sprintf("unknown action %q", message.Action))
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[playerID] = conn
	conn.SetPlayerID(playerID)
}

func (that *Server) connectionOf(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]

	return conn, ok
}

func (that *Server) handleDisconnect(conn *connection) {
	playerID := conn.PlayerID()
	if playerID == "" {
		return
	}

	that.connectionsMutex.Lock()
	if that.connections[playerID] == conn {
		delete(that.connections, playerID)
	}
	that.connectionsMutex.Unlock()

	that.logger.Info("player disconnected", "playerID", playerID)
}
