package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
)

const botTurnTimeout = 5 * time.Second

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendError(conn, msg.Action, "invalid payload")
		return err
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.games.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		that.sendError(conn, msg.Action, "failed to create a new player")
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	that.register(player.ID, conn)

	payloadResp := Payload{Player: player}

	if player.GameID != "" {
		game, sessionErr := that.games.GetSession(ctx, player.ID)
		switch {
		case sessionErr == nil:
			payloadResp.Game = game
			that.resumeBotTurn(game)
		case errors.Is(sessionErr, apperror.ErrNoActiveGames):
			log.Debug("player's game expired", "playerID", player.ID)
		default:
			log.Error("failed to get game", "playerID", player.ID, "error", sessionErr)
		}
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return err
	}

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, ok := that.playerPayload(msg, conn)
	if !ok {
		return nil
	}

	var difficulty entity.Difficulty
	var personaID string

	if payloadReq.Game != nil {
		personaID = payloadReq.Game.Persona

		if payloadReq.Game.Difficulty != "" {
			parsed, err := entity.ParseDifficulty(string(payloadReq.Game.Difficulty))
			if err != nil {
				that.sendError(conn, msg.Action, err.Error())
				return nil
			}

			difficulty = parsed
		}
	}

	game, err := that.games.InviteBot(ctx, payloadReq.Player.ID, personaID, difficulty)
	if err != nil {
		that.sendError(conn, msg.Action, "failed to create a new game")
		return fmt.Errorf("failed to invite bot: %w", err)
	}

	that.broadcast(msg.Action, game, nil, "")
	that.resumeBotTurn(game)

	that.logger.Info("game started", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, ok := that.playerPayload(msg, conn)
	if !ok {
		return nil
	}

	if payloadReq.Cell == nil {
		that.sendError(conn, msg.Action, "Cell is required")
		return nil
	}

	game, err := that.games.ApplyHumanMove(ctx, payloadReq.Player.ID, *payloadReq.Cell)
	switch {
	case errors.Is(err, apperror.ErrInvalidMove):
		return that.sendMessage(conn, msg.Action, Payload{Game: game, Error: err.Error()})
	case errors.Is(err, apperror.ErrNoActiveGames):
		that.sendError(conn, msg.Action, "no active game")
		return nil
	case err != nil:
		that.sendError(conn, msg.Action, "failed to make turn")
		return fmt.Errorf("failed to apply move: %w", err)
	}

	that.broadcast(msg.Action, game, payloadReq.Cell, "")
	that.resumeBotTurn(game)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, ok := that.playerPayload(msg, conn)
	if !ok {
		return nil
	}

	game, err := that.games.ResetSession(ctx, payloadReq.Player.ID)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		that.sendError(conn, msg.Action, "no active game")
		return nil
	}
	if err != nil {
		that.sendError(conn, msg.Action, "failed to reset game")
		return fmt.Errorf("failed to reset game: %w", err)
	}

	that.bots.Cancel(game.ID)

	that.broadcast(msg.Action, game, nil, "")
	that.resumeBotTurn(game)

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, ok := that.playerPayload(msg, conn)
	if !ok {
		return nil
	}

	game, err := that.games.GetSession(ctx, payloadReq.Player.ID)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		that.sendError(conn, msg.Action, "no active game")
		return nil
	}
	if err != nil {
		that.sendError(conn, msg.Action, "failed to leave game")
		return fmt.Errorf("failed to get game: %w", err)
	}

	that.bots.Cancel(game.ID)

	if err = that.games.EndSession(ctx, payloadReq.Player.ID); err != nil {
		that.sendError(conn, msg.Action, "failed to leave game")
		return fmt.Errorf("failed to end game: %w", err)
	}

	for _, player := range game.HumanPlayers() {
		player.GameID, player.Mark = "", ""

		peer, ok := that.connectionOf(player.ID)
		if !ok {
			continue
		}

		if err = that.sendMessage(peer, msg.Action, Payload{Player: player}); err != nil {
			that.logger.Error("failed to send game:leave", "playerID", player.ID, "error", err)
		}
	}

	that.logger.Info("player left game", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleGameStats(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, ok := that.playerPayload(msg, conn)
	if !ok {
		return nil
	}

	stats, err := that.games.Stats(ctx, payloadReq.Player.ID)
	if err != nil {
		that.sendError(conn, msg.Action, "failed to get stats")
		return fmt.Errorf("failed to get stats: %w", err)
	}

	return that.sendMessage(conn, msg.Action, Payload{Player: payloadReq.Player, Stats: &stats})
}

// playerPayload decodes a payload that must name a player and binds the player to conn.
// It answers the client itself when the payload is unusable.
func (that *Server) playerPayload(msg *Message, conn *connection) (Payload, bool) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendError(conn, msg.Action, "invalid payload")
		return payloadReq, false
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		that.sendError(conn, msg.Action, "Player is required")
		return payloadReq, false
	}

	that.register(payloadReq.Player.ID, conn)

	return payloadReq, true
}

// resumeBotTurn schedules the bot when the game waits on it and nothing is pending yet.
func (that *Server) resumeBotTurn(game *entity.Game) {
	if !that.games.NeedsBotTurn(game) {
		return
	}

	if round, ok := that.bots.Pending(game.ID); ok && round == game.Round {
		return
	}

	that.bots.Schedule(game.ID, game.Round)
}

// playBotTurn is the delayed bot move. It runs on the scheduler's timer goroutine.
func (that *Server) playBotTurn(gameID string, round int) {
	log := that.logger.With("method", "playBotTurn", "gameID", gameID, "round", round)

	ctx, cancel := context.WithTimeout(context.Background(), botTurnTimeout)
	defer cancel()

	game, cell, err := that.games.ApplyAIMove(ctx, gameID, round)
	if errors.Is(err, apperror.ErrStaleSession) {
		log.Debug("bot move dropped")
		return
	}
	if err != nil {
		log.Error("bot failed to move", "error", err)
		return
	}

	var comment string
	if that.comments != nil {
		comment = that.comments.GameComment()
	}

	that.broadcast(actionGameTurn, game, &cell, comment)
	that.resumeBotTurn(game)
}
