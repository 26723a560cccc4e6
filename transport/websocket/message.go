package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"
	actionGameStats = "game:stats"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player  *entity.Player    `json:"player,omitempty"`
	Game    *entity.Game      `json:"game,omitempty"`
	Cell    *int              `json:"cell,omitempty"`
	Stats   *entity.GameStats `json:"stats,omitempty"`
	Comment string            `json:"comment,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func (that *Server) sendMessage(conn *connection, action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}

	return nil
}

func (that *Server) sendError(conn *connection, action, errorMsg string) {
	if err := that.sendMessage(conn, action, Payload{Error: errorMsg}); err != nil {
		that.logger.Error("failed to send error response", "action", action, "error", err)
	}
}

// broadcast sends the game to every connected human seated in it.
func (that *Server) broadcast(action string, game *entity.Game, cell *int, comment string) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.HumanPlayers() {
		conn, ok := that.connectionOf(player.ID)
		if !ok {
			log.Debug("connection not found for player", "playerID", player.ID)
			continue
		}

		payload := Payload{
			Player:  player,
			Game:    game,
			Cell:    cell,
			Comment: comment,
		}

		if err := that.sendMessage(conn, action, payload); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}
