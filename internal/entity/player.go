package entity

type Player struct {
	ID     string `json:"id"`
	Mark   Mark   `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
	Bot    bool   `json:"bot,omitempty"`
}

// NewBotPlayer creates the computer-controlled participant of a game.
// The persona id doubles as the bot's player id so chat and game share an identity.
func NewBotPlayer(gameID, personaID string) *Player {
	id := "bot"
	if personaID != "" {
		id = "bot:" + personaID
	}

	return &Player{
		ID:     id,
		GameID: gameID,
		Bot:    true,
	}
}

func (that *Player) IsBot() bool {
	return that.Bot
}
