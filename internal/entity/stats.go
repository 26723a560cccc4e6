package entity

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

type GameStats struct {
	PlayerID   string `json:"player_id"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Draws      int    `json:"draws"`
	TotalGames int    `json:"total_games"`
}

// GameResult is one finished round from a single player's point of view.
type GameResult struct {
	GameID     string     `json:"game_id"`
	Round      int        `json:"round"`
	PlayerID   string     `json:"player_id"`
	Outcome    Outcome    `json:"outcome"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
}

// OutcomeFor returns how the completed game ended for playerID.
func OutcomeFor(game *Game, playerID string) Outcome {
	if game.IsDraw {
		return OutcomeDraw
	}

	if player := game.PlayerByID(playerID); player != nil && player.Mark == game.Winner {
		return OutcomeWin
	}

	return OutcomeLoss
}

// Record adds the outcome of a completed game to the stats. It keeps no state of its own,
// so callers must make sure each game is recorded once.
func (that GameStats) Record(game *Game, playerID string) GameStats {
	if !game.IsCompleted() {
		return that
	}

	that.TotalGames++

	switch OutcomeFor(game, playerID) {
	case OutcomeWin:
		that.Wins++
	case OutcomeLoss:
		that.Losses++
	case OutcomeDraw:
		that.Draws++
	}

	return that
}

// WinRate is the rounded percentage of games won.
func (that GameStats) WinRate() int {
	if that.TotalGames == 0 {
		return 0
	}

	return (that.Wins*100 + that.TotalGames/2) / that.TotalGames
}
