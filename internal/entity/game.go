package entity

import (
	"fmt"

	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusPlaying   Status = "playing"
	StatusCompleted Status = "completed"
)

type Game struct {
	ID            string     `json:"id"`
	Round         int        `json:"round"`
	Board         Board      `json:"board"`
	Turn          Mark       `json:"player_turn"`
	Winner        Mark       `json:"winner"`
	IsDraw        bool       `json:"is_draw"`
	Status        Status     `json:"status"`
	Players       []*Player  `json:"players,omitempty"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
	Persona       string     `json:"persona,omitempty"`
	StatsRecorded bool       `json:"stats_recorded,omitempty"`
}

// NewGame starts a game between playerA (X, moves first) and playerB (O).
func NewGame(id string, playerA, playerB *Player, difficulty Difficulty) *Game {
	playerA.Mark, playerA.GameID = PlayerX, id
	playerB.Mark, playerB.GameID = PlayerO, id

	return &Game{
		ID:         id,
		Round:      1,
		Turn:       PlayerX,
		Status:     StatusPlaying,
		Players:    []*Player{playerA, playerB},
		Difficulty: difficulty,
	}
}

// MakeTurn places mark on cell. A rejected move leaves the game untouched.
func (that *Game) MakeTurn(mark Mark, cell int) error {
	if err := that.ConfirmPlayingState(); err != nil {
		return err
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	board, err := that.Board.ApplyMove(cell, mark)
	if err != nil {
		return err
	}

	that.Board = board
	that.Turn = mark.Opponent()
	that.UpdateGameState()

	return nil
}

// UpdateGameState derives winner, draw and status from the board.
func (that *Game) UpdateGameState() {
	if winner := that.Board.Winner(); winner != EmptyCell {
		that.Winner = winner
		that.Status = StatusCompleted
		return
	}

	if that.Board.IsFull() {
		that.IsDraw = true
		that.Status = StatusCompleted
		return
	}

	that.Status = StatusPlaying
}

// Reset returns a fresh round of the same game: same id and players, cleared board.
func (that *Game) Reset() *Game {
	players := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		players = append(players, &p)
	}

	return &Game{
		ID:         that.ID,
		Round:      that.Round + 1,
		Turn:       PlayerX,
		Status:     StatusPlaying,
		Players:    players,
		Difficulty: that.Difficulty,
		Persona:    that.Persona,
	}
}

func (that *Game) IsCompleted() bool {
	return that.Status == StatusCompleted
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmPlayingState() error {
	switch that.Status {
	case StatusPlaying:
		return nil
	case StatusWaiting:
		return apperror.ErrGameIsNotStarted
	case StatusCompleted:
		return apperror.ErrGameFinished
	default:
		return fmt.Errorf("%w: unknown game status %q", apperror.ErrInvalidMove, that.Status)
	}
}

func (that *Game) PlayerByMark(mark Mark) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// BotPlayer returns the computer participant, or nil for human-only games.
func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

func (that *Game) HumanPlayers() []*Player {
	humans := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		if !player.IsBot() {
			humans = append(humans, player)
		}
	}

	return humans
}

// IsBotTurn reports whether the game is waiting on the computer's move.
func (that *Game) IsBotTurn() bool {
	if !that.IsPlaying() {
		return false
	}

	bot := that.BotPlayer()

	return bot != nil && bot.Mark == that.Turn
}
