package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/tictactoe"
)

var ErrBotNotFound = errors.New("bot player not found")

type BotService interface {
	MakeTurn(game *entity.Game) (int, error)
}

type selectFunc func(board entity.Board, difficulty entity.Difficulty, aiMark entity.Mark) (int, error)

type botService struct {
	selectMove selectFunc
}

func NewBotService() BotService {
	return &botService{
		selectMove: tictactoe.SelectMove,
	}
}

// MakeTurn plays the bot's mark at the game's difficulty and returns the chosen cell.
func (that *botService) MakeTurn(game *entity.Game) (int, error) {
	botPlayer := game.BotPlayer()
	if botPlayer == nil {
		return -1, ErrBotNotFound
	}

	if err := game.ConfirmPlayingState(); err != nil {
		return -1, err
	}

	if game.Turn != botPlayer.Mark {
		return -1, apperror.ErrNotYourTurn
	}

	cell, err := that.selectMove(game.Board, game.Difficulty, botPlayer.Mark)
	if err != nil {
		return -1, fmt.Errorf("bot failed to choose a cell: %w", err)
	}

	if err = game.MakeTurn(botPlayer.Mark, cell); err != nil {
		return -1, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return cell, nil
}
