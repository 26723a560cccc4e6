package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// SelectMove chooses the computer's cell for the given difficulty.
//
// Easy plays at random. Medium follows a fixed heuristic (win, block, centre, corner,
// anything) and can be beaten. Hard runs the full minimax search and never loses.
func SelectMove(board entity.Board, difficulty entity.Difficulty, aiMark entity.Mark) (int, error) {
	if board.IsFull() || board.Winner() != entity.EmptyCell {
		return -1, ErrNoAvailableMoves
	}

	switch difficulty {
	case entity.EasyDifficulty:
		cell, _ := RandomMove(board)
		return cell, nil
	case entity.MediumDifficulty:
		return mediumMove(board, aiMark), nil
	case entity.HardDifficulty:
		return Minimax(board, aiMark).Cell, nil
	default:
		return -1, fmt.Errorf("%w: %q", entity.ErrUnknownDifficulty, difficulty)
	}
}

func mediumMove(board entity.Board, aiMark entity.Mark) int {
	if cell, ok := FindImmediateWin(board, aiMark); ok {
		return cell
	}

	if cell, ok := FindImmediateWin(board, aiMark.Opponent()); ok {
		return cell
	}

	if board[centerCell] == entity.EmptyCell {
		return centerCell
	}

	if cell, ok := RandomCorner(board); ok {
		return cell
	}

	cell, _ := RandomMove(board)

	return cell
}
