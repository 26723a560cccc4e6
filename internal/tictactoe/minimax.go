package tictactoe

import "github.com/rocketscienceinc/persona-chat-backend/internal/entity"

const (
	winScore  = 10
	lossScore = -10
	drawScore = 0

	noCell = -1
)

// Move is a scored search result. Cell is -1 when the board is already decided.
type Move struct {
	Score int
	Cell  int
}

// Minimax searches the whole game tree with mark to move and maximizing.
// Wins score +10 and losses -10 regardless of depth. Among equal scores the lowest cell wins.
func Minimax(board entity.Board, mark entity.Mark) Move {
	return minimax(board, mark, mark)
}

func minimax(board entity.Board, maximizer, mover entity.Mark) Move {
	switch board.Winner() {
	case maximizer.Opponent():
		return Move{Score: lossScore, Cell: noCell}
	case maximizer:
		return Move{Score: winScore, Cell: noCell}
	}

	if board.IsFull() {
		return Move{Score: drawScore, Cell: noCell}
	}

	best := Move{Cell: noCell}
	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		// board is an array, the assignment below only touches this copy
		next := board
		next[cell] = mover

		score := minimax(next, maximizer, mover.Opponent()).Score

		if best.Cell == noCell ||
			(mover == maximizer && score > best.Score) ||
			(mover != maximizer && score < best.Score) {
			best = Move{Score: score, Cell: cell}
		}
	}

	return best
}
