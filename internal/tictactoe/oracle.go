// Package tictactoe picks moves for the computer player.
//
// Every function works on a board value and has no side effects, so the search can
// explore hypothetical positions without touching the game being played.
package tictactoe

import (
	"math/rand/v2"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
)

const centerCell = 4

var cornerCells = [4]int{0, 2, 6, 8}

// randIntn is swapped in tests to make random picks predictable.
var randIntn = rand.IntN

// FindImmediateWin returns the empty cell completing a line where mark already holds the
// other two cells. Lines are scanned in entity.WinCombos order. Called with the opponent's
// mark it finds the cell to block.
func FindImmediateWin(board entity.Board, mark entity.Mark) (int, bool) {
	for _, combo := range entity.WinCombos {
		marks, free := 0, -1
		for _, cell := range combo {
			switch board[cell] {
			case mark:
				marks++
			case entity.EmptyCell:
				free = cell
			}
		}

		if marks == 2 && free != -1 {
			return free, true
		}
	}

	return -1, false
}

// RandomMove picks a free cell uniformly at random.
func RandomMove(board entity.Board) (int, bool) {
	return pick(board.EmptyCells())
}

// RandomCorner picks a free corner uniformly at random.
func RandomCorner(board entity.Board) (int, bool) {
	corners := make([]int, 0, len(cornerCells))
	for _, cell := range cornerCells {
		if board[cell] == entity.EmptyCell {
			corners = append(corners, cell)
		}
	}

	return pick(corners)
}

func pick(cells []int) (int, bool) {
	if len(cells) == 0 {
		return -1, false
	}

	return cells[randIntn(len(cells))], true
}
