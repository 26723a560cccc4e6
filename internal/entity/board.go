package entity

import (
	"fmt"

	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
)

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

const BoardSize = 9

// WinCombos lists the winning lines: rows, columns, diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Opponent returns the other mark. The empty mark has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Mark) IsValid() bool {
	return that == PlayerX || that == PlayerO
}

// Board is a 3x3 grid stored row-major. It is a value: copies never share cells.
type Board [BoardSize]Mark

// ApplyMove returns a copy of the board with mark placed on cell.
func (that Board) ApplyMove(cell int, mark Mark) (Board, error) {
	if cell < 0 || cell >= BoardSize {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !mark.IsValid() {
		return that, fmt.Errorf("%w: unknown mark %q", apperror.ErrInvalidMove, mark)
	}

	if that[cell] != EmptyCell {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that[cell] = mark

	return that, nil
}

// Winner returns the mark owning the first complete line, or EmptyCell.
func (that Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells returns the free cells in increasing order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that Board) IsEmpty(cell int) bool {
	return cell >= 0 && cell < BoardSize && that[cell] == EmptyCell
}

// String renders the board as three rows, using '.' for empty cells.
func (that Board) String() string {
	out := make([]byte, 0, 12)
	for i, cell := range that {
		if cell == EmptyCell {
			out = append(out, '.')
		} else {
			out = append(out, cell[0])
		}
		if i%3 == 2 && i != BoardSize-1 {
			out = append(out, '\n')
		}
	}

	return string(out)
}
