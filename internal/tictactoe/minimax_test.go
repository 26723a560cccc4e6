package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimax(t *testing.T) {
	t.Run("Decided boards return no cell", func(t *testing.T) {
		tests := []struct {
			name  string
			board entity.Board
			mark  entity.Mark
			want  Move
		}{
			{name: "opponent won", board: entity.Board{x, x, x, o, o, e, e, e, e}, mark: o, want: Move{Score: -10, Cell: -1}},
			{name: "maximizer won", board: entity.Board{x, x, x, o, o, e, e, e, e}, mark: x, want: Move{Score: 10, Cell: -1}},
			{name: "draw", board: entity.Board{x, o, x, x, o, o, o, x, x}, mark: x, want: Move{Score: 0, Cell: -1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, Minimax(tt.board, tt.mark))
			})
		}
	})

	t.Run("Empty board is a draw and picks the lowest cell", func(t *testing.T) {
		move := Minimax(entity.Board{}, x)

		assert.Equal(t, Move{Score: 0, Cell: 0}, move)
	})

	t.Run("Takes a winning line", func(t *testing.T) {
		// Given: O to move with two in the middle row, X threatening nothing yet
		board := entity.Board{x, x, e, o, o, e, x, e, e}

		move := Minimax(board, o)

		// Then: the search sees a forced win
		assert.Equal(t, 10, move.Score)
		next, err := board.ApplyMove(move.Cell, o)
		require.NoError(t, err)
		assert.Equal(t, 10, minimax(next, o, x).Score)
	})

	t.Run("Blocks a single threat", func(t *testing.T) {
		// Given: X threatens the top row and O has nothing
		board := entity.Board{x, x, e, e, o, e, e, e, e}

		move := Minimax(board, o)

		// Then: blocking is the only move that does not lose
		assert.Equal(t, 2, move.Cell)
		assert.Equal(t, 0, move.Score)
	})

	t.Run("Reports a lost position", func(t *testing.T) {
		// Given: X has a double threat, O to move
		board := entity.Board{x, e, x, e, x, o, e, e, o}

		move := Minimax(board, o)

		assert.Equal(t, -10, move.Score)
	})

	t.Run("Does not modify the input board", func(t *testing.T) {
		board := entity.Board{x, e, e, e, e, e, e, e, e}
		before := board

		Minimax(board, o)

		assert.Equal(t, before, board)
	})

	t.Run("Same board gives the same move", func(t *testing.T) {
		board := entity.Board{x, e, e, e, e, e, e, e, o}

		assert.Equal(t, Minimax(board, x), Minimax(board, x))
	})
}
