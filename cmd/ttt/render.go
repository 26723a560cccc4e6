package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
)

var (
	markXStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	markOStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	emptyStyle = lipgloss.NewStyle().Faint(true)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Bold(true)
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	drawStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// renderBoard draws the grid. Empty cells show the 1-9 number used to play them.
func renderBoard(board entity.Board) string {
	rows := make([]string, 0, 5)

	for row := range 3 {
		cells := make([]string, 0, 3)
		for col := range 3 {
			cell := row*3 + col
			cells = append(cells, " "+renderCell(board[cell], cell)+" ")
		}

		if row > 0 {
			rows = append(rows, "───┼───┼───")
		}

		rows = append(rows, strings.Join(cells, "│"))
	}

	return boardStyle.Render(strings.Join(rows, "\n"))
}

func renderCell(mark entity.Mark, cell int) string {
	switch mark {
	case entity.PlayerX:
		return markXStyle.Render("X")
	case entity.PlayerO:
		return markOStyle.Render("O")
	default:
		return emptyStyle.Render(strconv.Itoa(cell + 1))
	}
}

func renderOutcome(outcome entity.Outcome) string {
	switch outcome {
	case entity.OutcomeWin:
		return winStyle.Render("You win!")
	case entity.OutcomeLoss:
		return lossStyle.Render("The computer wins.")
	default:
		return drawStyle.Render("It's a draw.")
	}
}
