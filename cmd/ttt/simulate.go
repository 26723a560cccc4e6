package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/tictactoe"
)

var (
	flagSimX     string
	flagSimO     string
	flagSimGames int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Let two computer players play each other",
	Long: `Play a number of games between two computer players and print the tally.

Examples:
  ttt simulate --x hard --o hard
  ttt simulate --x easy --o medium --games 1000`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagSimX, "x", string(entity.MediumDifficulty), "Difficulty of the X player")
	simulateCmd.Flags().StringVar(&flagSimO, "o", string(entity.HardDifficulty), "Difficulty of the O player")
	simulateCmd.Flags().IntVarP(&flagSimGames, "games", "n", 100, "Number of games")
}

type tally struct {
	XWins int
	OWins int
	Draws int
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	x, err := entity.ParseDifficulty(flagSimX)
	if err != nil {
		return err
	}

	o, err := entity.ParseDifficulty(flagSimO)
	if err != nil {
		return err
	}

	if flagSimGames <= 0 {
		return fmt.Errorf("games must be positive, got %d", flagSimGames)
	}

	result, err := simulate(x, o, flagSimGames)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTally(x, o, result))

	return nil
}

func simulate(x, o entity.Difficulty, games int) (tally, error) {
	var result tally

	for i := range games {
		game := entity.NewGame(strconv.Itoa(i), &entity.Player{ID: "x"}, &entity.Player{ID: "o"}, "")

		for !game.IsCompleted() {
			difficulty := x
			if game.Turn == entity.PlayerO {
				difficulty = o
			}

			cell, err := tictactoe.SelectMove(game.Board, difficulty, game.Turn)
			if err != nil {
				return result, fmt.Errorf("game %d: %w", i, err)
			}

			if err = game.MakeTurn(game.Turn, cell); err != nil {
				return result, fmt.Errorf("game %d: %w", i, err)
			}
		}

		switch game.Winner {
		case entity.PlayerX:
			result.XWins++
		case entity.PlayerO:
			result.OWins++
		default:
			result.Draws++
		}

		logger.Debug("game finished", "game", i+1, "winner", game.Winner, "board", game.Board.String())
	}

	return result, nil
}

func renderTally(x, o entity.Difficulty, result tally) string {
	label := lipgloss.NewStyle().Width(12)

	rows := []string{
		titleStyle.Render(fmt.Sprintf("X (%s) vs O (%s)", x, o)),
		label.Render("X wins") + markXStyle.Render(strconv.Itoa(result.XWins)),
		label.Render("O wins") + markOStyle.Render(strconv.Itoa(result.OWins)),
		label.Render("Draws") + drawStyle.Render(strconv.Itoa(result.Draws)),
	}

	return boardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
