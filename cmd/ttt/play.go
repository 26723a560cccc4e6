package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/service"
)

const localPlayerID = "local"

var errQuit = errors.New("quit")

var (
	flagDifficulty string
	flagMark       string
	flagThink      time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play against the computer",
	Long: `Play one game against the computer. Cells are numbered 1-9,
left to right and top to bottom. Type q to give up.

Examples:
  ttt play
  ttt play --difficulty hard --mark O
  ttt play --think 1500ms`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&flagDifficulty, "difficulty", "d", string(entity.MediumDifficulty), "easy, medium or hard")
	playCmd.Flags().StringVarP(&flagMark, "mark", "m", string(entity.PlayerX), "Your mark: X moves first, O moves second")
	playCmd.Flags().DurationVar(&flagThink, "think", 0, "How long the computer pauses before each move")
}

type playOptions struct {
	difficulty entity.Difficulty
	mark       entity.Mark
	think      time.Duration
}

func runPlay(cmd *cobra.Command, _ []string) error {
	difficulty, err := entity.ParseDifficulty(flagDifficulty)
	if err != nil {
		return err
	}

	mark := entity.Mark(strings.ToUpper(flagMark))
	if !mark.IsValid() {
		return fmt.Errorf("mark must be X or O, got %q", flagMark)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	game, err := playGame(ctx, cmd.InOrStdin(), out, playOptions{difficulty: difficulty, mark: mark, think: flagThink})
	if errors.Is(err, errQuit) {
		fmt.Fprintln(out, "\nBye!")
		return nil
	}
	if err != nil {
		return err
	}

	return recordPlayedGame(ctx, out, game)
}

// playGame runs one game, reading the human's moves from in.
func playGame(ctx context.Context, in io.Reader, out io.Writer, opts playOptions) (*entity.Game, error) {
	human := &entity.Player{ID: localPlayerID}
	bot := entity.NewBotPlayer("", "")

	var game *entity.Game
	if opts.mark == entity.PlayerX {
		game = entity.NewGame(uuid.NewString(), human, bot, opts.difficulty)
	} else {
		game = entity.NewGame(uuid.NewString(), bot, human, opts.difficulty)
	}

	bots := service.NewBotService()
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Tic-Tac-Toe: you are %s, computer is %s (%s)", human.Mark, bot.Mark, opts.difficulty)))

	for !game.IsCompleted() {
		if game.IsBotTurn() {
			if err := pause(ctx, opts.think); err != nil {
				return nil, err
			}

			cell, err := bots.MakeTurn(game)
			if err != nil {
				return nil, fmt.Errorf("computer failed to move: %w", err)
			}

			logger.Debug("computer moved", "cell", cell+1, "difficulty", opts.difficulty)
			fmt.Fprintf(out, "Computer plays %d\n", cell+1)

			continue
		}

		fmt.Fprintln(out, renderBoard(game.Board))
		fmt.Fprintf(out, "Your move (%s), 1-9 or q: ", human.Mark)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read move: %w", err)
			}

			return nil, errQuit
		}

		text := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(text, "q") {
			return nil, errQuit
		}

		number, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintln(out, warningStyle.Render("enter a number from 1 to 9"))
			continue
		}

		if err = game.MakeTurn(human.Mark, number-1); err != nil {
			fmt.Fprintln(out, warningStyle.Render(err.Error()))
			continue
		}
	}

	fmt.Fprintln(out, renderBoard(game.Board))
	fmt.Fprintln(out, renderOutcome(entity.OutcomeFor(game, human.ID)))

	return game, nil
}

func pause(ctx context.Context, think time.Duration) error {
	if think <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(think):
		return nil
	}
}
