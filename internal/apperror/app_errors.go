package apperror

import (
	"errors"
	"fmt"
)

var ErrInvalidMove = errors.New("invalid move")

var (
	ErrInvalidCell      = fmt.Errorf("%w: invalid cell index", ErrInvalidMove)
	ErrCellOccupied     = fmt.Errorf("%w: cell is already occupied", ErrInvalidMove)
	ErrNotYourTurn      = fmt.Errorf("%w: it's not your turn", ErrInvalidMove)
	ErrGameFinished     = fmt.Errorf("%w: game is already finished", ErrInvalidMove)
	ErrGameIsNotStarted = fmt.Errorf("%w: game is not started", ErrInvalidMove)

	ErrStaleSession  = errors.New("game session is stale")
	ErrNoActiveGames = errors.New("no active games")
	ErrNotFound      = errors.New("not found")
)
