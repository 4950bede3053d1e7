package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

type Forecast string

const (
	ForecastWin  Forecast = "win"
	ForecastLoss Forecast = "loss"
	ForecastDraw Forecast = "draw"
)

// Decision is the optimal move for the AI together with the game-theoretic
// value of the position under perfect play from both sides.
type Decision struct {
	Cell     entity.Cell `json:"cell"`
	Score    int         `json:"score"`
	Forecast Forecast    `json:"forecast"`
	Nodes    int         `json:"nodes"`
}

// EvaluateBoard returns the outcome of a board after checking its marks.
func EvaluateBoard(board entity.Board) (entity.Outcome, error) {
	outcome, err := entity.EvaluateBoard(board)
	if err != nil {
		return entity.Outcome{}, fmt.Errorf("failed to evaluate board: %w", err)
	}

	return outcome, nil
}

// ChooseMove searches the whole game tree from board with the AI to move.
// The engine holds no state between calls and takes no locks; callers must
// not run two evaluations for the same game at once.
func ChooseMove(board entity.Board, aiMark, playerMark entity.Mark) (Decision, error) {
	if !aiMark.IsPlayer() || aiMark.Opponent() != playerMark {
		return Decision{}, fmt.Errorf("%w: ai %q, player %q", apperror.ErrInvalidSides, aiMark, playerMark)
	}

	outcome, err := EvaluateBoard(board)
	if err != nil {
		return Decision{}, err
	}

	if outcome.IsDecided() {
		return Decision{}, fmt.Errorf("%w: %s", apperror.ErrBoardTerminal, outcome.Status)
	}

	s := searcher{board: board, sides: Sides{AI: aiMark, Opponent: playerMark}}

	value, cell, ok := s.search(0, true, NegInf, PosInf)
	if !ok {
		return Decision{}, apperror.ErrBoardTerminal
	}

	return Decision{
		Cell:     cell,
		Score:    value,
		Forecast: forecast(value),
		Nodes:    s.nodes,
	}, nil
}

func forecast(value int) Forecast {
	switch {
	case value > 0:
		return ForecastWin
	case value < 0:
		return ForecastLoss
	default:
		return ForecastDraw
	}
}
