package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

// MakeTurn places mark on cell and moves the game to its next state.
func MakeTurn(game *entity.Game, mark entity.Mark, cell entity.Cell) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	if err := validateMove(game, mark, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	game.Board.Set(cell, mark)
	updateGameStatus(game, mark)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, mark entity.Mark, cell entity.Cell) error {
	if !cell.InBounds() {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrInvalidCell, cell.Row, cell.Col)
	}

	if game.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if game.Board.At(cell) != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(game *entity.Game, mark entity.Mark) {
	outcome := game.Board.CheckWinner()
	if outcome.IsDecided() {
		game.Finish(outcome)
		return
	}

	game.Outcome = outcome
	game.Turn = mark.Opponent()
}
