package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Opener picks the bot's first move of a round it opens.
type Opener interface {
	Pick(board entity.Board) (entity.Cell, error)
}

type BotService interface {
	MakeTurn(game *entity.Game) (entity.Cell, error)
}

type botService struct {
	opening Opener
}

// NewBotService - a nil opening makes every bot move come from the search.
func NewBotService(opening Opener) BotService {
	return &botService{
		opening: opening,
	}
}

func (that *botService) MakeTurn(game *entity.Game) (entity.Cell, error) {
	if err := game.ConfirmOngoingState(); err != nil {
		return entity.Cell{}, err
	}

	if game.Turn != game.AIMark {
		return entity.Cell{}, apperror.ErrNotYourTurn
	}

	cell, err := that.chooseCell(game)
	if err != nil {
		return entity.Cell{}, err
	}

	if err = tictactoe.MakeTurn(game, game.AIMark, cell); err != nil {
		return entity.Cell{}, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return cell, nil
}

func (that *botService) chooseCell(game *entity.Game) (entity.Cell, error) {
	if that.opening != nil && game.IsAIOpening() {
		cell, err := that.opening.Pick(game.Board)
		if err != nil {
			return entity.Cell{}, fmt.Errorf("failed to pick opening: %w", err)
		}

		return cell, nil
	}

	decision, err := tictactoe.ChooseMove(game.Board, game.AIMark, game.PlayerMark)
	if errors.Is(err, apperror.ErrBoardTerminal) {
		return entity.Cell{}, ErrNoAvailableMoves
	}

	if err != nil {
		return entity.Cell{}, fmt.Errorf("failed to choose move: %w", err)
	}

	return decision.Cell, nil
}
