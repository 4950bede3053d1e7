package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
)

type GamePlayService interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	DeleteGame(ctx context.Context, gameID string) error

	StartGame(ctx context.Context, gameID string, playerFirst bool) (*entity.Game, error)
	PlayerMove(ctx context.Context, gameID string, cell entity.Cell) (*entity.Game, error)
	NewRound(ctx context.Context, gameID string) (*entity.Game, error)

	Evaluate(board entity.Board) (entity.Outcome, error)
	BestMove(board entity.Board, aiMark, playerMark entity.Mark) (tictactoe.Decision, error)
}

type gamePlayService struct {
	logger *slog.Logger

	gameService GameService
	botService  BotService
	locker      repository.Locker
}

func NewGamePlayService(logger *slog.Logger, gameService GameService, botService BotService, locker repository.Locker) GamePlayService {
	return &gamePlayService{
		logger:      logger,
		gameService: gameService,
		botService:  botService,
		locker:      locker,
	}
}

func (that *gamePlayService) CreateGame(ctx context.Context) (*entity.Game, error) {
	game, err := that.gameService.CreateGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "method", "CreateGame", "gameID", game.ID)

	return game, nil
}

func (that *gamePlayService) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) DeleteGame(ctx context.Context, gameID string) error {
	if err := that.gameService.DeleteGame(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "method", "DeleteGame", "gameID", gameID)

	return nil
}

// StartGame records who moves first. When the bot opens, its first move is made right away.
func (that *gamePlayService) StartGame(ctx context.Context, gameID string, playerFirst bool) (*entity.Game, error) {
	log := that.logger.With("method", "StartGame", "gameID", gameID)

	return that.withGame(ctx, gameID, func(game *entity.Game) error {
		if err := game.Start(playerFirst); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}

		log.Info("game started", "playerFirst", playerFirst, "aiMark", game.AIMark)

		if playerFirst {
			return nil
		}

		return that.botTurn(log, game)
	})
}

// PlayerMove applies the player's mark and, if the game goes on, the bot's reply.
func (that *gamePlayService) PlayerMove(ctx context.Context, gameID string, cell entity.Cell) (*entity.Game, error) {
	log := that.logger.With("method", "PlayerMove", "gameID", gameID)

	return that.withGame(ctx, gameID, func(game *entity.Game) error {
		if err := tictactoe.MakeTurn(game, game.PlayerMark, cell); err != nil {
			return fmt.Errorf("failed to make turn: %w", err)
		}

		log.Debug("player moved", "row", cell.Row, "col", cell.Col)

		if game.IsFinished() {
			logResult(log, game)
			return nil
		}

		return that.botTurn(log, game)
	})
}

// NewRound clears the board for another round and keeps the tally.
func (that *gamePlayService) NewRound(ctx context.Context, gameID string) (*entity.Game, error) {
	log := that.logger.With("method", "NewRound", "gameID", gameID)

	return that.withGame(ctx, gameID, func(game *entity.Game) error {
		game.Reset()
		log.Info("new round", "score", game.Score)

		return nil
	})
}

func (that *gamePlayService) Evaluate(board entity.Board) (entity.Outcome, error) {
	outcome, err := tictactoe.EvaluateBoard(board)
	if err != nil {
		return entity.Outcome{}, err
	}

	return outcome, nil
}

func (that *gamePlayService) BestMove(board entity.Board, aiMark, playerMark entity.Mark) (tictactoe.Decision, error) {
	decision, err := tictactoe.ChooseMove(board, aiMark, playerMark)
	if err != nil {
		return tictactoe.Decision{}, fmt.Errorf("failed to choose move: %w", err)
	}

	that.logger.Debug("best move", "method", "BestMove", "cell", decision.Cell, "score", decision.Score, "nodes", decision.Nodes)

	return decision, nil
}

func (that *gamePlayService) botTurn(log *slog.Logger, game *entity.Game) error {
	cell, err := that.botService.MakeTurn(game)
	if err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	log.Debug("bot moved", "row", cell.Row, "col", cell.Col)

	if game.IsFinished() {
		logResult(log, game)
	}

	return nil
}

// withGame runs fn on the stored game under the game's lock and saves the result.
// A game already being changed by another request fails with apperror.ErrEvaluationInFlight.
func (that *gamePlayService) withGame(ctx context.Context, gameID string, fn func(game *entity.Game) error) (*entity.Game, error) {
	unlock, err := that.locker.Acquire(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock game: %w", err)
	}

	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			that.logger.Error("failed to unlock game", "gameID", gameID, "error", err)
		}
	}()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = fn(game); err != nil {
		return nil, err
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func logResult(log *slog.Logger, game *entity.Game) {
	log.Info("game finished",
		"outcome", game.Outcome.Status,
		"winner", game.Outcome.Winner,
		"score", game.Score,
	)
}
