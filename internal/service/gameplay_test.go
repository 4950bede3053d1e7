package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solver/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newMemoryGamePlay() (GamePlayService, repository.Locker) {
	locker := repository.NewMemoryLocker()
	gameService := NewGameService(repository.NewMemoryGameRepository())

	return NewGamePlayService(newTestLogger(), gameService, NewBotService(nil), locker), locker
}

// playFirstEmpty moves on the first empty cell until the round ends.
func playFirstEmpty(ctx context.Context, t *testing.T, gamePlay GamePlayService, game *entity.Game) *entity.Game {
	t.Helper()

	for !game.IsFinished() {
		cells := game.Board.EmptyCells()
		require.NotEmpty(t, cells)

		var err error
		game, err = gamePlay.PlayerMove(ctx, game.ID, cells[0])
		require.NoError(t, err)
	}

	return game
}

func TestGamePlayService_StartGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Player first waits for the player's move", func(t *testing.T) {
		// Given: a new game
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)
		assert.True(t, game.IsWaiting())

		// When: the player chooses to go first
		game, err = gamePlay.StartGame(ctx, game.ID, true)

		// Then: the board is empty and X is on the move
		require.NoError(t, err)
		assert.True(t, game.Board.IsEmpty())
		assert.Equal(t, entity.PlayerX, game.PlayerMark)
		assert.Equal(t, entity.PlayerX, game.Turn)
	})

	t.Run("Bot first opens the round", func(t *testing.T) {
		// Given: a new game
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)

		// When: the player lets the bot go first
		game, err = gamePlay.StartGame(ctx, game.ID, false)

		// Then: the bot's X is already on the board
		require.NoError(t, err)
		assert.Equal(t, 1, game.Board.Count(entity.PlayerX))
		assert.Equal(t, entity.PlayerO, game.Turn)

		stored, err := gamePlay.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, game, stored)
	})

	t.Run("Returns ErrGameAlreadyStarted and keeps the stored game", func(t *testing.T) {
		// Given: a started game
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)
		_, err = gamePlay.StartGame(ctx, game.ID, true)
		require.NoError(t, err)

		// When: starting it again
		_, err = gamePlay.StartGame(ctx, game.ID, false)

		// Then: the error is reported and the player keeps X
		require.ErrorIs(t, err, apperror.ErrGameAlreadyStarted)
		stored, err := gamePlay.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, stored.PlayerMark)
	})

	t.Run("Returns ErrGameNotFound for an unknown id", func(t *testing.T) {
		gamePlay, _ := newMemoryGamePlay()

		_, err := gamePlay.StartGame(ctx, "missing", true)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGamePlayService_PlayerMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Bot answers a center opening with a corner", func(t *testing.T) {
		// Given: a game where the player goes first
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)
		_, err = gamePlay.StartGame(ctx, game.ID, true)
		require.NoError(t, err)

		// When: the player takes the center
		game, err = gamePlay.PlayerMove(ctx, game.ID, entity.Cell{Row: 1, Col: 1})

		// Then: the bot replies in the top-left corner and it is the player's turn again
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, game.Board[0][0])
		assert.Equal(t, entity.PlayerX, game.Turn)
		assert.True(t, game.IsOngoing())
	})

	t.Run("Bot beats a naive player moving first", func(t *testing.T) {
		// Given: a game where the player goes first
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)
		game, err = gamePlay.StartGame(ctx, game.ID, true)
		require.NoError(t, err)

		// When: the player always takes the first empty cell
		game = playFirstEmpty(ctx, t, gamePlay, game)

		// Then: the bot wins on the anti-diagonal and the tally shows it
		assert.Equal(t, entity.OutcomeWin, game.Outcome.Status)
		assert.Equal(t, entity.PlayerO, game.Outcome.Winner)
		require.NotNil(t, game.Outcome.Line)
		assert.Equal(t, entity.WinLines[7], *game.Outcome.Line)
		assert.Equal(t, entity.Tally{AI: 1}, game.Score)
	})

	t.Run("Bot beats a naive player moving second", func(t *testing.T) {
		// Given: a game the bot opens
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)
		game, err = gamePlay.StartGame(ctx, game.ID, false)
		require.NoError(t, err)

		// When: the player always takes the first empty cell
		game = playFirstEmpty(ctx, t, gamePlay, game)

		// Then: the bot completes the left column
		assert.Equal(t, entity.PlayerX, game.Outcome.Winner)
		require.NotNil(t, game.Outcome.Line)
		assert.Equal(t, entity.WinLines[3], *game.Outcome.Line)
		assert.Equal(t, entity.Tally{AI: 1}, game.Score)
	})

	t.Run("Returns ErrCellOccupied without saving", func(t *testing.T) {
		// Given: a game after one exchange
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)
		_, err = gamePlay.StartGame(ctx, game.ID, true)
		require.NoError(t, err)
		before, err := gamePlay.PlayerMove(ctx, game.ID, entity.Cell{Row: 1, Col: 1})
		require.NoError(t, err)

		// When: the player tries the bot's cell
		_, err = gamePlay.PlayerMove(ctx, game.ID, entity.Cell{Row: 0, Col: 0})

		// Then: the move is rejected and the stored game is unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		stored, err := gamePlay.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, before, stored)
	})

	t.Run("Returns ErrGameIsNotStarted before the first-player choice", func(t *testing.T) {
		gamePlay, _ := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)

		_, err = gamePlay.PlayerMove(ctx, game.ID, entity.Cell{Row: 0, Col: 0})
		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrEvaluationInFlight while the game is locked", func(t *testing.T) {
		// Given: another request holds the game's lock
		gamePlay, locker := newMemoryGamePlay()
		game, err := gamePlay.CreateGame(ctx)
		require.NoError(t, err)
		_, err = gamePlay.StartGame(ctx, game.ID, true)
		require.NoError(t, err)

		unlock, err := locker.Acquire(ctx, game.ID)
		require.NoError(t, err)

		// When: the player moves
		_, err = gamePlay.PlayerMove(ctx, game.ID, entity.Cell{Row: 1, Col: 1})

		// Then: the move is refused until the lock is released
		require.ErrorIs(t, err, apperror.ErrEvaluationInFlight)

		require.NoError(t, unlock(ctx))
		_, err = gamePlay.PlayerMove(ctx, game.ID, entity.Cell{Row: 1, Col: 1})
		require.NoError(t, err)
	})
}

func TestGamePlayService_NewRound(t *testing.T) {
	ctx := context.Background()

	// Given: a finished round won by the bot
	gamePlay, _ := newMemoryGamePlay()
	game, err := gamePlay.CreateGame(ctx)
	require.NoError(t, err)
	game, err = gamePlay.StartGame(ctx, game.ID, true)
	require.NoError(t, err)
	game = playFirstEmpty(ctx, t, gamePlay, game)

	// When: a new round is requested
	game, err = gamePlay.NewRound(ctx, game.ID)

	// Then: the board is cleared, the tally kept, and the game waits for the first-player choice
	require.NoError(t, err)
	assert.True(t, game.Board.IsEmpty())
	assert.True(t, game.IsWaiting())
	assert.Equal(t, entity.Tally{AI: 1}, game.Score)

	// Then: the next round can start with the bot first
	game, err = gamePlay.StartGame(ctx, game.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.PlayerX, game.AIMark)
}

func TestGamePlayService_DeleteGame(t *testing.T) {
	ctx := context.Background()

	gamePlay, _ := newMemoryGamePlay()
	game, err := gamePlay.CreateGame(ctx)
	require.NoError(t, err)

	require.NoError(t, gamePlay.DeleteGame(ctx, game.ID))

	_, err = gamePlay.GetGame(ctx, game.ID)
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
	require.ErrorIs(t, gamePlay.DeleteGame(ctx, game.ID), apperror.ErrGameNotFound)
}

func TestGamePlayService_Stateless(t *testing.T) {
	gamePlay, _ := newMemoryGamePlay()

	t.Run("Evaluate reports a win", func(t *testing.T) {
		board := entity.Board{
			{X, O, E},
			{X, O, E},
			{X, E, E},
		}

		outcome, err := gamePlay.Evaluate(board)
		require.NoError(t, err)
		assert.True(t, outcome.IsWinFor(X))
	})

	t.Run("BestMove blocks", func(t *testing.T) {
		board := entity.Board{
			{E, E, E},
			{O, O, E},
			{E, E, E},
		}

		decision, err := gamePlay.BestMove(board, X, O)
		require.NoError(t, err)
		assert.Equal(t, entity.Cell{Row: 1, Col: 2}, decision.Cell)
	})

	t.Run("BestMove returns ErrBoardTerminal", func(t *testing.T) {
		board := entity.Board{
			{X, X, X},
			{O, O, E},
			{E, E, E},
		}

		_, err := gamePlay.BestMove(board, O, X)
		require.ErrorIs(t, err, apperror.ErrBoardTerminal)
	})
}

func TestGamePlayService_StorageErrors(t *testing.T) {
	ctx := context.Background()
	errStorage := errors.New("storage unavailable")

	t.Run("Returns the repository error on save", func(t *testing.T) {
		// Given: a repository that loads but cannot save
		repo := &mockGameRepo{}
		game := entity.NewGame("123")
		repo.On("GetByID", mock.Anything, "123").Return(game, nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, game).Return(errStorage).Once()

		locker := repository.NewMemoryLocker()
		gamePlay := NewGamePlayService(newTestLogger(), NewGameService(repo), NewBotService(nil), locker)

		// When: starting the game
		_, err := gamePlay.StartGame(ctx, "123", true)

		// Then: the storage error is wrapped and the lock is released
		require.ErrorIs(t, err, errStorage)
		repo.AssertExpectations(t)

		unlock, err := locker.Acquire(ctx, "123")
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Returns the repository error on create", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errStorage).Once()

		gamePlay := NewGamePlayService(newTestLogger(), NewGameService(repo), NewBotService(nil), repository.NewMemoryLocker())

		game, err := gamePlay.CreateGame(ctx)
		require.ErrorIs(t, err, errStorage)
		assert.Nil(t, game)
	})
}

func TestGamePlayService_Redis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx, st := suite.New(t)

	// Given: the game play service wired to redis
	locker := repository.NewRedisLocker(st.Storage, 0)
	gameService := NewGameService(repository.NewGameRepository(st.Storage, 0))
	gamePlay := NewGamePlayService(st.Logger, gameService, NewBotService(nil), locker)

	game, err := gamePlay.CreateGame(ctx)
	require.NoError(t, err)
	game, err = gamePlay.StartGame(ctx, game.ID, true)
	require.NoError(t, err)

	// When: a naive player plays a full round
	game = playFirstEmpty(ctx, t, gamePlay, game)

	// Then: the stored session carries the result
	stored, err := gamePlay.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Tally{AI: 1}, stored.Score)
	assert.True(t, stored.IsFinished())

	// Then: a held lock blocks moves
	_, err = gamePlay.NewRound(ctx, game.ID)
	require.NoError(t, err)
	unlock, err := locker.Acquire(ctx, game.ID)
	require.NoError(t, err)
	_, err = gamePlay.StartGame(ctx, game.ID, true)
	require.ErrorIs(t, err, apperror.ErrEvaluationInFlight)
	require.NoError(t, unlock(ctx))
}
