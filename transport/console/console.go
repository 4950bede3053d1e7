package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

var errBadInput = errors.New("enter the row and column as two numbers, e.g. 1 2")

type gamePlayService interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	DeleteGame(ctx context.Context, gameID string) error

	StartGame(ctx context.Context, gameID string, playerFirst bool) (*entity.Game, error)
	PlayerMove(ctx context.Context, gameID string, cell entity.Cell) (*entity.Game, error)
	NewRound(ctx context.Context, gameID string) (*entity.Game, error)
}

// Console plays rounds against the bot over a line based terminal session.
type Console struct {
	logger   *slog.Logger
	gamePlay gamePlayService

	in     *bufio.Scanner
	out    *termenv.Output
	render renderer
}

// New - profile selects the color support of w; use termenv.Ascii for plain text.
func New(logger *slog.Logger, gamePlay gamePlayService, r io.Reader, w io.Writer, profile termenv.Profile) *Console {
	out := termenv.NewOutput(w, termenv.WithProfile(profile))

	return &Console{
		logger:   logger,
		gamePlay: gamePlay,
		in:       bufio.NewScanner(r),
		out:      out,
		render:   renderer{out: out},
	}
}

// Run plays until the player declines another round or the input ends.
func (that *Console) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	game, err := that.gamePlay.CreateGame(ctx)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	defer func() {
		if err := that.gamePlay.DeleteGame(context.WithoutCancel(ctx), game.ID); err != nil {
			log.Error("failed to delete game", "gameID", game.ID, "error", err)
		}
	}()

	for {
		playerFirst, ok := that.askYesNo(ctx, "Do you want to play first? (y/n): ")
		if !ok {
			return nil
		}

		game, err = that.gamePlay.StartGame(ctx, game.ID, playerFirst)
		if err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}

		if playerFirst {
			that.println("Player plays first")
		} else {
			that.println("AI plays first")
		}

		game, ok, err = that.playRound(ctx, game)
		if err != nil || !ok {
			return err
		}

		that.announce(game)

		again, ok := that.askYesNo(ctx, "Play again? (y/n): ")
		if !ok || !again {
			return nil
		}

		game, err = that.gamePlay.NewRound(ctx, game.ID)
		if err != nil {
			return fmt.Errorf("failed to start new round: %w", err)
		}
	}
}

// playRound reads moves until the round is finished. ok is false when the input ended.
func (that *Console) playRound(ctx context.Context, game *entity.Game) (*entity.Game, bool, error) {
	for !game.IsFinished() {
		that.print(that.render.board(game.Board, game.Outcome))

		cell, ok, err := that.askCell(ctx)
		if !ok {
			return game, false, nil
		}

		if err != nil {
			that.println(err.Error())
			continue
		}

		next, err := that.gamePlay.PlayerMove(ctx, game.ID, cell)
		switch {
		case errors.Is(err, apperror.ErrInvalidCell), errors.Is(err, apperror.ErrCellOccupied):
			that.println(err.Error())
			continue
		case err != nil:
			return game, false, fmt.Errorf("failed to make move: %w", err)
		}

		game = next
	}

	that.print(that.render.board(game.Board, game.Outcome))

	return game, true, nil
}

func (that *Console) announce(game *entity.Game) {
	var title string
	switch {
	case game.Outcome.IsWinFor(game.AIMark):
		title = "AI Wins!"
	case game.Outcome.IsWinFor(game.PlayerMark):
		title = "Player Wins!"
	default:
		title = "Draw!"
	}

	that.println(that.out.String(title).Bold().String())
	that.println(fmt.Sprintf("Score: AI %d, Player %d, Ties %d", game.Score.AI, game.Score.Player, game.Score.Ties))
}

func (that *Console) askYesNo(ctx context.Context, prompt string) (bool, bool) {
	for {
		line, ok := that.readLine(ctx, prompt)
		if !ok {
			return false, false
		}

		switch strings.ToLower(line) {
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		}
	}
}

// askCell returns ok=false at the end of input and a non-nil error for a line that is not a cell.
func (that *Console) askCell(ctx context.Context) (entity.Cell, bool, error) {
	line, ok := that.readLine(ctx, "Your move (row col): ")
	if !ok {
		return entity.Cell{}, false, nil
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return entity.Cell{}, true, errBadInput
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return entity.Cell{}, true, errBadInput
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return entity.Cell{}, true, errBadInput
	}

	return entity.Cell{Row: row, Col: col}, true, nil
}

func (that *Console) readLine(ctx context.Context, prompt string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}

	that.print(prompt)
	if !that.in.Scan() {
		return "", false
	}

	return strings.TrimSpace(that.in.Text()), true
}

func (that *Console) print(s string) {
	if _, err := io.WriteString(that.out, s); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}

func (that *Console) println(s string) {
	that.print(s + "\n")
}
