package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
)

var errInvalidPayload = errors.New("invalid payload")

type gamePlayService interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	DeleteGame(ctx context.Context, gameID string) error

	StartGame(ctx context.Context, gameID string, playerFirst bool) (*entity.Game, error)
	PlayerMove(ctx context.Context, gameID string, cell entity.Cell) (*entity.Game, error)
	NewRound(ctx context.Context, gameID string) (*entity.Game, error)

	Evaluate(board entity.Board) (entity.Outcome, error)
	BestMove(board entity.Board, aiMark, playerMark entity.Mark) (tictactoe.Decision, error)
}

type startRequest struct {
	PlayerFirst *bool `json:"player_first"`
}

// moveRequest uses pointers so a missing coordinate is told apart from 0.
type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type boardRequest struct {
	Board      [][]string `json:"board"`
	AIMark     string     `json:"ai_mark"`
	PlayerMark string     `json:"player_mark"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger   *slog.Logger
	gamePlay gamePlayService
}

func newHandlers(logger *slog.Logger, gamePlay gamePlayService) *handlers {
	return &handlers{
		logger:   logger,
		gamePlay: gamePlay,
	}
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gamePlay.CreateGame(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gamePlay.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gamePlay.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) startGame(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerFirst == nil {
		that.writeError(w, errInvalidPayload)
		return
	}

	game, err := that.gamePlay.StartGame(r.Context(), chi.URLParam(r, "id"), *req.PlayerFirst)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) playerMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		that.writeError(w, errInvalidPayload)
		return
	}

	cell := entity.Cell{Row: *req.Row, Col: *req.Col}

	game, err := that.gamePlay.PlayerMove(r.Context(), chi.URLParam(r, "id"), cell)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) newRound(w http.ResponseWriter, r *http.Request) {
	game, err := that.gamePlay.NewRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) evaluate(w http.ResponseWriter, r *http.Request) {
	board, ok := that.decodeBoard(w, r, nil)
	if !ok {
		return
	}

	outcome, err := that.gamePlay.Evaluate(board)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, outcome)
}

func (that *handlers) bestMove(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	board, ok := that.decodeBoard(w, r, &req)
	if !ok {
		return
	}

	decision, err := that.gamePlay.BestMove(board, entity.Mark(req.AIMark), entity.Mark(req.PlayerMark))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, decision)
}

// decodeBoard reads a boardRequest into req (a fresh one when nil) and builds its board.
func (that *handlers) decodeBoard(w http.ResponseWriter, r *http.Request, req *boardRequest) (entity.Board, bool) {
	if req == nil {
		req = &boardRequest{}
	}

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		that.writeError(w, errInvalidPayload)
		return entity.Board{}, false
	}

	board, err := entity.NewBoardFromRows(req.Board)
	if err != nil {
		that.writeError(w, err)
		return entity.Board{}, false
	}

	return board, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidPayload),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidBoard),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrInvalidSides),
		errors.Is(err, apperror.ErrBoardTerminal):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameAlreadyStarted),
		errors.Is(err, apperror.ErrEvaluationInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		that.writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
