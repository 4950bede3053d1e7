package apperror

import "errors"

var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrGameNotFound       = errors.New("game not found")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrInvalidCell        = errors.New("invalid cell")

	ErrInvalidBoard  = errors.New("invalid board dimensions")
	ErrInvalidMark   = errors.New("invalid mark")
	ErrInvalidSides  = errors.New("ai and player marks must be X and O")
	ErrBoardTerminal = errors.New("board is already terminal")

	ErrEvaluationInFlight = errors.New("another move is already in progress for this game")
)
