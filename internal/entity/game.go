package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Tally counts finished games of one session.
type Tally struct {
	AI     int `json:"ai"`
	Player int `json:"player"`
	Ties   int `json:"ties"`
}

// Game is one play session against the bot. A session lives across rounds:
// Reset starts a new round and keeps the tally.
type Game struct {
	ID          string  `json:"id"`
	Board       Board   `json:"board"`
	AIMark      Mark    `json:"ai_mark,omitempty"`
	PlayerMark  Mark    `json:"player_mark,omitempty"`
	Turn        Mark    `json:"turn,omitempty"`
	Status      string  `json:"status"`
	Outcome     Outcome `json:"outcome"`
	PlayerFirst bool    `json:"player_first"`
	Score       Tally   `json:"score"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:      id,
		Status:  StatusWaiting,
		Outcome: Outcome{Status: OutcomeOngoing},
	}
}

// Start assigns marks once the first mover is chosen. The side moving first
// always plays X.
func (that *Game) Start(playerFirst bool) error {
	if !that.IsWaiting() {
		return fmt.Errorf("%w: status %s", apperror.ErrGameAlreadyStarted, that.Status)
	}

	that.PlayerFirst = playerFirst
	if playerFirst {
		that.PlayerMark, that.AIMark = PlayerX, PlayerO
	} else {
		that.PlayerMark, that.AIMark = PlayerO, PlayerX
	}

	that.Turn = PlayerX
	that.Status = StatusOngoing

	return nil
}

// Reset clears the round and waits for a new first-player choice.
func (that *Game) Reset() {
	that.Board = Board{}
	that.AIMark = EmptyCell
	that.PlayerMark = EmptyCell
	that.Turn = EmptyCell
	that.PlayerFirst = false
	that.Status = StatusWaiting
	that.Outcome = Outcome{Status: OutcomeOngoing}
}

// Finish records a decided outcome and updates the tally.
func (that *Game) Finish(outcome Outcome) {
	that.Outcome = outcome
	that.Status = StatusFinished
	that.Turn = EmptyCell

	switch {
	case outcome.IsWinFor(that.AIMark):
		that.Score.AI++
	case outcome.IsWinFor(that.PlayerMark):
		that.Score.Player++
	default:
		that.Score.Ties++
	}
}

// IsAIOpening reports whether the next move is the bot's first move of a round it opens.
func (that *Game) IsAIOpening() bool {
	return that.IsOngoing() && !that.PlayerFirst && that.Turn == that.AIMark && that.Board.IsEmpty()
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
