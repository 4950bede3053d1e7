package entity

type OutcomeStatus string

const (
	OutcomeOngoing OutcomeStatus = "ongoing"
	OutcomeWin     OutcomeStatus = "win"
	OutcomeDraw    OutcomeStatus = "draw"
)

// Outcome is the status of a board. Winner and Line are set only for a win;
// Line is the winning line to highlight.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Mark          `json:"winner,omitempty"`
	Line   *Line         `json:"line,omitempty"`
}

// IsDecided reports whether the game is over (win or draw).
func (that Outcome) IsDecided() bool {
	return that.Status == OutcomeWin || that.Status == OutcomeDraw
}

func (that Outcome) IsWinFor(mark Mark) bool {
	return that.Status == OutcomeWin && that.Winner == mark
}
