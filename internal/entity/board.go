package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
)

// Size is the side length of the board.
const Size = 3

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

func (that Mark) IsValid() bool {
	return that == EmptyCell || that.IsPlayer()
}

// Opponent returns the other player's mark, or EmptyCell for a non-player mark.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// Cell is a zero-based (row, column) coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Cell) InBounds() bool {
	return that.Row >= 0 && that.Row < Size && that.Col >= 0 && that.Col < Size
}

func (that Cell) Index() int {
	return that.Row*Size + that.Col
}

type Line [Size]Cell

// WinLines lists every winning line: rows, then columns, then the two diagonals.
var WinLines = [8]Line{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is a 3x3 grid stored row-major. It is a value type: assigning or
// passing a Board copies it.
type Board [Size][Size]Mark

// NewBoardFromRows builds a board from a nested slice, rejecting wrong
// dimensions and unknown marks.
func NewBoardFromRows(rows [][]string) (Board, error) {
	var board Board

	if len(rows) != Size {
		return board, fmt.Errorf("%w: expected %d rows, got %d", apperror.ErrInvalidBoard, Size, len(rows))
	}

	for r, row := range rows {
		if len(row) != Size {
			return board, fmt.Errorf("%w: row %d has %d cells", apperror.ErrInvalidBoard, r, len(row))
		}

		for c, value := range row {
			board[r][c] = Mark(value)
		}
	}

	if err := board.Validate(); err != nil {
		return Board{}, err
	}

	return board, nil
}

func (that *Board) Validate() error {
	for r := range Size {
		for c := range Size {
			if !that[r][c].IsValid() {
				return fmt.Errorf("%w: %q at (%d,%d)", apperror.ErrInvalidMark, that[r][c], r, c)
			}
		}
	}

	return nil
}

func (that *Board) At(cell Cell) Mark {
	return that[cell.Row][cell.Col]
}

func (that *Board) Set(cell Cell, mark Mark) {
	that[cell.Row][cell.Col] = mark
}

// EmptyCells returns the empty cells in row-major order.
func (that *Board) EmptyCells() []Cell {
	cells := make([]Cell, 0, Size*Size)
	for r := range Size {
		for c := range Size {
			if that[r][c] == EmptyCell {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}

	return cells
}

func (that *Board) IsFull() bool {
	for r := range Size {
		for c := range Size {
			if that[r][c] == EmptyCell {
				return false
			}
		}
	}

	return true
}

func (that *Board) IsEmpty() bool {
	for r := range Size {
		for c := range Size {
			if that[r][c] != EmptyCell {
				return false
			}
		}
	}

	return true
}

// Count returns how many cells hold the given mark.
func (that *Board) Count(mark Mark) int {
	n := 0
	for r := range Size {
		for c := range Size {
			if that[r][c] == mark {
				n++
			}
		}
	}

	return n
}

// CheckWinner scans the winning lines in order and reports the first one
// fully held by a single mark. A full board with no such line is a draw.
// The board is assumed valid; see EvaluateBoard for checked input.
func (that *Board) CheckWinner() Outcome {
	for i := range WinLines {
		line := WinLines[i]
		a, b, c := that.At(line[0]), that.At(line[1]), that.At(line[2])
		if a != EmptyCell && a == b && b == c {
			return Outcome{Status: OutcomeWin, Winner: a, Line: &line}
		}
	}

	if that.IsFull() {
		return Outcome{Status: OutcomeDraw}
	}

	return Outcome{Status: OutcomeOngoing}
}

func (that *Board) IsTerminal() bool {
	return that.CheckWinner().IsDecided()
}

func (that *Board) Rows() [][]string {
	rows := make([][]string, Size)
	for r := range Size {
		rows[r] = make([]string, Size)
		for c := range Size {
			rows[r][c] = string(that[r][c])
		}
	}

	return rows
}

// EvaluateBoard validates the board and returns its outcome.
func EvaluateBoard(board Board) (Outcome, error) {
	if err := board.Validate(); err != nil {
		return Outcome{}, err
	}

	return board.CheckWinner(), nil
}
