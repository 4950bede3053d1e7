package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

const (
	// WinScore is the utility of a win found at depth 0.
	WinScore = 10

	NegInf = math.MinInt
	PosInf = math.MaxInt
)

// Sides names the maximizing (AI) and minimizing (Opponent) marks.
type Sides struct {
	AI       entity.Mark
	Opponent entity.Mark
}

// Utility scores a terminal board: faster wins and slower losses score higher.
func Utility(outcome entity.Outcome, depth int, sides Sides) int {
	switch {
	case outcome.IsWinFor(sides.AI):
		return WinScore - depth
	case outcome.IsWinFor(sides.Opponent):
		return depth - WinScore
	default:
		return 0
	}
}

// FindBestMove runs minimax with alpha-beta pruning from the given board.
// The board is taken by value, so the caller's board is never touched.
// For a terminal board it returns the utility and ok == false.
func FindBestMove(board entity.Board, depth int, maximizing bool, alpha, beta int, sides Sides) (int, entity.Cell, bool) {
	s := searcher{board: board, sides: sides}
	return s.search(depth, maximizing, alpha, beta)
}

type searcher struct {
	board entity.Board
	sides Sides
	nodes int
}

func (that *searcher) search(depth int, maximizing bool, alpha, beta int) (int, entity.Cell, bool) {
	that.nodes++

	if outcome := that.board.CheckWinner(); outcome.IsDecided() {
		return Utility(outcome, depth, that.sides), entity.Cell{}, false
	}

	var (
		best  entity.Cell
		found bool
	)

	if maximizing {
		bestValue := NegInf
		for _, cell := range that.board.EmptyCells() {
			value := that.probe(cell, that.sides.AI, depth+1, false, alpha, beta)
			// strictly greater keeps the first cell in scan order on ties
			if value > bestValue {
				bestValue, best, found = value, cell, true
			}

			alpha = max(alpha, value)
			if beta <= alpha {
				break
			}
		}

		return bestValue, best, found
	}

	bestValue := PosInf
	for _, cell := range that.board.EmptyCells() {
		value := that.probe(cell, that.sides.Opponent, depth+1, true, alpha, beta)
		if value < bestValue {
			bestValue, best, found = value, cell, true
		}

		beta = min(beta, value)
		if beta <= alpha {
			break
		}
	}

	return bestValue, best, found
}

// probe marks the cell, searches the child position and always clears the
// cell again before returning.
func (that *searcher) probe(cell entity.Cell, mark entity.Mark, depth int, maximizing bool, alpha, beta int) int {
	that.board.Set(cell, mark)
	defer that.board.Set(cell, entity.EmptyCell)

	value, _, _ := that.search(depth, maximizing, alpha, beta)

	return value
}
