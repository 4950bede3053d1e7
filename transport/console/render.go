package console

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

const (
	colorX    = "#ff79c6"
	colorO    = "#8be9fd"
	colorLine = "#f1fa8c"
	colorBG   = "#282a36"
)

type renderer struct {
	out *termenv.Output
}

func (that renderer) mark(mark entity.Mark, highlighted bool) string {
	text := " " + string(mark) + " "
	if mark == entity.EmptyCell {
		text = "   "
	}

	style := that.out.String(text)
	switch mark {
	case entity.PlayerX:
		style = style.Foreground(that.out.Color(colorX)).Bold()
	case entity.PlayerO:
		style = style.Foreground(that.out.Color(colorO)).Bold()
	}

	if highlighted {
		style = style.Background(that.out.Color(colorLine)).Foreground(that.out.Color(colorBG))
	}

	return style.String()
}

// board draws the grid with row and column numbers; cells of the winning line are highlighted.
func (that renderer) board(board entity.Board, outcome entity.Outcome) string {
	onLine := make(map[entity.Cell]bool, entity.Size)
	if outcome.Line != nil {
		for _, cell := range outcome.Line {
			onLine[cell] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("    0   1   2\n")

	for r := range entity.Size {
		if r > 0 {
			sb.WriteString("   ---+---+---\n")
		}

		fmt.Fprintf(&sb, "%d  ", r)
		for c := range entity.Size {
			if c > 0 {
				sb.WriteString("|")
			}

			cell := entity.Cell{Row: r, Col: c}
			sb.WriteString(that.mark(board.At(cell), onLine[cell]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
