package tictactoe

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

// RandomOpening picks a uniformly random empty cell. It is used instead of
// the search for the bot's opening move so that games do not all start the
// same way.
type RandomOpening struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomOpening(seed int64) *RandomOpening {
	return &RandomOpening{
		rnd: rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
	}
}

func (that *RandomOpening) Pick(board entity.Board) (entity.Cell, error) {
	cells := board.EmptyCells()
	if len(cells) == 0 {
		return entity.Cell{}, fmt.Errorf("%w: no empty cells", apperror.ErrBoardTerminal)
	}

	that.mu.Lock()
	i := that.rnd.Intn(len(cells))
	that.mu.Unlock()

	return cells[i], nil
}
