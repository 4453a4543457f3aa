package eval

import (
	"errors"
	"fmt"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

// ErrUnknownEncoding means a board layout is missing from a table: either
// the table is incomplete or the board is in a state the tables never model.
var ErrUnknownEncoding = errors.New("encoding missing from score table")

// Evaluator scores positions from the agent's point of view.
type Evaluator struct {
	tables *Tables
}

// NewEvaluator wraps t. t must not be modified afterwards.
func NewEvaluator(t *Tables) *Evaluator {
	return &Evaluator{tables: t}
}

// Score sums the sub-board table over all nine sub-boards and adds the
// large-board table entry for the meta-board.
func (e *Evaluator) Score(lb *domain.LargeBoard) (int, error) {
	score := 0
	for i, sub := range lb.SubBoards() {
		key := sub.Encode()
		v, ok := e.tables.Sub[key]
		if !ok {
			return 0, fmt.Errorf("%w: sub table, board %d, %q", ErrUnknownEncoding, i, key)
		}
		score += v
	}
	state := lb.State()
	key := state.Encode()
	v, ok := e.tables.Large[key]
	if !ok {
		return 0, fmt.Errorf("%w: large table, %q", ErrUnknownEncoding, key)
	}
	return score + v, nil
}
