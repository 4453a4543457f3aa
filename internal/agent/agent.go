// Package agent drives the search from a game loop: it tracks the game from
// its own side and answers opponent moves with searched moves.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/eval"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/search"
)

// Errors returned by agents.
var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game over")
)

// Agent is what a game loop needs from a player.
type Agent interface {
	Init()
	MakeMove(ctx context.Context) (domain.Move, error)
	MakeFirstMove() domain.Move
	OpponentMove(m domain.Move) error
}

// OpeningMove is played without search when the agent moves first.
var OpeningMove = domain.Move{Board: domain.Coord{Row: 1, Col: 1}, Cell: domain.Coord{Row: 1, Col: 1}}

// MinMax plays the moves chosen by a minimax search over its own board.
type MinMax struct {
	game     *domain.LargeBoard
	searcher *search.Searcher
	log      *zap.SugaredLogger
}

var _ Agent = (*MinMax)(nil)

// NewMinMax builds an agent scoring with tables. A nil logger disables logging.
func NewMinMax(tables *eval.Tables, cfg search.Config, log *zap.SugaredLogger) *MinMax {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MinMax{
		game:     domain.NewLargeBoard(),
		searcher: search.New(eval.NewEvaluator(tables), cfg),
		log:      log,
	}
}

// Init starts a fresh game.
func (a *MinMax) Init() {
	a.game = domain.NewLargeBoard()
}

// OpponentMove records the opponent's move after checking it is legal.
func (a *MinMax) OpponentMove(m domain.Move) error {
	if a.game.Over() {
		return ErrGameOver
	}
	if !a.game.IsValidMove(m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	a.game.MakeMove(domain.Opponent, m)
	return nil
}

// MakeMove searches the current position, plays the chosen move and returns it.
func (a *MinMax) MakeMove(ctx context.Context) (domain.Move, error) {
	if a.game.Over() {
		return domain.Move{}, ErrGameOver
	}
	a.searcher.Reset()
	start := time.Now()
	res, err := a.searcher.Search(ctx, a.game)
	if err != nil {
		return domain.Move{}, fmt.Errorf("search: %w", err)
	}
	st := a.searcher.Stats()
	a.log.Debugw("search finished",
		"move", res.Move.String(),
		"score", res.Score,
		"depth", a.searcher.Depth(),
		"nodes", st.Nodes,
		"leaves", st.Leaves,
		"elapsed", time.Since(start),
	)
	a.game.MakeMove(domain.Agent, res.Move)
	return res.Move, nil
}

// Undo takes back the most recent move of either side.
func (a *MinMax) Undo() error { return a.game.UndoMove() }

// MakeFirstMove plays the centre of the centre board.
func (a *MinMax) MakeFirstMove() domain.Move {
	a.game.MakeMove(domain.Agent, OpeningMove)
	return OpeningMove
}

// Replay restarts the game and re-applies a record without searching.
func (a *MinMax) Replay(record []domain.PlayedMove) error {
	a.Init()
	for i, pm := range record {
		if pm.Player != domain.Agent && pm.Player != domain.Opponent {
			return fmt.Errorf("%w: entry %d has no player", ErrIllegalMove, i)
		}
		if !a.game.IsValidMove(pm.Move) {
			return fmt.Errorf("%w: entry %d: %s", ErrIllegalMove, i, pm.Move)
		}
		a.game.MakeMove(pm.Player, pm.Move)
	}
	return nil
}

// Board returns a copy of the game as the agent sees it.
func (a *MinMax) Board() *domain.LargeBoard { return a.game.Clone() }
