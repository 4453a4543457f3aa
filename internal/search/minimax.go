// Package search picks moves with a fixed-depth minimax search and
// alpha-beta pruning, scoring leaves with a static evaluator.
package search

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

// DefaultDepth is the search horizon in plies.
const DefaultDepth = 4

// ErrNoMoves is returned when the root position has no legal move.
var ErrNoMoves = errors.New("no legal moves")

// Scorer evaluates a position from the agent's point of view.
type Scorer interface {
	Score(lb *domain.LargeBoard) (int, error)
}

// Config tunes the search. Zero values fall back to DefaultDepth and a
// single worker.
type Config struct {
	Depth   int
	Workers int
}

// Result is a node value and, except at leaves, the move that produced it.
type Result struct {
	Score   int
	Move    domain.Move
	HasMove bool
}

// Stats counts visited nodes since the last Reset.
type Stats struct {
	Nodes  int64
	Leaves int64
}

// Searcher runs minimax searches with a fixed horizon. Counters are shared
// by parallel workers; a Searcher serves one search at a time.
type Searcher struct {
	depth   int
	workers int
	scorer  Scorer
	nodes   atomic.Int64
	leaves  atomic.Int64
}

// New builds a Searcher scoring leaves with scorer.
func New(scorer Scorer, cfg Config) *Searcher {
	if cfg.Depth <= 0 {
		cfg.Depth = DefaultDepth
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Searcher{depth: cfg.Depth, workers: cfg.Workers, scorer: scorer}
}

// Depth is the configured horizon.
func (s *Searcher) Depth() int { return s.depth }

// Stats returns the counters accumulated since the last Reset.
func (s *Searcher) Stats() Stats {
	return Stats{Nodes: s.nodes.Load(), Leaves: s.leaves.Load()}
}

// Reset zeroes the counters.
func (s *Searcher) Reset() {
	s.nodes.Store(0)
	s.leaves.Store(0)
}

// Search chooses a move for the agent, in parallel when more than one
// worker is configured. Both paths return the same move.
func (s *Searcher) Search(ctx context.Context, lb *domain.LargeBoard) (Result, error) {
	if s.workers > 1 {
		return s.BestParallel(ctx, lb)
	}
	return s.Best(lb)
}

// Best runs the search from lb as the maximizing side.
func (s *Searcher) Best(lb *domain.LargeBoard) (Result, error) {
	res, err := s.Minimax(lb, 0, true, math.MinInt, math.MaxInt)
	if err != nil {
		return Result{}, err
	}
	if !res.HasMove {
		return Result{}, ErrNoMoves
	}
	return res, nil
}

// Minimax searches lb, which is restored before returning. Moves are tried in
// ValidMoves order and the first move reaching the best score is kept.
func (s *Searcher) Minimax(lb *domain.LargeBoard, depth int, maximizing bool, alpha, beta int) (Result, error) {
	s.nodes.Add(1)
	moves := lb.ValidMoves()
	if len(moves) == 0 || depth >= s.depth {
		s.leaves.Add(1)
		score, err := s.scorer.Score(lb)
		if err != nil {
			return Result{}, err
		}
		return Result{Score: score}, nil
	}

	player := domain.Agent
	if !maximizing {
		player = domain.Opponent
	}

	var best Result
	for _, m := range moves {
		lb.MakeMove(player, m)
		child, err := s.Minimax(lb, depth+1, !maximizing, alpha, beta)
		if uerr := lb.UndoMove(); uerr != nil {
			return Result{}, uerr
		}
		if err != nil {
			return Result{}, err
		}
		if maximizing && child.Score > alpha {
			alpha = child.Score
			best.Move, best.HasMove = m, true
		} else if !maximizing && child.Score < beta {
			beta = child.Score
			best.Move, best.HasMove = m, true
		}
		if alpha > beta {
			break
		}
	}
	if maximizing {
		best.Score = alpha
	} else {
		best.Score = beta
	}
	return best, nil
}
