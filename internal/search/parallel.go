package search

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

// BestParallel splits the root moves across workers. Each root child is
// searched on its own copy of the board with a full window, so every score is
// exact; the first move holding the maximum wins, as in Best.
func (s *Searcher) BestParallel(ctx context.Context, lb *domain.LargeBoard) (Result, error) {
	moves := lb.ValidMoves()
	if len(moves) == 0 {
		return Result{}, ErrNoMoves
	}
	s.nodes.Add(1)
	if s.depth <= 0 {
		return s.Best(lb)
	}

	scores := make([]int, len(moves))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			board := lb.Clone()
			board.MakeMove(domain.Agent, m)
			child, err := s.Minimax(board, 1, false, math.MinInt, math.MaxInt)
			if err != nil {
				return err
			}
			scores[i] = child.Score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best := Result{Score: math.MinInt}
	for i, m := range moves {
		if scores[i] > best.Score {
			best = Result{Score: scores[i], Move: m, HasMove: true}
		}
	}
	if !best.HasMove {
		return Result{}, ErrNoMoves
	}
	return best, nil
}
