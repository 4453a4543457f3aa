package app

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/agent"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/eval"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/search"
)

var testTables = eval.DefaultTables()

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	return NewService(Config{Tables: testTables, Search: search.Config{Depth: 2}, Store: store})
}

func mv(br, bc, cr, cc int) domain.Move {
	return domain.Move{Board: domain.Coord{Row: br, Col: bc}, Cell: domain.Coord{Row: cr, Col: cc}}
}

// firstLegal returns the first legal move for the human in gs.
func firstLegal(t *testing.T, gs *GameState) domain.Move {
	t.Helper()
	moves := gs.Board.ValidMoves()
	if len(moves) == 0 {
		t.Fatalf("no legal moves")
	}
	return moves[0]
}

func TestCreateAndGet(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	gs, err := s.CreateGame(ctx, false)
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if gs.ID == "" {
		t.Fatalf("expected non-empty game ID")
	}
	if gs.Board.Len() != 0 || gs.Over {
		t.Fatalf("expected a fresh board")
	}
	if gs.Created.IsZero() || gs.Updated.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	got, ok := s.Get(ctx, gs.ID)
	if !ok || got.ID != gs.ID {
		t.Fatalf("Get should find created game")
	}
	if _, ok := s.Get(ctx, "nope"); ok {
		t.Fatalf("Get should not find unknown game")
	}
}

func TestAgentFirstOpensInCentre(t *testing.T) {
	s := newTestService(t, nil)
	gs, err := s.CreateGame(context.Background(), true)
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	last, ok := gs.LastMove()
	if !ok || last.Player != domain.Agent || last.Move != agent.OpeningMove {
		t.Fatalf("expected engine opening move, got %+v ok=%v", last, ok)
	}
}

func TestJoinSeatsAndRejoin(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	gs, _ := s.CreateGame(ctx, false)

	side, _, err := s.Join(ctx, gs.ID, "p1")
	if err != nil || side != domain.Opponent {
		t.Fatalf("p1 should claim the human seat, got %v, err=%v", side, err)
	}
	side, _, err = s.Join(ctx, gs.ID, "p1")
	if err != nil || side != domain.Opponent {
		t.Fatalf("p1 rejoin should keep the seat, got %v, err=%v", side, err)
	}
	side, _, err = s.Join(ctx, gs.ID, "p2")
	if err != nil || side != domain.Empty {
		t.Fatalf("p2 should spectate (Empty), got %v, err=%v", side, err)
	}
	if _, _, err := s.Join(ctx, "missing", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayAppliesMoveAndEngineReplies(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	gs, _ := s.CreateGame(ctx, false)
	s.Join(ctx, gs.ID, "p1")
	s.Join(ctx, gs.ID, "p2")

	if _, err := s.Play(ctx, gs.ID, "p2", mv(0, 0, 1, 1)); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("expected ErrNotAPlayer, got %v", err)
	}
	st, err := s.Play(ctx, gs.ID, "p1", mv(0, 0, 1, 2))
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	played := st.Board.Played()
	if len(played) != 2 {
		t.Fatalf("expected human move plus engine reply, got %d moves", len(played))
	}
	if played[0].Player != domain.Opponent || played[1].Player != domain.Agent {
		t.Fatalf("unexpected players: %+v", played)
	}
	if played[1].Move.Board != (domain.Coord{Row: 1, Col: 2}) {
		t.Fatalf("engine ignored the forced board: %v", played[1].Move)
	}
	// the engine's reply decides where the human must go next
	bad := mv(0, 0, 0, 0)
	if played[1].Move.Cell == (domain.Coord{Row: 0, Col: 0}) {
		bad = mv(2, 2, 0, 0)
	}
	if _, err := s.Play(ctx, gs.ID, "p1", bad); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
}

func TestPlayOnFinishedGame(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// a random legal game played to the end
	rng := rand.New(rand.NewSource(5))
	lb := domain.NewLargeBoard()
	p := domain.Opponent
	for !lb.Over() {
		moves := lb.ValidMoves()
		lb.MakeMove(p, moves[rng.Intn(len(moves))])
		p = p.Other()
	}
	rec := Record{ID: "done", Human: "p1", Moves: lb.Played(), Created: time.Now(), Updated: time.Now()}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	s := newTestService(t, store)
	gs, ok := s.Get(ctx, "done")
	if !ok || !gs.Over {
		t.Fatalf("expected resumed finished game, ok=%v", ok)
	}
	if w, won := lb.Winner(); won && gs.Result != w {
		t.Fatalf("expected result %v, got %v", w, gs.Result)
	}
	if _, err := s.Play(ctx, "done", "p1", mv(1, 1, 1, 1)); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestResumeFromStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s1 := newTestService(t, store)
	gs, _ := s1.CreateGame(ctx, true)
	s1.Join(ctx, gs.ID, "p1")
	st, err := s1.Play(ctx, gs.ID, "p1", firstLegal(t, gs))
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	s2 := newTestService(t, store)
	got, ok := s2.Get(ctx, gs.ID)
	if !ok {
		t.Fatalf("expected game to be resumed from the store")
	}
	if !got.Board.Equal(st.Board) || got.Human != "p1" || !got.AgentFirst {
		t.Fatalf("resumed game differs: %+v", got)
	}
	if _, err := s2.Play(ctx, gs.ID, "p1", firstLegal(t, got)); err != nil {
		t.Fatalf("play after resume: %v", err)
	}
}

func TestCorruptRecordIsRejected(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	rec := Record{ID: "bad", Moves: []domain.PlayedMove{
		{Player: domain.Agent, Move: mv(1, 1, 1, 1)},
		{Player: domain.Opponent, Move: mv(1, 1, 1, 1)},
	}}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	s := newTestService(t, store)
	if _, _, err := s.Join(ctx, "bad", "p1"); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	gs, _ := s.CreateGame(ctx, false)
	s.Join(ctx, gs.ID, "p1")

	subCtx, cancel := context.WithTimeout(ctx, time.Second*2)
	defer cancel()
	ch, unsub := s.Subscribe(subCtx, gs.ID)
	defer unsub()

	if _, err := s.Play(ctx, gs.ID, "p1", mv(0, 0, 0, 0)); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case b, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		if b.ID != gs.ID || b.Board.Len() != 2 {
			t.Fatalf("unexpected broadcast: id=%s moves=%d", b.ID, b.Board.Len())
		}
	case <-subCtx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	gs, _ := s.CreateGame(ctx, false)
	s.Join(ctx, gs.ID, "p1")

	// Slow subscriber: never read
	ctxSlow, cancelSlow := context.WithCancel(ctx)
	defer cancelSlow()
	slowCh, _ := s.Subscribe(ctxSlow, gs.ID)

	// Fast subscriber: will read
	ctxFast, cancelFast := context.WithTimeout(ctx, time.Second*2)
	defer cancelFast()
	fastCh, unsubFast := s.Subscribe(ctxFast, gs.ID)
	defer unsubFast()

	st, err := s.Play(ctx, gs.ID, "p1", mv(0, 0, 0, 0))
	if err != nil {
		t.Fatalf("play1: %v", err)
	}
	select {
	case <-fastCh:
	case <-ctxFast.Done():
		t.Fatalf("fast subscriber did not receive first update")
	}
	if _, err := s.Play(ctx, gs.ID, "p1", firstLegal(t, st)); err != nil {
		t.Fatalf("play2: %v", err)
	}
	select {
	case <-fastCh:
	case <-ctxFast.Done():
		t.Fatalf("fast subscriber did not receive second update")
	}

	// slow subscriber got the first update buffered, then was dropped
	if _, ok := <-slowCh; !ok {
		t.Fatalf("expected the buffered first update")
	}
	if _, ok := <-slowCh; ok {
		t.Fatalf("expected slow subscriber channel to be closed")
	}
}

func TestEngineFailureRevertsHumanMove(t *testing.T) {
	// a sub table that only knows the empty board fails at the first leaf
	broken := &eval.Tables{
		Sub:   map[string]int{"0,0,0,0,0,0,0,0,0": 0},
		Large: testTables.Large,
	}
	store := NewMemoryStore()
	ctx := context.Background()
	s := NewService(Config{Tables: broken, Search: search.Config{Depth: 2}, Store: store})
	gs, _ := s.CreateGame(ctx, false)
	s.Join(ctx, gs.ID, "p1")

	for attempt := 0; attempt < 2; attempt++ {
		st, err := s.Play(ctx, gs.ID, "p1", mv(1, 1, 0, 0))
		if !errors.Is(err, ErrEngine) {
			t.Fatalf("attempt %d: expected ErrEngine, got %v", attempt, err)
		}
		if st == nil || st.Board.Len() != 0 {
			t.Fatalf("attempt %d: human move should be taken back", attempt)
		}
	}
	rec, err := store.Load(ctx, gs.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rec.Moves) != 0 {
		t.Fatalf("failed turn must not be persisted, got %d moves", len(rec.Moves))
	}
}
