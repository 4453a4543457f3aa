package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/agent"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/eval"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/search"
)

// Errors exposed by the service layer.
var (
	ErrNotFound      = errors.New("game not found")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNotAPlayer    = errors.New("not a player")
	ErrCorruptRecord = errors.New("corrupt game record")
	ErrEngine        = errors.New("engine failed to move")
	ErrIllegalMove   = agent.ErrIllegalMove
	ErrGameOver      = agent.ErrGameOver
)

// GameState is a snapshot of one human-versus-engine game. Board is a copy
// and must not be modified by receivers.
type GameState struct {
	ID         string
	Board      *domain.LargeBoard
	Human      string
	AgentFirst bool
	Over       bool
	Result     domain.BoardState
	Created    time.Time
	Updated    time.Time
}

// LastMove is the most recent move, if any.
func (gs GameState) LastMove() (domain.PlayedMove, bool) { return gs.Board.LastPlayed() }

type session struct {
	mu         sync.Mutex
	id         string
	human      string
	agentFirst bool
	engine     *agent.MinMax
	created    time.Time
	updated    time.Time
}

func (ss *session) snapshotLocked() GameState {
	board := ss.engine.Board()
	gs := GameState{
		ID:         ss.id,
		Board:      board,
		Human:      ss.human,
		AgentFirst: ss.agentFirst,
		Over:       board.Over(),
		Created:    ss.created,
		Updated:    ss.updated,
	}
	if w, ok := board.Winner(); ok {
		gs.Result = w
	} else if gs.Over {
		gs.Result = domain.Tie
	}
	return gs
}

func (ss *session) recordLocked(board *domain.LargeBoard) Record {
	return Record{
		ID:         ss.id,
		Human:      ss.human,
		AgentFirst: ss.agentFirst,
		Moves:      board.Played(),
		Created:    ss.created,
		Updated:    ss.updated,
	}
}

type subscriber struct {
	ch        chan GameState
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Config wires the service. Tables is required; the rest has defaults.
type Config struct {
	Tables *eval.Tables
	Search search.Config
	Store  Store
	Log    *zap.SugaredLogger
}

// Service manages games, their engines and subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*session
	subs   map[string]map[*subscriber]struct{}
	store  Store
	tables *eval.Tables
	search search.Config
	log    *zap.SugaredLogger
}

// NewService builds a Service; it panics when cfg.Tables is nil.
func NewService(cfg Config) *Service {
	if cfg.Tables == nil {
		panic("app: score tables are required")
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}
	return &Service{
		games:  make(map[string]*session),
		subs:   make(map[string]map[*subscriber]struct{}),
		store:  cfg.Store,
		tables: cfg.Tables,
		search: cfg.Search,
		log:    cfg.Log,
	}
}

func (s *Service) newEngine() *agent.MinMax {
	return agent.NewMinMax(s.tables, s.search, s.log)
}

// CreateGame starts a game; when agentFirst the engine plays its opening move.
func (s *Service) CreateGame(ctx context.Context, agentFirst bool) (*GameState, error) {
	now := time.Now()
	ss := &session{
		id:         uuid.NewString(),
		agentFirst: agentFirst,
		engine:     s.newEngine(),
		created:    now,
		updated:    now,
	}
	if agentFirst {
		ss.engine.MakeFirstMove()
	}
	gs := ss.snapshotLocked()
	if err := s.store.Save(ctx, ss.recordLocked(gs.Board)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.games[ss.id] = ss
	s.mu.Unlock()

	s.log.Infow("game created", "game", ss.id, "agent_first", agentFirst)
	return &gs, nil
}

// Get returns a snapshot of the game, resuming it from the store if needed.
func (s *Service) Get(ctx context.Context, id string) (*GameState, bool) {
	ss, err := s.session(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Errorw("load game", "game", id, zap.Error(err))
		}
		return nil, false
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	gs := ss.snapshotLocked()
	return &gs, true
}

// Join seats the first visitor as the human player (the engine's Opponent);
// everyone else gets Empty and watches.
func (s *Service) Join(ctx context.Context, id, playerID string) (domain.PlayerState, *GameState, error) {
	ss, err := s.session(ctx, id)
	if err != nil {
		return domain.Empty, nil, err
	}
	ss.mu.Lock()
	side := domain.Empty
	claimed := false
	if ss.human == "" || ss.human == playerID {
		claimed = ss.human == ""
		ss.human = playerID
		side = domain.Opponent
	}
	ss.updated = time.Now()
	gs := ss.snapshotLocked()
	rec := ss.recordLocked(gs.Board)
	ss.mu.Unlock()

	if claimed {
		s.save(ctx, rec)
	}
	return side, &gs, nil
}

// Play applies the human's move, lets the engine answer, persists and broadcasts.
func (s *Service) Play(ctx context.Context, id, playerID string, m domain.Move) (*GameState, error) {
	ss, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	ss.mu.Lock()
	if ss.human != playerID {
		ss.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	board := ss.engine.Board()
	if board.Over() {
		ss.mu.Unlock()
		return nil, ErrGameOver
	}
	if last, ok := board.LastPlayed(); ok && last.Player == domain.Opponent {
		ss.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	if err := ss.engine.OpponentMove(m); err != nil {
		ss.mu.Unlock()
		return nil, err
	}

	if !ss.engine.Board().Over() {
		reply, err := ss.engine.MakeMove(ctx)
		if err != nil {
			s.log.Errorw("engine move", "game", id, zap.Error(err))
			// revert the human move; the turn stays with the human
			if uerr := ss.engine.Undo(); uerr != nil {
				s.log.Errorw("revert human move", "game", id, zap.Error(uerr))
			}
			gs := ss.snapshotLocked()
			ss.mu.Unlock()
			return &gs, fmt.Errorf("%w: %v", ErrEngine, err)
		}
		s.log.Debugw("engine replied", "game", id, "human", m.String(), "engine", reply.String())
	}
	ss.updated = time.Now()
	gs := ss.snapshotLocked()
	rec := ss.recordLocked(gs.Board)
	ss.mu.Unlock()

	if gs.Over {
		s.log.Infow("game over", "game", id, "result", gs.Result.String(), "moves", gs.Board.Len())
	}
	s.save(ctx, rec)
	s.broadcast(id, gs)
	return &gs, nil
}

func (s *Service) save(ctx context.Context, rec Record) {
	if err := s.store.Save(ctx, rec); err != nil {
		s.log.Warnw("persist game", "game", rec.ID, zap.Error(err))
	}
}

func (s *Service) session(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	ss, ok := s.games[id]
	s.mu.Unlock()
	if ok {
		return ss, nil
	}

	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	engine := s.newEngine()
	if err := engine.Replay(rec.Moves); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptRecord, id, err)
	}
	ss = &session{
		id:         rec.ID,
		human:      rec.Human,
		agentFirst: rec.AgentFirst,
		engine:     engine,
		created:    rec.Created,
		updated:    rec.Updated,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.games[id]; ok {
		return existing, nil
	}
	s.games[id] = ss
	s.log.Infow("game resumed", "game", id, "moves", len(rec.Moves))
	return ss, nil
}

// broadcast sends without blocking; a subscriber whose buffer is full is
// dropped. Sends and closes both happen under s.mu so a channel is never
// written after it is closed.
func (s *Service) broadcast(id string, gs GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[id]
	for sub := range set {
		select {
		case sub.ch <- gs:
		default:
			delete(set, sub)
			sub.close()
		}
	}
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}
