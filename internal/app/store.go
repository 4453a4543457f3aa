package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

// Record is the persisted form of a game: enough to rebuild it by replay.
type Record struct {
	ID         string              `json:"id"`
	Human      string              `json:"human,omitempty"`
	AgentFirst bool                `json:"agent_first"`
	Moves      []domain.PlayedMove `json:"moves"`
	Created    time.Time           `json:"created"`
	Updated    time.Time           `json:"updated"`
}

// Store persists game records.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, id string) (Record, error)
}

// MemoryStore keeps records in process.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record)}
}

// Save stores a copy of rec.
func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Moves = slices.Clone(rec.Moves)
	m.recs[rec.ID] = rec
	return nil
}

// Load returns a copy of the record, or ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Moves = slices.Clone(rec.Moves)
	return rec, nil
}

const redisKeyPrefix = "uttt:game:"

// RedisStore keeps records as JSON values that expire ttl after the last save.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore stores records through client; ttl 0 keeps them forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Save writes rec as JSON and restarts its TTL.
func (r *RedisStore) Save(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", rec.ID, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+rec.ID, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("save game %s: %w", rec.ID, err)
	}
	return nil
}

// Load reads a record; a missing or expired key is ErrNotFound.
func (r *RedisStore) Load(ctx context.Context, id string) (Record, error) {
	b, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load game %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return rec, nil
}
