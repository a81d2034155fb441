package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront/internal/redisx"
)

// Store persists one cart snapshot in a single named slot.
type Store interface {
	Save(ctx context.Context, items []Item) error
	Load(ctx context.Context) ([]Item, error)
	Clear(ctx context.Context) error
}

// RedisStore keeps the snapshot under cart:{session_id}.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, sessionID string) *RedisStore {
	return &RedisStore{rdb: rdb, key: fmt.Sprintf(redisx.KeyCart, sessionID)}
}

func (s *RedisStore) Save(ctx context.Context, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, raw, redisx.TTLCart).Err()
}

func (s *RedisStore) Load(ctx context.Context) ([]Item, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	return items, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}

// MemoryStore is the in-process equivalent, used in tests and when no
// Redis is configured.
type MemoryStore struct {
	raw []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Seed overwrites the slot with arbitrary bytes.
func (s *MemoryStore) Seed(raw []byte) { s.raw = raw }

func (s *MemoryStore) Save(_ context.Context, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.raw = raw
	return nil
}

func (s *MemoryStore) Load(_ context.Context) ([]Item, error) {
	if s.raw == nil {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal(s.raw, &items); err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	return items, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.raw = nil
	return nil
}
