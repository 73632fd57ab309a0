package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Slot is the single named key-value entry the session is persisted to.
// Load returns (nil, nil) when the slot is empty.
type Slot interface {
	Save(ctx context.Context, blob []byte) error
	Load(ctx context.Context) ([]byte, error)
	Clear(ctx context.Context) error
}

// ─── Redis-backed slot ──────────────────────────────────────

// DefaultSlotKey is the Redis key used when none is given.
const DefaultSlotKey = "session:current"

// RedisSlot persists the session blob under one Redis key.
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot creates a slot stored under the given key.
// An empty key falls back to DefaultSlotKey.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &RedisSlot{client: client, key: key}
}

// Save overwrites the slot. Last write wins; there is no merge logic.
func (s *RedisSlot) Save(ctx context.Context, blob []byte) error {
	if err := s.client.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("session slot: save: %w", err)
	}
	return nil
}

// Load reads the slot, returning (nil, nil) when it has never been written
// or was cleared.
func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session slot: load: %w", err)
	}
	return blob, nil
}

// Clear erases the slot. Clearing an empty slot is a no-op.
func (s *RedisSlot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("session slot: clear: %w", err)
	}
	return nil
}

// ─── In-memory slot ─────────────────────────────────────────

// MemorySlot is a process-local Slot used in tests.
type MemorySlot struct {
	mu   sync.Mutex
	blob []byte
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Save(_ context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
	return nil
}

func (s *MemorySlot) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), s.blob...), nil
}

func (s *MemorySlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}
