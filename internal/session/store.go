package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds one session slot per session id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, id string, s *Session, ttl time.Duration) error
	Clear(ctx context.Context, id string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyFor(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return Decode(data)
}

func (r *RedisStore) Put(ctx context.Context, id string, s *Session, ttl time.Duration) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return r.client.Set(ctx, sessionKeyFor(id), data, ttl).Err()
}

func (r *RedisStore) Clear(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKeyFor(id)).Err()
}

func sessionKeyFor(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// MemoryStore keeps sessions in process. Entries are stored encoded so that
// reads see exactly what a persistent backend would return.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}
	return Decode(e.data)
}

func (m *MemoryStore) Put(ctx context.Context, id string, s *Session, ttl time.Duration) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	m.PutRaw(id, data, ttl)
	return nil
}

// PutRaw stores bytes as-is, which lets callers plant partial or tampered
// sessions.
func (m *MemoryStore) PutRaw(id string, data []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[id] = e
}

func (m *MemoryStore) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
