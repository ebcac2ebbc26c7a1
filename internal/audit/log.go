package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisLogKey = "audit:log"

// RedisLog keeps the log in a Redis list, newest at the head.
type RedisLog struct {
	client   *redis.Client
	capacity int
}

func NewRedisLog(client *redis.Client, capacity int) *RedisLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisLog{client: client, capacity: capacity}
}

// Prepend pushes rec and trims the tail in one transaction.
func (l *RedisLog) Prepend(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}

	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, redisLogKey, data)
		pipe.LTrim(ctx, redisLogKey, 0, int64(l.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first. Entries that no longer
// decode are skipped.
func (l *RedisLog) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > l.capacity {
		limit = l.capacity
	}

	values, err := l.client.LRange(ctx, redisLogKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// MemoryLog is the in-process Log.
type MemoryLog struct {
	mu       sync.Mutex
	records  []Record
	capacity int
}

func NewMemoryLog(capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryLog{capacity: capacity}
}

func (l *MemoryLog) Prepend(ctx context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append([]Record{rec}, l.records...)
	if len(l.records) > l.capacity {
		l.records = l.records[:l.capacity]
	}
	return nil
}

func (l *MemoryLog) List(ctx context.Context, limit int) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.records) {
		limit = len(l.records)
	}
	out := make([]Record, limit)
	copy(out, l.records[:limit])
	return out, nil
}
