package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sangh-connect/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

// Store is a read-through JSON cache over Redis.
// An entry is either absent or populated with a TTL; there is no refreshing state,
// so concurrent misses on one key may both run their producer.
type Store struct {
	client *redis.Client
	logger *logger.Logger
}

func NewStore(client *redis.Client, logger *logger.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// GetOrSet returns the cached value for key, or runs producer and caches its result for ttl.
// Cache read and write failures are logged and never returned; only producer errors are.
func GetOrSet[T any](ctx context.Context, s *Store, key string, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	var value T

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		jsonErr := json.Unmarshal(raw, &value)
		if jsonErr == nil {
			return value, nil
		}
		s.logger.Warn("[CACHE] Discarding undecodable entry key=%s: %v", key, jsonErr)
		var zero T
		value = zero
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("[CACHE] Read failed key=%s, falling through to producer: %v", key, err)
	}

	value, err = producer(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("[CACHE] Failed to encode value for key=%s: %v", key, err)
		return value, nil
	}

	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		s.logger.Warn("[CACHE] Write failed key=%s: %v", key, err)
	}

	return value, nil
}

// Invalidate deletes the given keys.
func (s *Store) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %v: %w", keys, err)
	}
	return nil
}

// InvalidatePattern sweeps every key matching the glob pattern with SCAN and deletes it.
// The sweep is not transactional: keys written during the scan may survive until their TTL.
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()

	batch := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return deleted, fmt.Errorf("failed to delete keys for pattern %s: %w", pattern, err)
			}
			deleted += len(batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan pattern %s: %w", pattern, err)
	}

	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete keys for pattern %s: %w", pattern, err)
		}
		deleted += len(batch)
	}

	return deleted, nil
}
