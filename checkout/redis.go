package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poliverai/poliver/types"
)

// redisKey is the single well-known slot key. One slot per keyspace
// mirrors the single-slot semantics of the file backend.
const redisKey = "poliver:pending_checkout"

// redisOpTimeout bounds each store operation.
const redisOpTimeout = 5 * time.Second

// RedisStore keeps the pending-checkout slot in Redis, for environments
// where the process has no stable local filesystem.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store from a redis:// URL.
func NewRedisStore(rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Save implements Store.
func (s *RedisStore) Save(record *types.PendingCheckout) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode pending checkout: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, redisKey, data, 0).Err(); err != nil {
		return fmt.Errorf("write pending checkout: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load() (*types.PendingCheckout, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pending checkout: %w", err)
	}

	var record types.PendingCheckout
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode pending checkout: %w", err)
	}
	return &record, nil
}

// Clear implements Store.
func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("clear pending checkout: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
