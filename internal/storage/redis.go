package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots as plain Redis string values.
type RedisStore struct {
	client  redis.UniversalClient
	ttl     time.Duration
	expires func(key string) bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// ExpireWhen limits the ttl to keys accepted by match. Other keys never expire.
func ExpireWhen(match func(key string) bool) RedisOption {
	return func(r *RedisStore) {
		r.expires = match
	}
}

// NewRedisStore wraps an existing client. A zero ttl keeps values forever,
// which matches browser local storage.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *RedisStore {
	r := &RedisStore{client: client, ttl: ttl}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStore) ttlFor(key string) time.Duration {
	if r.expires != nil && !r.expires(key) {
		return 0
	}
	return r.ttl
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttlFor(key)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
