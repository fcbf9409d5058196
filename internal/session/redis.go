package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "career-agent:session:"

// RedisStore keeps sessions as JSON values that expire after ttl without a save.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps a connected client.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Get loads a session.
func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := r.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return decode(data)
}

// Save writes a session and resets its expiry.
func (r *RedisStore) Save(ctx context.Context, s *State) error {
	s.UpdatedAt = time.Now()
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, redisKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeIdle is handled by key expiry; it reports zero.
func (r *RedisStore) PurgeIdle(context.Context, time.Duration) (int, error) {
	return 0, nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
