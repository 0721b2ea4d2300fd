package attempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"votecast/internal/platform/redis"
)

const keyPrefix = "attempts:"

// RedisStore counts failures in Redis so the guard survives restarts and is
// shared across instances. The key TTL is the sliding window.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) RecordFailure(ctx context.Context, scope string) (int, error) {
	key := keyPrefix + scope

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("record failure: %w", err)
	}
	// The window starts at the first failure; later failures don't extend it.
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return 0, fmt.Errorf("set failure window: %w", err)
		}
	}
	return int(count), nil
}

func (s *RedisStore) Failures(ctx context.Context, scope string) (int, error) {
	count, err := s.client.Get(ctx, keyPrefix+scope).Int()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read failure count: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Clear(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, keyPrefix+scope).Err(); err != nil {
		return fmt.Errorf("clear failures: %w", err)
	}
	return nil
}
