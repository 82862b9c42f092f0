package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	dErrors "trichluc/pkg/domain-errors"
)

const keyPrefix = "trichluc:counter:"

// RedisStore backs counters with Redis. INCR is the atomic primitive: Redis
// serializes commands per key, so concurrent increments are gapless without
// any client-side locking.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Increment(ctx context.Context, scopeKey string) (int64, error) {
	value, err := s.client.Incr(ctx, keyPrefix+scopeKey).Result()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "increment counter")
	}
	return value, nil
}

func (s *RedisStore) Peek(ctx context.Context, scopeKey string) (int64, error) {
	value, err := s.client.Get(ctx, keyPrefix+scopeKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "read counter")
	}
	return value, nil
}

func (s *RedisStore) Overwrite(ctx context.Context, scopeKey string, value int64) error {
	if value < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "counter value cannot be negative")
	}
	if err := s.client.Set(ctx, keyPrefix+scopeKey, value, 0).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("overwrite counter %q", scopeKey))
	}
	return nil
}
