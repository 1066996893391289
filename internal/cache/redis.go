package cache

import (
	"context"
	"math"
	"time"

	"github.com/zeromicro/go-zero/core/stores/redis"
)

// RedisStore keeps entries in Redis so several replicas share one cache.
type RedisStore struct {
	client *redis.Redis
}

// NewRedisStore wraps a go-zero redis client.
func NewRedisStore(client *redis.Redis) *RedisStore {
	return &RedisStore{client: client}
}

// MustNewRedisStore connects using conf and panics when the config is invalid.
func MustNewRedisStore(conf redis.RedisConf) *RedisStore {
	return NewRedisStore(redis.MustNewRedis(conf))
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.GetCtx(ctx, key)
	if err != nil {
		return nil, err
	}
	if val == "" {
		return nil, ErrMiss
	}
	return []byte(val), nil
}

// Set stores value with a whole-second expiry, rounded up so short TTLs still stick.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		_, err := s.client.DelCtx(ctx, key)
		return err
	}
	seconds := int(math.Ceil(ttl.Seconds()))
	return s.client.SetexCtx(ctx, key, string(value), seconds)
}
