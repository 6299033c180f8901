package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr bumps a counter key, creating it at 1.
	Incr(ctx context.Context, key string) error
	// SetIfEqual stores value under key only while guardKey still holds
	// guardValue ("" meaning absent). It reports whether the value was stored.
	SetIfEqual(ctx context.Context, guardKey, guardValue, key, value string, expiration time.Duration) (bool, error)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &RedisCache{
		client: client,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCache) Incr(ctx context.Context, key string) error {
	return r.client.Incr(ctx, key).Err()
}

// KEYS[1] guard, KEYS[2] target; ARGV guard value, payload, ttl in ms.
var setIfEqualScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then current = '' end
if current ~= ARGV[1] then return 0 end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

func (r *RedisCache) SetIfEqual(ctx context.Context, guardKey, guardValue, key, value string, expiration time.Duration) (bool, error) {
	stored, err := setIfEqualScript.Run(ctx, r.client,
		[]string{guardKey, key},
		guardValue, value, expiration.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// NoopCache is used when Redis is disabled; every lookup misses.
type NoopCache struct{}

func NewNoopCache() Cache {
	return NoopCache{}
}

func (NoopCache) Get(context.Context, string) (string, error) {
	return "", ErrCacheMiss
}

func (NoopCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (NoopCache) Delete(context.Context, ...string) error {
	return nil
}

func (NoopCache) Incr(context.Context, string) error {
	return nil
}

func (NoopCache) SetIfEqual(context.Context, string, string, string, string, time.Duration) (bool, error) {
	return false, nil
}
