package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "nexshop:table:"

// RedisStore backs the table port with Redis. Values are whole JSON
// documents, so the read-modify-write discipline of the callers is the
// only consistency mechanism, same as every other driver.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+key).Err()
}

var _ TableStore = (*RedisStore)(nil)
