package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSlot keeps each key as a plain string value without expiry.
type RedisSlot struct { // implements Slot
	cli    redisAPI
	closer func() error
}

func NewRedisSlot(addr string, db int) *RedisSlot {
	cli := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	return &RedisSlot{cli: cli, closer: cli.Close}
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.cli.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("error reading slot %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisSlot) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := r.cli.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("error writing slot %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := r.cli.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting slot %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}
