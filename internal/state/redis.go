package state

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/colops/console/internal/config"
	"github.com/colops/console/pkg/errors"
)

// RedisStore persists keys in redis under a configurable prefix so several
// console instances can share one server without collisions.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redis using cfg and verifies the connection with
// a ping before returning.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, errors.ErrCodeStateStore, "state: redis ping failed")
	}

	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStateStore, "state: redis get failed")
	}
	return v, nil
}

// Set implements Store.  Values are stored without expiry; they represent
// durable operator choices, not caches.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateStore, "state: redis set failed")
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateStore, "state: redis delete failed")
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
