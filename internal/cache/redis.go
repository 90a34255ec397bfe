package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries under a key prefix with optional TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig configures NewRedis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedis connects to Redis. The connection is lazy; the first command
// reports connectivity errors.
func NewRedis(cfg RedisConfig, opts Options) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisClient(client, cfg.Prefix, opts)
}

// NewRedisClient wraps an existing client.
func NewRedisClient(client *redis.Client, prefix string, opts Options) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: opts.TTL}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
