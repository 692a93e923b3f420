package repository

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

type RedisKVRepository struct {
	Client *redis.Client
	Prefix string
}

func NewRedisKVRepository(client *redis.Client, prefix string) *RedisKVRepository {
	return &RedisKVRepository{Client: client, Prefix: prefix}
}

func (r *RedisKVRepository) key(k string) string {
	return r.Prefix + k
}

func (r *RedisKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.Client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKVRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.Client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisKVRepository) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, r.key(key)).Err()
}
