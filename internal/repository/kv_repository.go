package repository

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("kv: empty key")

// KVRepository 本地持久化的字符串键值存储
type KVRepository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
