package repository

import (
	"context"
	"sync"
)

type MemoryKVRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKVRepository() *MemoryKVRepository {
	return &MemoryKVRepository{data: make(map[string]string)}
}

func (r *MemoryKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	return v, ok, nil
}

func (r *MemoryKVRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	r.mu.Lock()
	r.data[key] = value
	r.mu.Unlock()
	return nil
}

func (r *MemoryKVRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.data, key)
	r.mu.Unlock()
	return nil
}
