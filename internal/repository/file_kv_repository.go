package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// FileKVRepository 整个存储是一个JSON对象文件，写入先落临时文件再 rename
type FileKVRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileKVRepository(path string) *FileKVRepository {
	return &FileKVRepository{path: path}
}

func (r *FileKVRepository) load() (map[string]string, error) {
	data := make(map[string]string)
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return data, nil
	}
	// 文件损坏按空存储处理，下一次写入会覆盖
	if err := json.Unmarshal(raw, &data); err != nil {
		return make(map[string]string), nil
	}
	return data, nil
}

func (r *FileKVRepository) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".kv-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *FileKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (r *FileKVRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return err
	}
	data[key] = value
	return r.save(data)
}

func (r *FileKVRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return r.save(data)
}
