package kv

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepository keeps everything in a map. Several stores sharing one
// MemoryRepository behave like tabs of one profile inside a single process.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.data, k)
	}
	return nil
}

func (r *MemoryRepository) List(_ context.Context, prefix string) (map[string][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]byte)
	for k, v := range r.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}
