package embedcache

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps vectors for the lifetime of the process.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]float32
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]float32)}
}

func (m *Memory) Get(_ context.Context, key string) ([]float32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vec, ok := m.items[key]
	return vec, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, vec []float32) error {
	if err := checkVector(key, vec); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = slices.Clone(vec)
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Close() error { return nil }
