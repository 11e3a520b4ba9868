package similarity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spigell/group-recommender/internal/ai"
)

// Loader builds the embedding backend. It may be slow and it may fail.
type Loader func(ctx context.Context) (ai.Embedder, error)

type loaded struct {
	embedder ai.Embedder
}

// LazyEmbedder defers building the backend until the first Embed call and then
// shares it with every caller. Concurrent first callers trigger a single load.
// A failed load is reported to the caller that ran it and retried by the next one.
type LazyEmbedder struct {
	load    Loader
	mu      sync.Mutex
	current atomic.Pointer[loaded]
}

var _ ai.Embedder = (*LazyEmbedder)(nil)

func NewLazy(load Loader) *LazyEmbedder {
	return &LazyEmbedder{load: load}
}

// Get returns the shared backend, loading it if needed.
func (l *LazyEmbedder) Get(ctx context.Context) (ai.Embedder, error) {
	if c := l.current.Load(); c != nil {
		return c.embedder, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if c := l.current.Load(); c != nil {
		return c.embedder, nil
	}

	embedder, err := l.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embedding backend: %w", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("load embedding backend: loader returned no backend")
	}

	l.current.Store(&loaded{embedder: embedder})
	return embedder, nil
}

func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedder, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return embedder.Embed(ctx, text)
}

// Model reports the loaded backend's model, or an empty string before the first load.
func (l *LazyEmbedder) Model() string {
	if c := l.current.Load(); c != nil {
		return c.embedder.Model()
	}
	return ""
}

func (l *LazyEmbedder) Loaded() bool {
	return l.current.Load() != nil
}
