// Package embedcache memoizes embeddings so repeated interests and activity
// labels are sent to the embedding backend once.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/group-recommender/internal/ai"
)

const keyPrefix = "emb:"

// Backend names accepted in configuration.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Backend stores vectors by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
	Close() error
}

// Embedder wraps another ai.Embedder with a cache. Cache failures are logged
// and the call falls through to the wrapped embedder.
type Embedder struct {
	next    ai.Embedder
	backend Backend
	flights singleflight.Group
	logger  *zap.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

func New(next ai.Embedder, backend Backend, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{next: next, backend: backend, logger: logger}
}

func (e *Embedder) Model() string {
	return e.next.Model()
}

// Identity keeps the wrapped embedder's identity so caches can be stacked.
func (e *Embedder) Identity() string {
	return ai.Identity(e.next)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	key := Key(ai.Identity(e.next), text)

	vec, ok, err := e.backend.Get(ctx, key)
	switch {
	case err != nil:
		e.logger.Warn("embedding cache lookup failed", zap.String("key", key), zap.Error(err))
	case ok:
		return slices.Clone(vec), nil
	}

	v, err, shared := e.flights.Do(key, func() (any, error) {
		vec, err := e.next.Embed(ctx, text)
		if err != nil {
			return nil, err
		}

		if err := e.backend.Set(ctx, key, vec); err != nil {
			e.logger.Warn("embedding cache store failed", zap.String("key", key), zap.Error(err))
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		e.logger.Debug("embedding request collapsed", zap.String("key", key))
	}

	return slices.Clone(v.([]float32)), nil
}

func (e *Embedder) Close() error {
	return e.backend.Close()
}

// Key derives the cache key of text embedded by the embedder with the given identity.
func Key(identity, text string) string {
	sum := sha256.Sum256([]byte(identity + "\x00" + strings.TrimSpace(text)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func checkVector(key string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("cached vector %s is empty", key)
	}
	return nil
}
