package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/ai"
	"github.com/spigell/group-recommender/internal/ai/gemini"
	"github.com/spigell/group-recommender/internal/ai/lexical"
	"github.com/spigell/group-recommender/internal/embedcache"
	"github.com/spigell/group-recommender/internal/filtering"
	"github.com/spigell/group-recommender/internal/logger"
	"github.com/spigell/group-recommender/internal/matching"
	"github.com/spigell/group-recommender/internal/secrets"
	"github.com/spigell/group-recommender/internal/similarity"
	"github.com/spigell/group-recommender/internal/store"
)

// engine holds everything a recommendation run needs.
type engine struct {
	ranker   *matching.Ranker
	registry *prometheus.Registry
	closers  []io.Closer
	logger   *zap.Logger
}

func newEngine(ctx context.Context, config *Config, log *zap.Logger) (*engine, error) {
	mode, err := matching.ParseMode(config.Scoring.Mode)
	if err != nil {
		return nil, err
	}

	e := &engine{
		registry: prometheus.NewRegistry(),
		logger:   log,
	}

	var scorer similarity.Scorer
	switch mode {
	case matching.ModeKeyword:
		scorer = similarity.NewKeyword()
		e.logger = logger.WithEngineFields(log, string(mode), "", "")
	default:
		emb := config.Embedding
		e.logger = logger.WithEngineFields(log, string(mode), emb.Provider, "")

		backend, err := newCacheBackend(ctx, emb.Cache)
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		e.closers = append(e.closers, backend)

		lazy := similarity.NewLazy(func(ctx context.Context) (ai.Embedder, error) {
			provider, err := newEmbedder(ctx, emb, e.logger)
			if err != nil {
				return nil, err
			}
			e.logger.Info("embedding backend loaded", zap.String(logger.FieldModel, provider.Model()))
			return embedcache.New(provider, backend, e.logger), nil
		})
		scorer = similarity.NewEmbedding(lazy, e.logger)
	}

	policy := matching.DefaultPolicy(mode)
	if config.Recommend.RequirePositiveScore != nil {
		policy.RequirePositive = *config.Recommend.RequirePositiveScore
	}

	e.ranker = matching.NewRanker(scorer, matching.Config{
		Policy: policy,
		Filters: filtering.Config{
			OpenOnly:    config.Recommend.OpenOnly,
			ExcludeFile: config.Recommend.ExcludeFile,
		},
		Metrics: matching.NewMetrics(e.registry),
	}, e.logger)

	return e, nil
}

func newEmbedder(ctx context.Context, cfg *EmbeddingConfig, log *zap.Logger) (ai.Embedder, error) {
	switch provider := strings.TrimSpace(strings.ToLower(cfg.Provider)); provider {
	case ai.ProviderLexical, "":
		return lexical.New(0), nil
	case ai.ProviderGemini:
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: gc.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := log.With(zap.Int("ai_retry_attempts", gc.MaxRetries))
		return gemini.New(ctx, gemini.Config{
			APIKey:            apiKey,
			Model:             gc.Model,
			Dimensions:        gc.Dimensions,
			TaskType:          gc.TaskType,
			MaxRetries:        gc.MaxRetries,
			RequestsPerSecond: gc.RequestsPerSecond,
		}, genLogger)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func newCacheBackend(ctx context.Context, cfg *CacheConfig) (embedcache.Backend, error) {
	if cfg == nil {
		return embedcache.NewMemory(), nil
	}

	switch backend := strings.TrimSpace(strings.ToLower(cfg.Backend)); backend {
	case embedcache.BackendMemory, "":
		return embedcache.NewMemory(), nil
	case embedcache.BackendNone:
		return noCache{}, nil
	case embedcache.BackendBadger:
		return embedcache.OpenBadger(cfg.Path, cfg.TTL)
	case embedcache.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("embedding.cache.redis-url is required for the redis backend")
		}
		return embedcache.DialRedis(ctx, cfg.RedisURL, cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported embedding cache backend: %s", cfg.Backend)
	}
}

// noCache never hits and never stores.
type noCache struct{}

func (noCache) Get(context.Context, string) ([]float32, bool, error) { return nil, false, nil }
func (noCache) Set(context.Context, string, []float32) error         { return nil }
func (noCache) Close() error                                         { return nil }

func (e *engine) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func (e *engine) Close() {
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			e.logger.Warn("closing resource", zap.Error(err))
		}
	}
}

func openStore(config *Config, log *zap.Logger) *store.Store {
	s, err := store.Open(config.Store.Path, log)
	if err != nil {
		log.Fatal("opening the record store", zap.Error(err), zap.String("path", config.Store.Path))
	}
	return s
}
