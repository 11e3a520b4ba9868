package embedcache

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-redis/redis/v8"
)

func openInMemoryBadger(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewBadger(openInMemoryBadger(t), time.Hour)

	if _, ok, err := cache.Get(ctx, "emb:missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := []float32{0.25, -0.5, 1}
	if err := cache.Set(ctx, "emb:k", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := cache.Get(ctx, "emb:k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := cache.Set(ctx, "emb:empty", nil); err == nil {
		t.Fatalf("expected error for empty vector")
	}

	if err := cache.Close(); err != nil {
		t.Fatalf("close of borrowed db must be a no-op: %v", err)
	}
}

func TestOpenBadgerOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cache, err := OpenBadger(dir, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := cache.Set(ctx, "emb:k", []float32{1, 2}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenBadger(dir, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "emb:k")
	if err != nil || !ok || !slices.Equal(got, []float32{1, 2}) {
		t.Fatalf("expected persisted vector, got %v ok=%v err=%v", got, ok, err)
	}
}

type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	cache := NewRedis(client, 24*time.Hour)

	if _, ok, err := cache.Get(ctx, "emb:missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := []float32{0.5, 0.5}
	if err := cache.Set(ctx, "emb:k", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	if client.ttls["emb:k"] != 24*time.Hour {
		t.Fatalf("expected ttl to be passed, got %v", client.ttls["emb:k"])
	}

	got, ok, err := cache.Get(ctx, "emb:k")
	if err != nil || !ok || !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v ok=%v err=%v", want, got, ok, err)
	}

	if err := cache.Close(); err != nil || !client.closed {
		t.Fatalf("expected client to be closed")
	}
}

func TestRedisErrors(t *testing.T) {
	ctx := context.Background()

	client := newFakeRedis()
	client.getErr = errors.New("connection refused")
	if _, _, err := NewRedis(client, 0).Get(ctx, "emb:k"); err == nil {
		t.Fatalf("expected connection error")
	}

	corrupt := newFakeRedis()
	corrupt.data["emb:k"] = "not json"
	if _, _, err := NewRedis(corrupt, 0).Get(ctx, "emb:k"); err == nil {
		t.Fatalf("expected decode error")
	}
}
