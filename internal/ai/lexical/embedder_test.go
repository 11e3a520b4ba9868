package lexical

import (
	"context"
	"math"
	"slices"
	"testing"
)

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestEmbedIsCaseInsensitive(t *testing.T) {
	e := New(0)

	a, err := e.Embed(context.Background(), "badminton")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Embed(context.Background(), "Badminton")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(a, b) {
		t.Fatalf("expected identical vectors for different case")
	}
	if got := dot(a, b); math.Abs(got-1) > 1e-6 {
		t.Fatalf("expected unit cosine, got %v", got)
	}
}

func TestEmbedPartialOverlap(t *testing.T) {
	e := New(4096)

	a, _ := e.Embed(context.Background(), "board games")
	b, _ := e.Embed(context.Background(), "board game night")

	got := dot(a, b)
	if got <= 0 || got >= 1 {
		t.Fatalf("expected partial similarity in (0,1), got %v", got)
	}
}

func TestEmbedEmptyText(t *testing.T) {
	e := New(16)

	vec, err := e.Embed(context.Background(), "  ,.  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 16 {
		t.Fatalf("expected 16 dims, got %d", len(vec))
	}
	for _, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector, got %v", vec)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Rock-Climbing, 5k runs!")
	want := []string{"rock", "climbing", "5k", "runs"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIdentityIncludesDimensions(t *testing.T) {
	if New(0).Identity() == New(64).Identity() {
		t.Fatalf("embedders with different sizes must not share an identity")
	}
	if New(0).Identity() != New(DefaultDimensions).Identity() {
		t.Fatalf("default size must match DefaultDimensions")
	}
}
