// Package lexical provides a deterministic bag-of-words embedder for
// deployments without an embedding service.
package lexical

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	modelName = "lexical-bow"
	// DefaultDimensions is large enough that distinct everyday words rarely share a bucket.
	DefaultDimensions = 512
)

// Embedder hashes lowercase tokens into a fixed number of buckets and L2-normalizes the counts.
// The cosine of two vectors is the token-overlap similarity of the texts.
type Embedder struct {
	dims int
}

func New(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

func (e *Embedder) Model() string {
	return modelName
}

// Identity includes the bucket count, since vectors of different sizes are not comparable.
func (e *Embedder) Identity() string {
	return modelName + "/" + strconv.Itoa(e.dims)
}

func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}

// Tokenize lowercases text and splits it on anything that is not a letter or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
