package similarity

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/ai"
	"github.com/spigell/group-recommender/internal/utils"
)

// roundingSlack absorbs float32 noise so identical texts reach MaxScore.
const roundingSlack = 1e-4

// EmbeddingScorer compares texts by the cosine similarity of their embeddings.
type EmbeddingScorer struct {
	embedder ai.Embedder
	logger   *zap.Logger
}

var _ Scorer = (*EmbeddingScorer)(nil)

func NewEmbedding(embedder ai.Embedder, logger *zap.Logger) *EmbeddingScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmbeddingScorer{embedder: embedder, logger: logger}
}

func (s *EmbeddingScorer) Mode() string { return ModeSemantic }

// Similarity returns floor(max(0, cos) * 100). Backend errors are returned as is.
func (s *EmbeddingScorer) Similarity(ctx context.Context, a, b string) (int, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, nil
	}

	va, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embed %q: %w", utils.TruncateForLog(a, 64), err)
	}
	vb, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embed %q: %w", utils.TruncateForLog(b, 64), err)
	}

	cos, err := Cosine(va, vb)
	if err != nil {
		return 0, err
	}

	score := ToScore(cos)
	s.logger.Debug("similarity",
		zap.String("a", utils.TruncateForLog(a, 64)),
		zap.String("b", utils.TruncateForLog(b, 64)),
		zap.Float64("cosine", cos),
		zap.Int("score", score),
	)
	return score, nil
}

// ToScore maps a cosine similarity onto 0..MaxScore.
func ToScore(cos float64) int {
	if math.IsNaN(cos) || cos <= 0 {
		return 0
	}
	score := int(math.Floor(cos*MaxScore + roundingSlack))
	return min(score, MaxScore)
}

// Cosine returns the cosine similarity of a and b. A zero vector has similarity 0 with anything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions differ: %d != %d", len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
