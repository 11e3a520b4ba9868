package similarity

import (
	"context"
	"strings"
)

// KeywordScorer gives MaxScore to case-insensitively equal texts and 0 otherwise.
type KeywordScorer struct{}

var _ Scorer = KeywordScorer{}

func NewKeyword() KeywordScorer {
	return KeywordScorer{}
}

func (KeywordScorer) Mode() string { return ModeKeyword }

func (KeywordScorer) Similarity(_ context.Context, a, b string) (int, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0, nil
	}
	if strings.EqualFold(a, b) {
		return MaxScore, nil
	}
	return 0, nil
}
