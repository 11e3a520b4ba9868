// Package similarity scores how close two free-text labels are on a 0..100 scale.
package similarity

import "context"

// Scoring modes.
const (
	ModeSemantic = "semantic"
	ModeKeyword  = "keyword"
)

// MaxScore is the score of two texts that mean the same thing.
const MaxScore = 100

// Scorer compares two texts. Empty input on either side scores 0.
type Scorer interface {
	Similarity(ctx context.Context, a, b string) (int, error)
	Mode() string
}
