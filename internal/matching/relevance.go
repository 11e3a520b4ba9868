// Package matching scores groups against a user profile and ranks them.
package matching

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
	"github.com/spigell/group-recommender/internal/similarity"
)

const (
	// LocationBonus is added when the user and the group share a location.
	LocationBonus = 50
	// AgeBonus is added when the user's age satisfies the group's age group.
	AgeBonus = 30
)

// Calculator computes the relevance of one group for one user.
type Calculator struct {
	scorer similarity.Scorer
	logger *zap.Logger
}

func NewCalculator(scorer similarity.Scorer, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{scorer: scorer, logger: logger}
}

// Score returns the breakdown of group's relevance for user. Only similarity
// backend failures are returned as errors; malformed data scores 0 on that dimension.
func (c *Calculator) Score(ctx context.Context, user *records.User, group *records.Group) (records.ScoreBreakdown, error) {
	var b records.ScoreBreakdown

	semantic, err := c.semantic(ctx, user.Interests, group.Activity)
	if err != nil {
		return records.ScoreBreakdown{}, fmt.Errorf("score group %s: %w", group.ID, err)
	}
	b.Semantic = semantic

	if strings.EqualFold(user.Location, group.Location) {
		b.Location = LocationBonus
	}

	if IsAgeInRange(user.Age, group.EffectiveAgeGroup()) {
		b.Age = AgeBonus
	}

	b.Total = b.Semantic + b.Location + b.Age
	return b, nil
}

// semantic keeps the best single interest match.
func (c *Calculator) semantic(ctx context.Context, interests []string, activity string) (int, error) {
	if len(interests) == 0 || strings.TrimSpace(activity) == "" {
		return 0, nil
	}

	best := 0
	for _, interest := range interests {
		score, err := c.scorer.Similarity(ctx, interest, activity)
		if err != nil {
			return 0, err
		}
		best = max(best, score)
		if best == similarity.MaxScore {
			break
		}
	}
	return best, nil
}
