package matching

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/filtering"
	"github.com/spigell/group-recommender/internal/logger"
	"github.com/spigell/group-recommender/internal/records"
	"github.com/spigell/group-recommender/internal/similarity"
)

// ErrInvalidLimit is returned when a non-positive number of results is requested.
var ErrInvalidLimit = errors.New("limit must be positive")

// Mode selects the similarity scorer behind a ranker.
type Mode string

const (
	ModeSemantic Mode = similarity.ModeSemantic
	ModeKeyword  Mode = similarity.ModeKeyword
)

func ParseMode(s string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ModeSemantic, ModeKeyword:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q", s)
	}
}

// Policy controls which scored groups are eligible for output.
type Policy struct {
	// RequirePositive drops groups whose total score is 0.
	RequirePositive bool
}

// DefaultPolicy returns the policy each mode uses unless configured otherwise.
// Keyword ranking hides groups with nothing in common, semantic ranking returns every candidate.
func DefaultPolicy(mode Mode) Policy {
	return Policy{RequirePositive: mode == ModeKeyword}
}

// Config tunes a Ranker.
type Config struct {
	Policy  Policy
	Filters filtering.Config
	Metrics *Metrics
}

// Ranker turns a group catalog into a ranked list of recommendations for a user.
// It is safe for concurrent use.
type Ranker struct {
	calc    *Calculator
	mode    Mode
	policy  Policy
	filters filtering.Config
	metrics *Metrics
	logger  *zap.Logger
}

func NewRanker(scorer similarity.Scorer, cfg Config, log *zap.Logger) *Ranker {
	mode := Mode(scorer.Mode())
	log = logger.WithFields(log, zap.String(logger.FieldMode, string(mode)))

	return &Ranker{
		calc:    NewCalculator(scorer, log),
		mode:    mode,
		policy:  cfg.Policy,
		filters: cfg.Filters,
		metrics: cfg.Metrics,
		logger:  log,
	}
}

func (r *Ranker) Mode() Mode {
	return r.mode
}

func (r *Ranker) Policy() Policy {
	return r.policy
}

// FilterStatuses describes the candidate filters configured the way Recommend runs them.
func (r *Ranker) FilterStatuses() ([]filtering.Status, error) {
	steps := filtering.Default()
	filters := r.filters
	if err := filtering.Validate(&filters, steps); err != nil {
		return nil, err
	}
	return filtering.Describe(steps), nil
}

// Recommend returns at most limit groups of catalog ranked by relevance for user,
// best first. Groups the user belongs to are never returned, equal scores keep
// catalog order and catalog records are not modified.
func (r *Ranker) Recommend(ctx context.Context, user *records.User, catalog *records.Groups, limit int) ([]records.Recommendation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if user == nil {
		return nil, fmt.Errorf("user is required")
	}
	if catalog == nil {
		catalog = records.NewGroups(nil)
	}

	started := time.Now()
	result, err := r.recommend(ctx, user, catalog, limit)
	r.metrics.observeRequest(r.mode, started, err)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("recommendations ready",
		zap.String(logger.FieldUserID, user.ID),
		zap.Int("catalog", catalog.Len()),
		zap.Int("returned", len(result)),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

func (r *Ranker) recommend(ctx context.Context, user *records.User, catalog *records.Groups, limit int) ([]records.Recommendation, error) {
	log := r.logger.With(zap.String(logger.FieldUserID, user.ID))

	filters := r.filters
	candidates, reports, err := filtering.Run(ctx, &filters, filtering.Deps{Logger: log, User: user}, filtering.Default(), catalog)
	if err != nil {
		return nil, fmt.Errorf("filter candidates: %w", err)
	}
	r.metrics.observeFilters(reports)

	result := make([]records.Recommendation, 0, candidates.Len())
	for _, group := range candidates.Items {
		breakdown, err := r.calc.Score(ctx, user, group)
		if err != nil {
			return nil, err
		}

		if r.policy.RequirePositive && breakdown.Total <= 0 {
			log.Debug("dropping group without relevance", zap.String("group_id", group.ID))
			continue
		}

		result = append(result, records.NewRecommendation(group, breakdown))
	}

	slices.SortStableFunc(result, func(a, b records.Recommendation) int {
		return cmp.Compare(b.RelevanceScore, a.RelevanceScore)
	})

	if len(result) > limit {
		result = result[:limit]
	}

	for _, rec := range result {
		r.metrics.observeScore(r.mode, rec.RelevanceScore)
	}
	return result, nil
}
