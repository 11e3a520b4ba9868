// Package filtering narrows a group catalog down to the candidates worth scoring for a user.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

// Filter represents a single filtering step applied to candidate groups.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, g *records.Groups) (*records.Groups, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	User   *records.User
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Report is the outcome of one enabled step of a run.
type Report struct {
	Name string
	Step Step
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	OpenOnly    bool
	ExcludeFile string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the candidate pipeline in execution order. Filters keep
// per-run state, so every run needs its own list.
func Default() []Filter {
	return []Filter{
		NewMembership(),
		NewExcludeFile(),
		NewOpenSeats(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Validate configures every enabled step with cfg. Steps may disable
// themselves here, so statuses are only meaningful after it ran.
func Validate(cfg *Config, steps []Filter) error {
	if cfg == nil {
		cfg = &Config{}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// Run executes the supplied filters sequentially and returns the remaining groups
// with a report per executed step. The caller's collection is never modified.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, g *records.Groups) (*records.Groups, []Report, error) {
	if deps.User == nil {
		return nil, nil, fmt.Errorf("user is required")
	}
	if err := Validate(cfg, steps); err != nil {
		return nil, nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	current := g.Copy()
	reports := make([]Report, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, current)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		current = next
		reports = append(reports, Report{Name: step.Name(), Step: info})
	}

	return current, reports, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
