package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

const OpenSeatsName = "open_seats"

type openSeatsFilter struct {
	disabled bool
	reason   string
}

// NewOpenSeats creates a filter that removes groups with no free seats.
// It only runs when open-only recommendations are requested.
func NewOpenSeats() Filter {
	return &openSeatsFilter{}
}

func (f *openSeatsFilter) Name() string { return OpenSeatsName }

func (f *openSeatsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *openSeatsFilter) IsEnabled() bool { return !f.disabled }

func (f *openSeatsFilter) Validate(cfg *Config) error {
	if !cfg.OpenOnly {
		f.Disable("open-only is not requested")
	}
	return nil
}

func (f *openSeatsFilter) Apply(_ context.Context, deps Deps, g *records.Groups) (*records.Groups, Step, error) {
	initial := g.Len()
	if f.disabled {
		return g, Step{Initial: initial, Left: initial}, nil
	}

	excluded := g.ExcludeFunc((*records.Group).IsFull)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding full groups",
			zap.Strings("excluded_groups", excluded),
			zap.Int("groups_left", g.Len()),
		)
	}

	return g, Step{Initial: initial, Dropped: len(excluded), Left: g.Len()}, nil
}

func (f *openSeatsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"open_only": strconv.FormatBool(!f.disabled)},
	}
}
