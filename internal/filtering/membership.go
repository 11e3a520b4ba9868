package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

const MembershipName = "membership"

type membershipFilter struct{}

// NewMembership creates a filter that removes groups the user already belongs to.
// It cannot be disabled.
func NewMembership() Filter {
	return &membershipFilter{}
}

func (f *membershipFilter) Name() string { return MembershipName }

func (f *membershipFilter) Disable(string) {}

func (f *membershipFilter) IsEnabled() bool { return true }

func (f *membershipFilter) Validate(*Config) error { return nil }

func (f *membershipFilter) Apply(_ context.Context, deps Deps, g *records.Groups) (*records.Groups, Step, error) {
	initial := g.Len()
	userID := deps.User.ID

	excluded := g.ExcludeFunc(func(group *records.Group) bool {
		return group.HasMember(userID)
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding groups the user already joined",
			zap.Strings("excluded_groups", excluded),
			zap.Int("groups_left", g.Len()),
		)
	}

	return g, Step{Initial: initial, Dropped: len(excluded), Left: g.Len()}, nil
}
