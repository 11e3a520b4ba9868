package filtering

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

const ExcludeFileName = "exclude_file"

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes groups listed in an exclude file.
// A missing file excludes nothing.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return ExcludeFileName }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = strings.TrimSpace(cfg.ExcludeFile)
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, g *records.Groups) (*records.Groups, Step, error) {
	initial := g.Len()
	if f.path == "" {
		return g, Step{Initial: initial, Left: initial}, nil
	}

	excluded, err := records.LoadExcludedGroups(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return g, Step{Initial: initial, Left: initial}, nil
	}
	if err != nil {
		return g, Step{}, fmt.Errorf("getting excluded groups from file: %w", err)
	}

	removed := g.Exclude(records.GroupIDField, excluded.IDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Debug("excluding groups based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_groups", removed),
			zap.Int("groups_left", g.Len()),
		)
	}

	return g, Step{Initial: initial, Dropped: len(removed), Left: g.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
