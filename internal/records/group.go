package records

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// AllAges is the age group that admits every user.
const AllAges = "All Ages"

const (
	GroupIDField       = "ID"
	GroupLocationField = "Location"
	GroupAdminIDField  = "AdminID"
)

type Groups struct {
	Items []*Group
}

type Group struct {
	ID          string   `json:"id" mapstructure:"id" validate:"required"`
	Name        string   `json:"name" mapstructure:"name" validate:"required"`
	Description string   `json:"description" mapstructure:"description"`
	Activity    string   `json:"activity" mapstructure:"activity"`
	Location    string   `json:"location" mapstructure:"location" validate:"required"`
	MaxMembers  int      `json:"max_members" mapstructure:"max_members" validate:"gt=0"`
	AgeGroup    string   `json:"age_group" mapstructure:"age_group"`
	Members     []string `json:"members" mapstructure:"members"`
	AdminID     string   `json:"admin_id" mapstructure:"admin_id" validate:"required"`
}

func (g *Group) HasMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}

func (g *Group) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

// EffectiveAgeGroup returns the age group with the "All Ages" default applied.
func (g *Group) EffectiveAgeGroup() string {
	if strings.TrimSpace(g.AgeGroup) == "" {
		return AllAges
	}
	return g.AgeGroup
}

// Clone returns a copy of the group that shares no slices with g.
func (g *Group) Clone() Group {
	c := *g
	c.Members = slices.Clone(g.Members)
	return c
}

func (g *Group) GetStringField(name string) string {
	switch name {
	case GroupIDField:
		return g.ID
	case GroupLocationField:
		return g.Location
	case GroupAdminIDField:
		return g.AdminID
	default:
		return ""
	}
}

// NewGroups wraps a catalog without copying the records.
func NewGroups(items []*Group) *Groups {
	return &Groups{Items: items}
}

func (v *Groups) Len() int {
	return len(v.Items)
}

func (v *Groups) FindByID(id string) *Group {
	for _, group := range v.Items {
		if group.ID == id {
			return group
		}
	}
	return nil
}

func (v *Groups) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, group := range v.Items {
		ids = append(ids, group.ID)
	}
	return ids
}

// Copy returns a new collection over the same records. Removing items from the
// copy leaves the original order and length intact.
func (v *Groups) Copy() *Groups {
	return &Groups{Items: slices.Clone(v.Items)}
}

// Exclude removes groups whose field matches one of targets and returns the ids of the removed groups.
// The order of the remaining groups is preserved.
func (v *Groups) Exclude(name string, targets []string) []string {
	return v.ExcludeFunc(func(g *Group) bool {
		return slices.Contains(targets, g.GetStringField(name))
	})
}

// ExcludeFunc removes every group for which drop returns true, preserving order.
func (v *Groups) ExcludeFunc(drop func(*Group) bool) []string {
	var excluded []string
	kept := make([]*Group, 0, len(v.Items))
	for _, group := range v.Items {
		if drop(group) {
			excluded = append(excluded, group.ID)
			continue
		}
		kept = append(kept, group)
	}
	v.Items = kept
	return excluded
}

// ReportByLocation groups short group descriptions by location.
func (v *Groups) ReportByLocation() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, group := range v.Items {
		report[group.Location] = append(report[group.Location], map[string]string{
			"id":        group.ID,
			"name":      group.Name,
			"activity":  group.Activity,
			"age_group": group.EffectiveAgeGroup(),
			"seats":     fmt.Sprintf("%d/%d", len(group.Members), group.MaxMembers),
		})
	}
	return report
}

func (v *Groups) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "groups_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ExcludedGroups is the on-disk list of groups a user never wants to see again.
type ExcludedGroups struct {
	Items []ExcludedGroup `json:"items"`
}

type ExcludedGroup struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// LoadExcludedGroups reads an exclude file. An empty file yields an empty list.
func LoadExcludedGroups(path string) (*ExcludedGroups, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedGroups{}, nil
	}

	var excluded ExcludedGroups
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedGroups) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
