package records

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func testGroups() *Groups {
	return &Groups{
		Items: []*Group{
			{ID: "g1", Name: "Morning Runs", Activity: "Running", Location: "Jakarta", MaxMembers: 5, Members: []string{"u1"}},
			{ID: "g2", Name: "Shuttle Club", Activity: "Badminton", Location: "Bandung", MaxMembers: 2, Members: []string{"u2", "u3"}},
			{ID: "g3", Name: "Chess Night", Activity: "Chess", Location: "Jakarta", MaxMembers: 4, AgeGroup: "18+"},
		},
	}
}

func TestGroupsExcludePreservesOrder(t *testing.T) {
	groups := testGroups()

	excluded := groups.Exclude(GroupIDField, []string{"g2"})
	if !slices.Equal(excluded, []string{"g2"}) {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}

	if got := groups.IDs(); !slices.Equal(got, []string{"g1", "g3"}) {
		t.Fatalf("expected order g1,g3, got %v", got)
	}
}

func TestGroupsCopyDoesNotTouchOriginal(t *testing.T) {
	groups := testGroups()
	copied := groups.Copy()

	copied.ExcludeFunc(func(g *Group) bool { return g.Location == "Jakarta" })

	if copied.Len() != 1 {
		t.Fatalf("expected 1 group in copy, got %d", copied.Len())
	}
	if groups.Len() != 3 {
		t.Fatalf("expected original to keep 3 groups, got %d", groups.Len())
	}
	if got := groups.IDs(); !slices.Equal(got, []string{"g1", "g2", "g3"}) {
		t.Fatalf("original order changed: %v", got)
	}
}

func TestGroupHelpers(t *testing.T) {
	groups := testGroups()

	full := groups.FindByID("g2")
	if full == nil {
		t.Fatal("expected to find g2")
	}
	if !full.IsFull() {
		t.Fatalf("expected g2 to be full")
	}
	if !full.HasMember("u3") || full.HasMember("u1") {
		t.Fatalf("unexpected membership for g2: %v", full.Members)
	}

	if got := groups.FindByID("g1").EffectiveAgeGroup(); got != AllAges {
		t.Fatalf("expected default age group, got %q", got)
	}
	if got := groups.FindByID("g3").EffectiveAgeGroup(); got != "18+" {
		t.Fatalf("expected explicit age group, got %q", got)
	}
	if groups.FindByID("missing") != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestReportByLocation(t *testing.T) {
	report := testGroups().ReportByLocation()

	entries, ok := report["Jakarta"]
	if !ok {
		t.Fatalf("expected Jakarta key in report")
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["seats"] != "1/5" {
		t.Fatalf("unexpected seats: %q", entries[0]["seats"])
	}
	if entries[1]["age_group"] != "18+" {
		t.Fatalf("unexpected age_group: %q", entries[1]["age_group"])
	}
}

func TestNewRecommendationCopiesGroup(t *testing.T) {
	group := &Group{ID: "g1", Members: []string{"u1"}}
	rec := NewRecommendation(group, ScoreBreakdown{Semantic: 10, Location: 50, Total: 60})

	rec.Members[0] = "changed"
	rec.Name = "changed"

	if group.Members[0] != "u1" || group.Name != "" {
		t.Fatalf("source group was mutated: %+v", group)
	}
	if rec.RelevanceScore != 60 {
		t.Fatalf("expected relevance score 60, got %d", rec.RelevanceScore)
	}
}

func TestLoadExcludedGroups(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	excluded, err := LoadExcludedGroups(empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(excluded.IDs()) != 0 {
		t.Fatalf("expected no ids, got %v", excluded.IDs())
	}

	listed := filepath.Join(dir, "exclude.json")
	body := `{"items":[{"id":"g2","reason":"too far"},{"id":"g7"}]}`
	if err := os.WriteFile(listed, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	excluded, err = LoadExcludedGroups(listed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(excluded.IDs(), []string{"g2", "g7"}) {
		t.Fatalf("unexpected ids: %v", excluded.IDs())
	}

	if _, err := LoadExcludedGroups(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
