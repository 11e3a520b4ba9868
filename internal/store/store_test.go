package store

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "data", "db.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func mustCreateUser(t *testing.T, s *Store, name, email string) *records.User {
	t.Helper()

	u, err := s.CreateUser(records.User{Name: name, Email: email, Age: 25, Location: "City"})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestOpenCreatesEmptyDocument(t *testing.T) {
	s := openTestStore(t)

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected initialized document")
	}

	users, err := s.ListUsers(0, 0)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected no users, got %v, %v", users, err)
	}
}

func TestCreateUser(t *testing.T) {
	s := openTestStore(t)

	alice := mustCreateUser(t, s, "Alice", "alice@example.com")
	if alice.ID == "" {
		t.Fatalf("expected generated id")
	}

	if _, err := s.CreateUser(records.User{Name: "Other", Email: "alice@example.com", Location: "City"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	same, err := s.CreateUser(records.User{ID: alice.ID, Name: "Renamed", Email: "new@example.com", Location: "Town"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same.Name != "Alice" {
		t.Fatalf("expected existing user to be returned, got %+v", same)
	}

	explicit, err := s.CreateUser(records.User{ID: "u-42", Name: "Bob", Email: "bob@example.com", Location: "Town"})
	if err != nil || explicit.ID != "u-42" {
		t.Fatalf("expected explicit id to be kept, got %+v, %v", explicit, err)
	}

	if _, err := s.CreateUser(records.User{Name: "Eve", Email: "not-an-email", Location: "City"}); err == nil {
		t.Fatalf("expected validation error")
	}

	users, err := s.ListUsers(0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestListUsersPaging(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"a", "b", "c"} {
		mustCreateUser(t, s, name, name+"@example.com")
	}

	tests := []struct {
		skip, limit int
		want        []string
	}{
		{0, 2, []string{"a", "b"}},
		{1, 0, []string{"b", "c"}},
		{-1, 1, []string{"a"}},
		{5, 10, []string{}},
	}
	for _, tt := range tests {
		users, err := s.ListUsers(tt.skip, tt.limit)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		names := []string{}
		for _, u := range users {
			names = append(names, u.Name)
		}
		if !slices.Equal(names, tt.want) {
			t.Fatalf("skip=%d limit=%d: expected %v, got %v", tt.skip, tt.limit, tt.want, names)
		}
	}
}

func TestLikes(t *testing.T) {
	s := openTestStore(t)
	alice := mustCreateUser(t, s, "Alice", "alice@example.com")
	bob := mustCreateUser(t, s, "Bob", "bob@example.com")

	if _, err := s.Like(alice.ID, alice.ID); !errors.Is(err, ErrSelfLike) {
		t.Fatalf("expected ErrSelfLike, got %v", err)
	}
	if _, err := s.Like("missing", bob.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.Like(alice.ID, "missing"); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}

	for range 2 {
		if _, err := s.Like(alice.ID, bob.ID); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
	if n, err := s.Likes(alice.ID); err != nil || n != 1 {
		t.Fatalf("expected 1 like, got %d, %v", n, err)
	}

	updated, err := s.Unlike(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if len(updated.LikedBy) != 0 {
		t.Fatalf("expected no likes, got %v", updated.LikedBy)
	}
	if _, err := s.Unlike(alice.ID, bob.ID); err != nil {
		t.Fatalf("unlike without like must succeed: %v", err)
	}
	if _, err := s.Likes("missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGroupLifecycle(t *testing.T) {
	s := openTestStore(t)
	admin := mustCreateUser(t, s, "Admin", "admin@example.com")
	bob := mustCreateUser(t, s, "Bob", "bob@example.com")
	carol := mustCreateUser(t, s, "Carol", "carol@example.com")

	if _, err := s.CreateGroup(records.Group{Name: "x", Location: "City", MaxMembers: 2}, "missing"); !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("expected ErrAdminNotFound, got %v", err)
	}

	group, err := s.CreateGroup(records.Group{Name: "Shuttlers", Activity: "Badminton", Location: "City", MaxMembers: 2}, admin.ID)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if !slices.Equal(group.Members, []string{admin.ID}) || group.AdminID != admin.ID {
		t.Fatalf("admin must be the first member: %+v", group)
	}
	if group.AgeGroup != records.AllAges {
		t.Fatalf("expected default age group, got %q", group.AgeGroup)
	}

	if _, err := s.JoinGroup("missing", bob.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
	if _, err := s.JoinGroup(group.ID, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.JoinGroup(group.ID, admin.ID); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if _, err := s.JoinGroup(group.ID, bob.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := s.JoinGroup(group.ID, carol.ID); !errors.Is(err, ErrGroupFull) {
		t.Fatalf("expected ErrGroupFull, got %v", err)
	}

	open, err := s.OpenGroups(0, 0)
	if err != nil || len(open) != 0 {
		t.Fatalf("full group must not be open, got %v, %v", open, err)
	}

	if _, err := s.LeaveGroup(group.ID, carol.ID); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	if _, err := s.LeaveGroup(group.ID, admin.ID); !errors.Is(err, ErrAdminCannotLeave) {
		t.Fatalf("expected ErrAdminCannotLeave, got %v", err)
	}
	left, err := s.LeaveGroup(group.ID, bob.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if left.HasMember(bob.ID) {
		t.Fatalf("bob must be removed: %v", left.Members)
	}

	open, err = s.OpenGroups(0, 0)
	if err != nil || len(open) != 1 {
		t.Fatalf("expected one open group, got %v, %v", open, err)
	}

	catalog, err := s.Groups()
	if err != nil || catalog.Len() != 1 {
		t.Fatalf("expected catalog of 1, got %v", err)
	}
}

func TestLoadLegacyActivityList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	legacy := `{
    "users": [{"id": "u1", "name": "A", "email": "a@example.com", "age": 30, "location": "City", "interests": ["chess"], "liked_by": []}],
    "groups": [{"id": "g1", "name": "Games", "description": "", "activity": ["Chess", " Go "], "location": "City", "max_members": 4, "age_group": "All Ages", "members": ["u1"], "admin_id": "u1"}]
}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	group, err := s.GetGroup("g1")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if group.Activity != "Chess, Go" {
		t.Fatalf("expected flattened activity, got %q", group.Activity)
	}
	if group.MaxMembers != 4 {
		t.Fatalf("expected max members 4, got %d", group.MaxMembers)
	}

	user, err := s.GetUser("u1")
	if err != nil || user.Age != 30 || !slices.Equal(user.Interests, []string{"chess"}) {
		t.Fatalf("unexpected user %+v, %v", user, err)
	}

	if _, err := s.GetUser("missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.GetGroup("missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}
