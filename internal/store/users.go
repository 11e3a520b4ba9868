package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

func findUser(doc *document, id string) *records.User {
	for _, u := range doc.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// CreateUser stores a new user. An email that is already taken is rejected.
// When in carries the id of an existing user, that user is returned unchanged.
func (s *Store) CreateUser(in records.User) (*records.User, error) {
	var created *records.User
	err := s.update(func(doc *document) error {
		for _, u := range doc.Users {
			if strings.EqualFold(u.Email, in.Email) {
				return ErrDuplicateEmail
			}
		}

		if in.ID != "" {
			if existing := findUser(doc, in.ID); existing != nil {
				created = existing
				return errUnchanged
			}
		} else {
			in.ID = uuid.NewString()
		}

		if in.Interests == nil {
			in.Interests = []string{}
		}
		in.LikedBy = []string{}

		if err := records.Validate(&in); err != nil {
			return err
		}

		doc.Users = append(doc.Users, &in)
		created = &in
		return nil
	})
	if err := ignoreUnchanged(err); err != nil {
		return nil, err
	}

	s.logger.Debug("user created", zap.String("user_id", created.ID))
	return created, nil
}

func (s *Store) ListUsers(skip, limit int) ([]*records.User, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return page(doc.Users, skip, limit), nil
}

func (s *Store) GetUser(id string) (*records.User, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	user := findUser(doc, id)
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return user, nil
}

// Like records that actorID likes targetID. Liking twice has no further effect.
func (s *Store) Like(targetID, actorID string) (*records.User, error) {
	var target *records.User
	err := s.update(func(doc *document) error {
		var err error
		target, err = likeParties(doc, targetID, actorID)
		if err != nil {
			return err
		}
		if targetID == actorID {
			return ErrSelfLike
		}
		if target.IsLikedBy(actorID) {
			return errUnchanged
		}

		target.LikedBy = append(target.LikedBy, actorID)
		return nil
	})
	if err := ignoreUnchanged(err); err != nil {
		return nil, err
	}
	return target, nil
}

// Unlike removes a like of actorID from targetID if there is one.
func (s *Store) Unlike(targetID, actorID string) (*records.User, error) {
	var target *records.User
	err := s.update(func(doc *document) error {
		var err error
		target, err = likeParties(doc, targetID, actorID)
		if err != nil {
			return err
		}
		if !target.IsLikedBy(actorID) {
			return errUnchanged
		}

		target.LikedBy = slices.DeleteFunc(target.LikedBy, func(id string) bool { return id == actorID })
		return nil
	})
	if err := ignoreUnchanged(err); err != nil {
		return nil, err
	}
	return target, nil
}

// Likes returns how many users liked the user.
func (s *Store) Likes(id string) (int, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return 0, err
	}
	return len(user.LikedBy), nil
}

func likeParties(doc *document, targetID, actorID string) (*records.User, error) {
	target := findUser(doc, targetID)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, targetID)
	}
	if findUser(doc, actorID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, actorID)
	}
	return target, nil
}
