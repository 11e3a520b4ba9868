package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

func findGroup(doc *document, id string) *records.Group {
	for _, g := range doc.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// CreateGroup stores a new group administered by adminID, who becomes its first member.
func (s *Store) CreateGroup(in records.Group, adminID string) (*records.Group, error) {
	err := s.update(func(doc *document) error {
		if findUser(doc, adminID) == nil {
			return fmt.Errorf("%w: %s", ErrAdminNotFound, adminID)
		}

		in.ID = uuid.NewString()
		in.AdminID = adminID
		in.Members = []string{adminID}
		if strings.TrimSpace(in.AgeGroup) == "" {
			in.AgeGroup = records.AllAges
		}

		if err := records.Validate(&in); err != nil {
			return err
		}

		doc.Groups = append(doc.Groups, &in)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("group created", zap.String("group_id", in.ID), zap.String("admin_id", adminID))
	return &in, nil
}

func (s *Store) ListGroups(skip, limit int) ([]*records.Group, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return page(doc.Groups, skip, limit), nil
}

// Groups returns the whole catalog in storage order.
func (s *Store) Groups() (*records.Groups, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return records.NewGroups(doc.Groups), nil
}

func (s *Store) GetGroup(id string) (*records.Group, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	group := findGroup(doc, id)
	if group == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, id)
	}
	return group, nil
}

// OpenGroups pages through the catalog and keeps the groups that still have free seats.
// Paging happens before filtering, so a page may hold fewer than limit groups.
func (s *Store) OpenGroups(skip, limit int) ([]*records.Group, error) {
	groups, err := s.ListGroups(skip, limit)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(slices.Clone(groups), (*records.Group).IsFull), nil
}

func (s *Store) JoinGroup(groupID, userID string) (*records.Group, error) {
	var group *records.Group
	err := s.update(func(doc *document) error {
		var err error
		group, err = membershipParties(doc, groupID, userID)
		if err != nil {
			return err
		}
		if group.HasMember(userID) {
			return ErrAlreadyMember
		}
		if group.IsFull() {
			return ErrGroupFull
		}

		group.Members = append(group.Members, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user joined group", zap.String("group_id", groupID), zap.String("user_id", userID))
	return group, nil
}

func (s *Store) LeaveGroup(groupID, userID string) (*records.Group, error) {
	var group *records.Group
	err := s.update(func(doc *document) error {
		var err error
		group, err = membershipParties(doc, groupID, userID)
		if err != nil {
			return err
		}
		if !group.HasMember(userID) {
			return ErrNotMember
		}
		if group.AdminID == userID {
			return ErrAdminCannotLeave
		}

		group.Members = slices.DeleteFunc(group.Members, func(id string) bool { return id == userID })
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user left group", zap.String("group_id", groupID), zap.String("user_id", userID))
	return group, nil
}

func membershipParties(doc *document, groupID, userID string) (*records.Group, error) {
	group := findGroup(doc, groupID)
	if group == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	if findUser(doc, userID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return group, nil
}
