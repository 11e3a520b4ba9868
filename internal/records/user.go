package records

import "slices"

type User struct {
	ID        string   `json:"id" mapstructure:"id" validate:"required"`
	Name      string   `json:"name" mapstructure:"name" validate:"required"`
	Email     string   `json:"email" mapstructure:"email" validate:"required,email"`
	Age       int      `json:"age" mapstructure:"age" validate:"gte=0"`
	Interests []string `json:"interests" mapstructure:"interests"`
	Location  string   `json:"location" mapstructure:"location" validate:"required"`
	LikedBy   []string `json:"liked_by" mapstructure:"liked_by"`
}

// IsLikedBy reports whether the user with the given id already liked u.
func (u *User) IsLikedBy(id string) bool {
	return slices.Contains(u.LikedBy, id)
}
