package models

import (
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// User is the stored profile for an authenticated principal. The row is
// created on first registration and soft-deleted on account deletion;
// historical messages and relationship records under the id are retained.
type User struct {
	gorm.Model
	Email         string   `gorm:"uniqueIndex;not null" json:"email"`
	Username      string   `gorm:"not null" json:"username"`
	Discriminator string   `gorm:"type:varchar(4);not null" json:"discriminator"`
	Password      string   `gorm:"not null" json:"-"`
	Avatar        string   `json:"avatar"`
	Bio           string   `gorm:"type:varchar(200)" json:"bio"`
	Badges        BadgeSet `gorm:"type:text" json:"badges"`
	LastLogin     time.Time `json:"lastLogin"`
}

// IsAdmin is derived from the badge set; there is no separate role table.
func (u *User) IsAdmin() bool {
	return u.Badges.Contains(BadgeAdmin)
}

// Tag renders the user-visible "name#1234" handle. The discriminator is a
// cosmetic disambiguator, not a uniqueness guarantee.
func (u *User) Tag() string {
	return fmt.Sprintf("%s#%s", u.Username, u.Discriminator)
}

// NewDiscriminator samples a uniform 4-digit value. Collisions across
// different display names are accepted.
func NewDiscriminator() string {
	return fmt.Sprintf("%04d", 1000+rand.Intn(9000))
}

// UserResponse is the profile shape returned to clients.
type UserResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Discriminator string    `json:"discriminator"`
	Avatar        string    `json:"avatar"`
	Bio           string    `json:"bio"`
	Badges        []string  `json:"badges"`
	IsAdmin       bool      `json:"isAdmin"`
	Created       time.Time `json:"created"`

	// Ephemeral is set when the directory lookup failed and the profile was
	// reconstructed from the seed identity. It is never persisted.
	Ephemeral bool `json:"-"`
}

func (u *User) ToResponse() *UserResponse {
	badges := u.Badges
	if badges == nil {
		badges = BadgeSet{}
	}
	return &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Discriminator: u.Discriminator,
		Avatar:        u.Avatar,
		Bio:           u.Bio,
		Badges:        badges,
		IsAdmin:       u.IsAdmin(),
		Created:       u.CreatedAt,
	}
}

// SeedIdentity carries the provider-asserted fields available at login,
// used to create or reconcile the stored profile.
type SeedIdentity struct {
	Email    string
	Username string
	Avatar   string
}
