package model

import (
	"time"
)

const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
	RoleMentor      = "mentor"
	RoleJudge       = "judge"

	ProviderLocal  = "local"
	ProviderGitHub = "github"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleParticipant, RoleMentor, RoleJudge:
		return true
	}
	return false
}

// IsStaff reports whether role may see every team's work (admins, mentors and judges).
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleMentor || role == RoleJudge
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       *string   `json:"-"` // hash.salt, nil for OAuth-only accounts
	Role           string    `json:"role"`
	AuthProvider   string    `json:"authProvider"`
	AuthProviderID *string   `json:"authProviderId,omitempty"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	Name           *string   `json:"name,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	GitHubUsername *string   `json:"githubUsername,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DisplayName falls back to the username when no name is set.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Username
}

// UserPatch is what a user may change on their own profile.
type UserPatch struct {
	Name           *string `json:"name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	GitHubUsername *string `json:"githubUsername,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Password       *string `json:"password,omitempty"`
}

// UserAdminPatch extends UserPatch with fields only admins may change.
type UserAdminPatch struct {
	UserPatch
	Role *string `json:"role,omitempty"`
}
