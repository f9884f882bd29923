package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"

	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"

	"github.com/google/uuid"
)

const minPasswordLength = 8

// newAccount describes a user row to create. Password is plaintext; empty means the
// account can only sign in through an OAuth provider.
type newAccount struct {
	Username       string
	Email          string
	Password       string
	Role           string
	Name           *string
	Phone          *string
	Provider       string
	ProviderID     *string
	GitHubUsername *string
	ProfilePicture *string
}

// createAccount is the only place a new account's password is hashed.
func createAccount(ctx context.Context, users repository.UserRepository, tx *sql.Tx, a newAccount) (*model.User, error) {
	u := &model.User{
		ID:             uuid.NewString(),
		Username:       a.Username,
		Email:          strings.TrimSpace(a.Email),
		Role:           a.Role,
		AuthProvider:   a.Provider,
		AuthProviderID: a.ProviderID,
		Name:           a.Name,
		Phone:          a.Phone,
		GitHubUsername: a.GitHubUsername,
		ProfilePicture: a.ProfilePicture,
	}
	if u.Role == "" {
		u.Role = model.RoleParticipant
	}
	if u.AuthProvider == "" {
		u.AuthProvider = model.ProviderLocal
	}
	if a.Password != "" {
		hash, err := security.HashPassword(a.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.Password = &hash
	}
	if err := users.Create(ctx, tx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
