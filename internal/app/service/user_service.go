package service

import (
	"context"
	"errors"
	"fmt"

	"quickhacker/internal/common"
	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// Update applies patch to user id. Users may edit themselves; admins may edit anyone and change roles.
func (s *UserService) Update(ctx context.Context, actor *model.User, id string, patch model.UserAdminPatch) (*model.User, error) {
	isAdmin := actor.Role == model.RoleAdmin
	if actor.ID != id && !isAdmin {
		return nil, common.Forbidden("You can only update your own profile")
	}
	if patch.Role != nil && !isAdmin {
		return nil, common.Forbidden("Only admins can change roles")
	}
	if patch.Role != nil && !model.IsValidRole(*patch.Role) {
		return nil, common.ValidationError("Invalid role")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = patch.Name
	}
	if patch.Bio != nil {
		user.Bio = patch.Bio
	}
	if patch.ProfilePicture != nil {
		user.ProfilePicture = patch.ProfilePicture
	}
	if patch.GitHubUsername != nil {
		user.GitHubUsername = patch.GitHubUsername
	}
	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return nil, common.ValidationError("Password must be at least %d characters", minPasswordLength)
		}
		hash, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = &hash
	}

	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
