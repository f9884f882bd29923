package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quickhacker/internal/common"
	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"` // email or username
	Password string `json:"password"`
	UserType string `json:"userType,omitempty"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.ValidationError("Username, email and password are required")
	}
	if !validEmail(req.Email) {
		return nil, common.ValidationError("Invalid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, common.ValidationError("Password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.ValidationError("Email already in use")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, common.ValidationError("Username already taken")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	user, err := createAccount(ctx, s.userRepo, nil, newAccount{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleParticipant,
		Name:     optional(req.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return issue(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Email)
	if login == "" || req.Password == "" {
		return nil, common.ValidationError("Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, login)
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Unauthorized("Invalid email or password")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.Password) {
		return nil, common.Unauthorized("Invalid email or password")
	}
	if req.UserType == model.RoleAdmin && user.Role != model.RoleAdmin {
		return nil, common.Forbidden("Not authorized as admin")
	}
	return issue(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func issue(user *model.User) (*AuthResponse, error) {
	token, err := security.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}
