package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"quickhacker/internal/common"
	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"

	"github.com/google/uuid"
)

type TeamService struct {
	teamRepo       repository.TeamRepository
	userRepo       repository.UserRepository
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	reviewRepo     repository.ReviewRepository
	tx             repository.Transactor
	passwordLength int
}

func NewTeamService(
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	reviewRepo repository.ReviewRepository,
	tx repository.Transactor,
	passwordLength int,
) *TeamService {
	return &TeamService{
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		reviewRepo:     reviewRepo,
		tx:             tx,
		passwordLength: passwordLength,
	}
}

type TeamFilter struct {
	ProblemID string
	UserID    string
}

type CreateTeamRequest struct {
	Name              string       `json:"name"`
	Description       *string      `json:"description,omitempty"`
	RepositoryURL     *string      `json:"repositoryUrl,omitempty"`
	TeamSize          int          `json:"teamSize,omitempty"`
	LookingForMembers bool         `json:"lookingForMembers,omitempty"`
	ProblemID         *string      `json:"problemId,omitempty"`
	Gender            model.Gender `json:"gender,omitempty"`
}

type AddMemberRequest struct {
	UserID   string       `json:"userId"`
	IsLeader bool         `json:"isLeader,omitempty"`
	Gender   model.Gender `json:"gender,omitempty"`
}

type TeamCredentials struct {
	TeamID   string `json:"teamId"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *TeamService) List(ctx context.Context, filter TeamFilter) ([]model.Team, error) {
	switch {
	case filter.ProblemID != "":
		return s.teamRepo.ListByProblemID(ctx, filter.ProblemID)
	case filter.UserID != "":
		return s.teamRepo.ListByUserID(ctx, filter.UserID)
	}
	return s.teamRepo.List(ctx)
}

func (s *TeamService) find(ctx context.Context, id string) (*model.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Team not found")
		}
		return nil, err
	}
	return team, nil
}

func (s *TeamService) Get(ctx context.Context, id string) (*model.TeamWithMembers, error) {
	team, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.teamRepo.GetMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	return &model.TeamWithMembers{Team: *team, Members: members}, nil
}

// GetDetails loads a team with its members, problem and every submission's reviews.
func (s *TeamService) GetDetails(ctx context.Context, id string) (*model.TeamDetails, error) {
	team, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &model.TeamDetails{Team: *team, Submissions: []model.SubmissionWithReviews{}}

	if details.Members, err = s.teamRepo.GetMembers(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	if team.ProblemID != nil {
		problem, err := s.problemRepo.FindByID(ctx, *team.ProblemID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to load problem: %w", err)
		}
		details.Problem = problem
	}

	subs, err := s.submissionRepo.ListByTeamID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	for _, sub := range subs {
		reviews, err := s.reviewRepo.ListBySubmissionID(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load reviews: %w", err)
		}
		details.Submissions = append(details.Submissions, model.SubmissionWithReviews{Submission: sub, Reviews: reviews})
	}
	return details, nil
}

func (s *TeamService) checkProblem(ctx context.Context, problemID *string) error {
	if problemID == nil || *problemID == "" {
		return nil
	}
	if _, err := s.problemRepo.FindByID(ctx, *problemID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ValidationError("Problem does not exist")
		}
		return err
	}
	return nil
}

// Create registers a team with actor as its leader.
func (s *TeamService) Create(ctx context.Context, actor *model.User, req CreateTeamRequest) (*model.Team, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, common.ValidationError("Team name is required")
	}
	if req.Gender == "" {
		req.Gender = model.GenderOther
	}
	if !req.Gender.Valid() {
		return nil, common.ValidationError("Invalid gender")
	}
	if req.TeamSize <= 0 {
		req.TeamSize = 1
	}
	if req.ProblemID != nil && *req.ProblemID == "" {
		req.ProblemID = nil
	}
	if err := s.checkProblem(ctx, req.ProblemID); err != nil {
		return nil, err
	}

	team := &model.Team{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Description:       req.Description,
		RepositoryURL:     req.RepositoryURL,
		TeamSize:          req.TeamSize,
		LookingForMembers: req.LookingForMembers,
		ProblemID:         req.ProblemID,
		Status:            model.TeamPending,
	}
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			return err
		}
		return s.teamRepo.AddMember(ctx, tx, &model.TeamMember{
			ID:       uuid.NewString(),
			TeamID:   team.ID,
			UserID:   actor.ID,
			IsLeader: true,
			Gender:   req.Gender,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// Update lets the team leader change descriptive fields and admins change anything including status.
func (s *TeamService) Update(ctx context.Context, actor *model.User, id string, patch model.TeamAdminPatch) (*model.Team, error) {
	team, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin := actor.Role == model.RoleAdmin
	if !isAdmin {
		if patch.Status != nil {
			return nil, common.Forbidden("Only admins can change team status")
		}
		leader, err := s.teamRepo.GetMembership(ctx, id, actor.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		if leader == nil || !leader.IsLeader {
			return nil, common.Forbidden("Only the team leader or an admin can update this team")
		}
	}

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, common.ValidationError("Invalid team status")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, common.ValidationError("Team name is required")
	}
	if patch.TeamSize != nil && *patch.TeamSize < 1 {
		return nil, common.ValidationError("Team size must be at least 1")
	}
	if err := s.checkProblem(ctx, patch.ProblemID); err != nil {
		return nil, err
	}

	patch.Apply(team)
	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

func (s *TeamService) setStatus(ctx context.Context, id string, status model.TeamStatus) (*model.Team, error) {
	team, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Status = status
	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		return nil, fmt.Errorf("failed to update team status: %w", err)
	}
	log.Printf("INFO: team %s marked %s", team.ID, status)
	return team, nil
}

func (s *TeamService) Approve(ctx context.Context, id string) (*model.Team, error) {
	return s.setStatus(ctx, id, model.TeamApproved)
}

func (s *TeamService) Reject(ctx context.Context, id string) (*model.Team, error) {
	return s.setStatus(ctx, id, model.TeamRejected)
}

// GenerateCredentials rotates the leader account of an approved team to a fresh
// team username and password. The plaintext password is returned only here.
func (s *TeamService) GenerateCredentials(ctx context.Context, id string) (*TeamCredentials, error) {
	team, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.Status != model.TeamApproved {
		return nil, common.ValidationError("Only approved teams can have credentials generated")
	}

	membership, err := s.teamRepo.FindLeader(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ValidationError("Team has no leader account")
		}
		return nil, err
	}
	leader, err := s.userRepo.FindByID(ctx, membership.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team leader: %w", err)
	}

	username, err := security.GenerateUsername(team.Name, "team")
	if err != nil {
		return nil, err
	}
	password, err := security.GeneratePassword(s.passwordLength)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		leader.Username = username
		leader.Password = &hash
		return s.userRepo.Update(ctx, tx, leader)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rotate team credentials: %w", err)
	}
	return &TeamCredentials{TeamID: team.ID, Username: username, Password: password}, nil
}

func (s *TeamService) isLeaderOrAdmin(ctx context.Context, actor *model.User, teamID string) (bool, error) {
	if actor.Role == model.RoleAdmin {
		return true, nil
	}
	m, err := s.teamRepo.GetMembership(ctx, teamID, actor.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.IsLeader, nil
}

func (s *TeamService) AddMember(ctx context.Context, actor *model.User, teamID string, req AddMemberRequest) (*model.TeamMember, error) {
	if _, err := s.find(ctx, teamID); err != nil {
		return nil, err
	}
	ok, err := s.isLeaderOrAdmin(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Forbidden("Only the team leader or an admin can add members")
	}
	if req.UserID == "" {
		return nil, common.ValidationError("userId is required")
	}
	if req.Gender == "" {
		req.Gender = model.GenderOther
	}
	if !req.Gender.Valid() {
		return nil, common.ValidationError("Invalid gender")
	}
	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("User not found")
		}
		return nil, err
	}

	member := &model.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		UserID:   req.UserID,
		IsLeader: req.IsLeader,
		Gender:   req.Gender,
	}
	if err := s.teamRepo.AddMember(ctx, nil, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return member, nil
}

// RemoveMember lets members leave and lets leaders or admins remove anyone.
func (s *TeamService) RemoveMember(ctx context.Context, actor *model.User, teamID, userID string) error {
	if _, err := s.find(ctx, teamID); err != nil {
		return err
	}
	if actor.ID != userID {
		ok, err := s.isLeaderOrAdmin(ctx, actor, teamID)
		if err != nil {
			return err
		}
		if !ok {
			return common.Forbidden("Only the team leader or an admin can remove members")
		}
	}
	if err := s.teamRepo.RemoveMember(ctx, nil, teamID, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NotFound("Membership not found")
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}
