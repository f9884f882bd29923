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

const leaderInstructions = "These are your team leader credentials. Store them securely. " +
	"You'll need them to log in to your team dashboard once your team is approved by administrators."

// usernameAttempts bounds how many random suffixes are tried before giving up on a free username.
const usernameAttempts = 5

type RegistrationService struct {
	teamRepo     repository.TeamRepository
	userRepo     repository.UserRepository
	problemRepo  repository.ProblemRepository
	tx           repository.Transactor
	leaderLength int
	memberLength int
}

func NewRegistrationService(
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	tx repository.Transactor,
	leaderPasswordLength, memberPasswordLength int,
) *RegistrationService {
	return &RegistrationService{
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		problemRepo:  problemRepo,
		tx:           tx,
		leaderLength: leaderPasswordLength,
		memberLength: memberPasswordLength,
	}
}

type RegistrationTeam struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ProblemID   *string `json:"problemId,omitempty"`
}

type RegistrationLeader struct {
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Phone  string       `json:"phone,omitempty"`
	Gender model.Gender `json:"gender"`
}

type RegistrationMember struct {
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Gender model.Gender `json:"gender"`
}

type RegisterTeamRequest struct {
	Team    RegistrationTeam     `json:"team"`
	Leader  RegistrationLeader   `json:"leader"`
	Members []RegistrationMember `json:"members"`
}

type RegisteredTeam struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Status model.TeamStatus `json:"status"`
}

type LeaderCredentials struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Instructions string `json:"instructions"`
}

type MemberAccount struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type RegistrationResult struct {
	Success bool              `json:"success"`
	Team    RegisteredTeam    `json:"team"`
	Leader  LeaderCredentials `json:"leader"`
	Members []MemberAccount   `json:"members"`
}

// hasFemaleMember reports whether the team, leader included, satisfies the diversity rule.
func (r RegisterTeamRequest) hasFemaleMember() bool {
	if r.Leader.Gender == model.GenderFemale {
		return true
	}
	for _, m := range r.Members {
		if m.Gender == model.GenderFemale {
			return true
		}
	}
	return false
}

func (s *RegistrationService) validate(ctx context.Context, req *RegisterTeamRequest) error {
	if !req.hasFemaleMember() {
		return common.ValidationError("At least one female team member is required")
	}

	req.Team.Name = strings.TrimSpace(req.Team.Name)
	if req.Team.Name == "" {
		return common.ValidationError("Team name is required")
	}
	req.Leader.Name = strings.TrimSpace(req.Leader.Name)
	req.Leader.Email = strings.TrimSpace(req.Leader.Email)
	if req.Leader.Name == "" || req.Leader.Email == "" {
		return common.ValidationError("Leader name and email are required")
	}
	if !validEmail(req.Leader.Email) {
		return common.ValidationError("Invalid leader email: %s", req.Leader.Email)
	}
	if !req.Leader.Gender.Valid() {
		return common.ValidationError("Invalid leader gender")
	}

	seen := map[string]bool{strings.ToLower(req.Leader.Email): true}
	for i := range req.Members {
		m := &req.Members[i]
		m.Name = strings.TrimSpace(m.Name)
		m.Email = strings.TrimSpace(m.Email)
		if m.Name == "" || m.Email == "" {
			return common.ValidationError("Member %d name and email are required", i+1)
		}
		if !validEmail(m.Email) {
			return common.ValidationError("Invalid member email: %s", m.Email)
		}
		if !m.Gender.Valid() {
			return common.ValidationError("Invalid gender for member %d", i+1)
		}
		key := strings.ToLower(m.Email)
		if seen[key] {
			return common.ValidationError("Duplicate email in registration: %s", m.Email)
		}
		seen[key] = true
	}

	if req.Team.ProblemID != nil && *req.Team.ProblemID != "" {
		if _, err := s.problemRepo.FindByID(ctx, *req.Team.ProblemID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ValidationError("Problem does not exist")
			}
			return err
		}
	} else {
		req.Team.ProblemID = nil
	}
	return nil
}

// usernameBase picks a "<stem>_NNNN" prefix whose leader username is still free.
func (s *RegistrationService) usernameBase(ctx context.Context, teamName string) (string, error) {
	for i := 0; i < usernameAttempts; i++ {
		leader, err := security.GenerateUsername(teamName, "leader")
		if err != nil {
			return "", err
		}
		_, err = s.userRepo.FindByUsername(ctx, leader)
		if errors.Is(err, common.ErrNotFound) {
			return strings.TrimSuffix(leader, "_leader"), nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", common.Conflict("Could not allocate a unique username for this team")
}

// RegisterTeam creates a pending team with a generated account for the leader and
// every member. Either every row is written or none is.
func (s *RegistrationService) RegisterTeam(ctx context.Context, req RegisterTeamRequest) (*RegistrationResult, error) {
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}

	base, err := s.usernameBase(ctx, req.Team.Name)
	if err != nil {
		return nil, err
	}
	leaderPassword, err := security.GeneratePassword(s.leaderLength)
	if err != nil {
		return nil, err
	}
	memberPasswords := make([]string, len(req.Members))
	for i := range req.Members {
		if memberPasswords[i], err = security.GeneratePassword(s.memberLength); err != nil {
			return nil, err
		}
	}

	team := &model.Team{
		ID:          uuid.NewString(),
		Name:        req.Team.Name,
		Description: req.Team.Description,
		ProblemID:   req.Team.ProblemID,
		TeamSize:    1 + len(req.Members),
		Status:      model.TeamPending,
	}
	result := &RegistrationResult{Success: true, Members: []MemberAccount{}}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			return err
		}

		leader, err := createAccount(ctx, s.userRepo, tx, newAccount{
			Username: base + "_leader",
			Email:    req.Leader.Email,
			Password: leaderPassword,
			Role:     model.RoleParticipant,
			Name:     optional(req.Leader.Name),
			Phone:    optional(req.Leader.Phone),
		})
		if err != nil {
			return err
		}
		if err := s.addMember(ctx, tx, team.ID, leader.ID, true, req.Leader.Gender); err != nil {
			return err
		}
		result.Leader = LeaderCredentials{
			Name:         req.Leader.Name,
			Username:     leader.Username,
			Password:     leaderPassword,
			Instructions: leaderInstructions,
		}

		for i, m := range req.Members {
			user, err := createAccount(ctx, s.userRepo, tx, newAccount{
				Username: fmt.Sprintf("%s_member%d", base, i+1),
				Email:    m.Email,
				Password: memberPasswords[i],
				Role:     model.RoleParticipant,
				Name:     optional(m.Name),
			})
			if err != nil {
				return err
			}
			if err := s.addMember(ctx, tx, team.ID, user.ID, false, m.Gender); err != nil {
				return err
			}
			result.Members = append(result.Members, MemberAccount{Name: m.Name, Username: user.Username})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("team registration failed: %w", err)
	}

	result.Team = RegisteredTeam{ID: team.ID, Name: team.Name, Status: team.Status}
	log.Printf("INFO: registered team %s (%s) with %d members", team.Name, team.ID, 1+len(req.Members))
	return result, nil
}

func (s *RegistrationService) addMember(ctx context.Context, tx *sql.Tx, teamID, userID string, leader bool, gender model.Gender) error {
	return s.teamRepo.AddMember(ctx, tx, &model.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		UserID:   userID,
		IsLeader: leader,
		Gender:   gender,
	})
}
