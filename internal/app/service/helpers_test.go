package service

import (
	"context"
	"testing"
	"time"

	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store        *memory.Store
	auth         *AuthService
	users        *UserService
	teams        *TeamService
	registration *RegistrationService
	problems     *ProblemService
	submissions  *SubmissionService
	reviews      *ReviewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	security.InitJWT([]byte("service-test-secret"), time.Hour)
	store := memory.NewStore()
	tx := store.Transactor()
	problems := NewProblemService(store.Problems())
	return &testEnv{
		store:        store,
		auth:         NewAuthService(store.Users()),
		users:        NewUserService(store.Users()),
		teams:        NewTeamService(store.Teams(), store.Users(), store.Problems(), store.Submissions(), store.Reviews(), tx, 12),
		registration: NewRegistrationService(store.Teams(), store.Users(), store.Problems(), tx, 12, 10),
		problems:     problems,
		submissions:  NewSubmissionService(store.Submissions(), store.Teams(), store.Problems(), store.Reviews(), tx),
		reviews:      NewReviewService(store.Reviews(), store.Submissions(), tx),
	}
}

func (e *testEnv) user(t *testing.T, role string) *model.User {
	t.Helper()
	id := uuid.NewString()
	u, err := createAccount(context.Background(), e.store.Users(), nil, newAccount{
		Username: role + "_" + id[:8],
		Email:    id[:8] + "@example.com",
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) problem(t *testing.T, title string) *model.Problem {
	t.Helper()
	p, err := e.problems.Create(context.Background(), CreateProblemRequest{
		Title:       title,
		Category:    "Health",
		Description: "Build something useful",
		Difficulty:  3,
		Prize:       "$1000",
		Color:       "#ff0066",
	})
	require.NoError(t, err)
	return p
}

// team creates a team led by leader with the extra users as plain members.
func (e *testEnv) team(t *testing.T, name string, leader *model.User, members ...*model.User) *model.Team {
	t.Helper()
	ctx := context.Background()
	team, err := e.teams.Create(ctx, leader, CreateTeamRequest{Name: name, Gender: model.GenderFemale})
	require.NoError(t, err)
	for _, m := range members {
		_, err := e.teams.AddMember(ctx, leader, team.ID, AddMemberRequest{UserID: m.ID})
		require.NoError(t, err)
	}
	return team
}

func strPtr(s string) *string { return &s }
