package service

import (
	"context"
	"testing"

	"quickhacker/internal/common"
	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService_CreateMakesActorLeader(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	leader := env.user(t, model.RoleParticipant)

	team, err := env.teams.Create(ctx, leader, CreateTeamRequest{Name: "Alpha"})
	require.NoError(t, err)
	assert.Equal(t, model.TeamPending, team.Status)
	assert.Equal(t, 1, team.TeamSize)

	m, err := env.store.Teams().GetMembership(ctx, team.ID, leader.ID)
	require.NoError(t, err)
	assert.True(t, m.IsLeader)
	assert.Equal(t, model.GenderOther, m.Gender)

	_, err = env.teams.Create(ctx, leader, CreateTeamRequest{Name: "Alpha"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, 1, env.store.Counts()["team_members"])
}

func TestTeamService_CreateTreatsEmptyProblemAsNone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	leader := env.user(t, model.RoleParticipant)

	empty := ""
	team, err := env.teams.Create(ctx, leader, CreateTeamRequest{Name: "Beta", ProblemID: &empty})
	require.NoError(t, err)
	assert.Nil(t, team.ProblemID)

	stored, err := env.store.Teams().FindByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ProblemID)

	unknown := "00000000-0000-0000-0000-000000000000"
	_, err = env.teams.Create(ctx, leader, CreateTeamRequest{Name: "Gamma", ProblemID: &unknown})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestTeamService_UpdatePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	leader := env.user(t, model.RoleParticipant)
	member := env.user(t, model.RoleParticipant)
	admin := env.user(t, model.RoleAdmin)
	team := env.team(t, "Alpha", leader, member)

	approved := model.TeamApproved
	desc := "We build things"

	_, err := env.teams.Update(ctx, member, team.ID, model.TeamAdminPatch{TeamPatch: model.TeamPatch{Description: &desc}})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.teams.Update(ctx, leader, team.ID, model.TeamAdminPatch{Status: &approved})
	assert.ErrorIs(t, err, common.ErrForbidden)

	updated, err := env.teams.Update(ctx, leader, team.ID, model.TeamAdminPatch{TeamPatch: model.TeamPatch{Description: &desc}})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)
	assert.Equal(t, model.TeamPending, updated.Status)

	updated, err = env.teams.Update(ctx, admin, team.ID, model.TeamAdminPatch{Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, model.TeamApproved, updated.Status)

	bogus := model.TeamStatus("archived")
	_, err = env.teams.Update(ctx, admin, team.ID, model.TeamAdminPatch{Status: &bogus})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.teams.Update(ctx, admin, "missing", model.TeamAdminPatch{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTeamService_GenerateCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.registration.RegisterTeam(ctx, cyberInnovators())
	require.NoError(t, err)

	_, err = env.teams.GenerateCredentials(ctx, result.Team.ID)
	require.Error(t, err)
	assert.Equal(t, "Only approved teams can have credentials generated", common.PublicMessage(err))

	_, err = env.teams.Approve(ctx, result.Team.ID)
	require.NoError(t, err)

	creds, err := env.teams.GenerateCredentials(ctx, result.Team.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Team.ID, creds.TeamID)
	assert.Regexp(t, `^cyber_innovators_\d{4}_team$`, creds.Username)
	assert.Len(t, creds.Password, 12)

	login, err := env.auth.Login(ctx, LoginRequest{Email: creds.Username, Password: creds.Password})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", login.User.Email)

	_, err = env.auth.Login(ctx, LoginRequest{Email: result.Leader.Username, Password: result.Leader.Password})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 3, env.store.Counts()["users"])
}

func TestTeamService_RejectBlocksCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.team(t, "Beta", env.user(t, model.RoleParticipant))

	rejected, err := env.teams.Reject(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TeamRejected, rejected.Status)

	_, err = env.teams.GenerateCredentials(ctx, team.ID)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestTeamService_Membership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	leader := env.user(t, model.RoleParticipant)
	member := env.user(t, model.RoleParticipant)
	outsider := env.user(t, model.RoleParticipant)
	team := env.team(t, "Gamma", leader)

	_, err := env.teams.AddMember(ctx, outsider, team.ID, AddMemberRequest{UserID: member.ID})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.teams.AddMember(ctx, leader, team.ID, AddMemberRequest{UserID: "nobody"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	m, err := env.teams.AddMember(ctx, leader, team.ID, AddMemberRequest{UserID: member.ID, Gender: model.GenderFemale})
	require.NoError(t, err)
	assert.False(t, m.IsLeader)

	_, err = env.teams.AddMember(ctx, leader, team.ID, AddMemberRequest{UserID: member.ID})
	assert.ErrorIs(t, err, common.ErrConflict)

	assert.ErrorIs(t, env.teams.RemoveMember(ctx, outsider, team.ID, member.ID), common.ErrForbidden)
	require.NoError(t, env.teams.RemoveMember(ctx, member, team.ID, member.ID))
	assert.ErrorIs(t, env.teams.RemoveMember(ctx, leader, team.ID, member.ID), common.ErrNotFound)

	mine, err := env.teams.List(ctx, TeamFilter{UserID: leader.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestTeamService_GetDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	leader := env.user(t, model.RoleParticipant)
	judge := env.user(t, model.RoleJudge)
	p := env.problem(t, "Clean Water")
	team := env.team(t, "Delta", leader)
	_, err := env.teams.Update(ctx, leader, team.ID, model.TeamAdminPatch{TeamPatch: model.TeamPatch{ProblemID: &p.ID}})
	require.NoError(t, err)

	sub, err := env.submissions.Create(ctx, leader, model.CreateSubmissionRequest{
		TeamID: team.ID, ProblemID: p.ID, Title: "Filter", Description: "A filter", RepositoryURL: "https://git.example/f",
		Status: model.SubmissionSubmitted,
	})
	require.NoError(t, err)
	_, err = env.submissions.Evaluate(ctx, judge, sub.ID, model.EvaluateRequest{
		Status: model.SubmissionAccepted,
		Scores: model.NewEvaluationScores(9, 8, 9, 8, 9),
	})
	require.NoError(t, err)

	details, err := env.teams.GetDetails(ctx, team.ID)
	require.NoError(t, err)
	require.NotNil(t, details.Problem)
	assert.Equal(t, p.ID, details.Problem.ID)
	require.Len(t, details.Members, 1)
	require.Len(t, details.Submissions, 1)
	require.Len(t, details.Submissions[0].Reviews, 1)
	assert.Equal(t, judge.ID, details.Submissions[0].Reviews[0].ReviewerID)
}

func TestTeamService_CredentialsUseConfiguredLength(t *testing.T) {
	env := newTestEnv(t)
	env.teams.passwordLength = 20
	ctx := context.Background()
	leader := env.user(t, model.RoleParticipant)
	team := env.team(t, "Epsilon", leader)
	_, err := env.teams.Approve(ctx, team.ID)
	require.NoError(t, err)

	creds, err := env.teams.GenerateCredentials(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, creds.Password, 20)

	stored, err := env.store.Users().FindByID(ctx, leader.ID)
	require.NoError(t, err)
	assert.True(t, security.CheckPasswordHash(creds.Password, stored.Password))
}
